package leaderboard

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	excelize "github.com/xuri/excelize/v2"
)

var exportHeader = []string{"Rank", "User", "Name", "Points"}

// Workbook lays a ranked leaderboard out on the first sheet of a new workbook.
func Workbook(ranked []firestore.UserScore) (*excelize.File, error) {
	xl := excelize.NewFile()
	sheetName := xl.GetSheetName(xl.GetActiveSheetIndex())
	for col, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		xl.SetCellStr(sheetName, cell, h)
	}
	for i, s := range ranked {
		row := i + 2
		values := []interface{}{s.Rank, s.UserID, s.UserName, s.TotalPoints}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := xl.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("Workbook: unable to set %s: %w", cell, err)
			}
		}
	}
	return xl, nil
}

// Export writes the workbook for ranked to w.
func Export(w io.Writer, ranked []firestore.UserScore) error {
	xl, err := Workbook(ranked)
	if err != nil {
		return fmt.Errorf("Export: failed to build workbook: %w", err)
	}
	defer xl.Close()
	if _, err := xl.WriteTo(w); err != nil {
		return fmt.Errorf("Export: failed to write workbook: %w", err)
	}
	return nil
}

// OpenWriter opens a local path, a file:// URL, or a gs://bucket/object URL for writing.
func OpenWriter(ctx context.Context, f string) (io.WriteCloser, error) {
	u, err := url.Parse(f)
	if err != nil {
		return nil, err
	}
	var w io.WriteCloser
	switch u.Scheme {
	case "gs":
		gsClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		bucket := gsClient.Bucket(u.Host)
		// URL path has leading slash, but GS expects path relative to bucket.
		path := strings.TrimPrefix(u.Path, "/")
		w = &gsWriter{Writer: bucket.Object(path).NewWriter(ctx), client: gsClient}

	case "file":
		fallthrough
	case "":
		w, err = os.Create(u.Path)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unable to determine how to open '%s'", f)
	}

	return w, nil
}

// gsWriter closes the storage client once the object is written.
type gsWriter struct {
	*storage.Writer
	client *storage.Client
}

func (g *gsWriter) Close() error {
	err := g.Writer.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}
