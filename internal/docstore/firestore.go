package docstore

import (
	"context"
	"fmt"
	"math"
	"sync"

	fs "cloud.google.com/go/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/errreport"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore is a Store backed by a Cloud Firestore client.
type Firestore struct {
	client   *fs.Client
	reporter *errreport.Reporter
	logger   *zap.Logger
}

// NewFirestore wraps client. Watch failures after the initial snapshot go to reporter.
func NewFirestore(client *fs.Client, reporter *errreport.Reporter, logger *zap.Logger) *Firestore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = errreport.NewReporter(logger)
	}
	return &Firestore{client: client, reporter: reporter, logger: logger}
}

// Client returns the underlying Firestore client.
func (f *Firestore) Client() *fs.Client {
	return f.client
}

func wrapSnapshot(path, id string, snap *fs.DocumentSnapshot) *Document {
	doc := &Document{Path: path, ID: id}
	if snap == nil || !snap.Exists() {
		return doc
	}
	data := snap.Data()
	doc.exists = true
	doc.data = data
	doc.decode = func(v interface{}) error { return Decode(data, v) }
	return doc
}

// storable converts v to a value the Firestore client can encode with the same field names the JSON tags use.
// Whole numbers are stored as integers.
func storable(v interface{}) (interface{}, error) {
	if IsDelete(v) {
		return fs.Delete, nil
	}
	n, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	return integral(n), nil
}

func integral(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case map[string]interface{}:
		for k, e := range x {
			x[k] = integral(e)
		}
		return x
	case []interface{}:
		for i, e := range x {
			x[i] = integral(e)
		}
		return x
	default:
		return v
	}
}

func storableMap(v interface{}) (map[string]interface{}, error) {
	m, err := ToMap(v)
	if err != nil {
		return nil, err
	}
	return integral(m).(map[string]interface{}), nil
}

// mergeArgs builds the nested data map and field path list for a merge Set.
func mergeArgs(updates []FieldUpdate) (map[string]interface{}, []fs.FieldPath, error) {
	data := make(map[string]interface{})
	paths := make([]fs.FieldPath, 0, len(updates))
	for _, u := range updates {
		if len(u.Path) == 0 {
			return nil, nil, fmt.Errorf("mergeArgs: empty field path")
		}
		val, err := storable(u.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("mergeArgs: unable to encode %v: %w", u, err)
		}
		node := data
		for _, seg := range u.Path[:len(u.Path)-1] {
			child, ok := node[seg].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[seg] = child
			}
			node = child
		}
		node[u.Path[len(u.Path)-1]] = val
		paths = append(paths, fs.FieldPath(u.Path))
	}
	return data, paths, nil
}

func (f *Firestore) Get(ctx context.Context, path string) (*Document, error) {
	id, err := checkDocPath(path)
	if err != nil {
		return nil, errreport.Wrap(path, errreport.OpGet, nil, err)
	}
	snap, err := f.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return &Document{Path: path, ID: id}, nil
	}
	if err != nil {
		return nil, errreport.Wrap(path, errreport.OpGet, nil, err)
	}
	return wrapSnapshot(path, id, snap), nil
}

func (f *Firestore) List(ctx context.Context, collection string) ([]*Document, error) {
	if err := checkCollectionPath(collection); err != nil {
		return nil, errreport.Wrap(collection, errreport.OpList, nil, err)
	}
	iter := f.client.Collection(collection).Documents(ctx)
	defer iter.Stop()
	docs := make([]*Document, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errreport.Wrap(collection, errreport.OpList, nil, err)
		}
		docs = append(docs, wrapSnapshot(collection+"/"+snap.Ref.ID, snap.Ref.ID, snap))
	}
	return docs, nil
}

func (f *Firestore) Set(ctx context.Context, path string, data interface{}) error {
	if _, err := checkDocPath(path); err != nil {
		return errreport.Wrap(path, errreport.OpWrite, data, err)
	}
	m, err := storableMap(data)
	if err != nil {
		return errreport.Wrap(path, errreport.OpWrite, data, err)
	}
	_, err = f.client.Doc(path).Set(ctx, m)
	return errreport.Wrap(path, errreport.OpWrite, data, err)
}

func (f *Firestore) Merge(ctx context.Context, path string, updates ...FieldUpdate) error {
	if _, err := checkDocPath(path); err != nil {
		return errreport.Wrap(path, errreport.OpUpdate, updates, err)
	}
	data, paths, err := mergeArgs(updates)
	if err != nil {
		return errreport.Wrap(path, errreport.OpUpdate, updates, err)
	}
	if len(paths) == 0 {
		// a merge with no fields still creates the document
		_, err = f.client.Doc(path).Set(ctx, map[string]interface{}{}, fs.MergeAll)
	} else {
		_, err = f.client.Doc(path).Set(ctx, data, fs.Merge(paths...))
	}
	return errreport.Wrap(path, errreport.OpUpdate, updates, err)
}

func (f *Firestore) Delete(ctx context.Context, path string) error {
	if _, err := checkDocPath(path); err != nil {
		return errreport.Wrap(path, errreport.OpDelete, nil, err)
	}
	_, err := f.client.Doc(path).Delete(ctx)
	return errreport.Wrap(path, errreport.OpDelete, nil, err)
}

// Watch listens to the document with a Snapshots iterator on its own goroutine.
// The first snapshot is delivered before Watch returns.
func (f *Firestore) Watch(ctx context.Context, path string, fn func(*Document)) (func(), error) {
	id, err := checkDocPath(path)
	if err != nil {
		return nil, errreport.Wrap(path, errreport.OpWatch, nil, err)
	}
	wctx, cancel := context.WithCancel(ctx)
	iter := f.client.Doc(path).Snapshots(wctx)

	first, err := iter.Next()
	if err != nil && status.Code(err) != codes.NotFound {
		iter.Stop()
		cancel()
		return nil, errreport.Wrap(path, errreport.OpWatch, nil, err)
	}
	fn(wrapSnapshot(path, id, first))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			snap, err := iter.Next()
			if err != nil {
				if wctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				if status.Code(err) == codes.NotFound {
					fn(&Document{Path: path, ID: id})
					continue
				}
				f.reporter.Report(errreport.Wrap(path, errreport.OpWatch, nil, err))
				return
			}
			fn(wrapSnapshot(path, id, snap))
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			iter.Stop()
			<-done
		})
	}, nil
}

func (f *Firestore) Batch() Batch {
	return &fsBatch{f: f}
}

type fsWrite struct {
	path    string
	data    interface{}
	updates []FieldUpdate
	merge   bool
	delete  bool
}

type fsBatch struct {
	f      *Firestore
	writes []fsWrite
}

func (b *fsBatch) Set(path string, data interface{}) {
	b.writes = append(b.writes, fsWrite{path: path, data: data})
}

func (b *fsBatch) Merge(path string, updates ...FieldUpdate) {
	b.writes = append(b.writes, fsWrite{path: path, updates: updates, merge: true})
}

func (b *fsBatch) Delete(path string) {
	b.writes = append(b.writes, fsWrite{path: path, delete: true})
}

func (b *fsBatch) Len() int {
	return len(b.writes)
}

// Commit applies the writes in a single transaction.
func (b *fsBatch) Commit(ctx context.Context) error {
	if len(b.writes) > MaxBatchSize {
		return fmt.Errorf("Commit: batch of %d writes exceeds limit of %d", len(b.writes), MaxBatchSize)
	}
	if len(b.writes) == 0 {
		return nil
	}
	for _, w := range b.writes {
		if _, err := checkDocPath(w.path); err != nil {
			return errreport.Wrap(w.path, errreport.OpWrite, w.data, err)
		}
	}

	var failed *fsWrite
	err := b.f.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		for i := range b.writes {
			w := &b.writes[i]
			ref := b.f.client.Doc(w.path)
			var err error
			switch {
			case w.delete:
				err = tx.Delete(ref)
			case w.merge:
				var data map[string]interface{}
				var paths []fs.FieldPath
				data, paths, err = mergeArgs(w.updates)
				if err != nil {
					break
				}
				if len(paths) == 0 {
					err = tx.Set(ref, map[string]interface{}{}, fs.MergeAll)
				} else {
					err = tx.Set(ref, data, fs.Merge(paths...))
				}
			default:
				var m map[string]interface{}
				m, err = storableMap(w.data)
				if err != nil {
					break
				}
				err = tx.Set(ref, m)
			}
			if err != nil {
				failed = w
				return err
			}
		}
		return nil
	})
	if err != nil {
		if failed != nil {
			return errreport.Wrap(failed.path, errreport.OpWrite, failed.data, err)
		}
		return errreport.Wrap(b.writes[0].path, errreport.OpWrite, nil, err)
	}
	b.f.logger.Debug("committed batch", zap.Int("writes", len(b.writes)))
	return nil
}
