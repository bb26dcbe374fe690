package catalog

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/sportsapi"
)

type Context struct {
	context.Context

	API     *sportsapi.Client
	Catalog *sportsapi.Catalog
	Out     io.Writer

	Query     string
	FixtureID int
	Date      time.Time
	Live      bool
	Refresh   bool
	Interval  time.Duration
}

// DefaultInterval is how often live fixtures are refetched while watching.
const DefaultInterval = 30 * time.Second

func NewContext(ctx context.Context) *Context {
	return &Context{Context: ctx, Out: os.Stdout}
}
