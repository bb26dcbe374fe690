package predict

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

type Context struct {
	context.Context

	Store     docstore.Store
	Out       io.Writer
	UID       string
	FixtureID int
	Home      int
	Away      int
	Now       func() time.Time
}

func NewContext(ctx context.Context) *Context {
	return &Context{Context: ctx, Out: os.Stdout, Now: time.Now}
}
