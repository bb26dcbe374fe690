package pinfixtures

import (
	"context"
	"io"
	"os"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/predictions"
	"go.uber.org/zap"
)

type Context struct {
	context.Context

	DryRun    bool
	Store     docstore.Store
	API       predictions.FixtureSource
	Logger    *zap.Logger
	Out       io.Writer
	FixtureID int
}

func NewContext(ctx context.Context) *Context {
	return &Context{Context: ctx, Out: os.Stdout}
}
