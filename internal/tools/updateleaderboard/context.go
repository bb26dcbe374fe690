package updateleaderboard

import (
	"context"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"go.uber.org/zap"
)

type Context struct {
	context.Context

	DryRun     bool
	Force      bool
	NoProgress bool
	Store      docstore.Store
	Logger     *zap.Logger
	Out        io.Writer

	BatchSize int
	Top       int
	User      string
	Stats     bool
	Output    string

	// Confirm asks the operator before a destructive write. It defaults to an interactive prompt.
	Confirm func(message string) (bool, error)
}

func NewContext(ctx context.Context) *Context {
	return &Context{Context: ctx, Out: os.Stdout, Confirm: surveyConfirm}
}

func surveyConfirm(message string) (bool, error) {
	ok := false
	q := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(q, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
