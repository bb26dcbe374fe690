package editfavorites

import (
	"context"
	"io"
	"os"

	"github.com/abozbere2001-collab/Nabd6/internal/accounts"
	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/errreport"
	"github.com/abozbere2001-collab/Nabd6/internal/favorites"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	"go.uber.org/zap"
)

type Context struct {
	context.Context

	Store    docstore.Store
	KV       localstore.KV
	Notifier *localstore.Notifier
	Reporter *errreport.Reporter
	Logger   *zap.Logger
	Out      io.Writer

	Account accounts.Account
	Item    favorites.Item
	Note    string
	Scope   favorites.Scope
	Enabled bool
}

func NewContext(ctx context.Context) *Context {
	return &Context{Context: ctx, Out: os.Stdout}
}

// Identity is who the favorites belong to: a guest when no account uid is set.
func (ctx *Context) Identity() favorites.Identity {
	return favorites.Identity{UID: ctx.Account.UID, Anonymous: ctx.Account.Anonymous}
}
