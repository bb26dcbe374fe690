package editfavorites

import (
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/accounts"
)

// SignIn creates the account profile on first sign-in and moves the device favorites onto the account.
func SignIn(ctx *Context) error {
	if ctx.Identity().Guest() {
		return fmt.Errorf("SignIn: a uid is required and the account must not be anonymous")
	}
	profile, created, err := accounts.EnsureProfile(ctx.Context, ctx.Store, ctx.Account, ctx.Logger)
	if err != nil {
		return fmt.Errorf("SignIn: %w", err)
	}
	if created {
		fmt.Fprintf(ctx.Out, "Created profile for %s\n", ctx.Account.UID)
	}
	fmt.Fprintln(ctx.Out, profile)

	s, err := openSession(ctx)
	if err != nil {
		return fmt.Errorf("SignIn: %w", err)
	}
	defer s.close()
	printFavorites(ctx.Out, s.Favorites(), s.IsCrowned)
	return nil
}
