package editfavorites

import (
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/favorites"
)

func toggle(ctx *Context, name string, do func(s *session) (bool, error)) error {
	s, err := openSession(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer s.close()

	on, err := do(s)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := s.finish(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	state := "removed"
	if on {
		state = "added"
	}
	fmt.Fprintf(ctx.Out, "%s %d (%s) %s for %s\n", name, ctx.Item.ID, ctx.Item.Name, state, ctx.Identity())
	return nil
}

// ToggleTeam stars or unstars the context's item as a team.
func ToggleTeam(ctx *Context) error {
	return toggle(ctx, "ToggleTeam", func(s *session) (bool, error) {
		return s.ToggleFavorite(ctx.Context, favorites.Team, ctx.Item)
	})
}

// ToggleLeague stars or unstars the context's item as a league.
func ToggleLeague(ctx *Context) error {
	return toggle(ctx, "ToggleLeague", func(s *session) (bool, error) {
		return s.ToggleFavorite(ctx.Context, favorites.League, ctx.Item)
	})
}

// ToggleCrown crowns or uncrowns the context's item with the context's note.
func ToggleCrown(ctx *Context) error {
	return toggle(ctx, "ToggleCrown", func(s *session) (bool, error) {
		return s.ToggleCrown(ctx.Context, ctx.Item, ctx.Note)
	})
}

// SetNotification turns the context's notification scope on or off.
func SetNotification(ctx *Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return fmt.Errorf("SetNotification: %w", err)
	}
	defer s.close()

	if err := s.SetNotification(ctx.Context, ctx.Scope, ctx.Enabled); err != nil {
		return fmt.Errorf("SetNotification: %w", err)
	}
	if err := s.finish(); err != nil {
		return fmt.Errorf("SetNotification: %w", err)
	}
	fmt.Fprintf(ctx.Out, "%s notifications set to %t for %s\n", ctx.Scope, ctx.Enabled, ctx.Identity())
	return nil
}
