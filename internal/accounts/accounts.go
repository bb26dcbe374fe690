// Package accounts creates the profile and favorites documents of a user on first sign-in.
package accounts

import (
	"context"
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"go.uber.org/zap"
)

// Account is what the identity provider knows about a signed-in user.
type Account struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    string
	Anonymous   bool
}

// DefaultDisplayName is the name given to users who signed in without one.
func DefaultDisplayName(uid string) string {
	if len(uid) > 5 {
		uid = uid[:5]
	}
	return "user_" + uid
}

// EnsureProfile creates users/{uid} and an empty favorites record owned by the user if the profile does not exist yet.
// Both documents are written in one batch. It returns the stored profile and whether it was just created.
func EnsureProfile(ctx context.Context, store docstore.Store, acct Account, logger *zap.Logger) (firestore.UserProfile, bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if acct.UID == "" {
		return firestore.UserProfile{}, false, fmt.Errorf("EnsureProfile: account has no uid")
	}

	profile, err := firestore.GetUserProfile(ctx, store, acct.UID)
	if err == nil {
		return profile, false, nil
	}
	if _, notFound := err.(firestore.UserNotFound); !notFound {
		return profile, false, fmt.Errorf("EnsureProfile: %w", err)
	}

	profile = firestore.UserProfile{
		DisplayName:        acct.DisplayName,
		Email:              acct.Email,
		PhotoURL:           acct.PhotoURL,
		IsProUser:          false,
		IsAnonymous:        acct.Anonymous,
		OnboardingComplete: false,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = DefaultDisplayName(acct.UID)
	}

	batch := store.Batch()
	batch.Set(firestore.UserPath(acct.UID), profile)
	batch.Merge(firestore.FavoritesPath(acct.UID), docstore.Update("userId", acct.UID))
	if err := batch.Commit(ctx); err != nil {
		return profile, false, fmt.Errorf("EnsureProfile: unable to create user %s: %w", acct.UID, err)
	}
	logger.Info("created user profile", zap.String("uid", acct.UID), zap.String("displayName", profile.DisplayName))
	return profile, true, nil
}

// CompleteOnboarding marks the user as having finished the welcome flow.
func CompleteOnboarding(ctx context.Context, store docstore.Store, uid string) error {
	if err := store.Merge(ctx, firestore.UserPath(uid), docstore.Update("onboardingComplete", true)); err != nil {
		return fmt.Errorf("CompleteOnboarding: unable to update user %s: %w", uid, err)
	}
	return nil
}
