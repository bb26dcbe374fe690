package firestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

// UserProfile is the document at users/{uid}.
type UserProfile struct {
	DisplayName        string `firestore:"displayName" json:"displayName"`
	Email              string `firestore:"email" json:"email"`
	PhotoURL           string `firestore:"photoURL" json:"photoURL"`
	IsProUser          bool   `firestore:"isProUser" json:"isProUser"`
	IsAnonymous        bool   `firestore:"isAnonymous" json:"isAnonymous"`
	OnboardingComplete bool   `firestore:"onboardingComplete" json:"onboardingComplete"`
}

func (u UserProfile) String() string {
	var sb strings.Builder
	sb.WriteString("UserProfile\n")
	ss := make([]string, 0)
	ss = append(ss, treeString("DisplayName", 0, false, u.DisplayName))
	ss = append(ss, treeString("Email", 0, false, u.Email))
	ss = append(ss, treeString("PhotoURL", 0, false, u.PhotoURL))
	ss = append(ss, treeBool("IsProUser", 0, false, u.IsProUser))
	ss = append(ss, treeBool("IsAnonymous", 0, false, u.IsAnonymous))
	ss = append(ss, treeBool("OnboardingComplete", 0, true, u.OnboardingComplete))
	sb.WriteString(strings.Join(ss, "\n"))
	return sb.String()
}

type UserNotFound string

func (e UserNotFound) Error() string {
	return fmt.Sprintf("no profile for user %s", string(e))
}

// GetUserProfile reads the profile of uid.
func GetUserProfile(ctx context.Context, store docstore.Store, uid string) (UserProfile, error) {
	var u UserProfile
	doc, err := store.Get(ctx, UserPath(uid))
	if err != nil {
		return u, fmt.Errorf("GetUserProfile: unable to get user %s: %w", uid, err)
	}
	if !doc.Exists() {
		return u, UserNotFound(uid)
	}
	if err := doc.DataTo(&u); err != nil {
		return u, fmt.Errorf("GetUserProfile: unable to decode user %s: %w", uid, err)
	}
	return u, nil
}

// GetUserProfiles reads every profile, keyed by uid.
func GetUserProfiles(ctx context.Context, store docstore.Store) (map[string]UserProfile, error) {
	docs, err := store.List(ctx, USERS_COLLECTION)
	if err != nil {
		return nil, fmt.Errorf("GetUserProfiles: unable to list users: %w", err)
	}
	profiles := make(map[string]UserProfile, len(docs))
	for _, doc := range docs {
		var u UserProfile
		if err := doc.DataTo(&u); err != nil {
			return nil, fmt.Errorf("GetUserProfiles: unable to decode %s: %w", doc.Path, err)
		}
		profiles[doc.ID] = u
	}
	return profiles, nil
}
