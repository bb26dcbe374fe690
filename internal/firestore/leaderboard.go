package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

// UserScore is a leaderboard entry. Rank is assigned when the leaderboard is read and is never stored.
type UserScore struct {
	UserID      string `firestore:"userId" json:"userId"`
	UserName    string `firestore:"userName" json:"userName"`
	UserPhoto   string `firestore:"userPhoto" json:"userPhoto"`
	TotalPoints int    `firestore:"totalPoints" json:"totalPoints"`
	Rank        int    `firestore:"-" json:"-"`
}

func (s UserScore) String() string {
	var sb strings.Builder
	sb.WriteString("UserScore\n")
	ss := make([]string, 0)
	ss = append(ss, treeString("UserID", 0, false, s.UserID))
	ss = append(ss, treeString("UserName", 0, false, s.UserName))
	ss = append(ss, treeString("UserPhoto", 0, false, s.UserPhoto))
	ss = append(ss, treeInt("TotalPoints", 0, false, s.TotalPoints))
	ss = append(ss, treeInt("Rank", 0, true, s.Rank))
	sb.WriteString(strings.Join(ss, "\n"))
	return sb.String()
}

// GetLeaderboard reads every leaderboard entry, unranked.
func GetLeaderboard(ctx context.Context, store docstore.Store) ([]UserScore, error) {
	docs, err := store.List(ctx, LEADERBOARD_COLLECTION)
	if err != nil {
		return nil, fmt.Errorf("GetLeaderboard: unable to list leaderboard: %w", err)
	}
	scores := make([]UserScore, len(docs))
	for i, doc := range docs {
		var s UserScore
		if err := doc.DataTo(&s); err != nil {
			return nil, fmt.Errorf("GetLeaderboard: unable to decode %s: %w", doc.Path, err)
		}
		if s.UserID == "" {
			s.UserID = doc.ID
		}
		scores[i] = s
	}
	return scores, nil
}

// Recompute phases, in order.
const (
	PhaseNone      = 0
	PhaseScored    = 1
	PhaseAggregate = 2
	PhasePublished = 3
)

// JobState records the progress of the last leaderboard recomputation so a failed run can be detected.
type JobState struct {
	RunID          string    `firestore:"runId" json:"runId"`
	StartedAt      time.Time `firestore:"startedAt" json:"startedAt"`
	CompletedPhase int       `firestore:"completedPhase" json:"completedPhase"`
	FinishedAt     time.Time `firestore:"finishedAt,omitempty" json:"finishedAt,omitempty"`
	Error          string    `firestore:"error,omitempty" json:"error,omitempty"`
	Scored         int       `firestore:"scored" json:"scored"`
	Changed        int       `firestore:"changed" json:"changed"`
	Users          int       `firestore:"users" json:"users"`
}

// Stale reports whether the last run did not finish publishing.
func (j JobState) Stale() bool {
	return j.RunID != "" && j.CompletedPhase < PhasePublished
}

func (j JobState) String() string {
	var sb strings.Builder
	sb.WriteString("JobState\n")
	ss := make([]string, 0)
	ss = append(ss, treeString("RunID", 0, false, j.RunID))
	ss = append(ss, treeTime("StartedAt", 0, false, j.StartedAt))
	ss = append(ss, treeInt("CompletedPhase", 0, false, j.CompletedPhase))
	ss = append(ss, treeTime("FinishedAt", 0, false, j.FinishedAt))
	ss = append(ss, treeInt("Scored", 0, false, j.Scored))
	ss = append(ss, treeInt("Changed", 0, false, j.Changed))
	ss = append(ss, treeInt("Users", 0, j.Error == "", j.Users))
	if j.Error != "" {
		ss = append(ss, treeString("Error", 0, true, j.Error))
	}
	sb.WriteString(strings.Join(ss, "\n"))
	return sb.String()
}

// GetJobState reads the leaderboard job record. The boolean is false if no run has ever started.
func GetJobState(ctx context.Context, store docstore.Store) (JobState, bool, error) {
	var j JobState
	doc, err := store.Get(ctx, LeaderboardJobPath())
	if err != nil {
		return j, false, fmt.Errorf("GetJobState: unable to get job state: %w", err)
	}
	if !doc.Exists() {
		return j, false, nil
	}
	if err := doc.DataTo(&j); err != nil {
		return j, false, fmt.Errorf("GetJobState: unable to decode job state: %w", err)
	}
	return j, true, nil
}
