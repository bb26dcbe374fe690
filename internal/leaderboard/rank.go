package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"gonum.org/v1/gonum/stat"
)

// DefaultTop is the number of entries shown by default.
const DefaultTop = 100

// Rank returns a copy of scores ordered by total points, highest first, with ties broken by user id, and assigns
// 1-based ranks in that order. Tied users get distinct ranks.
func Rank(scores []firestore.UserScore) []firestore.UserScore {
	ranked := make([]firestore.UserScore, len(scores))
	copy(ranked, scores)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Top returns at most n entries of a ranked leaderboard.
func Top(ranked []firestore.UserScore, n int) []firestore.UserScore {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// Standing finds uid in a ranked leaderboard.
func Standing(ranked []firestore.UserScore, uid string) (firestore.UserScore, bool) {
	for _, s := range ranked {
		if s.UserID == uid {
			return s, true
		}
	}
	return firestore.UserScore{}, false
}

// View is what a user sees: the top entries and, if they have an entry, their own standing.
type View struct {
	Top  []firestore.UserScore
	Mine *firestore.UserScore
}

// Read ranks the stored leaderboard and builds the view for uid. An empty uid skips the caller's standing.
func Read(ctx context.Context, store docstore.Store, top int, uid string) (View, error) {
	scores, err := firestore.GetLeaderboard(ctx, store)
	if err != nil {
		return View{}, fmt.Errorf("Read: %w", err)
	}
	ranked := Rank(scores)
	v := View{Top: Top(ranked, top)}
	if uid != "" {
		if s, ok := Standing(ranked, uid); ok {
			v.Mine = &s
		}
	}
	return v, nil
}

// Summary describes the spread of total points.
type Summary struct {
	Users  int
	Total  int
	Max    int
	Mean   float64
	StdDev float64
	Median float64
}

// Summarize computes point statistics over the leaderboard.
func Summarize(scores []firestore.UserScore) Summary {
	s := Summary{Users: len(scores)}
	if len(scores) == 0 {
		return s
	}
	points := make([]float64, len(scores))
	for i, sc := range scores {
		points[i] = float64(sc.TotalPoints)
		s.Total += sc.TotalPoints
		if sc.TotalPoints > s.Max {
			s.Max = sc.TotalPoints
		}
	}
	sort.Float64s(points)
	s.Mean = stat.Mean(points, nil)
	if len(points) > 1 {
		s.StdDev = stat.StdDev(points, nil)
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, points, nil)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d points: max %d, mean %0.2f, std-dev %0.2f, median %0.1f", s.Users, s.Total, s.Max, s.Mean, s.StdDev, s.Median)
}
