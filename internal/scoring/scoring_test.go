package scoring

import (
	"testing"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/stretchr/testify/assert"
)

func goals(n int) *int {
	return &n
}

func pred(home, away int) firestore.Prediction {
	return firestore.Prediction{UserID: "u", FixtureID: 1, HomeGoals: home, AwayGoals: away}
}

func TestScorePrediction(t *testing.T) {
	tests := []struct {
		name   string
		p      firestore.Prediction
		result Result
		want   int
	}{
		{"exact", pred(2, 1), Result{"FT", goals(2), goals(1)}, 5},
		{"same outcome home win", pred(2, 1), Result{"FT", goals(3), goals(0)}, 3},
		{"draw predicted home win actual", pred(1, 1), Result{"FT", goals(2), goals(0)}, 0},
		{"postponed", pred(0, 0), Result{"PST", nil, nil}, 0},
		{"finished without score", pred(0, 0), Result{"FT", nil, nil}, 0},
		{"one side missing", pred(1, 0), Result{"FT", goals(1), nil}, 0},
		{"draw outcome", pred(0, 0), Result{"AET", goals(2), goals(2)}, 3},
		{"away win outcome", pred(0, 3), Result{"PEN", goals(1), goals(2)}, 3},
		{"exact after penalties", pred(1, 1), Result{"PEN", goals(1), goals(1)}, 5},
		{"live match scores nothing", pred(1, 0), Result{"2H", goals(1), goals(0)}, 0},
		{"not started", pred(1, 0), Result{"NS", nil, nil}, 0},
		{"wrong outcome", pred(0, 2), Result{"FT", goals(2), goals(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScorePrediction(tt.p, tt.result))
		})
	}
}

func TestScorePredictionProperties(t *testing.T) {
	for _, status := range []string{"FT", "AET", "PEN"} {
		for ah := 0; ah <= 4; ah++ {
			for aa := 0; aa <= 4; aa++ {
				r := Result{Status: status, Home: goals(ah), Away: goals(aa)}
				for ph := 0; ph <= 4; ph++ {
					for pa := 0; pa <= 4; pa++ {
						got := ScorePrediction(pred(ph, pa), r)
						assert.Contains(t, []int{0, 3, 5}, got)

						exact := ph == ah && pa == aa
						assert.Equal(t, exact, got == 5, "5 iff exact: %d-%d vs %d-%d", ph, pa, ah, aa)
						if !exact && OutcomeOf(ph, pa) == OutcomeOf(ah, aa) {
							assert.Equal(t, 3, got)
						}
					}
				}
				assert.Equal(t, 0, ScorePrediction(pred(ah, aa), Result{Status: status, Home: nil, Away: goals(aa)}))
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		short string
		want  Category
	}{
		{"FT", Finished},
		{"AET", Finished},
		{"PEN", Finished},
		{"1H", Live},
		{"HT", Live},
		{"NS", Upcoming},
		{"PST", Cancelled},
		{"", Upcoming},
		{"???", Upcoming},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.short), tt.short)
	}
	assert.True(t, IsFinished("AET"))
	assert.False(t, IsFinished("ET"))
	assert.True(t, IsLive("ET"))
}

func TestResultOf(t *testing.T) {
	var f firestore.Fixture
	f.Fixture.Status.Short = "FT"
	f.Goals.Home = goals(3)
	f.Goals.Away = goals(0)
	r := ResultOf(f)
	assert.Equal(t, 3, ScorePrediction(pred(1, 0), r))
}
