package firestore

import (
	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

const USERS_COLLECTION = "users"
const FAVORITES_COLLECTION = "favorites"
const FAVORITES_DOC = "data"
const PREDICTION_FIXTURES_COLLECTION = "predictionFixtures"
const USER_PREDICTIONS_COLLECTION = "userPredictions"
const LEADERBOARD_COLLECTION = "leaderboard"
const MANAGED_COMPETITIONS_COLLECTION = "managedCompetitions"
const JOBS_COLLECTION = "jobs"
const LEADERBOARD_JOB = "leaderboard"

// UserPath is the profile document of a user.
func UserPath(uid string) string {
	return docstore.Join(USERS_COLLECTION, uid)
}

// FavoritesPath is the single favorites document of a signed-in user.
func FavoritesPath(uid string) string {
	return docstore.Join(USERS_COLLECTION, uid, FAVORITES_COLLECTION, FAVORITES_DOC)
}

// PredictionFixturePath is the pinned-match document for a fixture.
func PredictionFixturePath(fixtureID int) string {
	return docstore.Join(PREDICTION_FIXTURES_COLLECTION, IDKey(fixtureID))
}

// UserPredictionsPath is the collection of every user's prediction for a fixture.
func UserPredictionsPath(fixtureID string) string {
	return docstore.Join(PREDICTION_FIXTURES_COLLECTION, fixtureID, USER_PREDICTIONS_COLLECTION)
}

// PredictionPath is one user's prediction for a fixture.
func PredictionPath(fixtureID int, uid string) string {
	return docstore.Join(UserPredictionsPath(IDKey(fixtureID)), uid)
}

// LeaderboardPath is the leaderboard entry of a user.
func LeaderboardPath(uid string) string {
	return docstore.Join(LEADERBOARD_COLLECTION, uid)
}

// LeaderboardJobPath is the job-state record of the leaderboard recomputation.
func LeaderboardJobPath() string {
	return docstore.Join(JOBS_COLLECTION, LEADERBOARD_JOB)
}
