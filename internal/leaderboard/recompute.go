// Package leaderboard re-scores predictions on finished matches and republishes the ranked totals.
package leaderboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/scoring"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Progress is advanced once per finished fixture while predictions are scored.
type Progress interface {
	Add(n int) error
	Finish() error
}

// Recomputer runs the three-phase leaderboard recomputation. Each phase commits on its own; a failure stops the
// phases after it and is recorded in the job-state document.
type Recomputer struct {
	Store  docstore.Store
	Logger *zap.Logger

	// BatchSize caps the writes per batch commit. Zero or anything above docstore.MaxBatchSize means docstore.MaxBatchSize.
	BatchSize int

	// DryRun prints intended writes to DryRunOutput instead of making them.
	DryRun       bool
	DryRunOutput io.Writer

	// NewProgress, if set, is called with the number of finished fixtures before scoring starts.
	NewProgress func(total int) Progress

	Now func() time.Time
}

// Report summarizes a recomputation.
type Report struct {
	RunID     string
	Fixtures  int
	Finished  int
	Scored    int
	Changed   int
	Users     int
	Removed   int
	Standings []firestore.UserScore
}

func (r *Recomputer) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Recomputer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Recomputer) batchSize() int {
	if r.BatchSize <= 0 || r.BatchSize > docstore.MaxBatchSize {
		return docstore.MaxBatchSize
	}
	return r.BatchSize
}

func (r *Recomputer) dryRunOut() io.Writer {
	if r.DryRunOutput == nil {
		return os.Stdout
	}
	return r.DryRunOutput
}

// chunkedBatch commits every BatchSize writes.
type chunkedBatch struct {
	ctx     context.Context
	r       *Recomputer
	batch   docstore.Batch
	commits int
}

func (r *Recomputer) newBatch(ctx context.Context) *chunkedBatch {
	return &chunkedBatch{ctx: ctx, r: r, batch: r.Store.Batch()}
}

func (c *chunkedBatch) flushIfFull() error {
	if c.batch.Len() < c.r.batchSize() {
		return nil
	}
	return c.flush()
}

func (c *chunkedBatch) flush() error {
	if c.batch.Len() == 0 {
		return nil
	}
	if err := c.batch.Commit(c.ctx); err != nil {
		return err
	}
	c.commits++
	c.batch = c.r.Store.Batch()
	return nil
}

func (c *chunkedBatch) merge(path string, updates ...docstore.FieldUpdate) error {
	if c.r.DryRun {
		fmt.Fprintf(c.r.dryRunOut(), "DRY RUN: would update %s: %v\n", path, updates)
		return nil
	}
	c.batch.Merge(path, updates...)
	return c.flushIfFull()
}

func (c *chunkedBatch) set(path string, data interface{}) error {
	if c.r.DryRun {
		fmt.Fprintf(c.r.dryRunOut(), "DRY RUN: would write %s: %+v\n", path, data)
		return nil
	}
	c.batch.Set(path, data)
	return c.flushIfFull()
}

func (c *chunkedBatch) delete(path string) error {
	if c.r.DryRun {
		fmt.Fprintf(c.r.dryRunOut(), "DRY RUN: would delete %s\n", path)
		return nil
	}
	c.batch.Delete(path)
	return c.flushIfFull()
}

func (r *Recomputer) saveJob(ctx context.Context, job firestore.JobState) error {
	if r.DryRun {
		return nil
	}
	if err := r.Store.Set(ctx, firestore.LeaderboardJobPath(), job); err != nil {
		return fmt.Errorf("saveJob: unable to record job state: %w", err)
	}
	return nil
}

// Recompute scores every prediction on a finished pinned match, totals points per user, and replaces the leaderboard.
func (r *Recomputer) Recompute(ctx context.Context) (Report, error) {
	log := r.logger()
	report := Report{RunID: uuid.NewString()}
	job := firestore.JobState{RunID: report.RunID, StartedAt: r.now(), CompletedPhase: firestore.PhaseNone}
	if err := r.saveJob(ctx, job); err != nil {
		return report, fmt.Errorf("Recompute: %w", err)
	}
	log = log.With(zap.String("run", report.RunID))

	fail := func(phase string, err error) (Report, error) {
		err = fmt.Errorf("Recompute: %s failed: %w", phase, err)
		job.Error = err.Error()
		job.FinishedAt = r.now()
		if jerr := r.saveJob(ctx, job); jerr != nil {
			log.Error("unable to record failed run", zap.Error(jerr))
		}
		log.Error("leaderboard recomputation aborted", zap.String("phase", phase), zap.Int("completedPhase", job.CompletedPhase), zap.Error(err))
		return report, err
	}

	fixtures, ids, err := firestore.GetPredictionFixtures(ctx, r.Store)
	if err != nil {
		return fail("loading fixtures", err)
	}
	report.Fixtures = len(fixtures)

	// phase 1
	rescored, err := r.scorePredictions(ctx, fixtures, ids, &report)
	if err != nil {
		return fail("scoring predictions", err)
	}
	job.CompletedPhase = firestore.PhaseScored
	job.Scored, job.Changed = report.Scored, report.Changed
	if err := r.saveJob(ctx, job); err != nil {
		return fail("recording phase 1", err)
	}
	log.Info("scored predictions", zap.Int("finished", report.Finished), zap.Int("scored", report.Scored), zap.Int("changed", report.Changed))

	// phase 2
	totals, err := r.aggregate(ctx, ids, rescored)
	if err != nil {
		return fail("aggregating points", err)
	}
	job.CompletedPhase = firestore.PhaseAggregate
	job.Users = len(totals)
	if err := r.saveJob(ctx, job); err != nil {
		return fail("recording phase 2", err)
	}
	log.Info("aggregated points", zap.Int("users", len(totals)))

	// phase 3
	scores, removed, err := r.publish(ctx, totals)
	if err != nil {
		return fail("publishing leaderboard", err)
	}
	report.Users = len(scores)
	report.Removed = removed
	report.Standings = Rank(scores)
	job.CompletedPhase = firestore.PhasePublished
	job.FinishedAt = r.now()
	if err := r.saveJob(ctx, job); err != nil {
		return fail("recording phase 3", err)
	}
	log.Info("published leaderboard", zap.Int("entries", len(scores)), zap.Int("removed", removed))
	return report, nil
}

// scorePredictions writes new point values where they changed. It returns the new values by prediction path.
func (r *Recomputer) scorePredictions(ctx context.Context, fixtures []firestore.PredictionFixture, ids []string, report *Report) (map[string]int, error) {
	finished := make([]int, 0, len(fixtures))
	for i, pf := range fixtures {
		if scoring.IsFinished(pf.FixtureData.Fixture.Status.Short) {
			finished = append(finished, i)
		}
	}
	report.Finished = len(finished)

	var progress Progress
	if r.NewProgress != nil {
		progress = r.NewProgress(len(finished))
		defer func() {
			if err := progress.Finish(); err != nil {
				r.logger().Debug("unable to finish progress", zap.Error(err))
			}
		}()
	}

	rescored := make(map[string]int)
	batch := r.newBatch(ctx)
	for _, i := range finished {
		result := scoring.ResultOf(fixtures[i].FixtureData)
		preds, paths, err := firestore.GetUserPredictions(ctx, r.Store, ids[i])
		if err != nil {
			return nil, err
		}
		for j, p := range preds {
			report.Scored++
			points := scoring.ScorePrediction(p, result)
			if points == p.Points {
				continue
			}
			report.Changed++
			rescored[paths[j]] = points
			if err := batch.merge(paths[j], docstore.Update("points", points)); err != nil {
				return nil, err
			}
		}
		if progress != nil {
			if err := progress.Add(1); err != nil {
				r.logger().Debug("unable to advance progress", zap.Error(err))
			}
		}
	}
	if err := batch.flush(); err != nil {
		return nil, err
	}
	return rescored, nil
}

// aggregate sums points per user over every prediction on every pinned fixture.
// rescored overrides stored values, which only differ from them in a dry run.
func (r *Recomputer) aggregate(ctx context.Context, ids []string, rescored map[string]int) (map[string]int, error) {
	totals := make(map[string]int)
	for _, id := range ids {
		preds, paths, err := firestore.GetUserPredictions(ctx, r.Store, id)
		if err != nil {
			return nil, err
		}
		for j, p := range preds {
			points := p.Points
			if v, ok := rescored[paths[j]]; ok {
				points = v
			}
			totals[p.UserID] += points
		}
	}
	return totals, nil
}

// FallbackName is the leaderboard name of a user with no display name.
func FallbackName(uid string) string {
	if len(uid) > 4 {
		uid = uid[:4]
	}
	return "user_" + uid
}

// publish deletes every leaderboard entry and writes one per user in totals.
func (r *Recomputer) publish(ctx context.Context, totals map[string]int) ([]firestore.UserScore, int, error) {
	profiles, err := firestore.GetUserProfiles(ctx, r.Store)
	if err != nil {
		return nil, 0, err
	}
	old, err := r.Store.List(ctx, firestore.LEADERBOARD_COLLECTION)
	if err != nil {
		return nil, 0, err
	}

	batch := r.newBatch(ctx)
	for _, doc := range old {
		if err := batch.delete(doc.Path); err != nil {
			return nil, 0, err
		}
	}
	if err := batch.flush(); err != nil {
		return nil, 0, err
	}

	scores := make([]firestore.UserScore, 0, len(totals))
	for uid, total := range totals {
		profile := profiles[uid]
		s := firestore.UserScore{
			UserID:      uid,
			UserName:    profile.DisplayName,
			UserPhoto:   profile.PhotoURL,
			TotalPoints: total,
		}
		if s.UserName == "" {
			s.UserName = FallbackName(uid)
		}
		scores = append(scores, s)
	}
	// write in rank order so the dry-run output reads top-down
	scores = Rank(scores)
	for _, s := range scores {
		if err := batch.set(firestore.LeaderboardPath(s.UserID), s); err != nil {
			return nil, 0, err
		}
	}
	if err := batch.flush(); err != nil {
		return nil, 0, err
	}
	return scores, len(old), nil
}
