// Package scheduler runs the periodic maintenance passes of the backend.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Job is one periodic pass. Run returns how many records it touched.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (int, error)
}

// BurnCleaner deletes expired burn-after-read messages.
type BurnCleaner interface {
	CleanupBurnMessages(ctx context.Context) (int, error)
}

// GoalSyncer re-syncs goals for every user with open goals.
type GoalSyncer interface {
	SyncAll(ctx context.Context) (int, error)
}

// CleanupJob wraps the burn message cleanup pass.
func CleanupJob(cleaner BurnCleaner, interval time.Duration) Job {
	return Job{Name: "burn_cleanup", Interval: interval, Run: cleaner.CleanupBurnMessages}
}

// GoalSyncJob wraps the goal sync pass.
func GoalSyncJob(syncer GoalSyncer, interval time.Duration) Job {
	return Job{Name: "goal_sync", Interval: interval, Run: syncer.SyncAll}
}

// Scheduler runs each job on its own ticker.
type Scheduler struct {
	jobs []Job
}

// New constructs a Scheduler. Jobs with a non-positive interval are dropped.
func New(jobs ...Job) *Scheduler {
	s := &Scheduler{}
	for _, j := range jobs {
		if j.Interval <= 0 || j.Run == nil {
			log.Warnf("scheduler: job %q disabled", j.Name)
			continue
		}
		s.jobs = append(s.jobs, j)
	}
	return s
}

// Run blocks until ctx is cancelled. Every job runs once immediately, then on its interval.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			runJob(ctx, job)
		}(job)
	}
	wg.Wait()
}

func runJob(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		RunOnce(ctx, job)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single pass and logs its outcome. Errors never stop the schedule.
func RunOnce(ctx context.Context, job Job) {
	began := time.Now()
	n, err := job.Run(ctx)
	recordPass(job.Name, n, err, time.Since(began))
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil):
		return
	case err != nil:
		log.Errorf("scheduler: %s failed after %d records: %s", job.Name, n, err)
	case n > 0:
		log.Infof("scheduler: %s touched %d records", job.Name, n)
	default:
		log.Debugf("scheduler: %s had nothing to do", job.Name)
	}
}
