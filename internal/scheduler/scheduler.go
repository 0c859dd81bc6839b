// Package scheduler provides cron-based scheduling for CarePath's periodic
// evaluation passes (nudge generation and escalation checks).
package scheduler

import (
	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner. Jobs are identified so periodic passes can
// be replaced when configuration changes.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler using the standard
// 5-field expression format, with panic recovery around jobs.
func NewScheduler() *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression and returns
// its id. It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) (int, error) {
	id, err := s.cron.AddFunc(expr, task)
	return int(id), err
}

// RemoveJob cancels a previously scheduled job.
func (s *Scheduler) RemoveJob(id int) {
	s.cron.Remove(cron.EntryID(id))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
