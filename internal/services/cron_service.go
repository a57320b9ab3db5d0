package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultOTPCleanupSchedule runs the expired-code sweep every 10 minutes
const DefaultOTPCleanupSchedule = "0 */10 * * * *"

// ExpiryCleaner removes rows past their expiry
type ExpiryCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type cleanupJob struct {
	name    string
	cleaner ExpiryCleaner
}

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	jobs     []cleanupJob
	schedule string
	timeout  time.Duration
	logger   logrus.FieldLogger
}

// NewCronService creates a new CronService whose first job sweeps expired reset codes
func NewCronService(otpCleaner ExpiryCleaner, schedule string, logger logrus.FieldLogger) *CronService {
	if schedule == "" {
		schedule = DefaultOTPCleanupSchedule
	}

	// Cron format: second minute hour day month weekday
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:     c,
		jobs:     []cleanupJob{{name: "expired OTP", cleaner: otpCleaner}},
		schedule: schedule,
		timeout:  30 * time.Second,
		logger:   logger.WithField("component", "cron"),
	}
}

// AddCleanupJob registers another sweep on the same schedule. Call before Start.
func (s *CronService) AddCleanupJob(name string, cleaner ExpiryCleaner) {
	s.jobs = append(s.jobs, cleanupJob{name: name, cleaner: cleaner})
}

// Start schedules every job and starts the scheduler
func (s *CronService) Start() error {
	for _, job := range s.jobs {
		job := job
		if _, err := s.cron.AddFunc(s.schedule, func() { s.runCleanup(job) }); err != nil {
			return fmt.Errorf("failed to schedule %s cleanup job: %w", job.name, err)
		}
		s.logger.WithField("schedule", s.schedule).Infof("Scheduled: %s cleanup", job.name)
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) runCleanup(job cleanupJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	removed, err := job.cleaner.CleanupExpired(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("job", job.name).Error("Cleanup job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"job":      job.name,
		"removed":  removed,
		"duration": time.Since(start).String(),
	}).Info("Cleanup job finished")
}

// RunCleanupNow runs every cleanup job immediately
func (s *CronService) RunCleanupNow() {
	for _, job := range s.jobs {
		s.runCleanup(job)
	}
}
// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
