// Package scheduler runs the periodic maintenance jobs: sweeping expired
// opponent posts and completing bookings whose slot has passed.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/metrics"
)

var (
	ErrEmptyJobName  = errors.New("job name is required")
	ErrEmptyCronExpr = errors.New("cron expression is required")
)

const jobTimeout = 2 * time.Minute

// Task is one unit of periodic work.  The returned count is logged.
type Task func(ctx context.Context) (int64, error)

// Service wraps a gocron scheduler.
type Service struct {
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopErr   error
}

// New builds a scheduler whose jobs evaluate cron expressions in loc.
func New(loc *time.Location) (*Service, error) {
	if loc == nil {
		loc = time.UTC
	}
	sched, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					metrics.IncJobRun(jobName, "panic")
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("scheduler job panicked")
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Service{scheduler: sched}, nil
}

func (s *Service) Start() {
	log.Info().Int("jobs", len(s.scheduler.Jobs())).Msg("scheduler starting")
	s.scheduler.Start()
}

// Stop shuts down the scheduler and waits for running jobs.  Safe to call
// more than once.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		log.Info().Msg("scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob registers task under a five-field cron expression.
func (s *Service) AddJob(name, cronExpr string, task Task) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() { runTask(name, task) }),
		gocron.WithName(name),
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("failed to register scheduler job")
		return nil, err
	}
	jobLogger.Info().Msg("scheduler job registered")
	return job, nil
}

func runTask(name string, task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	jobLogger := log.With().Str("job_name", name).Logger()
	ctx = jobLogger.WithContext(ctx)

	start := time.Now()
	n, err := task(ctx)
	if err != nil {
		metrics.IncJobRun(name, "error")
		jobLogger.Error().Err(err).Dur("took", time.Since(start)).Msg("scheduler job failed")
		return
	}
	metrics.IncJobRun(name, "ok")
	ev := jobLogger.Debug()
	if n > 0 {
		ev = jobLogger.Info()
	}
	ev.Int64("affected", n).Dur("took", time.Since(start)).Msg("scheduler job completed")
}
