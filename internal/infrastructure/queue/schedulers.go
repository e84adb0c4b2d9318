package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	"library-backend/internal/domains/circulation/job"
	"library-backend/internal/shared"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisCfg config.RedisConfig, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Host,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs registers every recurring job with its cron spec.
func (s *Scheduler) RegisterJobs() error {
	return s.registerOverdueNoticeJob()
}

// The overdue sweep runs daily, off-peak. Loans that stay overdue are
// mailed at most once; the stamp on the loan deduplicates across runs.
func (s *Scheduler) registerOverdueNoticeJob() error {
	payload, err := json.Marshal(job.OverdueNoticePayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeOverdueNotice, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.OverdueNotifyCron,
		task,
		asynq.Queue(shared.QueueCirculation),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to register overdue notice job: %w", err)
	}

	log.Info().
		Str("cron", s.jobConfig.OverdueNotifyCron).
		Msg("registered overdue notice job")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
