package main

import (
	"github.com/rs/zerolog/log"

	"library-backend/internal/infrastructure/queue"
	"library-backend/pkg/container"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(c.Config.Redis, c.Config.Jobs)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatal().Err(err).Msg("failed to register scheduled jobs")
	}

	go func() {
		log.Info().Msg("scheduler starting")
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("scheduler failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Info().Msg("scheduler shutting down")
	s.Scheduler.Shutdown()
}
