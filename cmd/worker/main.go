package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	c, err := container.NewContainer(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}
	defer c.Cleanup()

	handlers := newHandlerRegistry(c)
	srv := setupAsynqServer(c, handlers)
	scheduler := setupScheduler(c)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("worker stopped")
}
