package main

import (
	"github.com/hibiken/asynq"

	circulationJob "library-backend/internal/domains/circulation/job"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
)

// HandlerRegistry holds every job handler the worker serves.
type HandlerRegistry struct {
	overdueNotice *circulationJob.OverdueNoticeHandler
}

func newHandlerRegistry(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		overdueNotice: circulationJob.NewOverdueNoticeHandler(c.CirculationRepo, c.Email, c.Clock),
	}
}

// RegisterHandlers wires task types to their handlers.
func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(shared.TypeOverdueNotice, r.overdueNotice)
}
