package app

import (
	"github.com/quhixcal/quhixcal/internal/config"
	"github.com/quhixcal/quhixcal/internal/utils"
	"github.com/quhixcal/quhixcal/pkg/event"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventRepo    event.EventRepository
	EventService event.EventService
	EventHandler *event.EventHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(repo event.EventRepository, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.EventRepo = repo
	deps.EventService = event.NewEventService(deps.EventRepo, deps.Clock, cfg.Server.MaxOccurrences)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	return deps
}
