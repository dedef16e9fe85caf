// Package leads provides the lead pipeline bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"fmt"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/calls"
	"leadboard_backend/internal/events"
	apphttp "leadboard_backend/internal/http"
	"leadboard_backend/internal/leads/coordinator"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/handler"
	"leadboard_backend/internal/leads/remote"
	"leadboard_backend/internal/leads/store"
	"leadboard_backend/internal/leads/view"
	"leadboard_backend/platform/config"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	store   *store.Store
	coord   *coordinator.Coordinator
	views   *view.Manager
	calls   *calls.Service
	stages  []domain.PipelineStage
}

// NewModule creates and initializes the leads module with all its dependencies.
// attachments may be nil when object storage is not configured.
func NewModule(eventBus events.Bus, attachments storage.Service, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	stages, err := domain.LoadStages(cfg.StagesFile)
	if err != nil {
		return nil, fmt.Errorf("load pipeline stages: %w", err)
	}

	remoteClient := remote.NewClient(remote.Config{
		BaseURL: cfg.RemoteAPIBaseURL,
		Token:   cfg.RemoteAPIToken,
		RPS:     cfg.RemoteAPIRPS,
		Burst:   cfg.RemoteAPIBurst,
		Timeout: cfg.RemoteTimeout,
	}, log)

	st := store.New(remoteClient, eventBus, log)
	views := view.NewManager(st, eventBus)
	coord := coordinator.New(remoteClient, st, eventBus, views, attachments, log)
	callSvc := calls.NewService(st, eventBus, log)

	h := handler.New(st, views, coord, callSvc, attachments, stages, val)

	return &Module{
		handler: h,
		store:   st,
		coord:   coord,
		views:   views,
		calls:   callSvc,
		stages:  stages,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Store returns the canonical lead store for external use.
func (m *Module) Store() *store.Store {
	return m.store
}

// Coordinator returns the mutation coordinator for external use.
func (m *Module) Coordinator() *coordinator.Coordinator {
	return m.coord
}

// Calls returns the call dialog service for provider registration.
func (m *Module) Calls() *calls.Service {
	return m.calls
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
