package prefs

import (
	"github.com/redis/go-redis/v9"

	apphttp "leadboard_backend/internal/http"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/validator"
)

// Module is the preferences bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates the preferences module over an existing Redis client.
func NewModule(rdb *redis.Client, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(rdb, log)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "preferences"
}

// Service returns the preference service for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts preference routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/preferences"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
