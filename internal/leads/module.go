package leads

import (
	"leadbridge/internal/assign"
	"leadbridge/internal/crm"
	"leadbridge/internal/events"
	apphttp "leadbridge/internal/http"
	"leadbridge/internal/leads/handler"
	"leadbridge/internal/leads/service"
	"leadbridge/platform/config"
	"leadbridge/platform/logger"
	"leadbridge/platform/validator"
)

// ModuleConfig combines the config interfaces the leads module needs.
type ModuleConfig interface {
	config.CRMConfig
	config.AssignConfig
	config.FollowerRelayConfig
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(cfg ModuleConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	crmClient := crm.New(cfg, log)
	oracle := assign.NewOracleClient(cfg, log)
	resolver := assign.NewResolver(crmClient, oracle, cfg.IsAutoAssignEnabled(), log)
	relay := crm.NewFollowerRelay(cfg, log)

	svc := service.New(crmClient, resolver, relay, eventBus, log)

	return &Module{
		handler: handler.NewHandler(svc, val, eventBus),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the leads service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.V1.Group("/leads")
	leadsGroup.POST("", m.handler.HandleIngest)
	leadsGroup.POST("/lookup", m.handler.HandleLookupContact)
	leadsGroup.PUT("/:leadId", m.handler.HandleUpdate)
	leadsGroup.DELETE("/:leadId", m.handler.HandleDelete)
	leadsGroup.PATCH("/:leadId/tags", m.handler.HandleAddTags)
	leadsGroup.POST("/:leadId/notes", m.handler.HandleAddNote)
	leadsGroup.POST("/:leadId/tasks", m.handler.HandleAddTask)
	leadsGroup.POST("/:leadId/followers", m.handler.HandleAddFollowers)

	ctx.V1.POST("/users/lookup", m.handler.HandleLookupUser)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
