// Package sos provides emergency alert intake and the responder fan-out
// trigger.
package sos

import (
	"github.com/y0shih/AlertMe-Nest/internal/events"
	apphttp "github.com/y0shih/AlertMe-Nest/internal/http"
	"github.com/y0shih/AlertMe-Nest/internal/sos/handler"
	"github.com/y0shih/AlertMe-Nest/internal/sos/repository"
	"github.com/y0shih/AlertMe-Nest/internal/sos/service"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
	"github.com/y0shih/AlertMe-Nest/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, notifier service.Notifier, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), notifier, eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "sos"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	var limit gin.HandlerFunc
	if ctx.SOSRateLimiter != nil {
		limit = ctx.SOSRateLimiter.RateLimit()
	}
	m.handler.RegisterCitizenRoutes(ctx.Protected, limit)
	m.handler.RegisterStaffRoutes(ctx.Staff)
}

var _ apphttp.Module = (*Module)(nil)
