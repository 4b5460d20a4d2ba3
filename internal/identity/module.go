// Package identity provides the identity bounded context module: local user
// records, roles, and the mapping from identity-provider subjects to them.
package identity

import (
	apphttp "github.com/y0shih/AlertMe-Nest/internal/http"
	"github.com/y0shih/AlertMe-Nest/internal/identity/handler"
	"github.com/y0shih/AlertMe-Nest/internal/identity/repository"
	"github.com/y0shih/AlertMe-Nest/internal/identity/service"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
	"github.com/y0shih/AlertMe-Nest/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, phoneRegion string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, phoneRegion, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

func (m *Module) Name() string {
	return "identity"
}

// Service is shared with AuthRequired and with the directory adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterSelfRoutes(ctx.Protected)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
