// Package reports provides the civic report bounded context: intake,
// listing, staff assignment and the report/task lifecycle.
package reports

import (
	"github.com/y0shih/AlertMe-Nest/internal/adapters/storage"
	"github.com/y0shih/AlertMe-Nest/internal/events"
	apphttp "github.com/y0shih/AlertMe-Nest/internal/http"
	"github.com/y0shih/AlertMe-Nest/internal/reports/handler"
	"github.com/y0shih/AlertMe-Nest/internal/reports/repository"
	"github.com/y0shih/AlertMe-Nest/internal/reports/service"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
	"github.com/y0shih/AlertMe-Nest/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the reports module. storageSvc may be nil, in which case
// attachment uploads are disabled.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, storageSvc storage.StorageService, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, storageSvc, bucket, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

func (m *Module) Name() string {
	return "reports"
}

// Service is exposed so main can attach the user directory.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterCitizenRoutes(ctx.Protected)
	m.handler.RegisterStaffRoutes(ctx.Staff)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
