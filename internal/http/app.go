package http

import (
	"context"

	"github.com/y0shih/AlertMe-Nest/internal/events"
	"github.com/y0shih/AlertMe-Nest/platform/config"
	"github.com/y0shih/AlertMe-Nest/platform/httpkit"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is used by the readiness endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialised dependencies handed from main to the router.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// Subjects resolves identity-provider subjects for AuthRequired.
	Subjects httpkit.SubjectResolver
	Modules  []Module
}
