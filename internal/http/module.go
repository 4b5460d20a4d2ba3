// Package http provides HTTP server infrastructure including the Module
// interface every domain module implements for route registration.
package http

import (
	"github.com/y0shih/AlertMe-Nest/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that registers its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides the shared route groups and middleware.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the public /api/v1 group.
	V1 *gin.RouterGroup
	// Protected requires a valid identity token.
	Protected *gin.RouterGroup
	// Staff is Protected restricted to staff, admin and superadmin.
	Staff *gin.RouterGroup
	// Admin is /api/v1/admin restricted to admin and superadmin.
	Admin *gin.RouterGroup
	// SOSRateLimiter throttles emergency submissions per client IP.
	SOSRateLimiter *httpkit.IPRateLimiter
}
