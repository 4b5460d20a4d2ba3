package handler

import (
	"net/http"

	"github.com/y0shih/AlertMe-Nest/internal/sos/service"
	"github.com/y0shih/AlertMe-Nest/internal/sos/transport"
	"github.com/y0shih/AlertMe-Nest/platform/httpkit"
	"github.com/y0shih/AlertMe-Nest/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterCitizenRoutes mounts SOS intake. limit may be nil.
func (h *Handler) RegisterCitizenRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	if limit != nil {
		rg.POST("/sos", limit, h.CreateSos)
		return
	}
	rg.POST("/sos", h.CreateSos)
}

func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.GET("/sos", h.ListSos)
}

func (h *Handler) CreateSos(c *gin.Context) {
	var req transport.CreateSosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.CreateSosReport(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

func (h *Handler) ListSos(c *gin.Context) {
	var req transport.ListSosRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
