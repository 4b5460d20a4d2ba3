package handler

import (
	"net/http"

	"github.com/y0shih/AlertMe-Nest/internal/reports/service"
	"github.com/y0shih/AlertMe-Nest/internal/reports/transport"
	"github.com/y0shih/AlertMe-Nest/platform/httpkit"
	"github.com/y0shih/AlertMe-Nest/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidReportID  = "invalid report id"
	msgInvalidTaskID    = "invalid task id"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterCitizenRoutes mounts endpoints open to any authenticated user.
func (h *Handler) RegisterCitizenRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports", h.CreateReport)
	rg.GET("/reports", h.ListReports)
	rg.GET("/reports/:id", h.GetReport)
	rg.POST("/reports/attachments/presign", h.PresignAttachment)
}

// RegisterStaffRoutes mounts the field-work endpoints.
func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/nearby", h.NearbyReports)
	rg.GET("/tasks/assigned", h.GetAssignedTasks)
	rg.PUT("/tasks/:id/status", h.UpdateTaskStatus)
	rg.PUT("/reports/:id/notes", h.AddNotes)
	rg.PUT("/reports/:id/resolve", h.ResolveReport)
	rg.POST("/reports/:id/responses", h.AddResponse)
}

// RegisterAdminRoutes mounts dispatch and moderation endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports/:id/assign", h.AssignStaff)
	rg.PUT("/reports/:id/status", h.UpdateReportStatus)
	rg.DELETE("/reports/:id", h.DeleteReport)
}

func actorFrom(id httpkit.Identity) service.Actor {
	return service.Actor{ID: id.UserID(), Roles: id.Roles()}
}

func (h *Handler) CreateReport(c *gin.Context) {
	var req transport.CreateReportRequest
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

	resp, err := h.svc.CreateReport(c.Request.Context(), actorFrom(identity), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

func (h *Handler) ListReports(c *gin.Context) {
	var req transport.ListReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
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

	resp, err := h.svc.ListReports(c.Request.Context(), actorFrom(identity), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) GetReport(c *gin.Context) {
	id, ok := parseID(c, msgInvalidReportID)
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.GetReport(c.Request.Context(), actorFrom(identity), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) PresignAttachment(c *gin.Context) {
	var req transport.PresignAttachmentRequest
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

	resp, err := h.svc.PresignAttachment(c.Request.Context(), actorFrom(identity), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) NearbyReports(c *gin.Context) {
	var req transport.NearbyReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.NearbyReports(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) GetAssignedTasks(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.GetAssignedTasks(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	taskID, ok := parseID(c, msgInvalidTaskID)
	if !ok {
		return
	}

	var req transport.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateTaskStatus(c.Request.Context(), taskID, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) AddNotes(c *gin.Context) {
	reportID, ok := parseID(c, msgInvalidReportID)
	if !ok {
		return
	}

	var req transport.AddNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidTaskID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.AddNotes(c.Request.Context(), reportID, taskID, identity.UserID(), req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) ResolveReport(c *gin.Context) {
	reportID, ok := parseID(c, msgInvalidReportID)
	if !ok {
		return
	}

	var req transport.ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidTaskID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.ResolveReport(c.Request.Context(), reportID, taskID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) AddResponse(c *gin.Context) {
	reportID, ok := parseID(c, msgInvalidReportID)
	if !ok {
		return
	}

	var req transport.CreateResponseRequest
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

	resp, err := h.svc.AddResponse(c.Request.Context(), actorFrom(identity), reportID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

func (h *Handler) AssignStaff(c *gin.Context) {
	reportID, ok := parseID(c, msgInvalidReportID)
	if !ok {
		return
	}

	var req transport.AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	assigneeID, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.svc.AssignStaff(c.Request.Context(), reportID, assigneeID, identity.UserID(), req.Details)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

func (h *Handler) UpdateReportStatus(c *gin.Context) {
	reportID, ok := parseID(c, msgInvalidReportID)
	if !ok {
		return
	}

	var req transport.UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateReportStatus(c.Request.Context(), reportID, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) DeleteReport(c *gin.Context) {
	reportID, ok := parseID(c, msgInvalidReportID)
	if !ok {
		return
	}

	if err := h.svc.DeleteReport(c.Request.Context(), reportID); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msg, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
