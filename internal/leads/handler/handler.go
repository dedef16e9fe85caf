// Package handler exposes the leads API over HTTP.
package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/calls"
	"leadboard_backend/internal/leads/coordinator"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/funnel"
	"leadboard_backend/internal/leads/store"
	"leadboard_backend/internal/leads/transport"
	"leadboard_backend/internal/leads/view"
	"leadboard_backend/platform/httpkit"
	"leadboard_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	store       *store.Store
	views       *view.Manager
	coord       *coordinator.Coordinator
	calls       *calls.Service
	attachments storage.Service // nil when object storage is not configured
	stages      []domain.PipelineStage
	val         *validator.Validator
}

func New(st *store.Store, views *view.Manager, coord *coordinator.Coordinator, callSvc *calls.Service, attachments storage.Service, stages []domain.PipelineStage, val *validator.Validator) *Handler {
	return &Handler{
		store:       st,
		views:       views,
		coord:       coord,
		calls:       callSvc,
		attachments: attachments,
		stages:      stages,
		val:         val,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/funnel", h.Funnel)
	rg.POST("/refresh", h.Refresh)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/archive", h.Archive)
	rg.POST("/:id/unarchive", h.Unarchive)
	rg.PUT("/:id/assign", h.Assign)
	rg.POST("/:id/call", h.Call)
	rg.GET("/:id/busy", h.Busy)
	rg.GET("/:id/attachments/url", h.AttachmentURL)
}

// List projects one of the three views. Query parameters select the view
// mode, tab, filter criteria and page.
func (h *Handler) List(c *gin.Context) {
	mode := view.Mode(c.DefaultQuery("view", string(view.ModeTable)))
	v := h.views.View(mode)
	if v == nil {
		httpkit.Error(c, http.StatusBadRequest, "unknown view mode", nil)
		return
	}

	criteria, err := transport.ParseCriteria(c.Request.URL.Query())
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	httpkit.OK(c, v.Project(view.Query{
		Criteria:   criteria,
		ActiveOnly: c.DefaultQuery("tab", "active") != "archived",
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 25),
	}))
}

// Funnel reports per-stage lead counts and conversion percentages over the
// active collection.
func (h *Handler) Funnel(c *gin.Context) {
	metrics := funnel.ComputeStageMetrics(h.store.Snapshot(), h.stages)
	httpkit.OK(c, gin.H{"stages": metrics})
}

// Refresh forces a full pull from the remote collection service.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"leads": h.store.Len()})
}

func (h *Handler) GetByID(c *gin.Context) {
	lead, ok := h.store.Get(c.Param("id"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}

	httpkit.OK(c, view.Row{
		Lead:    lead,
		Status:  lead.Status(),
		Quality: domain.Classify(lead),
	})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.coord.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Archive(c *gin.Context) {
	if err := h.coord.Archive(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"archived": true})
}

func (h *Handler) Unarchive(c *gin.Context) {
	if err := h.coord.Unarchive(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"archived": false})
}

func (h *Handler) Assign(c *gin.Context) {
	var req transport.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	attachments, err := transport.DecodeAttachments(req.Attachments)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.coord.Reassign(c.Request.Context(), c.Param("id"), req.Fields(), attachments)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ReassignResponse{
		Lead:          result.Lead,
		FailedUploads: result.FailedUploads,
	})
}

// Busy reports whether a guarded mutation is currently in flight for a lead,
// so clients can disable the affected row's actions.
func (h *Handler) Busy(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Get(id); !ok {
		httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}
	httpkit.OK(c, gin.H{"busy": h.coord.Busy(id)})
}

// AttachmentURL hands out a short-lived presigned download URL for one of a
// lead's stored attachments, named by the file query parameter.
func (h *Handler) AttachmentURL(c *gin.Context) {
	if h.attachments == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "attachment storage is not configured", nil)
		return
	}

	id := c.Param("id")
	if _, ok := h.store.Get(id); !ok {
		httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}

	file := c.Query("file")
	if file == "" || strings.ContainsAny(file, "/\\") || strings.Contains(file, "..") {
		httpkit.Error(c, http.StatusBadRequest, "invalid file name", nil)
		return
	}

	fileKey := fmt.Sprintf("leads/%s/%s", domain.NormalizeLeadID(id), file)
	signed, err := h.attachments.GenerateDownloadURL(c.Request.Context(), fileKey)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, signed)
}

// Call asks the mounted call dialog to open for a lead.
func (h *Handler) Call(c *gin.Context) {
	if err := h.calls.Request(c.Request.Context(), c.Param("id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
