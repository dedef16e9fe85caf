package prefs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadboard_backend/internal/leads/transport"
	"leadboard_backend/platform/httpkit"
	"leadboard_backend/platform/validator"
)

// Handler exposes preference persistence over HTTP.
type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:userId", h.Get)
	rg.PUT("/:userId", h.Put)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, p)
}

func (h *Handler) Put(c *gin.Context) {
	var req transport.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	p := Preferences{
		Filters:   req.Filters,
		ActiveTab: Tab(req.ActiveTab),
		ViewMode:  req.ViewMode,
	}
	if p.ActiveTab == "" {
		p.ActiveTab = TabActive
	}
	if p.ViewMode == "" {
		p.ViewMode = Defaults().ViewMode
	}

	if err := h.svc.Set(c.Request.Context(), c.Param("userId"), p); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, p)
}
