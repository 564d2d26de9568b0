package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malikarslanasif131/hackathon-backend/internal/dashboard"
	"github.com/malikarslanasif131/hackathon-backend/pkg/metrics"
	"github.com/malikarslanasif131/hackathon-backend/pkg/middleware"
)

// DashboardHandler exposes the generic resource router: one CRUD surface for
// every registered resource type (participants, judges, mentors, volunteers,
// sponsors, feedback, teams).
type DashboardHandler struct {
	svc *dashboard.Service
}

func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/dashboard")
	g.POST("/:type", h.Create)
	g.GET("/:type", h.List)
	g.PUT("/:type", h.UpdateStatus)
	g.DELETE("/:type", h.Delete)
}

type updateRequest struct {
	Objects []dashboard.Object `json:"objects"`
	Status  int                `json:"status"`
}

// Create godoc: POST /api/dashboard/:type registers the caller (person
// types) or creates a feedback/team document from the request body.
func (h *DashboardHandler) Create(c *gin.Context) {
	typ := c.Param("type")
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respond(c, typ, "create", dashboard.Result{
			Status:  http.StatusBadRequest,
			Message: "Bad Request: invalid JSON body",
		})
		return
	}
	res := h.svc.Create(c.Request.Context(), typ, payload, middleware.BearerToken(c))
	respond(c, typ, "create", res)
}

// List godoc: GET /api/dashboard/:type returns every record of the type,
// newest first.
func (h *DashboardHandler) List(c *gin.Context) {
	typ := c.Param("type")
	res := h.svc.List(c.Request.Context(), typ, middleware.BearerToken(c))
	respond(c, typ, "list", res)
}

// UpdateStatus godoc: PUT /api/dashboard/:type applies one status code to
// every object in the body, atomically.
func (h *DashboardHandler) UpdateStatus(c *gin.Context) {
	typ := c.Param("type")
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, typ, "update", dashboard.Result{
			Status:  http.StatusBadRequest,
			Message: "Bad Request: invalid JSON body",
		})
		return
	}
	res := h.svc.UpdateStatus(c.Request.Context(), typ, req.Objects, req.Status, middleware.BearerToken(c))
	respond(c, typ, "update", res)
}

// Delete godoc: DELETE /api/dashboard/:type?remove=uid1,uid2 removes the
// listed records atomically.
func (h *DashboardHandler) Delete(c *gin.Context) {
	typ := c.Param("type")
	raw := c.Query("remove")
	var uids []string
	for _, uid := range strings.Split(raw, ",") {
		if uid = strings.TrimSpace(uid); uid != "" {
			uids = append(uids, uid)
		}
	}
	if len(uids) == 0 {
		respond(c, typ, "delete", dashboard.Result{
			Status:  http.StatusBadRequest,
			Message: "Bad Request: remove query parameter is required",
		})
		return
	}
	res := h.svc.Delete(c.Request.Context(), typ, uids, middleware.BearerToken(c))
	respond(c, typ, "delete", res)
}

func respond(c *gin.Context, typ, verb string, res dashboard.Result) {
	metrics.DashboardRequests.WithLabelValues(typ, verb, fmt.Sprintf("%d", res.Status)).Inc()
	body := gin.H{"message": res.Message}
	if res.Items != nil {
		body["items"] = res.Items
	}
	c.JSON(res.Status, body)
}
