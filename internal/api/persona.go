package api

import (
	"net/http"
	"strconv"
	"time"

	"multiverse-identity/backend/internal/models"
	"multiverse-identity/backend/internal/service"
	apperrors "multiverse-identity/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

type PersonaHandler struct {
	service     *service.PersonaService
	revealDelay time.Duration
}

func NewPersonaHandler(service *service.PersonaService, revealDelay time.Duration) *PersonaHandler {
	return &PersonaHandler{service: service, revealDelay: revealDelay}
}

// RegisterRoutes mounts the persona endpoints on an /api/v1 group
func (h *PersonaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/universes", h.ListUniverses)

	personas := rg.Group("/personas")
	personas.POST("", h.GenerateAll)
	personas.GET("/stream", h.Stream)
	personas.POST("/:theme", h.GenerateOne)

	runs := rg.Group("/runs")
	runs.GET("", h.ListRuns)
	runs.GET("/:id", h.GetRun)
}

func (h *PersonaHandler) ListUniverses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"universes": h.service.Catalog()})
}

func (h *PersonaHandler) GenerateAll(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}

	run, err := h.service.GenerateAll(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

func (h *PersonaHandler) GenerateOne(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}

	persona, err := h.service.GenerateOne(c.Request.Context(), req, c.Param("theme"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": persona})
}

func (h *PersonaHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *PersonaHandler) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.Error(apperrors.NewBadRequestError(apperrors.CodeInvalidRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Stream reveals a run as Server-Sent Events: one persona event per
// universe, delay apart, then a done event carrying the run id.
func (h *PersonaHandler) Stream(c *gin.Context) {
	req := models.GenerateRequest{Name: c.Query("name"), Traits: c.Query("traits")}

	run, personas, err := h.service.Reveal(c.Request.Context(), req, h.revealDelay)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	count := 0
	for p := range personas {
		c.SSEvent("persona", gin.H{"run_id": run.ID, "persona": p})
		c.Writer.Flush()
		count++
	}
	if c.Request.Context().Err() != nil {
		return
	}
	c.SSEvent("done", gin.H{"run_id": run.ID, "count": count})
	c.Writer.Flush()
}

func bindRequest(c *gin.Context) (models.GenerateRequest, bool) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeInvalidRequest, "Request body must be a JSON object with a name").WithCause(err))
		return req, false
	}
	return req, true
}
