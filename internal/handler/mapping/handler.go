package mapping

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carelink/carelink-api/internal/event"
	"github.com/carelink/carelink-api/internal/handler"
	"github.com/carelink/carelink-api/internal/middleware"
	"github.com/carelink/carelink-api/internal/model"
	"github.com/carelink/carelink-api/internal/service/mapping"
)

type Handler struct {
	service mapping.MappingService
	events  *event.Emitter
}

func NewHandler(service mapping.MappingService, events *event.Emitter) *Handler {
	return &Handler{service: service, events: events}
}

// RegisterRoutes wires the mapping endpoints. GET /:id takes a patient id
// (list that patient's doctors) while DELETE /:id takes a mapping id; the
// shared param name is a router constraint.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	mappings := r.Group("/mappings")
	{
		mappings.POST("", h.AssignDoctor)
		mappings.GET("", h.ListMappings)
		mappings.GET("/:id", h.ListPatientDoctors)
		mappings.DELETE("/:id", h.RemoveDoctor)
	}
}

func (h *Handler) AssignDoctor(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authorized"))
		return
	}

	var req model.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("please provide both patient and doctor IDs"))
		return
	}

	created, err := h.service.Assign(c.Request.Context(), &req, actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.events.Emit(c.Request.Context(), event.MappingCreated, created)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListMappings(c *gin.Context) {
	mappings, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(mappings))
}

func (h *Handler) ListPatientDoctors(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authorized"))
		return
	}

	mappings, err := h.service.ListForPatient(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(mappings))
}

func (h *Handler) RemoveDoctor(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authorized"))
		return
	}

	if err := h.service.Remove(c.Request.Context(), c.Param("id"), actor); err != nil {
		handler.RespondError(c, err)
		return
	}

	h.events.Emit(c.Request.Context(), event.MappingDeleted, gin.H{"id": c.Param("id")})
	c.JSON(http.StatusOK, handler.NewMessageResponse("doctor removed from patient"))
}
