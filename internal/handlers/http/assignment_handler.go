package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/services"
)

type AssignmentHandler struct {
	assignments *services.AssignmentService
	logger      ports.Logger
}

func NewAssignmentHandler(assignments *services.AssignmentService, logger ports.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, logger: logger}
}

// Complete godoc
// @Summary   Mark an assignment completed
// @Tags      assignments
// @Produce   json
// @Param     id   path      string  true  "assignment id"
// @Success   200  {object}  object{message=string,assignment=dto.AssignmentResponse}
// @Failure   403  {object}  dto.ErrorResponse
// @Failure   404  {object}  dto.ErrorResponse
// @Router    /api/assignments/{id}/complete [put]
func (h *AssignmentHandler) Complete(c *gin.Context) {
	assignment, err := h.assignments.Complete(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    dto.T(c, "message.assignment_completed"),
		"assignment": dto.ToAssignmentResponse(assignment),
	})
}

// MyAssignments godoc
// @Summary   The caller's requests or accepted work
// @Description Clients and students see their requests; writers see what they accepted.
// @Tags      assignments
// @Produce   json
// @Success   200  {array}  readmodel.MyAssignment
// @Router    /api/my-assignments [get]
func (h *AssignmentHandler) MyAssignments(c *gin.Context) {
	items, err := h.assignments.MyAssignments(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
