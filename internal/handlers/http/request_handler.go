package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/services"
)

// RequestHandler serves the assignment request board.
type RequestHandler struct {
	requests *services.RequestService
	logger   ports.Logger
}

func NewRequestHandler(requests *services.RequestService, logger ports.Logger) *RequestHandler {
	return &RequestHandler{requests: requests, logger: logger}
}

// Create godoc
// @Summary   Post an assignment request
// @Tags      requests
// @Accept    json
// @Produce   json
// @Param     request  body      dto.CreateAssignmentRequestRequest  true  "request"
// @Success   201      {object}  dto.AssignmentRequestResponse
// @Failure   400      {object}  dto.ErrorResponse
// @Failure   403      {object}  dto.ErrorResponse
// @Router    /api/assignment-requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requests.Create(c.Request.Context(), caller(c), req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentRequestResponse(request))
}

// ListOpen godoc
// @Summary   Open assignment requests
// @Tags      requests
// @Produce   json
// @Success   200  {array}  readmodel.OpenRequest
// @Router    /api/assignment-requests [get]
func (h *RequestHandler) ListOpen(c *gin.Context) {
	requests, err := h.requests.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Accept godoc
// @Summary   Accept an open request
// @Tags      requests
// @Produce   json
// @Param     id   path      string  true  "request id"
// @Success   200  {object}  dto.AcceptResponse
// @Failure   403  {object}  dto.ErrorResponse
// @Failure   404  {object}  dto.ErrorResponse
// @Failure   409  {object}  dto.ErrorResponse
// @Router    /api/assignment-requests/{id}/accept [post]
func (h *RequestHandler) Accept(c *gin.Context) {
	result, err := h.requests.Accept(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAcceptResponse(dto.T(c, "message.request_accepted"), result))
}
