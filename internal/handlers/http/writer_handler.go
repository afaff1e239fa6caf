package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/services"
)

type WriterHandler struct {
	writers *services.WriterService
	logger  ports.Logger
}

func NewWriterHandler(writers *services.WriterService, logger ports.Logger) *WriterHandler {
	return &WriterHandler{writers: writers, logger: logger}
}

// List godoc
// @Summary   Writers by reputation
// @Tags      writers
// @Produce   json
// @Param     status  query    string  false  "active, busy or inactive"
// @Success   200     {array}  readmodel.Writer
// @Failure   400     {object} dto.ErrorResponse
// @Router    /api/writers [get]
func (h *WriterHandler) List(c *gin.Context) {
	writers, err := h.writers.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, writers)
}

// Get godoc
// @Summary   One writer with portfolio and recent ratings
// @Tags      writers
// @Produce   json
// @Param     id   path      string  true  "writer id"
// @Success   200  {object}  readmodel.Writer
// @Failure   404  {object}  dto.ErrorResponse
// @Router    /api/writers/{id} [get]
func (h *WriterHandler) Get(c *gin.Context) {
	writer, err := h.writers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, writer)
}
