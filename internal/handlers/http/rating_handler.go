package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/services"
)

type RatingHandler struct {
	ratings *services.RatingService
	logger  ports.Logger
}

func NewRatingHandler(ratings *services.RatingService, logger ports.Logger) *RatingHandler {
	return &RatingHandler{ratings: ratings, logger: logger}
}

// Submit godoc
// @Summary   Rate the other party of a request
// @Description Creates or revises the caller's rating for the request, then completes its assignment.
// @Tags      ratings
// @Accept    json
// @Produce   json
// @Param     rating  body      dto.SubmitRatingRequest  true  "rating"
// @Success   201     {object}  dto.SubmitRatingResponse
// @Success   200     {object}  dto.SubmitRatingResponse
// @Failure   400     {object}  dto.ErrorResponse
// @Failure   403     {object}  dto.ErrorResponse
// @Failure   404     {object}  dto.ErrorResponse
// @Failure   409     {object}  dto.ErrorResponse
// @Router    /api/ratings [post]
func (h *RatingHandler) Submit(c *gin.Context) {
	var req dto.SubmitRatingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.ratings.Submit(c.Request.Context(), caller(c), req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status, key := http.StatusCreated, "message.rating_submitted"
	if result.Updated {
		status, key = http.StatusOK, "message.rating_updated"
	}
	c.JSON(status, dto.ToSubmitRatingResponse(dto.T(c, key), result))
}

// MyRatings godoc
// @Summary   The caller's reputation
// @Tags      ratings
// @Produce   json
// @Success   200  {object}  services.MyRatings
// @Router    /api/my-ratings [get]
func (h *RatingHandler) MyRatings(c *gin.Context) {
	summary, err := h.ratings.MyRatings(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
