package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/services"
)

// multipartOverhead leaves room for form fields next to the image.
const multipartOverhead = 1 << 20

// ProfileHandler serves the caller's own profile and portfolio.
type ProfileHandler struct {
	profiles *services.ProfileService
	render   func(string) string
	logger   ports.Logger
}

func NewProfileHandler(profiles *services.ProfileService, render func(string) string, logger ports.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, render: render, logger: logger}
}

// Get godoc
// @Summary   The caller's profile
// @Tags      profile
// @Produce   json
// @Success   200  {object}  dto.ProfileResponse
// @Router    /api/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(profile, h.render))
}

// Update godoc
// @Summary   Update name, WhatsApp number or role
// @Tags      profile
// @Accept    json
// @Produce   json
// @Param     profile  body      dto.UpdateProfileRequest  true  "changes"
// @Success   200      {object}  object{message=string,user=dto.UserResponse}
// @Failure   400      {object}  dto.ErrorResponse
// @Router    /api/profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profiles.Update(c.Request.Context(), caller(c), req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": dto.T(c, "message.profile_updated"),
		"user":    dto.ToUserResponse(user),
	})
}

// UpdateWriterStatus godoc
// @Summary   Set writer availability
// @Tags      profile
// @Accept    json
// @Produce   json
// @Param     status  body      dto.WriterStatusRequest  true  "availability"
// @Success   200     {object}  object{message=string,user=dto.UserResponse}
// @Failure   403     {object}  dto.ErrorResponse
// @Router    /api/profile/writer [put]
func (h *ProfileHandler) UpdateWriterStatus(c *gin.Context) {
	var req dto.WriterStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profiles.UpdateWriterStatus(c.Request.Context(), caller(c), req.WriterStatus)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": dto.T(c, "message.writer_status_updated"),
		"user":    dto.ToUserResponse(user),
	})
}

// UpsertPortfolio godoc
// @Summary   Save the writer portfolio
// @Description JSON with sample_work_image as a URL, or multipart/form-data with an "image" file (image/*, at most 5 MiB).
// @Tags      profile
// @Accept    json,mpfd
// @Produce   json
// @Param     portfolio  body      dto.PortfolioRequest  false  "portfolio"
// @Param     image      formData  file                  false  "sample work image"
// @Success   200        {object}  object{message=string,portfolio=dto.PortfolioResponse}
// @Failure   400        {object}  dto.ErrorResponse
// @Failure   403        {object}  dto.ErrorResponse
// @Router    /api/profile/portfolio [post]
func (h *ProfileHandler) UpsertPortfolio(c *gin.Context) {
	var (
		req dto.PortfolioRequest
		in  services.PortfolioInput
	)

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+multipartOverhead)
		if err := c.ShouldBind(&req); err != nil {
			if isTooLarge(err) {
				respondError(c, h.logger, domainerrors.ErrInvalidImageUpload.WithMessage("image exceeds 5 MiB"))
				return
			}
			dto.Abort(c, dto.BindingErrorResponse(c, err))
			return
		}

		upload, closeFn, err := imageUpload(c)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer closeFn()
		in.Image = upload
	} else if !bindJSON(c, &req) {
		return
	}

	in.Description = req.Description
	in.SampleWorkImageURL = req.SampleWorkImage

	portfolio, err := h.profiles.UpsertPortfolio(c.Request.Context(), caller(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   dto.T(c, "message.portfolio_updated"),
		"portfolio": dto.ToPortfolioResponse(portfolio, h.render),
	})
}

// imageUpload opens the "image" form file, if any. The content type is sniffed
// from the first bytes rather than trusted from the client.
func imageUpload(c *gin.Context) (*services.ImageUpload, func(), error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		if isTooLarge(err) {
			return nil, nil, domainerrors.ErrInvalidImageUpload.WithMessage("image exceeds 5 MiB")
		}
		return nil, nil, domainerrors.ErrInvalidImageUpload.Wrap(err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, domainerrors.ErrInvalidImageUpload.Wrap(err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, nil, domainerrors.ErrInvalidImageUpload.Wrap(err)
	}
	head = head[:n]

	return &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(head),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	}, func() { _ = file.Close() }, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
