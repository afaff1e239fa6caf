package dto

import (
	"time"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/services"
)

// UpdateProfileRequest is the body of PUT /api/profile. Omitted fields are kept;
// an empty whatsapp_number clears it.
type UpdateProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=255"`
	WhatsAppNumber *string `json:"whatsapp_number" binding:"omitempty,whatsapp"`
	Role           *string `json:"role" binding:"omitempty,user_role"`
}

func (r UpdateProfileRequest) ToInput() services.UpdateProfileInput {
	return services.UpdateProfileInput{
		Name:           r.Name,
		WhatsAppNumber: r.WhatsAppNumber,
		Role:           r.Role,
	}
}

// WriterStatusRequest is the body of PUT /api/profile/writer.
type WriterStatusRequest struct {
	WriterStatus string `json:"writer_status" binding:"required,writer_status"`
}

// PortfolioRequest is the JSON body of POST /api/profile/portfolio.
// Multipart uploads carry the same fields as form values plus an "image" file.
type PortfolioRequest struct {
	Description     *string `json:"description" form:"description" binding:"omitempty,max=2000"`
	SampleWorkImage *string `json:"sample_work_image" form:"sample_work_image"`
}

// UserResponse is a user as shown to themselves.
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ProfilePicture string    `json:"profile_picture"`
	Role           string    `json:"role"`
	WriterStatus   *string   `json:"writer_status"`
	Rating         float64   `json:"rating"`
	TotalRatings   int       `json:"total_ratings"`
	WhatsAppNumber *string   `json:"whatsapp_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToUserResponse converts a User to UserResponse.
func ToUserResponse(user *entities.User) UserResponse {
	var status *string
	if user.WriterStatus != nil {
		s := string(*user.WriterStatus)
		status = &s
	}
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email.String(),
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
		Role:           string(user.Role),
		WriterStatus:   status,
		Rating:         user.Rating,
		TotalRatings:   user.TotalRatings,
		WhatsAppNumber: user.WhatsAppNumber,
		CreatedAt:      user.CreatedAt,
	}
}

// PortfolioResponse is a writer's portfolio; DescriptionHTML is rendered markdown.
type PortfolioResponse struct {
	WriterID        string    `json:"writer_id"`
	SampleWorkImage string    `json:"sample_work_image"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToPortfolioResponse returns nil for a nil portfolio.
func ToPortfolioResponse(p *entities.WriterPortfolio, render func(string) string) *PortfolioResponse {
	if p == nil {
		return nil
	}
	resp := &PortfolioResponse{
		WriterID:        p.WriterID,
		SampleWorkImage: p.SampleWorkImage,
		Description:     p.Description,
		UpdatedAt:       p.UpdatedAt,
	}
	if render != nil {
		resp.DescriptionHTML = render(p.Description)
	}
	return resp
}

// ProfileResponse is GET /api/profile.
type ProfileResponse struct {
	User      UserResponse       `json:"user"`
	Portfolio *PortfolioResponse `json:"portfolio"`
}

func ToProfileResponse(p *services.Profile, render func(string) string) ProfileResponse {
	return ProfileResponse{
		User:      ToUserResponse(p.User),
		Portfolio: ToPortfolioResponse(p.Portfolio, render),
	}
}

// AuthStatusResponse is GET /api/auth/status.
type AuthStatusResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *UserResponse `json:"user,omitempty"`
}
