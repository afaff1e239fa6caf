package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/valueobjects"
)

// MaxImageSize is the largest sample work image accepted.
const MaxImageSize = 5 << 20

const maxNameLength = 255

// ProfileService manages the caller's own profile and portfolio.
type ProfileService struct {
	base
	repos  Repositories
	images ports.ImageStore
}

// NewProfileService creates a ProfileService. images may be nil when uploads are disabled.
func NewProfileService(repos Repositories, images ports.ImageStore, logger ports.Logger, opts ...Option) *ProfileService {
	return &ProfileService{
		base:   newBase(logger, opts),
		repos:  repos,
		images: images,
	}
}

// Profile is a user with their portfolio, if any.
type Profile struct {
	User      *entities.User
	Portfolio *entities.WriterPortfolio
}

// UpdateProfileInput carries optional changes; nil fields are left alone.
// An empty WhatsAppNumber clears it.
type UpdateProfileInput struct {
	Name           *string
	WhatsAppNumber *string
	Role           *string
}

// ImageUpload is an uploaded file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PortfolioInput carries portfolio changes. Image takes precedence over SampleWorkImageURL.
type PortfolioInput struct {
	Description        *string
	SampleWorkImageURL *string
	Image              *ImageUpload
}

// Get returns the caller's current profile.
func (s *ProfileService) Get(ctx context.Context, caller *entities.User) (*Profile, error) {
	user, err := s.load(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	if user.IsWriter() {
		profile.Portfolio, err = s.repos.Portfolios.FindByWriterID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("find portfolio: %w", err)
		}
	}
	return profile, nil
}

// Update applies profile changes.
func (s *ProfileService) Update(ctx context.Context, caller *entities.User, in UpdateProfileInput) (*entities.User, error) {
	user, err := s.load(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	var fields []domainerrors.FieldError
	previousRole := user.Role

	if in.Name != nil {
		name := plainText(*in.Name)
		switch {
		case name == "":
			fields = append(fields, domainerrors.FieldError{Field: "name", Tag: "required", Message: "is required"})
		case len([]rune(name)) > maxNameLength:
			fields = append(fields, domainerrors.FieldError{Field: "name", Tag: "max", Message: "is too long"})
		default:
			user.Name = name
		}
	}

	if in.WhatsAppNumber != nil {
		if strings.TrimSpace(*in.WhatsAppNumber) == "" {
			user.WhatsAppNumber = nil
		} else if n, err := valueobjects.NormalizeWhatsApp(*in.WhatsAppNumber); err != nil {
			fields = append(fields, domainerrors.FieldError{Field: "whatsapp_number", Tag: "whatsapp", Message: "must be 8 to 15 digits, optionally starting with +"})
		} else {
			user.WhatsAppNumber = &n
		}
	}

	if in.Role != nil {
		role := entities.Role(strings.TrimSpace(*in.Role))
		if !role.IsValid() {
			fields = append(fields, domainerrors.FieldError{Field: "role", Tag: "oneof", Message: "must be client, writer or student"})
		} else {
			user.ChangeRole(role)
		}
	}

	if len(fields) > 0 {
		return nil, domainerrors.Validation(fields...)
	}

	user.UpdatedAt = s.now()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("profile updated", "user_id", user.ID, "role", user.Role)

	if user.Role != previousRole {
		s.publish(ctx, ports.Event{
			Type:     ports.EventRoleChanged,
			Payload:  ports.RoleChange{UserID: user.ID, Role: user.Role},
			Audience: ports.Audience{UserIDs: []string{user.ID}},
		})
	}
	return user, nil
}

// UpdateWriterStatus changes the caller's availability. Writers only.
func (s *ProfileService) UpdateWriterStatus(ctx context.Context, caller *entities.User, status string) (*entities.User, error) {
	if !caller.IsWriter() {
		return nil, domainerrors.ErrWriterOnly
	}
	ws := entities.WriterStatus(strings.TrimSpace(status))
	if !ws.IsValid() {
		return nil, domainerrors.Validation(domainerrors.FieldError{
			Field: "writer_status", Tag: "oneof", Message: "must be active, busy or inactive",
		})
	}

	if err := s.repos.Users.SetWriterStatus(ctx, caller.ID, ws); err != nil {
		return nil, fmt.Errorf("set writer status: %w", err)
	}
	return s.load(ctx, caller.ID)
}

// UpsertPortfolio creates or updates the caller's portfolio. Writers only.
func (s *ProfileService) UpsertPortfolio(ctx context.Context, caller *entities.User, in PortfolioInput) (*entities.WriterPortfolio, error) {
	if !caller.IsWriter() {
		return nil, domainerrors.ErrWriterOnly
	}

	portfolio, err := s.repos.Portfolios.FindByWriterID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("find portfolio: %w", err)
	}
	if portfolio == nil {
		portfolio = &entities.WriterPortfolio{WriterID: caller.ID}
	}

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if len([]rune(desc)) > entities.MaxPortfolioDescriptionLength {
			return nil, domainerrors.Validation(domainerrors.FieldError{
				Field: "description", Tag: "max", Message: "is too long",
			})
		}
		portfolio.Description = desc
	}

	switch {
	case in.Image != nil:
		imageURL, err := s.storeImage(ctx, caller.ID, in.Image)
		if err != nil {
			return nil, err
		}
		portfolio.SampleWorkImage = imageURL
	case in.SampleWorkImageURL != nil:
		raw := strings.TrimSpace(*in.SampleWorkImageURL)
		if raw != "" && !isHTTPURL(raw) {
			return nil, domainerrors.Validation(domainerrors.FieldError{
				Field: "sample_work_image", Tag: "url", Message: "must be an http(s) URL",
			})
		}
		portfolio.SampleWorkImage = raw
	}

	portfolio.UpdatedAt = s.now()
	if err := s.repos.Portfolios.Upsert(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("upsert portfolio: %w", err)
	}

	s.logger.Info("portfolio saved", "writer_id", caller.ID)
	return portfolio, nil
}

func (s *ProfileService) storeImage(ctx context.Context, writerID string, img *ImageUpload) (string, error) {
	if s.images == nil {
		return "", domainerrors.ErrUploadsUnavailable
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", domainerrors.ErrInvalidImageUpload.WithMessage("not an image")
	}
	if img.Size <= 0 || img.Size > MaxImageSize {
		return "", domainerrors.ErrInvalidImageUpload.WithMessage("image must be at most 5 MiB")
	}

	key := fmt.Sprintf("portfolios/%s/%s%s", writerID, uuid.NewString(), strings.ToLower(path.Ext(img.Filename)))
	imageURL, err := s.images.Put(ctx, key, img.Body, img.Size, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("store portfolio image: %w", err)
	}
	return imageURL, nil
}

func (s *ProfileService) load(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
