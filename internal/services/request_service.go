package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/writify/writify-backend/internal/domain"
	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/readmodel"
)

// RequestService runs the request side of the lifecycle: create, list, accept.
type RequestService struct {
	base
	repos Repositories
	uow   domain.UnitOfWork
}

// NewRequestService creates a RequestService.
func NewRequestService(repos Repositories, uow domain.UnitOfWork, logger ports.Logger, opts ...Option) *RequestService {
	return &RequestService{
		base:  newBase(logger, opts),
		repos: repos,
		uow:   uow,
	}
}

// CreateRequestInput is the raw form of a new request. Numbers and dates
// arrive as text and are parsed here.
type CreateRequestInput struct {
	CourseName     string
	CourseCode     string
	AssignmentType string
	NumPages       string
	Deadline       string
	EstimatedCost  string
}

// AcceptResult is what a writer learns after accepting a request.
type AcceptResult struct {
	Request        *entities.AssignmentRequest
	Assignment     *entities.Assignment
	ClientName     string
	ClientWhatsApp *string
}

// RequestEvent is the payload of request lifecycle events.
type RequestEvent struct {
	RequestID     string    `json:"request_id"`
	CourseName    string    `json:"course_name"`
	CourseCode    string    `json:"course_code"`
	EstimatedCost int       `json:"estimated_cost"`
	Deadline      time.Time `json:"deadline"`
	WriterID      string    `json:"writer_id,omitempty"`
	AssignmentID  string    `json:"assignment_id,omitempty"`
}

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseRequestInput(clientID string, in CreateRequestInput) (entities.NewRequestParams, error) {
	var fields []domainerrors.FieldError
	invalid := func(field, tag, msg string) {
		fields = append(fields, domainerrors.FieldError{Field: field, Tag: tag, Message: msg})
	}

	params := entities.NewRequestParams{
		ClientID:       clientID,
		CourseName:     plainText(in.CourseName),
		CourseCode:     plainText(in.CourseCode),
		AssignmentType: plainText(in.AssignmentType),
	}

	if strings.TrimSpace(in.NumPages) == "" {
		invalid("num_pages", "required", "is required")
	} else if n, err := strconv.Atoi(strings.TrimSpace(in.NumPages)); err != nil {
		invalid("num_pages", "numeric", "must be a whole number")
	} else {
		params.NumPages = n
	}

	if strings.TrimSpace(in.EstimatedCost) == "" {
		invalid("estimated_cost", "required", "is required")
	} else if c, err := strconv.ParseFloat(strings.TrimSpace(in.EstimatedCost), 64); err != nil {
		invalid("estimated_cost", "numeric", "must be a number")
	} else {
		params.EstimatedCost = c
	}

	if strings.TrimSpace(in.Deadline) == "" {
		invalid("deadline", "required", "is required")
	} else if d, ok := parseDeadline(in.Deadline); !ok {
		invalid("deadline", "datetime", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	} else {
		params.Deadline = d
	}

	if len(fields) > 0 {
		return params, domainerrors.Validation(fields...)
	}
	return params, nil
}

// Create posts a new open request on behalf of a client.
func (s *RequestService) Create(ctx context.Context, caller *entities.User, in CreateRequestInput) (*entities.AssignmentRequest, error) {
	if !caller.ActsAsClient() {
		return nil, domainerrors.ErrClientOnly
	}

	params, err := parseRequestInput(caller.ID, in)
	if err != nil {
		return nil, err
	}

	request, err := entities.NewAssignmentRequest(uuid.NewString(), params, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repos.Requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create assignment request: %w", err)
	}

	s.logger.Info("assignment request created",
		"request_id", request.ID,
		"client_id", caller.ID,
		"estimated_cost", request.EstimatedCost,
	)

	s.publish(ctx, ports.Event{
		Type:     ports.EventRequestCreated,
		Payload:  requestEvent(request),
		Audience: ports.Audience{Roles: []entities.Role{entities.RoleWriter}},
	})

	return request, nil
}

// ListOpen returns open, unexpired requests, newest first.
func (s *RequestService) ListOpen(ctx context.Context) ([]readmodel.OpenRequest, error) {
	now := s.now()
	rows, err := s.repos.Queries.OpenRequests(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list open requests: %w", err)
	}
	return readmodel.ProjectOpenRequests(rows, now), nil
}

// Accept assigns an open request to the calling writer. The status flip, the
// assignment row and the writer's busy status commit together or not at all.
func (s *RequestService) Accept(ctx context.Context, caller *entities.User, requestID string) (*AcceptResult, error) {
	if !caller.IsWriter() {
		return nil, domainerrors.ErrWriterOnly
	}
	if !isID(requestID) {
		return nil, domainerrors.ErrRequestNotFound
	}

	now := s.now()
	var result AcceptResult

	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.repos.Requests.FindByID(txCtx, requestID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		if request == nil {
			return domainerrors.ErrRequestNotFound
		}
		if request.ClientID == caller.ID {
			return domainerrors.ErrOwnRequest
		}

		assigned, err := s.repos.Requests.MarkAssigned(txCtx, requestID, now)
		if err != nil {
			return fmt.Errorf("mark request assigned: %w", err)
		}
		if !assigned {
			return s.whyNotAssignable(txCtx, requestID, now)
		}
		request.Status = entities.RequestAssigned

		assignment := entities.NewAssignment(uuid.NewString(), request, caller.ID, now)
		if err := s.repos.Assignments.Create(txCtx, assignment); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}

		if err := s.repos.Users.SetWriterStatus(txCtx, caller.ID, entities.WriterBusy); err != nil {
			return fmt.Errorf("set writer busy: %w", err)
		}

		client, err := s.repos.Users.FindByID(txCtx, request.ClientID)
		if err != nil {
			return fmt.Errorf("find client: %w", err)
		}
		if client == nil {
			return domainerrors.ErrUserNotFound
		}

		result = AcceptResult{
			Request:        request,
			Assignment:     assignment,
			ClientName:     client.Name,
			ClientWhatsApp: client.WhatsAppNumber,
		}
		return nil
	})
	if err != nil {
		if domainerrors.KindOf(err) == domainerrors.KindServer {
			s.logger.Error("accept request failed", "request_id", requestID, "writer_id", caller.ID, "error", err)
		}
		return nil, err
	}

	busy := entities.WriterBusy
	caller.WriterStatus = &busy

	s.logger.Info("assignment request accepted",
		"request_id", requestID,
		"assignment_id", result.Assignment.ID,
		"writer_id", caller.ID,
	)

	payload := requestEvent(result.Request)
	payload.WriterID = caller.ID
	payload.AssignmentID = result.Assignment.ID
	s.publish(ctx, ports.Event{
		Type:     ports.EventRequestAssigned,
		Payload:  payload,
		Audience: ports.Audience{UserIDs: []string{result.Request.ClientID}},
	})

	return &result, nil
}

// whyNotAssignable explains a guarded update that matched no row.
func (s *RequestService) whyNotAssignable(ctx context.Context, requestID string, now time.Time) error {
	current, err := s.repos.Requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("reload request: %w", err)
	}
	switch {
	case current == nil:
		return domainerrors.ErrRequestNotFound
	case current.IsExpired(now):
		return domainerrors.ErrRequestExpired
	default:
		return domainerrors.ErrRequestAlreadyAssigned
	}
}

func requestEvent(r *entities.AssignmentRequest) RequestEvent {
	return RequestEvent{
		RequestID:     r.ID,
		CourseName:    r.CourseName,
		CourseCode:    r.CourseCode,
		EstimatedCost: r.EstimatedCost,
		Deadline:      r.Deadline,
	}
}
