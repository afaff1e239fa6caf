package errors

import (
	stderrors "errors"
)

// Kind classifies a domain error. Handlers map it to an HTTP status.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "server"
	}
}

// Business errors.
// Codes double as i18n message IDs: the translations live in
// internal/infrastructure/i18n/locales/*.json under "error.<code>".
var (
	ErrUnauthenticated = New(KindAuthentication, "unauthenticated")
	ErrForbidden       = New(KindAuthorization, "forbidden")

	ErrUserNotFound       = New(KindNotFound, "user_not_found")
	ErrWriterNotFound     = New(KindNotFound, "writer_not_found")
	ErrRequestNotFound    = New(KindNotFound, "request_not_found")
	ErrAssignmentNotFound = New(KindNotFound, "assignment_not_found")
	ErrRouteNotFound      = New(KindNotFound, "route_not_found")

	ErrRequestAlreadyAssigned = New(KindConflict, "request_already_assigned")
	ErrRequestExpired         = New(KindConflict, "request_expired")
	ErrRequestNotAssigned     = New(KindConflict, "request_not_assigned")

	ErrClientOnly          = New(KindAuthorization, "client_only")
	ErrWriterOnly          = New(KindAuthorization, "writer_only")
	ErrOwnRequest          = New(KindAuthorization, "own_request")
	ErrNotAssignmentWriter = New(KindAuthorization, "not_assignment_writer")
	ErrNotAssignmentParty  = New(KindAuthorization, "not_assignment_party")

	ErrSelfRating         = New(KindValidation, "self_rating")
	ErrInvalidEmailDomain = New(KindAuthorization, "invalid_email_domain")
	ErrUploadsUnavailable = New(KindValidation, "uploads_unavailable")
	ErrInvalidImageUpload = New(KindValidation, "invalid_image")
	ErrValidation         = New(KindValidation, "validation")
)

// Problem type URIs (RFC 7807), relative to API_BASE_URL.
//
//nolint:misspell
const (
	ProblemTypeValidation   = "/problems/validation-error"
	ProblemTypeNotFound     = "/problems/not-found"
	ProblemTypeConflict     = "/problems/conflict"
	ProblemTypeUnauthorized = "/problems/unauthorized"
	ProblemTypeForbidden    = "/problems/forbidden"
	ProblemTypeInternal     = "/problems/internal-error"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// DomainError is an error with a kind, a stable code and optional context.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

// New creates a DomainError without detail.
func New(kind Kind, code string) *DomainError {
	return &DomainError{Kind: kind, Code: code}
}

// Validation creates a validation error for the given fields.
func Validation(fields ...FieldError) *DomainError {
	msg := "invalid input"
	if len(fields) == 1 {
		msg = fields[0].Field + ": " + fields[0].Message
	}
	return &DomainError{Kind: KindValidation, Code: ErrValidation.Code, Message: msg, Fields: fields}
}

func (e *DomainError) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on code so that errors.Is works for copies carrying detail.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithMessage returns a copy of e carrying a detail message.
func (e *DomainError) WithMessage(msg string) *DomainError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy of e wrapping cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// KindOf reports the kind of err, KindServer for anything that is not a DomainError.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindServer
}

// As extracts the DomainError from err.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	ok := stderrors.As(err, &de)
	return de, ok
}
