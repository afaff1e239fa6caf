package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/moogar0880/problems"

	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
)

// BaseURLContextKey holds the prefix of problem type URIs.
const BaseURLContextKey = "base_url"

// ErrorResponse is an RFC 7807 problem extended with a stable error code and
// a localized message.
type ErrorResponse struct {
	problems.DefaultProblem
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

type problemKind struct {
	status   int
	typ      string
	titleKey string
}

var problemKinds = map[domainerrors.Kind]problemKind{
	domainerrors.KindValidation:     {http.StatusBadRequest, domainerrors.ProblemTypeValidation, "error.validation.title"},
	domainerrors.KindAuthentication: {http.StatusUnauthorized, domainerrors.ProblemTypeUnauthorized, "error.unauthorized.title"},
	domainerrors.KindAuthorization:  {http.StatusForbidden, domainerrors.ProblemTypeForbidden, "error.forbidden.title"},
	domainerrors.KindNotFound:       {http.StatusNotFound, domainerrors.ProblemTypeNotFound, "error.not_found.title"},
	domainerrors.KindConflict:       {http.StatusConflict, domainerrors.ProblemTypeConflict, "error.conflict.title"},
	domainerrors.KindServer:         {http.StatusInternalServerError, domainerrors.ProblemTypeInternal, "error.internal.title"},
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(kind domainerrors.Kind) int {
	return problemKinds[kind].status
}

func newProblem(c *gin.Context, kind domainerrors.Kind, code, message string) ErrorResponse {
	pk := problemKinds[kind]

	baseURL := c.GetString(BaseURLContextKey)
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	p := problems.NewDetailedProblem(pk.status, message)
	p.Type = baseURL + pk.typ
	p.Title = T(c, pk.titleKey)
	p.Instance = c.Request.URL.Path

	return ErrorResponse{
		DefaultProblem: *p,
		Error:          code,
		Message:        message,
	}
}

// NewErrorResponse builds the problem for err. Anything that is not a domain
// error becomes an opaque internal error.
func NewErrorResponse(c *gin.Context, err error) ErrorResponse {
	de, ok := domainerrors.As(err)
	if !ok || de.Kind == domainerrors.KindServer {
		return newProblem(c, domainerrors.KindServer, "internal_error", T(c, "error.internal"))
	}

	message := TOr(c, "error."+de.Code, de.Error())
	resp := newProblem(c, de.Kind, de.Code, message)
	for _, f := range de.Fields {
		resp.Errors = append(resp.Errors, ValidationError{
			Field:   f.Field,
			Tag:     f.Tag,
			Message: TOr(c, "validation."+f.Tag, f.Field+" "+f.Message, map[string]any{"Field": f.Field}),
		})
	}
	if len(resp.Errors) == 1 {
		resp.Message = resp.Errors[0].Message
		resp.Detail = resp.Message
	}
	return resp
}

// BindingErrorResponse builds a validation problem from a gin binding error.
func BindingErrorResponse(c *gin.Context, err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return newProblem(c, domainerrors.KindValidation, "invalid_body", T(c, "error.invalid_body"))
	}

	resp := newProblem(c, domainerrors.KindValidation, domainerrors.ErrValidation.Code, T(c, "error.validation"))
	for _, fe := range verrs {
		resp.Errors = append(resp.Errors, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Message: TOr(c, "validation."+fe.Tag(), fe.Error(), map[string]any{
				"Field": fe.Field(),
				"Param": fe.Param(),
			}),
		})
	}
	return resp
}

// Abort writes resp as application/problem+json and stops the handler chain.
func Abort(c *gin.Context, resp ErrorResponse) {
	c.Header("Content-Type", problems.ProblemMediaType)
	c.AbortWithStatusJSON(resp.Status, resp)
}
