package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates one error family into a ProblemDetail. It reports
// false when the error is not its concern so the next mapper gets a chance.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes Problem Details responses for a handler. Each bounded
// context constructs one with the mapper for its own error taxonomy; errors
// no mapper claims fall through to a generic 500.
type Responder struct {
	// BaseURI is prepended to problem type URIs when they are relative.
	BaseURI string
	mappers []ErrorMapper
}

// NewResponder creates a responder with an optional base URI and mapper chain.
func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: baseURI, mappers: mappers}
}

// Respond sends a ProblemDetail response with the problem+json content type.
// The request path fills Instance when the problem does not carry one.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError runs the mapper chain over err. Unmapped errors that are
// themselves ProblemDetails pass through unchanged; anything else becomes an
// internal server error.
func (r *Responder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}

// BadRequest sends a 400 problem response, used for malformed request bodies
// rejected before any mapper-aware code runs.
func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}
