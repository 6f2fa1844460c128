package api

import (
	"errors"
	"net/http"

	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/internal/service/syllabus"
)

const (
	msgRateLimited     = "Rate limit exceeded. Please try again later."
	msgPaymentRequired = "Payment required. Please add credits to your workspace."
	msgMissingAuth     = "missing authorization header"
)

type errorResponse struct {
	Error string `json:"error"`
	// SyllabusID names a syllabus left without its topics.
	SyllabusID string `json:"syllabusId,omitempty"`
}

// responseFor builds the error body for err. See statusFor.
func responseFor(err error, fallback string) (int, errorResponse) {
	status, msg := statusFor(err, fallback)
	resp := errorResponse{Error: msg}
	var partial *core.PartialWriteError
	if errors.As(err, &partial) {
		resp.SyllabusID = partial.SyllabusID
	}
	return status, resp
}

// statusFor maps an error kind to a status and a short caller-facing message.
// fallback is used for server errors that carry no message of their own.
func statusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, core.ErrPaymentRequired):
		return http.StatusPaymentRequired, msgPaymentRequired
	case errors.Is(err, core.ErrMalformedModelOutput):
		return http.StatusBadRequest, syllabus.MalformedOutputMessage
	case errors.Is(err, core.ErrBadRequest):
		return http.StatusBadRequest, messageOr(err, "bad request")
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, messageOr(err, "Authentication failed")
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, messageOr(err, "forbidden")
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, messageOr(err, "not found")
	case errors.Is(err, core.ErrConfigurationMissing):
		return http.StatusInternalServerError, messageOr(err, "server is not configured")
	case errors.Is(err, core.ErrPersistenceFailure):
		return http.StatusInternalServerError, messageOr(err, fallback)
	}
	return http.StatusInternalServerError, fallback
}

func messageOr(err error, def string) string {
	if msg := core.ErrorMessage(err); msg != "" {
		return msg
	}
	return def
}
