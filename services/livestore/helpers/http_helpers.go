package helpers

import (
	"errors"
	"net/http"

	"storefront/internal/livestore"
)

// Request DTOs keep the live store client's camelCase keys

type RequestConnectionRequest struct {
	UserEmail string `json:"userEmail" binding:"required"`
	UserName  string `json:"userName"`
}

// EndSessionRequest carries the ids the client knows; only sessionId is used for lookup
type EndSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	UserID    string `json:"userId"`
	AgentID   string `json:"agentId"`
}

// MapErrorToHTTP maps live store errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, livestore.ErrMissingIdentity), errors.Is(err, livestore.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid live store request"
	case errors.Is(err, livestore.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, livestore.ErrRequestNotFound):
		return http.StatusNotFound, "connection request not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
