package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aicodehub/aicodehub/internal/common"
)

// errorBody is the JSON error envelope shared by all endpoints.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMapping struct {
	status  int
	code    string
	message string
}

var errorMappings = []struct {
	err     error
	mapping errorMapping
}{
	{common.ErrValidation, errorMapping{http.StatusUnprocessableEntity, "VALIDATION_FAILED", ""}},
	{common.ErrUsernameTaken, errorMapping{http.StatusBadRequest, "USERNAME_TAKEN", "username already registered"}},
	{common.ErrEmailTaken, errorMapping{http.StatusBadRequest, "EMAIL_TAKEN", "email already registered"}},
	{common.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, "INVALID_CREDENTIALS", "incorrect username or password"}},
	{common.ErrMissingCredential, errorMapping{http.StatusUnauthorized, "MISSING_TOKEN", "authorization token missing"}},
	{common.ErrMalformedCredential, errorMapping{http.StatusUnauthorized, "MALFORMED_TOKEN", "authorization token malformed"}},
	{common.ErrExpiredCredential, errorMapping{http.StatusUnauthorized, "EXPIRED_TOKEN", "authorization token expired"}},
	{common.ErrInvalidCredential, errorMapping{http.StatusUnauthorized, "INVALID_TOKEN", "authorization token invalid"}},
	{common.ErrUnknownIdentity, errorMapping{http.StatusUnauthorized, "UNKNOWN_IDENTITY", "identity not found"}},
	{common.ErrInactiveIdentity, errorMapping{http.StatusUnauthorized, "INACTIVE_IDENTITY", "identity is inactive"}},
	{common.ErrForbidden, errorMapping{http.StatusForbidden, "FORBIDDEN", "not enough permissions"}},
	{common.ErrNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND", "resource not found"}},
	{common.ErrStorageUnavailable, errorMapping{http.StatusInternalServerError, "STORAGE_UNAVAILABLE", "storage unavailable"}},
}

// guardCodes are the 401 variants that collapse into one generic response
// when uniform auth errors are enabled.
var guardCodes = map[string]bool{
	"MISSING_TOKEN":     true,
	"MALFORMED_TOKEN":   true,
	"EXPIRED_TOKEN":     true,
	"INVALID_TOKEN":     true,
	"UNKNOWN_IDENTITY":  true,
	"INACTIVE_IDENTITY": true,
}

// respondError translates a service error into an HTTP status and a stable
// error code. Unrecognized errors become a generic 500 so internals never
// leak to clients.
func (s *Server) respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		mapping := m.mapping
		if s.config.UniformAuthErrors && guardCodes[mapping.code] {
			mapping.code = "NOT_AUTHENTICATED"
			mapping.message = "not authenticated"
		}
		message := mapping.message
		if message == "" {
			message = err.Error()
		}
		c.AbortWithStatusJSON(mapping.status, errorBody{Code: mapping.code, Message: message})
		return
	}

	s.logger.Error(c.Request.Context(), "unhandled error", "error", err.Error())
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Code: "INTERNAL_ERROR", Message: "internal server error"})
}
