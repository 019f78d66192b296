package api

import (
	"alcyxob/coachtrack/internal/repository"
	"alcyxob/coachtrack/internal/service"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Machine-readable codes returned in the "code" field of error bodies.
const (
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeClientEmailExists      = "CLIENT_EMAIL_EXISTS"
	CodeClientPhoneExists      = "CLIENT_PHONE_EXISTS"
	CodeUserNotInvited         = "USER_NOT_INVITED"
	CodeInvalidPassword        = "INVALID_PASSWORD"
	CodeConnectionFailed       = "CONNECTION_FAILED"
	CodeNotFound               = "NOT_FOUND"
	CodeNoActiveWorkout        = "NO_ACTIVE_WORKOUT"
	CodeIndexOutOfRange        = "INDEX_OUT_OF_RANGE"
	CodeWorkoutFinalized       = "WORKOUT_FINALIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodePasswordChangeRequired = "PASSWORD_CHANGE_REQUIRED"
	CodeInternal               = "INTERNAL"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{service.ErrValidation, http.StatusBadRequest, CodeValidationFailed},
	{service.ErrUnknownExercise, http.StatusBadRequest, CodeValidationFailed},
	{service.ErrUnknownCategory, http.StatusBadRequest, CodeValidationFailed},
	{service.ErrClientEmailExists, http.StatusConflict, CodeClientEmailExists},
	{service.ErrClientPhoneExists, http.StatusConflict, CodeClientPhoneExists},
	{service.ErrUserNotInvited, http.StatusUnauthorized, CodeUserNotInvited},
	{service.ErrInvalidPassword, http.StatusUnauthorized, CodeInvalidPassword},
	{service.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized},
	{service.ErrRoleSwitchDisabled, http.StatusForbidden, CodeForbidden},
	{service.ErrNoActiveWorkout, http.StatusConflict, CodeNoActiveWorkout},
	{service.ErrIndexOutOfRange, http.StatusBadRequest, CodeIndexOutOfRange},
	{service.ErrWorkoutFinalized, http.StatusConflict, CodeWorkoutFinalized},
	{service.ErrUserNotFound, http.StatusNotFound, CodeNotFound},
	{service.ErrPlanNotFound, http.StatusNotFound, CodeNotFound},
	{service.ErrWorkoutNotFound, http.StatusNotFound, CodeNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound, CodeNotFound},
	{repository.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{repository.ErrConnectionFailed, http.StatusServiceUnavailable, CodeConnectionFailed},
}

// abortWithError writes the JSON error body and aborts the request.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

// respondError maps a service error to its status and code. Unmapped errors
// are reported to Sentry and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			abortWithError(c, m.status, m.code, err.Error())
			return
		}
	}

	slog.Error("request_failed", "path", c.FullPath(), "error", err)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			if uid, ok := c.Get(ContextUserIDKey); ok {
				scope.SetUser(sentry.User{ID: uid.(string)})
			}
			hub.CaptureException(err)
		})
	}
	abortWithError(c, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
}

// bindJSON binds the request body, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidationFailed, "Validation error: "+err.Error())
		return false
	}
	return true
}
