package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/voca-api/internal/api/shared"
	"github.com/phrazzld/voca-api/internal/deckfile"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/service"
	"github.com/phrazzld/voca-api/internal/service/auth"
	"github.com/phrazzld/voca-api/internal/service/content"
	"github.com/phrazzld/voca-api/internal/service/quiz"
	"github.com/phrazzld/voca-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, service.ErrInactiveUser):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, quiz.ErrInvalidState):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.As(err, &validationErrs),
		errors.Is(err, quiz.ErrInvalidWordIndices),
		errors.Is(err, content.ErrInvalidKey),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, deckfile.ErrUnsupportedFormat),
		errors.Is(err, deckfile.ErrInvalidEncoding),
		errors.Is(err, deckfile.ErrMalformed),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Configuration and upstream errors
	case errors.Is(err, content.ErrGeneratorNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, content.ErrExternalService):
		if errors.Is(err, generation.ErrTransientFailure) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"
	case errors.Is(err, service.ErrInactiveUser):
		return "User account is inactive"
	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this deck"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, quiz.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, quiz.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrWordNotFound),
		errors.Is(err, quiz.ErrWordNotFound):
		return "Word not found"
	case errors.Is(err, content.ErrEntryNotFound):
		return "Content not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already registered"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, quiz.ErrConcurrentSubmit):
		return "Answer was already submitted for this question"
	case errors.Is(err, quiz.ErrSessionCompleted):
		return "Session is already completed"
	case errors.Is(err, quiz.ErrInvalidState):
		return "Session is not in a valid state"

	case errors.Is(err, service.ErrInvalidResetToken):
		return "Invalid or expired reset token"
	case errors.Is(err, deckfile.ErrUnsupportedFormat):
		return "Unsupported file format. Please upload a CSV or XLSX file"
	case errors.Is(err, deckfile.ErrInvalidEncoding):
		return "Invalid CSV encoding. Please use UTF-8"
	case errors.Is(err, deckfile.ErrMalformed):
		return "Malformed deck file"
	case errors.Is(err, service.ErrEmptyDeck):
		return "No valid words found in file"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.As(err, &validationErr):
		return sanitizeDomainValidation(validationErr)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation error"

	case errors.Is(err, content.ErrGeneratorNotConfigured):
		return "Content generation is not configured"
	case errors.Is(err, content.ErrExternalService):
		if errors.Is(err, generation.ErrTransientFailure) {
			return "Content provider is temporarily unavailable"
		}
		return "Content generation failed"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message and writes the
// error response. A non-empty fallback replaces the generic message used
// for internal errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", jsonFieldName(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// sanitizeDomainValidation exposes the field and message of a domain
// validation error. Both are written by this codebase, never by users.
func sanitizeDomainValidation(err *domain.ValidationError) string {
	if err.Field == "" {
		return "Validation error: " + err.Message
	}
	return fmt.Sprintf("Invalid %s: %s", err.Field, err.Message)
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "too small"
	case "oneof":
		return "invalid value"
	case "base64":
		return "invalid base64 data"
	default:
		return "validation failed"
	}
}

// jsonFieldName turns a Go field name such as ImageBase64 into image_base64.
func jsonFieldName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(field[i-1] >= 'A' && field[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
