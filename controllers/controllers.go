// Package controllers holds the gin handler factories for the REST API.
// Handlers validate input, delegate to the managers and shape the responses;
// everything stateful lives behind the managers.
package controllers

import (
	"errors"
	"net/http"

	"github.com/paulfarrow/runclubbackend/managers"
)

// statusFor maps manager errors onto HTTP status codes. Conflicts come back
// as 400, which is what the frontend checks for.
func statusFor(err error) int {
	switch {
	case errors.Is(err, managers.ErrInvalidCredentials),
		errors.Is(err, managers.ErrEmailNotVerified):
		return http.StatusUnauthorized
	case errors.Is(err, managers.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, managers.ErrUserNotFound),
		errors.Is(err, managers.ErrPhotoNotFound):
		return http.StatusNotFound
	case errors.Is(err, managers.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
