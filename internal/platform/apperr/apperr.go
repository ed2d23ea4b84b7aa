// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error vocabulary shared by every shelfsync layer.

Provider adapters, the merge engine, the stores and the HTTP handlers all speak
the same typed error so that a failure deep inside a MangaDex payload parser ends
up as the same JSON envelope the API returns for a malformed request.

Architecture:

  - AppError: machine-readable Code, client-safe Message, HTTP status and a hidden Cause.
  - Conflicts: identity conflicts carry the competing identifiers so the caller can
    offer a manual merge.
  - Status: classification helper used when several provider failures must be ranked.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeIdentityConflict    = "IDENTITY_CONFLICT"
	CodeMergeRequired       = "MERGE_REQUIRED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

// AppError is the canonical error type of the shelfsync service.
//
// # Security
//
// Cause is logged server-side and never serialised, so upstream bodies and SQL
// never reach a client.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// Conflicts lists the identifiers involved in an identity conflict or a required merge.
	Conflicts []string `json:"conflicts,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Series") // "Series not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, HTTPStatus: http.StatusForbidden}
}

// Conflict creates a 409 [AppError] for unique-constraint violations that are not
// identity related.
func Conflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, HTTPStatus: http.StatusConflict}
}

// IdentityConflict creates a 409 [AppError] raised when two records claim the same
// external identifier, or when a provider reports a different value for a tag that
// is already assigned. The competing identifiers travel in Conflicts.
func IdentityConflict(msg string, conflicts ...string) *AppError {
	return &AppError{
		Code:       CodeIdentityConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
		Conflicts:  conflicts,
	}
}

// MergeRequired creates a 409 [AppError] for a lookup that matched several stored
// series. It is an outcome the caller resolves by merging records manually.
func MergeRequired(internalIDs ...string) *AppError {
	return &AppError{
		Code:       CodeMergeRequired,
		Message:    "Several stored series match these identifiers; merge them first",
		HTTPStatus: http.StatusConflict,
		Conflicts:  internalIDs,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// UpstreamUnavailable creates a 502 [AppError] for a provider that timed out,
// answered with a non-2xx status, or returned a payload that could not be parsed.
func UpstreamUnavailable(provider string, cause error) *AppError {
	return &AppError{
		Code:       CodeUpstreamUnavailable,
		Message:    "Failed to fetch details from " + provider,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Status returns the HTTP status carried by err, or 500 for foreign errors.
func Status(err error) int {
	if ae := As(err); ae != nil {
		return ae.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries the given machine-readable code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
