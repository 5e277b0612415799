// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints:
// the structured error envelope, consistent JSON serialization, and helpers
// for the common success/failure patterns.
//
// Conventions:
//   - All JSON error responses carry `"ok": false` and a human-readable
//     `error` string.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx
//     responses are logged with request context for observability.
//   - `ok()` keeps success responses uniform across handlers.
//
// Example error response:
//
//	HTTP/1.1 502 Bad Gateway
//	{
//	  "ok": false,
//	  "error": "AI error: upstream timeout",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trip-backend/internal/http/middleware"
)

// ErrorResponse is the standard JSON error envelope returned by all
// endpoints (the diary day-not-found case is the one plain-text exception,
// see SummarizeDay).
type ErrorResponse struct {
	// Always false; lets clients branch on a single field.
	OK bool `json:"ok"`
	// Human-readable error description, safe for display to users.
	Error string `json:"error" example:"trip not found"`
	// Correlates server logs and client errors; echoed from X-Request-ID.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// fail aborts the request with a structured error and logs server-side errors.
//
// Server errors (>=500) are logged using the request-scoped logger from
// middleware.
func fail(c *gin.Context, status int, msg string) {
	resp := ErrorResponse{
		OK:        false,
		Error:     msg,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("error", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// ok writes a success JSON response with the given status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
