package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

// statusFor maps the domain error taxonomy onto HTTP statuses: validation and
// unknown-id problems are the caller's fault, everything else is ours or the
// upstream's.
func statusFor(err error) int {
  switch {
  case types.IsValidation(err):
    return http.StatusBadRequest
  case errors.Is(err, types.ErrSessionNotFound):
    return http.StatusNotFound
  case types.IsUpstream(err):
    return http.StatusInternalServerError
  default:
    return http.StatusInternalServerError
  }
}

func respondError(c *gin.Context, err error) {
  c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
