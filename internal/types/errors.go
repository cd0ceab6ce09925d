package types

import (
  "errors"
  "fmt"
)

var ErrSessionNotFound = errors.New("chat session not found")

// ValidationError rejects bad input before anything touches the store or an
// upstream API.
type ValidationError struct {
  Field     string
  Reason    string
}

func (e *ValidationError) Error() string {
  if e.Field == "" {
    return e.Reason
  }
  return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
  return &ValidationError{Field: field, Reason: reason}
}

// UpstreamError carries the status and body detail of a failed call to the
// completion or image API.
type UpstreamError struct {
  StatusCode  int
  Body        string
}

func (e *UpstreamError) Error() string {
  return fmt.Sprintf("upstream HTTP %d: %s", e.StatusCode, e.Body)
}

func IsValidation(err error) bool {
  var ve *ValidationError
  return errors.As(err, &ve)
}

func IsUpstream(err error) bool {
  var ue *UpstreamError
  return errors.As(err, &ue)
}
