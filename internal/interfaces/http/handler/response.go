package handler

import "github.com/medstock/backend/internal/interfaces/http/dto"

// APIResponse is a typed view of the response envelope, convenient for
// clients and tests that decode a known payload shape.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}
