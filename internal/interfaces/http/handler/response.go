package handler

import "github.com/motoshop/backend/internal/interfaces/http/dto"

// APIResponse documents the success envelope with a typed data field
// @Description Envelope of every /pagos response
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents the failure envelope
// @Description Error envelope; error.code is one of the ERR_* codes
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
