package domain

import (
	"fmt"
)

// AppError is a transport-level failure: malformed request, oversized upload,
// unavailable backend. Rule violations never become AppErrors; they travel
// inside a Result.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrMissingImage = &AppError{
		Code:       "MISSING_IMAGE",
		Message:    "Request must contain a non-empty image field",
		StatusCode: 422,
	}

	ErrInvalidMode = &AppError{
		Code:       "INVALID_MODE",
		Message:    "Mode must be \"full\" or \"stream\"",
		StatusCode: 422,
	}

	ErrImageTooLarge = &AppError{
		Code:       "IMAGE_TOO_LARGE",
		Message:    "Image exceeds the maximum allowed size",
		StatusCode: 413,
	}

	ErrInvalidBase64 = &AppError{
		Code:       "INVALID_BASE64",
		Message:    "Image field is not valid base64 data",
		StatusCode: 422,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
