package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "year out of range",
			},
			wantMessage: "[VALIDATION] year out of range",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeConfig,
				Message: "config validation failed",
				Cause:   fmt.Errorf("workers must be positive"),
			},
			wantMessage: "[CONFIG] config validation failed: workers must be positive",
		},
		{
			name: "resolution error with cause",
			appError: &AppError{
				Type:    ErrTypeResolution,
				Message: "could not resolve entity",
				Cause:   fmt.Errorf("ambiguous name"),
			},
			wantMessage: "[RESOLUTION] could not resolve entity: ambiguous name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	appErr := NewResolutionError("resolve failed", cause)

	assert.Equal(t, cause, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, cause))

	noCause := NewAppValidationError("bad value")
	assert.Nil(t, noCause.Unwrap())
}

func TestAppError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("stage extract: %w",
		NewResolutionError("no catalog match", fmt.Errorf("ambiguous")))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeResolution, appErr.Type)
	assert.Equal(t, "no catalog match", appErr.Message)
}

func TestErrorHelpers(t *testing.T) {
	cause := fmt.Errorf("cause")

	tests := []struct {
		name     string
		got      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "resolution error",
			got:      NewResolutionError("unknown entity", cause),
			wantType: ErrTypeResolution,
			wantMsg:  "unknown entity",
		},
		{
			name:     "validation error",
			got:      NewAppValidationError("invalid horizon"),
			wantType: ErrTypeValidation,
			wantMsg:  "invalid horizon",
		},
		{
			name:     "config error",
			got:      NewConfigError("bad yaml", cause),
			wantType: ErrTypeConfig,
			wantMsg:  "bad yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.got.Type)
			assert.Equal(t, tt.wantMsg, tt.got.Message)
		})
	}
}
