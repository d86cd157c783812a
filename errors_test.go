package reloop

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackendError(t *testing.T) {
	netErr := errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")

	tests := []struct {
		name     string
		input    *BackendError
		expected string
	}{
		{
			name:     "body is surfaced verbatim",
			input:    &BackendError{StatusCode: 500, Body: `{"error":"model not loaded"}`},
			expected: `{"error":"model not loaded"}`,
		},
		{
			name:     "network failure",
			input:    &BackendError{Err: netErr},
			expected: netErr.Error(),
		},
		{
			name:     "empty body",
			input:    &BackendError{StatusCode: 503},
			expected: "completion backend returned status 503",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.input, tc.expected)

			wrapped := fmt.Errorf("generate: %w", tc.input)
			assert.ErrorIs(t, wrapped, ErrBackend)

			var be *BackendError
			assert.ErrorAs(t, wrapped, &be)
		})
	}
}

func TestBackendError_UnwrapsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := &BackendError{Err: cause}
	assert.ErrorIs(t, err, cause)
}
