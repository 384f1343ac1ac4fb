package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUpstreamUnavailable, http.StatusBadGateway},
		{CodePersistence, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("book not found")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("resolve: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := Upstream(cause, "fantlab unavailable")

	assert.True(t, Is(err, ErrUpstreamUnavailable))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fantlab unavailable: dial tcp: timeout", err.Error())
	assert.True(t, err.Code.IsServerSide())
}

func TestValidationWithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"name": "is required"})

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, map[string]string{"name": "is required"}, err.Details)
	assert.False(t, err.Code.IsServerSide())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodePersistence, CodeOf(fmt.Errorf("x: %w", Persistence(fmt.Errorf("disk"), "write failed"))))
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain")))
}
