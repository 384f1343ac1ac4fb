package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailib/mailib-server/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	err := store.ErrNotFound.WithCause(errors.New("no rows"))

	assert.Equal(t, "resource not found: no rows", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_DerivedErrorsMatchSentinel(t *testing.T) {
	derived := store.ErrAlreadyExists.WithMessage("book exists").WithCause(errors.New("UNIQUE constraint failed"))
	wrapped := fmt.Errorf("create book: %w", derived)

	assert.True(t, store.IsAlreadyExists(wrapped))
	assert.False(t, store.IsNotFound(wrapped))
	assert.ErrorIs(t, wrapped, store.ErrAlreadyExists)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := store.ErrInvalidInput.WithCause(cause)

	assert.ErrorIs(t, err, cause)
}
