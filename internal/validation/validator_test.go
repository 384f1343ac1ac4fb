package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/validation"
)

func validInput() domain.CreateBookInput {
	return domain.CreateBookInput{
		Name:    "Семейная хроника",
		Image:   "https://example.org/cover.jpg",
		Authors: []domain.EntityInput{{Name: "Бабушка"}},
		Genres:  []domain.EntityInput{{Name: "Сказка"}},
	}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	in := validInput()
	in.Authors = append(in.Authors, domain.EntityInput{ID: "4c1f0c55-0a7c-4f37-9bd4-2b5c3f4e0a11"})
	assert.NoError(t, v.Validate(in))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(*domain.CreateBookInput)
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing name",
			mutate:    func(in *domain.CreateBookInput) { in.Name = "" },
			wantField: "name",
			wantMsg:   "is required",
		},
		{
			name:      "name too long",
			mutate:    func(in *domain.CreateBookInput) { in.Name = strings.Repeat("я", 1001) },
			wantField: "name",
			wantMsg:   "must not exceed 1000 characters",
		},
		{
			name:      "no authors",
			mutate:    func(in *domain.CreateBookInput) { in.Authors = []domain.EntityInput{} },
			wantField: "authors",
			wantMsg:   "must contain at least 1 items",
		},
		{
			name:      "empty genres",
			mutate:    func(in *domain.CreateBookInput) { in.Genres = []domain.EntityInput{} },
			wantField: "genres",
			wantMsg:   "must contain at least 1 items",
		},
		{
			name:      "nil genres",
			mutate:    func(in *domain.CreateBookInput) { in.Genres = nil },
			wantField: "genres",
			wantMsg:   "is required",
		},
		{
			name:      "author without id or name",
			mutate:    func(in *domain.CreateBookInput) { in.Authors = []domain.EntityInput{{}} },
			wantField: "authors[0].name",
			wantMsg:   "is required when ID is empty",
		},
		{
			name:      "malformed entity id",
			mutate:    func(in *domain.CreateBookInput) { in.Cycles = []domain.EntityInput{{ID: "42"}} },
			wantField: "cycles[0].id",
			wantMsg:   "must be a valid UUID",
		},
		{
			name:      "bad image url",
			mutate:    func(in *domain.CreateBookInput) { in.Image = "not a url" },
			wantField: "image",
			wantMsg:   "must be a valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := v.Validate(in)
			require.Error(t, err)

			var domainErr *errors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, errors.CodeValidation, domainErr.Code)
			assert.Equal(t, 400, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField], "details: %v", details)
		})
	}
}
