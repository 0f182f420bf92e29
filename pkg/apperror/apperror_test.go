package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidation(KindInvalidInput, "name", "required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", NewValidation(KindDuplicate, "code", "taken")), http.StatusBadRequest},
		{"not found", NewNotFound("work order", 7), http.StatusNotFound},
		{"conflict", NewConcurrencyConflict("work order", 7), http.StatusConflict},
		{"referential", NewReferentialIntegrity("workflow", 1, "repair programs"), http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewValidation(KindIdentifierMismatch, "id", "path and body differ"))
	assert.Equal(t, KindIdentifierMismatch, ValidationKind(err))
	assert.Equal(t, "", ValidationKind(errors.New("plain")))
	assert.True(t, errors.Is(err, ErrValidation))
}
