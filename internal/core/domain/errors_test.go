package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Categories(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category error
	}{
		{"ErrEmptySelection", ErrEmptySelection, ErrValidation},
		{"ErrEmptyQuestion", ErrEmptyQuestion, ErrValidation},
		{"ErrNoDocuments", ErrNoDocuments, ErrValidation},
		{"ErrNotConfirmed", ErrNotConfirmed, ErrValidation},
		{"ErrUploadInProgress", ErrUploadInProgress, ErrConflict},
		{"ErrQuestionPending", ErrQuestionPending, ErrConflict},
		{"ErrDeleteInProgress", ErrDeleteInProgress, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.category))
			assert.False(t, IsRemote(tt.err))
		})
	}
}

func TestErrNoDocuments_Message(t *testing.T) {
	assert.Equal(t, "validation failed: no documents", ErrNoDocuments.Error())
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "list documents", Err: cause}

	assert.Equal(t, "list documents: connection refused", err.Error())
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrService))
	assert.True(t, IsRemote(err))
}

func TestServiceError(t *testing.T) {
	err := &ServiceError{Op: "query", Status: 500, Body: `{"detail":"boom"}`}

	assert.Equal(t, `query: service returned status 500: {"detail":"boom"}`, err.Error())
	assert.True(t, errors.Is(err, ErrService))
	assert.False(t, errors.Is(err, ErrNetwork))

	wrapped := fmt.Errorf("asking: %w", err)
	var svcErr *ServiceError
	assert.True(t, errors.As(wrapped, &svcErr))
	assert.Equal(t, 500, svcErr.Status)
	assert.True(t, IsRemote(wrapped))
}

func TestServiceError_EmptyBody(t *testing.T) {
	err := &ServiceError{Op: "delete documents", Status: 404}
	assert.Equal(t, "delete documents: service returned status 404", err.Error())
}
