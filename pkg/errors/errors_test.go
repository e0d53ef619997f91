package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsCodeForErrorsIs(t *testing.T) {
	clone := Clone(ErrNotFound, "course not found")
	assert.Equal(t, "course not found", clone.Message)
	assert.True(t, errors.Is(clone, ErrNotFound))
	assert.False(t, errors.Is(clone, ErrValidation))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestBackendUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Backend(cause, "failed to add enrollment")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "failed to add enrollment: connection reset", err.Error())
}
