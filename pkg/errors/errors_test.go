package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesKind(t *testing.T) {
	err := Clone(ErrCourseFull, "course 3 is full")
	assert.True(t, errors.Is(err, ErrCourseFull))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "course 3 is full", err.Error())

	wrapped := fmt.Errorf("enroll: %w", err)
	assert.True(t, errors.Is(wrapped, ErrCourseFull))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	typed := FromError(Clone(ErrSkillMismatch, ""))
	assert.Equal(t, http.StatusUnprocessableEntity, typed.Status)
	assert.Nil(t, FromError(nil))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "failed to load course")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), "connection reset")
}
