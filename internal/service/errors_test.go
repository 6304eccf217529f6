package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadyRegistered, ErrConflict)
	assert.ErrorIs(t, ErrNotFoundOrForbidden, ErrNotFound)
	assert.Equal(t, "user is already registered for this program", ErrAlreadyRegistered.Error())

	cause := errors.New("connection reset")
	err := storageError("load user", cause)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, validationError("bad %s", "id"), ErrValidation)
}
