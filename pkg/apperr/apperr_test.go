package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsByKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("note not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestInternal_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "disk full")
}

func TestInvalidArgument_Field(t *testing.T) {
	err := InvalidArgument("email", "email is required")
	assert.Equal(t, "email", err.Field)
	assert.Equal(t, "invalid_argument", err.Kind.String())
}
