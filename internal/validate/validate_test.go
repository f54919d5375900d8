package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
)

type sample struct {
	OrderID  int64   `json:"orderId" validate:"required,gt=0"`
	Priority int     `json:"priority" validate:"min=0,max=10"`
	Kind     string  `json:"kind" validate:"required,oneof=a b"`
	Notes    *string `json:"notes" validate:"omitempty,max=5"`
}

func TestStructReportsJSONNames(t *testing.T) {
	long := "too long"
	err := Struct(sample{Priority: 11, Kind: "c", Notes: &long})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	msg := apperr.From(err).Message
	assert.Contains(t, msg, "orderId is required")
	assert.Contains(t, msg, "priority must be at most 10")
	assert.Contains(t, msg, "kind must be one of [a b]")
	assert.Contains(t, msg, "notes must be at most 5")
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(sample{OrderID: 1, Priority: 3, Kind: "a"}))
}

func TestVar(t *testing.T) {
	err := Var("priority", 12, "min=0,max=10")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	assert.Equal(t, "priority must be at most 10", apperr.From(err).Message)

	assert.NoError(t, Var("priority", 2, "min=0,max=10"))
}
