package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Notes    Field[string] `json:"notes"`
	Priority Field[int]    `json:"priority"`
}

func TestFieldTriState(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null}`), &p))

	assert.True(t, p.Notes.Set)
	assert.True(t, p.Notes.Null)
	assert.False(t, p.Notes.HasValue())
	assert.Nil(t, p.Notes.Ptr())

	assert.False(t, p.Priority.Set)
}

func TestFieldValue(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"priority":3,"notes":"no onions"}`), &p))

	assert.True(t, p.Priority.HasValue())
	assert.Equal(t, 3, *p.Priority.Ptr())
	assert.Equal(t, "no onions", p.Notes.Value)
}

func TestFieldRejectsWrongType(t *testing.T) {
	var p patch
	assert.Error(t, json.Unmarshal([]byte(`{"priority":"high"}`), &p))
}
