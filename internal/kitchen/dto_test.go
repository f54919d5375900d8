package kitchen

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
)

func TestSetBusinessStatus(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	o := &Order{BusinessStatus: StatusPending}

	o.SetBusinessStatus(StatusCancelled, t0)
	assert.Nil(t, o.StartedAt)
	assert.Nil(t, o.CompletedAt)

	o.SetBusinessStatus(StatusStarted, t0)
	o.SetBusinessStatus(StatusStarted, t1)
	assert.Equal(t, t0, *o.StartedAt)

	// completed may be reached without passing through started
	o2 := &Order{}
	o2.SetBusinessStatus(StatusCompleted, t1)
	assert.Nil(t, o2.StartedAt)
	assert.Equal(t, t1, *o2.CompletedAt)
}

func TestUpdateInputDecoding(t *testing.T) {
	var in UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"onlineOrderId":3,"notes":null,"priority":4}`), &in))
	assert.True(t, in.linksTouched())
	assert.False(t, in.OrderID.Set)
	assert.Equal(t, int64(3), in.OnlineOrderID.Value)
	assert.True(t, in.Notes.Null)
	assert.False(t, in.StationID.Set)
	assert.NoError(t, in.Validate())

	var bad UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"stationId":0}`), &bad))
	assert.ErrorIs(t, bad.Validate(), apperr.ErrBadRequest)

	var empty UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.Empty())
	assert.ErrorIs(t, empty.Validate(), apperr.ErrBadRequest)

	var notesOnly UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null}`), &notesOnly))
	assert.False(t, notesOnly.Empty())
}

func TestParseListFilter(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		wantErr bool
	}{
		{name: "empty", values: url.Values{}},
		{name: "badStatus", values: url.Values{"businessStatus": {"served"}}, wantErr: true},
		{name: "badStation", values: url.Values{"stationId": {"abc"}}, wantErr: true},
		{name: "invertedPriority", values: url.Values{"priorityMin": {"5"}, "priorityMax": {"1"}}, wantErr: true},
		{name: "badDate", values: url.Values{"createdFrom": {"01-06-2024"}}, wantErr: true},
		{name: "pageZero", values: url.Values{"page": {"0"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseListFilter(tt.values)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "k.created_at", f.Sort.Column)
			assert.True(t, f.Sort.Desc)
			assert.Equal(t, 1, f.Page.Page)
			assert.Equal(t, 10, f.Page.Limit)
		})
	}
}
