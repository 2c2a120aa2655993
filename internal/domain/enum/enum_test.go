package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	tests := map[string]BookingStatus{
		"completed":  BookingStatusCompleted,
		"Checked-In": BookingStatusCheckedIn,
		" NO SHOW ":  BookingStatusNoShow,
		"cancelled":  BookingStatusCancelled,
	}
	for in, want := range tests {
		got, err := ParseBookingStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseBookingStatus("archived")
	assert.Error(t, err)
}

func TestBookingStatusJSON(t *testing.T) {
	var payload struct {
		Status BookingStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"No-Show"}`), &payload))
	assert.Equal(t, BookingStatusNoShow, payload.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"lost"}`), &payload))
}

func TestBookingStatusScan(t *testing.T) {
	tests := []struct {
		in   interface{}
		want BookingStatus
	}{
		{"Completed", BookingStatusCompleted},
		{[]byte("no-show"), BookingStatusNoShow},
		{"CANCELLED", BookingStatusCancelled},
		{nil, BookingStatusPending},
		{"archived", BookingStatus("archived")},
	}
	for _, tt := range tests {
		var s BookingStatus
		require.NoError(t, s.Scan(tt.in))
		assert.Equal(t, tt.want, s)
	}

	var s BookingStatus
	assert.Error(t, s.Scan(42))
}

func TestParseSegment(t *testing.T) {
	seg, err := ParseSegment("at_risk")
	require.NoError(t, err)
	assert.Equal(t, SegmentAtRisk, seg)

	_, err = ParseSegment("vip")
	assert.Error(t, err)
}
