package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeeklyOpenHours(t *testing.T) {
	tests := []struct {
		name  string
		hours *string
		want  float64
	}{
		{"missing", nil, 0},
		{"empty", strPtr(""), 0},
		{"always open", strPtr("24/7"), 168},
		{"always open phrasing", strPtr("Always open"), 168},
		{"mo-su full day", strPtr("Mo-Su 00:00-24:00"), 168},
		{"24h mixed in", strPtr("24h; PH off"), 168},
		{"weekdays", strPtr("Mo-Fr 09:00-17:00"), 40},
		{"half hours", strPtr("Mo-Fr 08:30-12:00"), 17.5},
		{"two clauses summed", strPtr("Mo-Fr 09:00-17:00; Sa-Su 10:00-14:00"), 48},
		{"overnight", strPtr("Fr-Sa 22:00-02:00"), 8},
		{"week wrap", strPtr("Fr-Mo 10:00-12:00"), 8},
		{"capped", strPtr("Mo-Su 06:00-23:00; Mo-Su 06:00-23:00"), 168},
		{"single day clause not understood", strPtr("Sa 10:00-14:00"), 0},
		{"garbage", strPtr("by appointment"), 0},
		{"unknown day", strPtr("xx-fr 09:00-17:00"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WeeklyOpenHours(tt.hours), 1e-9)
		})
	}
}

func TestIsAlwaysOpen(t *testing.T) {
	assert.True(t, IsAlwaysOpen("24 Hours"))
	assert.True(t, IsAlwaysOpen("24/24"))
	assert.False(t, IsAlwaysOpen("Mo-Fr 09:00-17:00"))
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}
