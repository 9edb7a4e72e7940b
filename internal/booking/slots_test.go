package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlots(t *testing.T) {
	slots := GenerateSlots()

	require.Len(t, slots, 16)
	assert.Equal(t, "06:00", slots[0])
	assert.Equal(t, "21:00", slots[len(slots)-1])
	for i, s := range slots {
		h, ok := ParseHour(s)
		require.True(t, ok, s)
		assert.Equal(t, OpeningHour+i, h)
	}

	assert.Equal(t, slots, GenerateSlots())
}

func TestParseHour(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"06:00", 6, true},
		{"21:00", 21, true},
		{"00:00", 0, true},
		{"9:00", 0, false},
		{"09:30", 0, false},
		{"24:00", 0, false},
		{"ab:00", 0, false},
		{"", 0, false},
		{"10:00:00", 0, false},
		{"+9:00", 0, false},
		{"-1:00", 0, false},
		{" 9:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, ok := ParseHour(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, h)
			}
		})
	}
}
