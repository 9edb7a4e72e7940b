package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasConflictMatchesHalfOpenOverlap(t *testing.T) {
	for s1 := 0; s1 < 24; s1++ {
		for e1 := s1 + 1; e1 <= 24; e1++ {
			for s2 := 0; s2 < 24; s2++ {
				for e2 := s2 + 1; e2 <= 24; e2++ {
					want := s1 < e2 && s2 < e1
					got := HasConflict(Interval{s1, e1}, []Interval{{s2, e2}})
					if got != want {
						t.Fatalf("HasConflict([%d,%d), [%d,%d)) = %v, want %v", s1, e1, s2, e2, got, want)
					}
				}
			}
		}
	}
}

func TestHasConflict(t *testing.T) {
	existing := []Interval{{Start: 9, End: 11}, {Start: 14, End: 15}}

	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"before everything", Interval{6, 9}, false},
		{"ends where booking starts", Interval{8, 9}, false},
		{"starts where booking ends", Interval{11, 12}, false},
		{"inside booking", Interval{9, 10}, true},
		{"covers booking", Interval{8, 12}, true},
		{"overlaps tail", Interval{10, 12}, true},
		{"between bookings", Interval{11, 14}, false},
		{"spans both", Interval{10, 15}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConflict(tt.candidate, existing))
		})
	}

	assert.False(t, HasConflict(Interval{9, 10}, nil))
}
