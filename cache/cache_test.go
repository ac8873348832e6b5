package cache

import (
	"errors"
	"testing"
)

// TestSentinelErrors verifies sentinel errors are distinct and have expected messages.
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrInvalidCapacity", ErrInvalidCapacity, "cache: capacity is invalid"},
		{"ErrNilCompute", ErrNilCompute, "cache: compute function is nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("%s is nil", tt.name)
			}
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.wantMsg)
			}
		})
	}

	if errors.Is(ErrInvalidCapacity, ErrNilCompute) {
		t.Error("sentinel errors should be distinct")
	}
}

func TestStats_HitRatio(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  float64
	}{
		{"no requests", Stats{}, 1},
		{"all misses", Stats{Requests: 4, Misses: 4}, 0},
		{"half", Stats{Requests: 10, Lookups: 8, Misses: 5}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.HitRatio(); got != tt.want {
				t.Errorf("HitRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}
