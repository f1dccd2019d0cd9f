package model

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to GenerationStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},

		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusPending, StatusPending, false},
		{StatusProcessing, StatusPending, false},
		{StatusProcessing, StatusProcessing, false},
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusFailed, StatusCompleted, false},
		{StatusFailed, StatusProcessing, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
