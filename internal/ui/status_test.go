package ui

import (
	"reflect"
	"testing"
)

func TestStatusLines(t *testing.T) {
	tests := []struct {
		name string
		in   Status
		want []string
	}{
		{name: "disconnected", in: Status{Iteration: 9}, want: []string{"connecting..."}},
		{
			name: "connected",
			in:   Status{Connected: true, Iteration: 12, Population: 40, TickSpeed: 2, Rows: 80, Cols: 80, Pattern: "glider"},
			want: []string{"gen 12", "alive 40", "grid 80x80 @ 2/s", "pattern glider"},
		},
		{
			name: "flagsAndRejection",
			in:   Status{Connected: true, Pattern: "block", Paused: true, HeatMap: true, Rejection: "rate_limited"},
			want: []string{"gen 0", "alive 0", "grid 0x0 @ 0/s", "pattern block", "paused heat", "rejected: rate_limited"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Lines(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Lines() = %q, want %q", got, tt.want)
			}
		})
	}
}
