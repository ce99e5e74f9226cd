package models

import "testing"

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name      string
		processed int
		total     int
		want      int
	}{
		{"unknown total", 5, UnknownTotal, UnknownPercent},
		{"zero total", 0, 0, UnknownPercent},
		{"start", 0, 10, 0},
		{"floors", 1, 3, 33},
		{"two thirds", 2, 3, 66},
		{"half", 5, 10, 50},
		{"done", 7, 7, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ProgressReport{Phase: PhaseLoading, Processed: tt.processed, Total: tt.total}
			if got := r.Percent(); got != tt.want {
				t.Errorf("Percent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	want := []string{"Discovering", "Classifying", "Loading", "Transforming", "Formatting"}
	for i, name := range want {
		if got := Phase(i).String(); got != name {
			t.Errorf("Phase(%d).String() = %q, want %q", i, got, name)
		}
	}
	if got := Phase(42).String(); got != "Unknown" {
		t.Errorf("Phase(42).String() = %q, want Unknown", got)
	}
}
