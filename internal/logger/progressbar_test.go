package logger

import (
	"strings"
	"sync"
	"testing"
)

// TestProgressBarRender verifies correct ASCII bar rendering
func TestProgressBarRender(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		width    int
		prefix   string
		expected string
	}{
		{
			name:     "empty progress",
			current:  0,
			total:    10,
			width:    10,
			expected: "[          ] 0/10 (0%)",
		},
		{
			name:     "half progress",
			current:  5,
			total:    10,
			width:    10,
			expected: "[=====     ] 5/10 (50%)",
		},
		{
			name:     "full progress",
			current:  10,
			total:    10,
			width:    10,
			expected: "[==========] 10/10 (100%)",
		},
		{
			name:     "floors percentage",
			current:  1,
			total:    3,
			width:    10,
			expected: "[===       ] 1/3 (33%)",
		},
		{
			name:     "zero total",
			current:  0,
			total:    0,
			width:    4,
			expected: "[    ] 0/0 (0%)",
		},
		{
			name:     "with prefix",
			current:  2,
			total:    4,
			width:    4,
			prefix:   "Loading ",
			expected: "Loading [==  ] 2/4 (50%)",
		},
		{
			name:     "unknown total",
			current:  42,
			total:    -1,
			width:    10,
			prefix:   "Discovering  ",
			expected: "Discovering... 42 files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.total, tt.width, false)
			pb.SetPrefix(tt.prefix)
			pb.Update(tt.current)

			if got := pb.Render(); got != tt.expected {
				t.Errorf("Render() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProgressBarPercentage(t *testing.T) {
	tests := []struct {
		current, total, want int
	}{
		{0, 10, 0},
		{3, 10, 30},
		{15, 10, 100},
		{-1, 10, 0},
		{5, 0, 0},
		{5, -1, 0},
	}

	for _, tt := range tests {
		pb := NewProgressBar(tt.total, 10, false)
		pb.Update(tt.current)
		if got := pb.Percentage(); got != tt.want {
			t.Errorf("Percentage(%d/%d) = %d, want %d", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestProgressBarDefaultWidth(t *testing.T) {
	pb := NewProgressBar(10, 0, false)
	pb.Update(10)
	if got := pb.Render(); !strings.HasPrefix(got, "[==========]") {
		t.Errorf("expected default width of 10, got %q", got)
	}
}

func TestProgressBarIncrementAndUnknown(t *testing.T) {
	pb := NewProgressBar(-1, 10, false)
	if !pb.Unknown() {
		t.Error("negative total should be unknown")
	}
	for i := 0; i < 3; i++ {
		pb.Increment()
	}
	if pb.Current() != 3 {
		t.Errorf("Current() = %d, want 3", pb.Current())
	}
	if pb.Total() != -1 {
		t.Errorf("Total() = %d, want -1", pb.Total())
	}
}

func TestProgressBarConcurrency(t *testing.T) {
	pb := NewProgressBar(100, 10, false)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pb.Increment()
			_ = pb.Render()
		}()
	}
	wg.Wait()

	if pb.Current() != 100 {
		t.Errorf("Current() = %d after concurrent increments, want 100", pb.Current())
	}
}
