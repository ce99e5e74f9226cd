package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ProgressBar renders phase progress as an ASCII bar, or as a running counter
// when the total is not known yet (a negative total).
type ProgressBar struct {
	current     int
	total       int
	width       int
	enableColor bool
	prefix      string
	mu          sync.RWMutex
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total, width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{total: total, width: width, enableColor: enableColor}
}

// Update sets the current progress value
func (pb *ProgressBar) Update(current int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current = current
}

// Increment increments the current progress by 1
func (pb *ProgressBar) Increment() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current++
}

// Current returns the current progress value
func (pb *ProgressBar) Current() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.current
}

// Total returns the total, negative when unknown
func (pb *ProgressBar) Total() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.total
}

// Unknown reports whether the total is not known
func (pb *ProgressBar) Unknown() bool {
	return pb.Total() < 0
}

// Percentage returns the progress percentage clamped to 0-100. It is 0 when
// the total is zero or unknown.
func (pb *ProgressBar) Percentage() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.percentage()
}

func (pb *ProgressBar) percentage() int {
	if pb.total <= 0 {
		return 0
	}
	return min(max(pb.current*100/pb.total, 0), 100)
}

// SetPrefix sets a custom prefix for the progress bar
func (pb *ProgressBar) SetPrefix(prefix string) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.prefix = prefix
}

// Render generates the progress string:
//
//	known total:   "<prefix>[=====     ] 5/10 (50%)"
//	unknown total: "<prefix>... 42 files"
func (pb *ProgressBar) Render() string {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	if pb.total < 0 {
		result := fmt.Sprintf("%s... %d files", strings.TrimRight(pb.prefix, " "), pb.current)
		if pb.enableColor {
			result = color.New(color.FgCyan).Sprint(result)
		}
		return result
	}

	perc := pb.percentage()
	filled := min(perc*pb.width/100, pb.width)

	var sb strings.Builder
	sb.WriteString(pb.prefix)
	sb.WriteByte('[')
	sb.WriteString(strings.Repeat("=", filled))
	sb.WriteString(strings.Repeat(" ", pb.width-filled))
	sb.WriteByte(']')
	fmt.Fprintf(&sb, " %d/%d (%d%%)", pb.current, pb.total, perc)

	result := sb.String()
	if pb.enableColor {
		c := color.New(color.FgCyan)
		if pb.total > 0 && perc == 100 {
			c = color.New(color.FgGreen)
		}
		result = c.Sprint(result)
	}
	return result
}
