// Package logger provides console logging for repoquill scans.
//
// ConsoleLogger writes timestamped, level-filtered lines, renders pipeline
// progress and prints the end-of-run summary. When writing to an interactive
// terminal, progress is drawn on a single line that is redrawn in place;
// otherwise only phase transitions are logged so redirected output stays
// readable. All methods are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/repoquill/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ValidLevels lists the accepted log level names
var ValidLevels = []string{"trace", "debug", "info", "warn", "error"}

// progressBarWidth is the number of cells in a rendered progress bar
const progressBarWidth = 20

// ConsoleLogger logs scan progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	live        bool

	// progress line state, guarded by mutex
	lineOpen  bool
	lastPhase models.Phase
	started   bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything
// else selects "info". Color and live progress are enabled when writer is a
// terminal.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	tty := isTerminal(writer)
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: tty && !color.NoColor,
		live:        tty,
	}
}

// SetLiveProgress forces in-place progress redraws on or off
func (cl *ConsoleLogger) SetLiveProgress(live bool) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.live = live
}

// isTerminal reports whether w is a file attached to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if IsValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level names a known log level
func IsValidLevel(level string) bool {
	for _, l := range ValidLevels {
		if l == level {
			return true
		}
	}
	return false
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message.
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.closeLine()

	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, levelColor(level).Sprint(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// closeLine terminates a pending live progress line. Caller holds the mutex.
func (cl *ConsoleLogger) closeLine() {
	if cl.lineOpen {
		io.WriteString(cl.writer, "\n")
		cl.lineOpen = false
	}
}

// LogProgress renders a pipeline progress report at INFO level.
// In live mode the current phase is redrawn in place:
// "\r[HH:MM:SS] Loading      [==========          ] 5/10 (50%) src/a.go".
// Otherwise one line is logged when each phase starts.
func (cl *ConsoleLogger) LogProgress(report models.ProgressReport) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	phaseChanged := !cl.started || report.Phase != cl.lastPhase
	cl.started = true
	cl.lastPhase = report.Phase

	if !cl.live {
		if phaseChanged {
			fmt.Fprintf(cl.writer, "[%s] %s\n", timestamp(), phaseStartMessage(report))
		}
		return
	}

	if phaseChanged {
		cl.closeLine()
	}
	fmt.Fprintf(cl.writer, "\r\033[K[%s] %s", timestamp(), cl.renderProgress(report))
	cl.lineOpen = true
}

func phaseStartMessage(report models.ProgressReport) string {
	if report.Total == models.UnknownTotal {
		return fmt.Sprintf("%s...", report.Phase)
	}
	return fmt.Sprintf("%s %d files...", report.Phase, report.Total)
}

func (cl *ConsoleLogger) renderProgress(report models.ProgressReport) string {
	pb := NewProgressBar(report.Total, progressBarWidth, cl.colorOutput)
	pb.SetPrefix(fmt.Sprintf("%-12s ", report.Phase.String()))
	pb.Update(report.Processed)

	line := pb.Render()
	if report.CurrentFile != "" {
		line += " " + report.CurrentFile
	}
	return line
}

// FinishProgress ends a pending live progress line
func (cl *ConsoleLogger) FinishProgress() {
	if cl.writer == nil {
		return
	}
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.closeLine()
}

// LogSummary logs the scan summary at INFO level.
// Format: "[HH:MM:SS] === Scan Summary ===" followed by file counts, total
// size, error count and duration. Per-file errors are listed below.
func (cl *ConsoleLogger) LogSummary(result *models.Result) {
	if cl.writer == nil || result == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.closeLine()

	ts := timestamp()
	header := "=== Scan Summary ==="
	errorsLine := fmt.Sprintf("Errors: %d", len(result.Errors))
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		if len(result.Errors) > 0 {
			errorsLine = color.New(color.FgRed).Sprint(errorsLine)
		} else {
			errorsLine = color.New(color.FgGreen).Sprint(errorsLine)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s\n", ts, header)
	fmt.Fprintf(&sb, "[%s] Total files: %d\n", ts, result.TotalFiles)
	fmt.Fprintf(&sb, "[%s] Full: %d\n", ts, result.FullFiles)
	fmt.Fprintf(&sb, "[%s] Tree-only: %d\n", ts, result.TreeOnlyFiles)
	fmt.Fprintf(&sb, "[%s] Total size: %s\n", ts, formatBytes(result.TotalBytes))
	fmt.Fprintf(&sb, "[%s] %s\n", ts, errorsLine)
	fmt.Fprintf(&sb, "[%s] Duration: %s\n", ts, formatDuration(result.Duration))

	for _, fe := range result.Errors {
		fmt.Fprintf(&sb, "[%s]   - %s: %s\n", ts, fe.Path, fe.Message)
	}

	io.WriteString(cl.writer, sb.String())
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or with --quiet.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string)                  {}
func (n *NoOpLogger) LogDebug(message string)                  {}
func (n *NoOpLogger) LogInfo(message string)                   {}
func (n *NoOpLogger) LogWarn(message string)                   {}
func (n *NoOpLogger) LogError(message string)                  {}
func (n *NoOpLogger) LogProgress(report models.ProgressReport) {}
func (n *NoOpLogger) FinishProgress()                          {}
func (n *NoOpLogger) LogSummary(result *models.Result)         {}
