// Package output delivers a finished artifact to stdout or to a file.
//
// File targets are written under an advisory lock so that concurrent scans
// writing the same path serialize, and the content lands through a temp file
// plus rename so readers never observe a partial artifact. Lock files live in
// the system temp directory, never next to the artifact, so an artifact written
// inside a scanned tree does not leave extra files behind.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// StdoutTarget selects standard output as the artifact destination
const StdoutTarget = "-"

// DefaultRetryDelay is how often a blocked lock is retried
const DefaultRetryDelay = 50 * time.Millisecond

// Writer writes artifacts. The zero value is not usable; use NewWriter.
type Writer struct {
	stdout     io.Writer
	retryDelay time.Duration
}

// NewWriter creates a Writer that sends stdout-targeted artifacts to stdout
func NewWriter(stdout io.Writer) *Writer {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Writer{stdout: stdout, retryDelay: DefaultRetryDelay}
}

// IsStdout reports whether path selects standard output
func IsStdout(path string) bool {
	return path == "" || path == StdoutTarget
}

// Write delivers data to path. Waiting for the lock honors ctx.
func (w *Writer) Write(ctx context.Context, path string, data []byte) error {
	if IsStdout(path) {
		if _, err := w.stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lockPath, err := LockPath(path)
	if err != nil {
		return err
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, w.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", lockPath)
	}
	defer lock.Unlock()

	return AtomicWrite(path, data)
}

// LockPath returns the lock file guarding writes to path. Every spelling of
// the same target maps to the same lock.
func LockPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	return filepath.Join(os.TempDir(), ".repoquill-"+id.String()+".lock"), nil
}

// AtomicWrite replaces path with data via a temp file in the same directory.
// On failure the previous file, if any, is left untouched.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tempFile, err := os.CreateTemp(dir, ".repoquill-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	committed := false
	defer func() {
		if !committed {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	committed = true
	return nil
}
