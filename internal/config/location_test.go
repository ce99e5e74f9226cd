package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	t.Run("explicit path wins", func(t *testing.T) {
		explicit := writeConfig(t, "workers: 1\n")
		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, FileName), []byte("workers: 2\n"), 0644)

		got, err := ResolvePath(explicit, dir)
		if err != nil {
			t.Fatalf("ResolvePath() error = %v", err)
		}
		if got != explicit {
			t.Errorf("ResolvePath() = %q, want %q", got, explicit)
		}
	})

	t.Run("missing explicit path is an error", func(t *testing.T) {
		if _, err := ResolvePath(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir()); err == nil {
			t.Error("expected error for missing explicit config")
		}
	})

	t.Run("environment variable", func(t *testing.T) {
		envPath := writeConfig(t, "workers: 3\n")
		t.Setenv(EnvConfigPath, envPath)

		got, err := ResolvePath("", t.TempDir())
		if err != nil {
			t.Fatalf("ResolvePath() error = %v", err)
		}
		if got != envPath {
			t.Errorf("ResolvePath() = %q, want %q", got, envPath)
		}
	})

	t.Run("project file", func(t *testing.T) {
		dir := t.TempDir()
		local := filepath.Join(dir, FileName)
		os.WriteFile(local, []byte("workers: 2\n"), 0644)

		got, err := ResolvePath("", dir)
		if err != nil {
			t.Fatalf("ResolvePath() error = %v", err)
		}
		if got != local {
			t.Errorf("ResolvePath() = %q, want %q", got, local)
		}
	})
}

func TestUserConfigPath(t *testing.T) {
	p, err := UserConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if filepath.Base(p) != "config.yaml" || filepath.Base(filepath.Dir(p)) != "repoquill" {
		t.Errorf("UserConfigPath() = %q", p)
	}
}
