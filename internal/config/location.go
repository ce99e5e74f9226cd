package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// FileName is the project configuration file name
const FileName = ".repoquill.yaml"

// EnvConfigPath names the environment variable that points at a config file
const EnvConfigPath = "REPOQUILL_CONFIG"

// ResolvePath picks the configuration file to load.
// Priority order:
//  1. explicit path (from --config), which must exist
//  2. REPOQUILL_CONFIG environment variable (if set)
//  3. .repoquill.yaml in dir
//  4. ~/.config/repoquill/config.yaml
//
// An empty result means no file was found and defaults apply.
func ResolvePath(explicit, dir string) (string, error) {
	if explicit != "" {
		p, err := homedir.Expand(explicit)
		if err != nil {
			return "", fmt.Errorf("expand config path: %w", err)
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s: %w", p, err)
		}
		return p, nil
	}

	if env := os.Getenv(EnvConfigPath); env != "" {
		return homedir.Expand(env)
	}

	local := filepath.Join(dir, FileName)
	if fileExists(local) {
		return local, nil
	}

	if user, err := UserConfigPath(); err == nil && fileExists(user) {
		return user, nil
	}

	return "", nil
}

// UserConfigPath returns the per-user configuration file location
func UserConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "repoquill", "config.yaml"), nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
