package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "wlshot"

var (
	userHomeDir = os.UserHomeDir
	workingDir  = os.Getwd
)

// Loader finds and reads the rc file.
type Loader struct {
	Version      string // dev builds also look in the working directory
	OverridePath string
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load parses the first rc file found, or returns defaults when there is none.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
// An override path is returned as is, whether or not it exists yet.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		return l.OverridePath
	}
	for _, p := range l.candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (l *Loader) candidates() []string {
	var paths []string
	if l.Version == "dev" {
		if wd, err := workingDir(); err == nil {
			paths = append(paths, filepath.Join(wd, ".wlshotrc"))
		}
	}
	if home, err := userHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDir, "config.rc"),
			filepath.Join(home, ".config", appDir, "wlshot.rc"),
		)
	}
	return paths
}

// SavePath is where Save writes: the file currently in use, else the XDG
// default.
func (l *Loader) SavePath() (string, error) {
	if path := l.GetConfigPath(); path != "" {
		return path, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home dir: %w", err)
	}
	return filepath.Join(home, ".config", appDir, "config.rc"), nil
}

// Save writes cfg in rc format and returns the path written.
func (l *Loader) Save(cfg *Config) (string, error) {
	path, err := l.SavePath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
