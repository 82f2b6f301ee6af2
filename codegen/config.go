package codegen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// ConfigFileName is the optional per-module configuration file.
const ConfigFileName = ".enumstate.yaml"

// FileConfig holds the settings of a configuration file. Unset fields
// leave the built-in defaults or command line values in place.
type FileConfig struct {
	// Output is the generated file name, relative to each package directory
	Output string `yaml:"output"`

	// Header replaces the generated file header
	Header string `yaml:"header"`

	TypeCheck *bool `yaml:"typecheck"`
	Recursive *bool `yaml:"recursive"`

	// Jobs bounds the number of packages generated concurrently
	Jobs int `yaml:"jobs"`

	// Path is the file the configuration was read from
	Path string `yaml:"-"`
}

// LoadConfigFile reads a configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	fc := &FileConfig{}
	if err := yaml.UnmarshalWithOptions(data, fc, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("error decoding config %q: %w", path, err)
	}
	if fc.Jobs < 0 {
		return nil, fmt.Errorf("config %q: jobs must not be negative", path)
	}
	fc.Path = path
	return fc, nil
}

// FindConfigFile looks for ConfigFileName in dir and its parents, stopping
// at the directory holding go.mod. It returns "" when there is none.
func FindConfigFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %q: %w", dir, err)
	}
	for {
		path := filepath.Join(abs, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if _, err := os.Stat(filepath.Join(abs, "go.mod")); err == nil {
			return "", nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}
