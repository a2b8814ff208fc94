package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a taskfile. The format is chosen by extension:
// .toml, or .yaml/.yml.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- the taskfile path is the user's own input
	if err != nil {
		return nil, fmt.Errorf("read taskfile: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
