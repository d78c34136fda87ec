// Package config loads and writes centerband profiles: the viewport layout of a list
// plus the settings of the CLI front ends. It never stores scroll state.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/centerband/internal/validate"
	"github.com/ensigniasec/centerband/internal/viewport"
)

const (
	// DefaultPath is where a profile is looked up when none is given.
	DefaultPath = "~/.config/centerband/profile.yaml"

	maxProfileSize = 1024 * 1024

	defaultItems       = 60
	defaultColumns     = 3
	defaultItemHeight  = 40
	defaultCenterStart = 160
	defaultCenterEnd   = 240
	defaultRateLimitMs = 50
	defaultScrollStep  = 10
)

// ErrUnsupportedFormat is returned for profile paths that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported profile format")

// Profile is the on-disk profile.
type Profile struct {
	Viewport viewport.Config `json:"viewport" yaml:"viewport"`
	// Items is the number of cells the TUI lays out.
	Items int `json:"items" yaml:"items" validate:"gte=1"`
	// Watch lists the indices reported by eval and simulate when none are given.
	Watch []int `json:"watch,omitempty" yaml:"watch,omitempty" validate:"dive,gte=0"`
	// ScrollStep is the offset change per key press in the TUI.
	ScrollStep float64 `json:"scroll_step" yaml:"scroll_step" validate:"gt=0"`
}

// Default returns the built-in profile.
func Default() Profile {
	return Profile{
		Viewport: viewport.Config{
			ListItemHeight:    defaultItemHeight,
			ColumnsPerRow:     viewport.Int(defaultColumns),
			CenterYStart:      defaultCenterStart,
			CenterYEnd:        defaultCenterEnd,
			UpdateRateLimitMs: viewport.Float(defaultRateLimitMs),
		},
		Items:      defaultItems,
		Watch:      []int{0, 1, 2, 12, 13, 14},
		ScrollStep: defaultScrollStep,
	}
}

// Validate checks the profile fields and the viewport layout.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if _, err := viewport.Resolve(p.Viewport); err != nil {
		return err
	}
	return nil
}

// Load reads the profile at path. Fields missing from the file keep their defaults.
func Load(path string) (Profile, error) {
	expanded, err := ExpandTilde(path)
	if err != nil {
		return Profile{}, err
	}
	logrus.Debug("Loading profile from: ", expanded)
	data, err := readFile(expanded)
	if err != nil {
		return Profile{}, err
	}
	p := Default()
	if err := Unmarshal(expanded, data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", expanded, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// LoadOrDefault loads path, or DefaultPath when path is empty. A missing default
// profile yields Default(); a missing explicit path is an error.
func LoadOrDefault(path string) (Profile, error) {
	if path != "" {
		return Load(path)
	}
	p, err := Load(DefaultPath)
	if errors.Is(err, os.ErrNotExist) {
		logrus.Debug("no profile found, using built-in defaults")
		return Default(), nil
	}
	return p, err
}

// Save writes p to path as JSON or YAML depending on the extension.
func Save(path string, p Profile) error {
	expanded, err := ExpandTilde(path)
	if err != nil {
		return err
	}
	var data []byte
	switch {
	case isJSONFile(expanded):
		data, err = json.MarshalIndent(p, "", "  ")
	case isYAMLFile(expanded):
		data, err = yaml.Marshal(p)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}
	logrus.Debug("Saving profile to: ", expanded)
	if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o600)
}

// Unmarshal decodes data using path to choose JSON or YAML.
func Unmarshal(path string, data []byte, v any) error {
	switch {
	case isJSONFile(path):
		return json.Unmarshal(data, v)
	case isYAMLFile(path):
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadFile reads path after checking its size against the profile limit.
func ReadFile(path string) ([]byte, error) {
	return readFile(path)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxProfileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), maxProfileSize)
	}
	return io.ReadAll(io.LimitReader(file, maxProfileSize))
}

// ExpandTilde expands the tilde in a path to the user's home directory.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// IsSupported reports whether path has a JSON or YAML extension.
func IsSupported(path string) bool {
	return isJSONFile(path) || isYAMLFile(path)
}

func isJSONFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
