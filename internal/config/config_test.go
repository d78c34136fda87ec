//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/centerband/internal/viewport"
)

func TestDefault_IsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	l, err := viewport.Resolve(p.Viewport)
	require.NoError(t, err)
	assert.Equal(t, 3, l.ColumnsPerRow)
	assert.InDelta(t, 20.0, l.ListItemLowerBound, 0)
}

func TestLoad_YAMLMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `
viewport:
  list_item_height: 100
  center_y_start: 0
  center_y_end: 100
  list_item_lower_bound: 0
items: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, p.Viewport.ListItemHeight, 0)
	require.NotNil(t, p.Viewport.ListItemLowerBound)
	assert.InDelta(t, 0.0, *p.Viewport.ListItemLowerBound, 0)
	assert.Nil(t, p.Viewport.ListItemUpperBound)
	assert.Equal(t, 10, p.Items)
	// Not in the file: kept from Default().
	assert.InDelta(t, float64(defaultScrollStep), p.ScrollStep, 0)
	require.NotNil(t, p.Viewport.ColumnsPerRow)
	assert.Equal(t, defaultColumns, *p.Viewport.ColumnsPerRow)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	content := `{"viewport":{"list_item_height":50,"center_y_start":10,"center_y_end":20,"columns_per_row":2},"watch":[4,5]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, p.Watch)
	assert.Equal(t, 2, *p.Viewport.ColumnsPerRow)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		file     string
		content  string
		errIs    error
		contains string
	}{
		{
			name:    "inverted band",
			file:    "bad.yaml",
			content: "viewport:\n  list_item_height: 10\n  center_y_start: 50\n  center_y_end: 10\n",
			errIs:   viewport.ErrInvalidConfig,
		},
		{
			name:     "negative watch index",
			file:     "watch.yaml",
			content:  "watch: [-1]\n",
			contains: "invalid profile",
		},
		{
			name:    "unknown extension",
			file:    "profile.toml",
			content: "items = 3\n",
			errIs:   ErrUnsupportedFormat,
		},
		{
			name:     "malformed yaml",
			file:     "broken.yaml",
			content:  "viewport: [",
			contains: "parse profile",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLoad_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("#", maxProfileSize+1)), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestSaveAndReload(t *testing.T) {
	for _, name := range []string{"nested/profile.yaml", "nested/profile.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			p := Default()
			p.Items = 7
			p.Viewport.ListItemUpperBound = viewport.Float(33)
			require.NoError(t, Save(path, p))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}

	err := Save(filepath.Join(t.TempDir(), "profile.txt"), Default())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadOrDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)

	_, err = LoadOrDefault(filepath.Join(home, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	custom := Default()
	custom.Items = 99
	require.NoError(t, Save(DefaultPath, custom))
	p, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 99, p.Items)
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandTilde("~/x/y.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y.yaml"), got)

	got, err = ExpandTilde("/abs/path.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path.yaml", got)
}
