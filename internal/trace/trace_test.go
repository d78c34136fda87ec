//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/centerband/internal/viewport"
)

func TestReplay_ThrottledBurst(t *testing.T) {
	tr, err := Load(filepath.Join("testdata", "sessions", "burst.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "burst", tr.Name)

	report, err := Replay(tr, viewport.Config{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []int{0}, report.Indices)

	assert.Equal(t, []Notification{
		{AtMs: 0, OffsetY: 0, Index: 0, InCenter: true, Initial: true},
		{AtMs: 0, OffsetY: 10, Index: 0, InCenter: true},
		{AtMs: 100, OffsetY: 30, Index: 0, InCenter: true},
	}, report.Notifications)
	assert.Equal(t, uint64(3), report.Stats.Requested)
	assert.Equal(t, uint64(2), report.Stats.Applied)
	assert.Equal(t, uint64(1), report.Stats.Coalesced)
}

func TestReplay_UsesSuppliedLayoutAndIndices(t *testing.T) {
	tr, err := Load(filepath.Join("testdata", "sessions", "nested", "fling.json"))
	require.NoError(t, err)

	cfg := viewport.Config{
		ListItemHeight: 100,
		ColumnsPerRow:  viewport.Int(3),
		CenterYStart:   0,
		CenterYEnd:     100,
	}
	report, err := Replay(tr, cfg, []int{3})
	require.NoError(t, err)

	// No rate limit: one initial callback plus one per event.
	require.Len(t, report.Notifications, 4)
	got := make([]bool, 0, len(report.Notifications))
	for _, n := range report.Notifications {
		assert.Equal(t, 3, n.Index)
		got = append(got, n.InCenter)
	}
	// Row 1 midpoint sits at 150, 150, 30, -110 relative to the viewport.
	assert.Equal(t, []bool{false, false, true, false}, got)
	assert.InDelta(t, 32.0, report.Notifications[3].AtMs, 0)
}

func TestReplay_InvalidLayout(t *testing.T) {
	tr := &Trace{Events: []Event{{AtMs: 0, OffsetY: 1}}}
	_, err := Replay(tr, viewport.Config{ListItemHeight: -1}, nil)
	require.ErrorIs(t, err, viewport.ErrInvalidConfig)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errIs   error
		wantErr bool
	}{
		{name: "empty", content: "events: []\n", errIs: ErrEmptyTrace},
		{name: "unordered", content: "events:\n  - {at_ms: 10, offset_y: 1}\n  - {at_ms: 5, offset_y: 2}\n", errIs: ErrUnorderedEvents},
		{name: "negative time", content: "events:\n  - {at_ms: -1, offset_y: 1}\n", wantErr: true},
		{name: "fractional watch", content: "watch: [1.5]\nevents:\n  - {at_ms: 0, offset_y: 1}\n", wantErr: true},
		{name: "valid", content: "watch: [2]\nevents:\n  - {at_ms: 0, offset_y: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Parse("session.yaml", []byte(tt.content))
			switch {
			case tt.errIs != nil:
				require.ErrorIs(t, err, tt.errIs)
			case tt.wantErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "session.yaml", tr.Name)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	root := filepath.Join("testdata", "sessions")
	found, err := Discover(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "burst.yaml"),
		filepath.Join(root, "nested", "fling.json"),
	}, found)
}

func TestDiscover_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, filepath.Join("testdata", "sessions"))
	require.ErrorIs(t, err, context.Canceled)
}
