package viewport

import (
	"time"

	"github.com/ensigniasec/centerband/internal/validate"
)

const defaultColumnsPerRow = 1

// Config is the caller-supplied layout of a list or grid. Nil optional fields take their defaults.
type Config struct {
	// ListItemHeight is the pixel height of one row.
	ListItemHeight float64 `json:"list_item_height" yaml:"list_item_height"`
	// ColumnsPerRow defaults to 1.
	ColumnsPerRow *int    `json:"columns_per_row,omitempty" yaml:"columns_per_row,omitempty"`
	CenterYStart  float64 `json:"center_y_start" yaml:"center_y_start"`
	CenterYEnd    float64 `json:"center_y_end" yaml:"center_y_end"`
	// ListItemLowerBound and ListItemUpperBound are probe offsets from an item's top edge.
	// Both default to half the item height.
	ListItemLowerBound *float64 `json:"list_item_lower_bound,omitempty" yaml:"list_item_lower_bound,omitempty"`
	ListItemUpperBound *float64 `json:"list_item_upper_bound,omitempty" yaml:"list_item_upper_bound,omitempty"`
	// UpdateRateLimitMs throttles SetOffsetY. Nil or zero propagates every update immediately.
	UpdateRateLimitMs *float64 `json:"update_rate_limit_ms,omitempty" yaml:"update_rate_limit_ms,omitempty"`
}

// Layout is a Config with every default applied.
type Layout struct {
	ListItemHeight     float64 `json:"list_item_height" yaml:"list_item_height" validate:"gt=0"`
	ColumnsPerRow      int     `json:"columns_per_row" yaml:"columns_per_row" validate:"gte=1"`
	CenterYStart       float64 `json:"center_y_start" yaml:"center_y_start"`
	CenterYEnd         float64 `json:"center_y_end" yaml:"center_y_end" validate:"notltfield=CenterYStart"`
	ListItemLowerBound float64 `json:"list_item_lower_bound" yaml:"list_item_lower_bound"`
	ListItemUpperBound float64 `json:"list_item_upper_bound" yaml:"list_item_upper_bound"`
	UpdateRateLimitMs  float64 `json:"update_rate_limit_ms" yaml:"update_rate_limit_ms" validate:"gte=0"`
}

// RateLimit returns the throttle window, or zero when updates are not rate limited.
func (l Layout) RateLimit() time.Duration {
	return time.Duration(l.UpdateRateLimitMs * float64(time.Millisecond))
}

// Resolve merges cfg with the defaults and validates the result.
func Resolve(cfg Config) (Layout, error) {
	l := Layout{
		ListItemHeight:     cfg.ListItemHeight,
		ColumnsPerRow:      defaultColumnsPerRow,
		CenterYStart:       cfg.CenterYStart,
		CenterYEnd:         cfg.CenterYEnd,
		ListItemLowerBound: cfg.ListItemHeight / 2,
		ListItemUpperBound: cfg.ListItemHeight / 2,
	}
	if cfg.ColumnsPerRow != nil {
		l.ColumnsPerRow = *cfg.ColumnsPerRow
	}
	if cfg.ListItemLowerBound != nil {
		l.ListItemLowerBound = *cfg.ListItemLowerBound
	}
	if cfg.ListItemUpperBound != nil {
		l.ListItemUpperBound = *cfg.ListItemUpperBound
	}
	if cfg.UpdateRateLimitMs != nil {
		l.UpdateRateLimitMs = *cfg.UpdateRateLimitMs
	}
	if err := validate.Struct(l); err != nil {
		return Layout{}, invalidConfig(err)
	}
	return l, nil
}

// Int returns a pointer to v, for optional Config fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for optional Config fields.
func Float(v float64) *float64 { return &v }
