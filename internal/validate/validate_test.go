//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type band struct {
	Start float64
	End   float64 `validate:"notltfield=Start"`
}

type rows struct {
	First int
	Last  int `validate:"notltfield=First"`
}

func TestNotLessThanField(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{name: "ordered floats", value: band{Start: 0, End: 100}},
		{name: "equal floats", value: band{Start: 40, End: 40}},
		{name: "inverted floats", value: band{Start: 60, End: 40}, wantErr: true},
		{name: "nan end is unordered", value: band{Start: 10, End: math.NaN()}},
		{name: "ordered ints", value: rows{First: 1, Last: 2}},
		{name: "inverted ints", value: rows{First: 3, Last: 2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var(1.5, "gt=0"))
	assert.Error(t, Var(0.0, "gt=0"))
	assert.Error(t, Var(-3, "gte=1"))
}
