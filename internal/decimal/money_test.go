package decimal_test

import (
	"encoding/json"
	"math"
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/zugferd/internal/decimal"
)

func TestFromInt(t *testing.T) {
	d := decimal.FromInt(100000)
	assert.True(t, d.Equal(dec.NewFromInt(100000)))
}

func TestFromFloat(t *testing.T) {
	d := decimal.FromFloat(37.6)
	assert.Equal(t, "37.6", d.String())
}

func TestFromString(t *testing.T) {
	d, err := decimal.FromString(" 123456.78 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("123456.78")))

	_, err = decimal.FromString("not-a-number")
	require.Error(t, err)
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"string", "198.00", "198"},
		{"json number", json.Number("37.62"), "37.62"},
		{"float64", 235.62, "235.62"},
		{"int", 10, "10"},
		{"int64", int64(-5), "-5"},
		{"uint32", uint32(7), "7"},
		{"decimal", dec.RequireFromString("1.5"), "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.FromAny(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.String())
		})
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := decimal.FromAny(true)
	require.Error(t, err)

	_, err = decimal.FromAny([]int{1})
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input    string
		scale    int32
		expected string
	}{
		{"37.6", decimal.AmountScale, "37.60"},
		{"198", decimal.AmountScale, "198.00"},
		{"1.005", decimal.AmountScale, "1.01"},
		{"-1.005", decimal.AmountScale, "-1.01"},
		{"2", decimal.QuantityScale, "2.0000"},
		{"19", decimal.PercentScale, "19.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, decimal.Format(dec.RequireFromString(tt.input), tt.scale))
		})
	}
}

func TestRound(t *testing.T) {
	d := decimal.Round(dec.RequireFromString("0.125"), 2)
	assert.Equal(t, "0.13", d.String())
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(100),
		dec.RequireFromString("0.10"),
		dec.RequireFromString("0.20"),
	}
	result := decimal.Sum(values)
	assert.True(t, result.Equal(dec.RequireFromString("100.30")))
}

func TestSum_Empty(t *testing.T) {
	result := decimal.Sum([]dec.Decimal{})
	assert.True(t, result.IsZero())
}

func TestFromAny_NonFinite(t *testing.T) {
	for _, v := range []interface{}{math.NaN(), math.Inf(1), math.Inf(-1), float32(math.Inf(1))} {
		_, err := decimal.FromAny(v)
		assert.Error(t, err)
	}
}
