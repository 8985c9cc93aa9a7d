package decimal

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Scales used by the Cross Industry Invoice data types
const (
	AmountScale   int32 = 2
	QuantityScale int32 = 4
	PriceScale    int32 = 4
	PercentScale  int32 = 2
)

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromFloat creates decimal from the shortest decimal representation of a float
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FromString parses decimal from string, surrounding whitespace is ignored
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// FromAny converts numeric Go values and decimal strings into a decimal
func FromAny(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return Zero, fmt.Errorf("nil decimal")
		}
		return *n, nil
	case string:
		return FromString(n)
	case json.Number:
		return FromString(n.String())
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Zero, fmt.Errorf("non-finite number %v", n)
		}
		return FromFloat(n), nil
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return Zero, fmt.Errorf("non-finite number %v", n)
		}
		return decimal.NewFromFloat32(n), nil
	case int:
		return FromInt(int64(n)), nil
	case int8:
		return FromInt(int64(n)), nil
	case int16:
		return FromInt(int64(n)), nil
	case int32:
		return FromInt(int64(n)), nil
	case int64:
		return FromInt(n), nil
	case uint:
		return fromUint(uint64(n)), nil
	case uint8:
		return fromUint(uint64(n)), nil
	case uint16:
		return fromUint(uint64(n)), nil
	case uint32:
		return fromUint(uint64(n)), nil
	case uint64:
		return fromUint(n), nil
	case fmt.Stringer:
		return FromString(n.String())
	default:
		return Zero, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func fromUint(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// Round rounds half away from zero to the given scale
func Round(d decimal.Decimal, scale int32) decimal.Decimal {
	return d.Round(scale)
}

// Format renders d with exactly scale fractional digits
func Format(d decimal.Decimal, scale int32) string {
	return d.StringFixed(scale)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
