package coerce

import (
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/zugferd/internal/decimal"
	"github.com/rezonia/zugferd/internal/model"
)

// Fixed-point coercers of the Cross Industry Invoice data types
var (
	Amount   Coercer = Decimal("amount", dec.AmountScale)
	Quantity Coercer = Decimal("quantity", dec.QuantityScale)
	Price    Coercer = Decimal("price", dec.PriceScale)
	Percent  Coercer = Decimal("percent", dec.PercentScale)
)

// Decimal accepts numbers and decimal strings, rounds them half away from
// zero to scale and serializes with exactly scale fractional digits.
func Decimal(name string, scale int32) Coercer {
	return decimalCoercer{name: name, scale: scale}
}

type decimalCoercer struct {
	name  string
	scale int32
}

func (c decimalCoercer) Name() string { return c.name }

func (c decimalCoercer) Parse(raw interface{}) (interface{}, error) {
	if _, ok := raw.(bool); ok {
		return nil, invalid(c, model.CodeInvalidAmount, raw, "expected number, got bool")
	}
	d, err := dec.FromAny(raw)
	if err != nil {
		return nil, invalid(c, model.CodeInvalidAmount, raw, "not a decimal number: %v", err)
	}
	return dec.Round(d, c.scale), nil
}

func (c decimalCoercer) Serialize(v interface{}) string {
	d, _ := v.(decimal.Decimal)
	return dec.Format(d, c.scale)
}
