package coerce

import (
	"strconv"
	"strings"

	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

// Indicator accepts booleans and writes udt:Indicator
var Indicator Coercer = indicatorCoercer{}

type indicatorCoercer struct{}

func (indicatorCoercer) Name() string { return "indicator" }

func (c indicatorCoercer) Parse(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, invalid(c, model.CodeInvalidType, raw, "expected true or false")
		}
		return b, nil
	}
	return nil, invalid(c, model.CodeInvalidType, raw, "expected bool, got %T", raw)
}

func (indicatorCoercer) Serialize(v interface{}) string {
	b, _ := v.(bool)
	return strconv.FormatBool(b)
}

func (c indicatorCoercer) Node(v interface{}) interface{} {
	return xmlnode.New().Set("udt:Indicator", c.Serialize(v))
}
