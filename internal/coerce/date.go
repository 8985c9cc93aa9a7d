package coerce

import (
	"strings"
	"time"

	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

// DateFormat102 is the UN/CEFACT format qualifier for CCYYMMDD
const DateFormat102 = "102"

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// Date parses calendar dates and writes udt:DateTimeString with format 102
var Date Coercer = dateCoercer{element: "udt:DateTimeString"}

// FormattedDate is Date written as qdt:DateTimeString, used by referenced documents
var FormattedDate Coercer = dateCoercer{element: "qdt:DateTimeString"}

type dateCoercer struct {
	element string
}

func (c dateCoercer) Name() string {
	if strings.HasPrefix(c.element, "qdt:") {
		return "formatted-date"
	}
	return "date"
}

func (c dateCoercer) Parse(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return nil, invalid(c, model.CodeInvalidDate, raw, "zero time")
		}
		return calendarDate(v), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil, invalid(c, model.CodeInvalidDate, nil, "zero time")
		}
		return calendarDate(*v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, invalid(c, model.CodeInvalidDate, nil, "date is empty")
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return calendarDate(t), nil
			}
		}
		return nil, invalid(c, model.CodeInvalidDate, raw, "unrecognized date %q", s)
	default:
		return nil, invalid(c, model.CodeInvalidDate, raw, "expected date or date string, got %T", raw)
	}
}

func (dateCoercer) Serialize(v interface{}) string {
	t, _ := v.(time.Time)
	return t.Format("20060102")
}

func (c dateCoercer) Node(v interface{}) interface{} {
	return xmlnode.New().Set(c.element, xmlnode.New().
		Set("@format", DateFormat102).
		Set(xmlnode.TextKey, c.Serialize(v)))
}

// calendarDate keeps the date as seen in t's own location
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
