// Package jsonx reads loosely typed backend documents. Every reader takes a
// list of gjson paths and returns the first usable value, so one call covers
// the field names and shapes different backend versions answer with.
package jsonx

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// TimeLayouts are the timestamp formats accepted in string fields, tried in order.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// String returns the first non-blank string or number found at paths.
func String(r gjson.Result, paths ...string) (string, bool) {
	for _, p := range paths {
		if s, ok := AsString(r.Get(p)); ok {
			return s, true
		}
	}
	return "", false
}

// AsString reads a trimmed non-blank string. Numbers are returned verbatim.
func AsString(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		return s, s != ""
	case gjson.Number:
		return v.Raw, true
	default:
		return "", false
	}
}

// Decimal returns the first parseable amount found at paths.
func Decimal(r gjson.Result, paths ...string) (decimal.Decimal, bool) {
	for _, p := range paths {
		if d, ok := AsDecimal(r.Get(p)); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// AsDecimal reads an amount sent as a number or a numeric string.
func AsDecimal(v gjson.Result) (decimal.Decimal, bool) {
	var raw string
	switch v.Type {
	case gjson.Number:
		raw = v.Raw
	case gjson.String:
		raw = strings.TrimSpace(v.Str)
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Bool returns the first explicit boolean found at paths.
func Bool(r gjson.Result, paths ...string) (bool, bool) {
	for _, p := range paths {
		v := r.Get(p)
		switch v.Type {
		case gjson.True:
			return true, true
		case gjson.False:
			return false, true
		case gjson.String:
			if b, err := strconv.ParseBool(strings.TrimSpace(v.Str)); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

// Int returns the integer part of the first number found at paths.
func Int(r gjson.Result, paths ...string) (int, bool) {
	for _, p := range paths {
		if d, ok := AsDecimal(r.Get(p)); ok {
			return int(d.IntPart()), true
		}
	}
	return 0, false
}

// PositiveInt returns the first integer greater than zero found at paths.
func PositiveInt(r gjson.Result, paths ...string) (int, bool) {
	for _, p := range paths {
		d, ok := AsDecimal(r.Get(p))
		if !ok {
			continue
		}
		if n := d.IntPart(); n > 0 {
			return int(n), true
		}
	}
	return 0, false
}

// Time returns the first timestamp found at paths, in UTC.
func Time(r gjson.Result, paths ...string) (time.Time, bool) {
	for _, p := range paths {
		if t, ok := AsTime(r.Get(p)); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsTime reads a timestamp in one of TimeLayouts or as epoch seconds or milliseconds.
func AsTime(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		for _, layout := range TimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	case gjson.Number:
		n := v.Int()
		if n <= 0 {
			return time.Time{}, false
		}
		// milliseconds since epoch unless the value is small enough to be seconds
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}
