package model

import (
	"math"
	"reflect"
	"strings"
	"time"
)

// Row is a loosely typed storage row keyed by column name.
type Row map[string]any

// timestampLayouts are tried in order for text timestamps; the SQLite drivers write the
// second one.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// value returns the column with pointers dereferenced. A typed nil pointer yields nil.
func (r Row) value(col string) (any, error) {
	v, ok := r[col]
	if !ok {
		return nil, &DecodeError{Column: col, Reason: "column missing"}
	}
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	return rv.Interface(), nil
}

// Uint reads a required non-negative integer column.
func (r Row) Uint(col string) (uint, error) {
	p, err := r.OptionalUint(col)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, &DecodeError{Column: col, Reason: "required column is null"}
	}
	return *p, nil
}

// OptionalUint reads a nullable integer column; NULL yields nil.
func (r Row) OptionalUint(col string) (*uint, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return nil, err
	}
	rv := reflect.ValueOf(v)
	var n uint
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return nil, &DecodeError{Column: col, Value: v, Reason: "negative id"}
		}
		n = uint(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f < 0 || f != math.Trunc(f) || f >= 1<<64 {
			return nil, &DecodeError{Column: col, Value: v, Reason: "not a non-negative integer"}
		}
		n = uint(f)
	default:
		return nil, &DecodeError{Column: col, Value: v, Reason: "expected integer"}
	}
	return &n, nil
}

// String reads a required text column.
func (r Row) String(col string) (string, error) {
	p, err := r.OptionalString(col)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", &DecodeError{Column: col, Reason: "required column is null"}
	}
	return *p, nil
}

// OptionalString reads a nullable text column; NULL yields nil.
func (r Row) OptionalString(col string) (*string, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return nil, err
	}
	switch s := v.(type) {
	case string:
		return &s, nil
	case []byte:
		str := string(s)
		return &str, nil
	default:
		return nil, &DecodeError{Column: col, Value: v, Reason: "expected text"}
	}
}

// Time reads a required timestamp column as UTC.
func (r Row) Time(col string) (time.Time, error) {
	p, err := r.OptionalTime(col)
	if err != nil {
		return time.Time{}, err
	}
	if p == nil {
		return time.Time{}, &DecodeError{Column: col, Reason: "required column is null"}
	}
	return *p, nil
}

// OptionalTime reads a nullable timestamp column as UTC; NULL yields nil.
func (r Row) OptionalTime(col string) (*time.Time, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return nil, err
	}
	var text string
	switch t := v.(type) {
	case time.Time:
		return &t, nil
	case string:
		text = t
	case []byte:
		text = string(t)
	default:
		return nil, &DecodeError{Column: col, Value: v, Reason: "expected timestamp"}
	}
	text = strings.TrimSpace(text)
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, &DecodeError{Column: col, Value: v, Reason: "unrecognised timestamp " + text}
}
