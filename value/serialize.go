package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ronincore/compiler/ir"
)

// Serialize converts a raw Go value into the representation the driver
// should receive for a parameterised placeholder: booleans become 0/1,
// dates become ISO-8601-with-milliseconds strings, JSON-typed values are
// marshalled to a JSON string, everything else (blobs included) passes
// through.
func Serialize(v any, fieldType ir.FieldType) (any, error) {
	switch fieldType {
	case ir.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("value: expected bool, got %T", v)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.TypeDate:
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format("2006-01-02T15:04:05.000Z"), nil
		case string:
			return t, nil
		default:
			return nil, fmt.Errorf("value: expected time.Time, got %T", v)
		}
	case ir.TypeJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("value: cannot serialise JSON value: %w", err)
		}
		return string(b), nil
	default:
		return v, nil
	}
}

// InlineLiteral renders an already-serialised value as an SQL literal for
// the inline-parameter transaction mode (spec §4.2): strings are
// single-quoted with SQL escaping, booleans 0/1, JSON via json(...), NULL
// as NULL.
func InlineLiteral(v any, fieldType ir.FieldType) string {
	if v == nil {
		return "NULL"
	}
	switch fieldType {
	case ir.TypeJSON:
		s, _ := v.(string)
		return "json(" + quoteSQLString(s) + ")"
	}
	switch t := v.(type) {
	case string:
		return quoteSQLString(t)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return quoteSQLString(fmt.Sprintf("%v", t))
	}
}

// quoteSQLString single-quotes s, escaping embedded single quotes by
// doubling them, SQLite-style.
func quoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
