package ir

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// NullSentinel is the cursor-wire encoding of a NULL ordering value.
const NullSentinel = "RONIN_NULL"

// EncodeCursor renders one scalar per ordering key into the `,`-joined,
// URL-encoded wire format described in spec §3/§6. Dates are encoded as
// epoch-millisecond integers; nil becomes the NullSentinel.
func EncodeCursor(values []any) string {
	segments := make([]string, len(values))
	for i, v := range values {
		segments[i] = url.QueryEscape(encodeCursorValue(v))
	}
	return strings.Join(segments, ",")
}

func encodeCursorValue(v any) string {
	switch t := v.(type) {
	case nil:
		return NullSentinel
	case time.Time:
		return strconv.FormatInt(t.UnixMilli(), 10)
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return strconvAny(v)
	}
}

func strconvAny(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// DecodeCursor splits the wire format back into one raw (still
// URL-encoded-reversed) string per ordering key, with nil standing in for
// the NullSentinel. The caller is responsible for parsing each segment
// according to the corresponding field's declared type.
func DecodeCursor(cursor string) ([]*string, error) {
	if cursor == "" {
		return nil, nil
	}
	parts := strings.Split(cursor, ",")
	out := make([]*string, len(parts))
	for i, p := range parts {
		decoded, err := url.QueryUnescape(p)
		if err != nil {
			return nil, err
		}
		if decoded == NullSentinel {
			out[i] = nil
			continue
		}
		out[i] = &decoded
	}
	return out, nil
}
