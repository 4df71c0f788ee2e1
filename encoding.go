// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package typedjson

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/go-jtree/typedjson/internal/escape"
)

// Encode serializes a value produced by Parse (or by any Builder using the
// same representation) back to JSON text, appended to dst. Record and map
// fields are written in sorted key order, for deterministic output; arrays
// preserve element order.
//
// Encode only understands the types nativeBuilder produces: nil, bool,
// int64, float64, *big.Float, string, map[string]any, []any, and the
// *[]any nativeBuilder uses internally for any array not at the document
// root. Passing it a value from a different Builder reports an error.
func Encode(dst []byte, v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return append(dst, "null"...), nil
	case bool:
		if t {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case int64:
		return strconv.AppendInt(dst, t, 10), nil
	case float64:
		return strconv.AppendFloat(dst, t, 'g', -1, 64), nil
	case *big.Float:
		return append(dst, t.Text('g', -1)...), nil
	case string:
		dst = append(dst, '"')
		dst = escape.Escape(dst, t)
		return append(dst, '"'), nil
	case map[string]any:
		return encodeObject(dst, t)
	case []any:
		return encodeArray(dst, t)
	case *[]any:
		return encodeArray(dst, *t)
	default:
		return nil, fmt.Errorf("typedjson: cannot encode %T", v)
	}
}

func encodeObject(dst []byte, m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, '"')
		dst = escape.Escape(dst, k)
		dst = append(dst, '"', ':')
		var err error
		dst, err = Encode(dst, m[k])
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func encodeArray(dst []byte, a []any) ([]byte, error) {
	dst = append(dst, '[')
	for i, elem := range a {
		if i > 0 {
			dst = append(dst, ',')
		}
		var err error
		dst, err = Encode(dst, elem)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ']'), nil
}
