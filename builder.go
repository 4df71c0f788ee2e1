package typedjson

import (
	"math/big"
	"strconv"

	"github.com/go-jtree/typedjson/schema"
)

// Builder is the external contract the state machine drives to materialize
// values. The parser itself never inspects the concrete representation a
// Builder returns: containers and scalars flow back through it as opaque
// any handles, stored in currentNode/nodesStack and written into parents
// purely through SetField/SetElement. The one exception is the final
// result: Parse returns a root *[]any as the []any it points to.
//
// NewContainer/NewArray allocate an empty record, map, or array/tuple
// instance matching expected. SetField and SetElement write a completed
// child value into a parent container the Builder previously allocated.
// Coerce converts a scalar lexeme - the text of a string, or of a bareword
// literal such as a number, true, false, or null - into a value matching
// expected, or reports an IncompatibleValue error.
type Builder interface {
	NewContainer(expected schema.Type) (any, error)
	NewArray(expected schema.Type) (any, error)
	SetField(parent any, name string, value any)
	SetElement(parent any, index int, value any, expected schema.Type)
	Coerce(lexeme string, quoted bool, expected schema.Type) (any, error)
}

// nativeBuilder is the default Builder: records and maps materialize as
// map[string]any, arrays and tuples as *[]any, and scalars as Go's native
// nil/bool/int64/float64/*big.Float/string.
type nativeBuilder struct{}

// NewContainer satisfies Builder.
func (nativeBuilder) NewContainer(expected schema.Type) (any, error) {
	switch expected.(type) {
	case schema.RecordType, schema.MapType, schema.AnyType:
		return map[string]any{}, nil
	default:
		return nil, &TypeError{Code: UnsupportedType}
	}
}

// NewArray satisfies Builder.
func (nativeBuilder) NewArray(expected schema.Type) (any, error) {
	switch t := expected.(type) {
	case schema.ArrayType:
		if t.State == schema.Closed {
			s := make([]any, 0, t.Size)
			return &s, nil
		}
		s := []any{}
		return &s, nil
	case schema.TupleType, schema.AnyType:
		s := []any{}
		return &s, nil
	default:
		return nil, &TypeError{Code: UnsupportedType}
	}
}

// SetField satisfies Builder.
func (nativeBuilder) SetField(parent any, name string, value any) {
	parent.(map[string]any)[name] = value
}

// SetElement satisfies Builder. Writing past a closed array's declared size
// silently drops the surplus element; the final count is checked against
// the size constraint separately, when the array closes.
func (nativeBuilder) SetElement(parent any, index int, value any, expected schema.Type) {
	if at, ok := expected.(schema.ArrayType); ok && at.State == schema.Closed && index >= at.Size {
		return
	}
	arr := parent.(*[]any)
	*arr = append(*arr, value)
}

// Coerce satisfies Builder.
func (nativeBuilder) Coerce(lexeme string, quoted bool, expected schema.Type) (any, error) {
	switch t := expected.(type) {
	case schema.ScalarType:
		return coerceScalar(lexeme, quoted, t.Tag())
	case schema.AnyType:
		return coerceAny(lexeme, quoted)
	case schema.UnionType:
		for _, member := range t.Members {
			if v, err := (nativeBuilder{}).Coerce(lexeme, quoted, member); err == nil {
				return v, nil
			}
		}
		return nil, &TypeError{Code: IncompatibleValue}
	default:
		return nil, &TypeError{Code: IncompatibleValue}
	}
}

func coerceScalar(lexeme string, quoted bool, tag schema.Tag) (any, error) {
	if tag == schema.String {
		if !quoted {
			return nil, &TypeError{Code: IncompatibleValue}
		}
		return lexeme, nil
	}
	if quoted {
		return nil, &TypeError{Code: IncompatibleValue}
	}
	switch tag {
	case schema.Null:
		if lexeme != "null" {
			return nil, &TypeError{Code: IncompatibleValue}
		}
		return nil, nil
	case schema.Bool:
		switch lexeme {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, &TypeError{Code: IncompatibleValue}
		}
	case schema.Int:
		v, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			return nil, &TypeError{Code: IncompatibleValue, err: err}
		}
		return v, nil
	case schema.Float:
		v, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return nil, &TypeError{Code: IncompatibleValue, err: err}
		}
		return v, nil
	case schema.Decimal:
		v, ok := new(big.Float).SetString(lexeme)
		if !ok {
			return nil, &TypeError{Code: IncompatibleValue}
		}
		return v, nil
	default:
		return nil, &TypeError{Code: IncompatibleValue}
	}
}

// coerceAny infers a scalar's Go representation from its lexeme alone, the
// way the untyped "any" target has to: a quoted lexeme is always a string,
// an unquoted one is null, a boolean, an integer if it parses as one, or
// else a float.
func coerceAny(lexeme string, quoted bool) (any, error) {
	if quoted {
		return lexeme, nil
	}
	switch lexeme {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if v, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return nil, &TypeError{Code: IncompatibleValue, err: err}
	}
	return v, nil
}
