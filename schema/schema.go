// Package schema defines the expected-type descriptors that drive
// typedjson's parser. The caller supplies the Type; the parser switches on
// the concrete types below to decide how to allocate containers, resolve
// field and element types, and validate structure.
package schema

// Tag identifies the shape of a Type.
type Tag int

// The tags a Type may report.
const (
	Invalid Tag = iota
	Null
	Bool
	Int
	Float
	Decimal
	String
	Record
	Map
	Array
	Tuple
	Union
	Any
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int:
		return "int"
	case Float:
		return "float"
	case Decimal:
		return "decimal"
	case String:
		return "string"
	case Record:
		return "record"
	case Map:
		return "map"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Union:
		return "union"
	case Any:
		return "any"
	default:
		return "invalid"
	}
}

// Type is the expected-type descriptor the parser consults at every
// structural boundary. The concrete types in this package (ScalarType,
// RecordType, MapType, ArrayType, TupleType, UnionType, AnyType) are the
// only ones the parser knows how to interpret; anything else reaching
// Parse fails with an UnsupportedType error.
type Type interface {
	Tag() Tag
}

// ScalarType is a leaf type: Null, Bool, Int, Float, Decimal, or String.
type ScalarType struct{ tag Tag }

// Tag satisfies Type.
func (s ScalarType) Tag() Tag { return s.tag }

// The scalar singletons, one per scalar tag. ScalarType's tag field is
// unexported, so code outside this package uses these values rather than
// constructing its own ScalarType.
var (
	NullType    = ScalarType{Null}
	BoolType    = ScalarType{Bool}
	IntType     = ScalarType{Int}
	FloatType   = ScalarType{Float}
	DecimalType = ScalarType{Decimal}
	StringType  = ScalarType{String}
)

// AnyType is the untyped JSON/anydata target: every input shape is
// accepted, and no field or element is ever rejected or required.
type AnyType struct{}

// Tag satisfies Type.
func (AnyType) Tag() Tag { return Any }

// Field describes one named member of a RecordType.
type Field struct {
	Name     string
	Type     Type
	Required bool
}

// RecordType describes a JSON object with named, individually typed
// fields, and an optional rest type for fields outside that set.
//
// Fields is consulted as a template: the parser makes its own mutable copy
// (see typestack.go) when it enters a record, so RecordType itself is never
// mutated by parsing.
type RecordType struct {
	Fields map[string]*Field
	Rest   Type // nil: no rest type, extra fields are projected away (dropped)
}

// Tag satisfies Type.
func (RecordType) Tag() Tag { return Record }

// MapType describes a JSON object whose values all share a single type.
type MapType struct {
	Value Type
}

// Tag satisfies Type.
func (MapType) Tag() Tag { return Map }

// ArrayState distinguishes an open (growable) array from a closed
// (fixed-size) one.
type ArrayState int

// The states an ArrayType may be in.
const (
	Open ArrayState = iota
	Closed
)

// ArrayType describes a JSON array whose elements all share a single type,
// optionally constrained to an exact size.
type ArrayType struct {
	Elem  Type
	State ArrayState
	Size  int // meaningful only when State == Closed
}

// Tag satisfies Type.
func (ArrayType) Tag() Tag { return Array }

// TupleType describes a JSON array with a fixed sequence of per-position
// types, and an optional rest type for positions beyond that sequence.
type TupleType struct {
	Members []Type
	Rest    Type // nil: positions beyond Members are projected away (dropped)
}

// Tag satisfies Type.
func (TupleType) Tag() Tag { return Tuple }

// UnionType describes a set of alternative types. The parser defers
// choosing a member to the Builder, which tries members in order until one
// coerces; the parser's own responsibility is limited to deciding, up
// front, whether the union is one it supports at all (see Supported).
type UnionType struct {
	Members []Type
}

// Tag satisfies Type.
func (UnionType) Tag() Tag { return Union }

// Supported reports whether u is a union the parser can drive: no member
// may be a Record, Map, Any, or a Union that itself contains one of those
// (recursively). Such members need the parser to make allocation decisions
// before a value is coerced, which a deferred-to-the-Builder union
// resolution cannot provide.
//
// The original implementation this parser is modeled on had a bug here: on
// finding a nested union member, it recursed on the outer union instead of
// the nested one, so the recursive case was either unreachable or
// infinitely recursive depending on nesting depth. Supported recurses on
// the nested member instead.
func (u UnionType) Supported() bool {
	for _, m := range u.Members {
		switch t := m.(type) {
		case RecordType:
			return false
		case MapType:
			return false
		case AnyType:
			return false
		case UnionType:
			if !t.Supported() {
				return false
			}
		}
	}
	return true
}
