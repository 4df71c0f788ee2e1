package typedjson

import "github.com/go-jtree/typedjson/schema"

// parserContext identifies the enclosing composite kind, needed to decide
// which terminal state to return to after a nested value completes.
type parserContext int

const (
	inMap parserContext = iota
	inArray
)

// typeStack holds the parallel stacks that drive every type-directed
// decision the state machine makes: which type to expect next, which
// fields are still pending in the record scope(s) currently open, what
// catch-all type (if any) governs fields/elements outside that set, which
// kind of composite encloses the current position, and the current element
// index for each open array or tuple.
//
// A nil entry on expectedTypes is the projection sentinel: it means "skip
// this subtree," and taints every descendant scope until the composite it
// was pushed for closes (invariant 6 in the parser's data model).
type typeStack struct {
	expectedTypes  []schema.Type
	fieldHierarchy []map[string]*schema.Field
	restType       []schema.Type
	parserContexts []parserContext
	arrayIndexes   []int
	currentField   *schema.Field
}

func (ts *typeStack) reset() {
	ts.expectedTypes = ts.expectedTypes[:0]
	ts.fieldHierarchy = ts.fieldHierarchy[:0]
	ts.restType = ts.restType[:0]
	ts.parserContexts = ts.parserContexts[:0]
	ts.arrayIndexes = ts.arrayIndexes[:0]
	ts.currentField = nil
}

func (ts *typeStack) pushExpected(t schema.Type) { ts.expectedTypes = append(ts.expectedTypes, t) }

func (ts *typeStack) popExpected() schema.Type {
	n := len(ts.expectedTypes) - 1
	t := ts.expectedTypes[n]
	ts.expectedTypes = ts.expectedTypes[:n]
	return t
}

func (ts *typeStack) peekExpected() schema.Type {
	return ts.peekExpectedAt(0)
}

// peekExpectedAt returns the expectedTypes entry depth below the top
// (depth 0 is the top itself), or nil if the stack isn't that deep.
func (ts *typeStack) peekExpectedAt(depth int) schema.Type {
	i := len(ts.expectedTypes) - 1 - depth
	if i < 0 {
		return nil
	}
	return ts.expectedTypes[i]
}

func (ts *typeStack) pushContext(c parserContext) { ts.parserContexts = append(ts.parserContexts, c) }

func (ts *typeStack) popContext() parserContext {
	n := len(ts.parserContexts) - 1
	c := ts.parserContexts[n]
	ts.parserContexts = ts.parserContexts[:n]
	return c
}

func (ts *typeStack) peekContext() parserContext { return ts.parserContexts[len(ts.parserContexts)-1] }

func (ts *typeStack) pushIndex(i int) { ts.arrayIndexes = append(ts.arrayIndexes, i) }

func (ts *typeStack) popIndex() int {
	n := len(ts.arrayIndexes) - 1
	i := ts.arrayIndexes[n]
	ts.arrayIndexes = ts.arrayIndexes[:n]
	return i
}

func (ts *typeStack) peekIndex() int { return ts.arrayIndexes[len(ts.arrayIndexes)-1] }

func (ts *typeStack) bumpIndex() { ts.arrayIndexes[len(ts.arrayIndexes)-1]++ }

// enterRecord opens a new record scope: a fresh, mutable copy of its field
// map (so consuming a field here never disturbes the caller's RecordType),
// and its rest type.
func (ts *typeStack) enterRecord(rt schema.RecordType) {
	fields := make(map[string]*schema.Field, len(rt.Fields))
	for name, f := range rt.Fields {
		fields[name] = f
	}
	ts.fieldHierarchy = append(ts.fieldHierarchy, fields)
	ts.restType = append(ts.restType, rt.Rest)
}

// enterMap opens a new map scope: no named fields are ever pending, and
// every key resolves against the map's value type.
func (ts *typeStack) enterMap(mt schema.MapType) {
	ts.fieldHierarchy = append(ts.fieldHierarchy, map[string]*schema.Field{})
	ts.restType = append(ts.restType, mt.Value)
}

// enterAny opens an untyped scope: every key resolves against Any, and
// further nesting stays untyped until this scope closes.
func (ts *typeStack) enterAny() {
	ts.fieldHierarchy = append(ts.fieldHierarchy, map[string]*schema.Field{})
	ts.restType = append(ts.restType, schema.AnyType{})
}

// enterCompositeFields opens the field/rest scope matching expected's own
// tag, for a Record, Map, or Any composite. It is an error for expected to
// be anything else: the caller (the driver, on encountering '{') is only
// ever supposed to reach this with a type that can actually own named
// fields.
func (ts *typeStack) enterCompositeFields(expected schema.Type) error {
	switch t := expected.(type) {
	case schema.RecordType:
		ts.enterRecord(t)
	case schema.MapType:
		ts.enterMap(t)
	case schema.AnyType:
		ts.enterAny()
	default:
		return &TypeError{Code: IncompatibleValue}
	}
	return nil
}

// resolveField removes name from the top field map if present, recording
// it as currentField and returning its type. Otherwise it returns the top
// rest type (nil if the scope has none), leaving currentField nil.
//
// Because the field is removed on first sight, a duplicate key later in the
// same object misses the map and falls through to the rest type instead of
// resolving against the original field a second time.
func (ts *typeStack) resolveField(name string) schema.Type {
	top := ts.fieldHierarchy[len(ts.fieldHierarchy)-1]
	if f, ok := top[name]; ok {
		delete(top, name)
		ts.currentField = f
		return f.Type
	}
	ts.currentField = nil
	return ts.restType[len(ts.restType)-1]
}

// resolveElement returns the expected type for the element at index within
// expected, an ArrayType or TupleType. For a tuple, reading past the
// declared members falls through to its rest type (nil if none). An Any
// element stays Any at every index, the same way an Any record's fields all
// stay Any rather than becoming projected.
func resolveElement(expected schema.Type, index int) schema.Type {
	switch t := expected.(type) {
	case schema.ArrayType:
		return t.Elem
	case schema.TupleType:
		if index < len(t.Members) {
			return t.Members[index]
		}
		return t.Rest
	case schema.AnyType:
		return t
	default:
		return nil
	}
}

// closeRecord pops the top field map and rest type and returns the names
// of any fields still marked Required that were never consumed.
func (ts *typeStack) closeRecord() []string {
	n := len(ts.fieldHierarchy) - 1
	remaining := ts.fieldHierarchy[n]
	ts.fieldHierarchy = ts.fieldHierarchy[:n]
	ts.restType = ts.restType[:len(ts.restType)-1]

	var missing []string
	for _, f := range remaining {
		if f.Required {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// validateListSize checks a just-closed array or tuple's final element
// count (finalIndex is the index of the last element written, or -1 if the
// list was empty) against expected's size constraint.
func validateListSize(finalIndex int, expected schema.Type) error {
	switch t := expected.(type) {
	case schema.ArrayType:
		if t.State == schema.Closed && t.Size != finalIndex+1 {
			return &TypeError{Code: ClosedListSize}
		}
	case schema.TupleType:
		if finalIndex+1 < len(t.Members) {
			return &TypeError{Code: ClosedListSize}
		}
	}
	return nil
}
