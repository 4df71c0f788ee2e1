package typedjson

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-jtree/typedjson/schema"
)

func assertStacksEmpty(t *testing.T, m *Machine) {
	t.Helper()
	if n := len(m.ts.expectedTypes); n != 0 {
		t.Errorf("expectedTypes not drained: %d entries remain", n)
	}
	if n := len(m.ts.fieldHierarchy); n != 0 {
		t.Errorf("fieldHierarchy not drained: %d entries remain", n)
	}
	if n := len(m.ts.restType); n != 0 {
		t.Errorf("restType not drained: %d entries remain", n)
	}
	if n := len(m.ts.parserContexts); n != 0 {
		t.Errorf("parserContexts not drained: %d entries remain", n)
	}
	if n := len(m.ts.arrayIndexes); n != 0 {
		t.Errorf("arrayIndexes not drained: %d entries remain", n)
	}
	if n := len(m.nodesStack); n != 0 {
		t.Errorf("nodesStack not drained: %d entries remain", n)
	}
	if n := len(m.fieldNames); n != 0 {
		t.Errorf("fieldNames not drained: %d entries remain", n)
	}
}

func TestStacksEmptyAfterSuccessfulParse(t *testing.T) {
	m := NewMachine()
	expected := schema.RecordType{Fields: map[string]*schema.Field{
		"a": {Name: "a", Type: schema.AnyType{}},
	}}
	// Call the pre-reset parse directly: Parse's deferred reset would zero
	// every stack before assertStacksEmpty got to inspect post-parse state.
	if _, err := m.parse(strings.NewReader(`{"a":{"b":[1,2,{"c":"d"}]}}`), expected); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertStacksEmpty(t, m)
}

func TestStacksEmptyAfterFailedParse(t *testing.T) {
	m := NewMachine()
	expected := schema.RecordType{Fields: map[string]*schema.Field{
		"a": {Name: "a", Type: schema.IntType, Required: true},
	}}
	// Unlike the successful case, this goes through Parse: a failed parse
	// stops mid-document, so only Parse's reset drains the stacks.
	if _, err := m.Parse(strings.NewReader(`{"a":"not an int"}`), expected); err == nil {
		t.Fatal("expected a coercion error, got nil")
	}
	assertStacksEmpty(t, m)
}

// TestTopLevelRecordStacksBalanceThroughEntry guards against double-entering
// a top-level Record/Map/Any's field scope: enterTop already opens it before
// the driver sees '{', so docStart must not open it again.
func TestTopLevelRecordStacksBalanceThroughEntry(t *testing.T) {
	m := NewMachine()
	expected := schema.RecordType{Fields: map[string]*schema.Field{
		"a": {Name: "a", Type: schema.IntType},
	}}
	if _, err := m.parse(strings.NewReader(`{"a":1}`), expected); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertStacksEmpty(t, m)
}

func TestMachineIsReusableAcrossParses(t *testing.T) {
	m := NewMachine()

	if _, err := m.Parse(strings.NewReader(`{"a":"bogus"}`), schema.RecordType{
		Fields: map[string]*schema.Field{"a": {Name: "a", Type: schema.IntType, Required: true}},
	}); err == nil {
		t.Fatal("expected the first parse to fail")
	}

	got, err := m.Parse(strings.NewReader(`{"a":1}`), schema.RecordType{
		Fields: map[string]*schema.Field{"a": {Name: "a", Type: schema.IntType, Required: true}},
	})
	if err != nil {
		t.Fatalf("second Parse on a reused Machine failed: %v", err)
	}
	want := map[string]any{"a": int64(1)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestDuplicateFieldResolvesAgainstRestOnSecondOccurrence(t *testing.T) {
	expected := schema.RecordType{
		Fields: map[string]*schema.Field{"a": {Name: "a", Type: schema.IntType}},
		Rest:   schema.StringType,
	}
	got, err := Parse(strings.NewReader(`{"a":1,"a":"second"}`), expected)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// The first "a" consumes the declared field (Int); the second sees an
	// already-emptied field map and falls through to the rest type
	// (String), so it overwrites the same Go map key with a string.
	want := map[string]any{"a": "second"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestMapType(t *testing.T) {
	expected := schema.MapType{Value: schema.IntType}
	got, err := Parse(strings.NewReader(`{"x":1,"y":2}`), expected)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := map[string]any{"x": int64(1), "y": int64(2)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestOpenArrayGrowsPastAnyFixedExpectation(t *testing.T) {
	expected := schema.ArrayType{Elem: schema.IntType, State: schema.Open}
	got, err := Parse(strings.NewReader(`[1,2,3,4,5]`), expected)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []any{int64(1), int64(2), int64(3), int64(4), int64(5)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestTupleWithRestAcceptsExtraPositions(t *testing.T) {
	expected := schema.TupleType{
		Members: []schema.Type{schema.StringType, schema.IntType},
		Rest:    schema.BoolType,
	}
	got, err := Parse(strings.NewReader(`["name",1,true,false]`), expected)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []any{"name", int64(1), true, false}
	if diff := cmp.Diff(want, normalize(got)); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestEmptyClosedArrayMatchingDeclaredZeroSizeSucceeds(t *testing.T) {
	expected := schema.ArrayType{Elem: schema.IntType, State: schema.Closed, Size: 0}
	got, err := Parse(strings.NewReader(`[]`), expected)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]any{}, normalize(got)); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestEmptyClosedArrayShortOfDeclaredSizeFails(t *testing.T) {
	expected := schema.ArrayType{Elem: schema.IntType, State: schema.Closed, Size: 1}
	_, err := Parse(strings.NewReader(`[]`), expected)
	var typeErr *TypeError
	if !errors.As(err, &typeErr) || typeErr.Code != ClosedListSize {
		t.Fatalf("got %v, want ClosedListSize", err)
	}
}

func TestEmptyTupleShortOfDeclaredMembersFails(t *testing.T) {
	expected := schema.TupleType{Members: []schema.Type{schema.StringType}}
	_, err := Parse(strings.NewReader(`[]`), expected)
	var typeErr *TypeError
	if !errors.As(err, &typeErr) || typeErr.Code != ClosedListSize {
		t.Fatalf("got %v, want ClosedListSize", err)
	}
}

func TestTupleShortOfDeclaredMembersFails(t *testing.T) {
	expected := schema.TupleType{Members: []schema.Type{schema.StringType, schema.IntType}}
	_, err := Parse(strings.NewReader(`["name"]`), expected)
	var typeErr *TypeError
	if !errors.As(err, &typeErr) || typeErr.Code != ClosedListSize {
		t.Fatalf("got %v, want ClosedListSize", err)
	}
}

func TestSupportedUnionTriesMembersInOrder(t *testing.T) {
	expected := schema.UnionType{Members: []schema.Type{schema.IntType, schema.StringType}}
	got, err := Parse(strings.NewReader(`"not an int"`), expected)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != "not an int" {
		t.Errorf("got %#v, want %q", got, "not an int")
	}
}

func TestUnsupportedUnionRejectedAtEntry(t *testing.T) {
	expected := schema.UnionType{Members: []schema.Type{schema.IntType, schema.RecordType{}}}
	_, err := Parse(strings.NewReader(`1`), expected)
	var typeErr *TypeError
	if !errors.As(err, &typeErr) || typeErr.Code != UnsupportedType {
		t.Fatalf("got %v, want UnsupportedType", err)
	}
}

func TestUnsupportedTopLevelType(t *testing.T) {
	_, err := Parse(strings.NewReader(`1`), nil)
	var typeErr *TypeError
	if !errors.As(err, &typeErr) || typeErr.Code != UnsupportedType {
		t.Fatalf("got %v, want UnsupportedType", err)
	}
}

// recordingBuilder wraps nativeBuilder to prove ParseWith actually routes
// every allocation through the supplied Builder instead of a hardcoded one.
type recordingBuilder struct {
	nativeBuilder
	containers int
}

func (b *recordingBuilder) NewContainer(expected schema.Type) (any, error) {
	b.containers++
	return b.nativeBuilder.NewContainer(expected)
}

func TestParseWithUsesSuppliedBuilder(t *testing.T) {
	b := &recordingBuilder{}
	_, err := ParseWith(strings.NewReader(`{"a":{"b":1}}`), schema.AnyType{}, b)
	if err != nil {
		t.Fatalf("ParseWith: %v", err)
	}
	if b.containers != 2 {
		t.Errorf("got %d NewContainer calls, want 2", b.containers)
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	const doc = `{"name":"go","count":3,"tags":["x","y"],"active":true,"note":null}`
	v, err := Parse(strings.NewReader(doc), schema.AnyType{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	encoded, err := Encode(nil, v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	v2, err := Parse(strings.NewReader(string(encoded)), schema.AnyType{})
	if err != nil {
		t.Fatalf("re-Parse of encoded output: %v", err)
	}
	if diff := cmp.Diff(normalize(v), normalize(v2)); diff != "" {
		t.Errorf("round trip mismatch (-before +after):\n%s", diff)
	}
}
