package schema

import "testing"

func TestUnionSupported(t *testing.T) {
	tests := []struct {
		name string
		u    UnionType
		want bool
	}{
		{
			name: "scalars only",
			u:    UnionType{Members: []Type{IntType, StringType}},
			want: true,
		},
		{
			name: "contains a record",
			u:    UnionType{Members: []Type{IntType, RecordType{}}},
			want: false,
		},
		{
			name: "contains a map",
			u:    UnionType{Members: []Type{StringType, MapType{Value: IntType}}},
			want: false,
		},
		{
			name: "contains Any",
			u:    UnionType{Members: []Type{BoolType, AnyType{}}},
			want: false,
		},
		{
			name: "nested union of scalars",
			u: UnionType{Members: []Type{
				IntType,
				UnionType{Members: []Type{StringType, FloatType}},
			}},
			want: true,
		},
		{
			name: "nested union containing a record",
			u: UnionType{Members: []Type{
				IntType,
				UnionType{Members: []Type{StringType, RecordType{}}},
			}},
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.u.Supported(); got != tc.want {
				t.Errorf("Supported() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTagString(t *testing.T) {
	if got := Int.String(); got != "int" {
		t.Errorf("Int.String() = %q, want %q", got, "int")
	}
	if got := Tag(999).String(); got != "invalid" {
		t.Errorf("Tag(999).String() = %q, want %q", got, "invalid")
	}
}

func TestScalarSingletonsTagMatchesTheirOwnConstant(t *testing.T) {
	singletons := map[Tag]Type{
		Null:    NullType,
		Bool:    BoolType,
		Int:     IntType,
		Float:   FloatType,
		Decimal: DecimalType,
		String:  StringType,
	}
	for tag, typ := range singletons {
		if got := typ.Tag(); got != tag {
			t.Errorf("%v.Tag() = %v, want %v", typ, got, tag)
		}
	}
}
