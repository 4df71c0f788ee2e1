package escape

import "testing"

func TestDecodeEscape(t *testing.T) {
	tests := []struct {
		ch       rune
		decoded  rune
		wantsHex bool
		ok       bool
	}{
		{'"', '"', false, true},
		{'\\', '\\', false, true},
		{'/', '/', false, true},
		{'b', '\b', false, true},
		{'f', '\f', false, true},
		{'n', '\n', false, true},
		{'r', '\r', false, true},
		{'t', '\t', false, true},
		{'u', 0, true, true},
		{'x', 0, false, false},
	}
	for _, tc := range tests {
		decoded, wantsHex, ok := DecodeEscape(tc.ch)
		if decoded != tc.decoded || wantsHex != tc.wantsHex || ok != tc.ok {
			t.Errorf("DecodeEscape(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tc.ch, decoded, wantsHex, ok, tc.decoded, tc.wantsHex, tc.ok)
		}
	}
}

func TestHexDigit(t *testing.T) {
	tests := []struct {
		ch   rune
		want int
		ok   bool
	}{
		{'0', 0, true},
		{'9', 9, true},
		{'a', 10, true},
		{'f', 15, true},
		{'A', 10, true},
		{'F', 15, true},
		{'g', 0, false},
		{' ', 0, false},
	}
	for _, tc := range tests {
		got, ok := HexDigit(tc.ch)
		if got != tc.want || ok != tc.ok {
			t.Errorf("HexDigit(%q) = (%d, %v), want (%d, %v)", tc.ch, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDecodeUnicode(t *testing.T) {
	tests := []struct {
		digits [4]int
		want   rune
	}{
		{[4]int{0, 0, 4, 1}, 'A'},
		{[4]int{0, 0, 0, 0}, 0},
		{[4]int{15, 15, 15, 15}, 0xFFFF},
	}
	for _, tc := range tests {
		if got := DecodeUnicode(tc.digits); got != tc.want {
			t.Errorf("DecodeUnicode(%v) = %q, want %q", tc.digits, got, tc.want)
		}
	}
}

func TestDecodeUnicodeDoesNotCombineSurrogatePairs(t *testing.T) {
	// U+1F600 (😀) encoded as a UTF-16 surrogate pair: high D83D, low DE00.
	high := DecodeUnicode([4]int{0xD, 0x8, 0x3, 0xD})
	low := DecodeUnicode([4]int{0xD, 0xE, 0x0, 0x0})
	if high != 0xD83D || low != 0xDE00 {
		t.Fatalf("got high=%x low=%x, want high=d83d low=de00", high, low)
	}
	// Each surrogate half is an invalid rune on its own; that is the
	// documented tradeoff of not combining pairs.
	s := string([]rune{high, low})
	for _, r := range s {
		if r != 0xFFFD {
			t.Errorf("expected replacement character for lone surrogate, got %q", r)
		}
	}
}

func TestEscapeRoundTripsControlAndSpecialCharacters(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", `abc`},
		{"\"", `\"`},
		{"\\", `\\`},
		{"\n", `\n`},
		{"\t", `\t`},
		{"\x01", `\u0001`},
		{"héllo", "héllo"},
	}
	for _, tc := range tests {
		got := string(Escape(nil, tc.in))
		if got != tc.want {
			t.Errorf("Escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEscapeAppendsToExistingBuffer(t *testing.T) {
	dst := []byte("prefix:")
	got := string(Escape(dst, "ok"))
	if got != "prefix:ok" {
		t.Errorf("Escape did not append in place, got %q", got)
	}
}
