// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape implements the character-level rules for decoding and
// encoding JSON string escape sequences. Decoding is exposed one escape (or
// one hex digit) at a time, rather than as a bulk string transform, so a
// caller driving a character-at-a-time state machine can interleave escape
// decoding with its own line/column bookkeeping and error reporting.
package escape

import "unicode/utf8"

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel: sizes the table through space, never looked up; a zero byte marks "no short escape"
}

var hexDigit = []byte("0123456789abcdef")

// Escape appends the JSON string-escaped form of s (without surrounding
// quotes) to dst and returns the extended slice. It is the encoding
// counterpart of DecodeEscape/DecodeUnicode, used by Encode to serialize the
// values Parse produces back to JSON text.
func Escape(dst []byte, s string) []byte {
	for _, r := range s {
		switch {
		case r < ' ':
			if b := controlEsc[r]; b != 0 {
				dst = append(dst, '\\', b)
			} else {
				dst = append(dst, '\\', 'u', '0', '0', hexDigit[r>>4], hexDigit[r&15])
			}
		case r == '\\' || r == '"':
			dst = append(dst, '\\', byte(r))
		case r < utf8.RuneSelf:
			dst = append(dst, byte(r))
		case r == utf8.RuneError:
			dst = append(dst, `�`...)
		default:
			var rbuf [utf8.UTFMax]byte
			n := utf8.EncodeRune(rbuf[:], r)
			dst = append(dst, rbuf[:n]...)
		}
	}
	return dst
}

// DecodeEscape reports the character produced by the one-letter escape ch
// (the character immediately following a backslash). ok is false if ch is
// not a recognized escape letter. wantsHex is true for 'u', in which case
// decoded is meaningless: the caller must next collect four hex digits and
// call DecodeUnicode.
func DecodeEscape(ch rune) (decoded rune, wantsHex bool, ok bool) {
	switch ch {
	case '"', '\\', '/':
		return ch, false, true
	case 'b':
		return '\b', false, true
	case 'f':
		return '\f', false, true
	case 'n':
		return '\n', false, true
	case 'r':
		return '\r', false, true
	case 't':
		return '\t', false, true
	case 'u':
		return 0, true, true
	default:
		return 0, false, false
	}
}

// HexDigit reports the numeric value of ch as a case-insensitive hex digit.
// ok is false if ch is not a hex digit.
func HexDigit(ch rune) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10, true
	default:
		return 0, false
	}
}

// DecodeUnicode decodes four hex digit values, most significant first, into
// the 16-bit code unit they spell, returned as a rune. No surrogate-pair
// combining is performed: a high surrogate and a following low surrogate,
// each written as their own \uXXXX escape, decode to two independent runes
// rather than being combined into one astral code point. Callers that want
// combined code points are responsible for pairing surrogates themselves.
func DecodeUnicode(digits [4]int) rune {
	v := 0
	for _, d := range digits {
		v = v<<4 | d
	}
	return rune(v)
}
