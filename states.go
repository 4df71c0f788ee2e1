package typedjson

import (
	"strings"

	"github.com/go-jtree/typedjson/internal/escape"
	"github.com/go-jtree/typedjson/schema"
)

var dispatch [numStates]stepFunc

func init() {
	dispatch[stateDocStart] = docStart
	dispatch[stateDocEnd] = docEnd
	dispatch[stateFirstFieldReady] = firstFieldReady
	dispatch[stateNonFirstFieldReady] = nonFirstFieldReady
	dispatch[stateFieldName] = fieldName
	dispatch[stateEndFieldName] = endFieldName
	dispatch[stateFieldValueReady] = fieldValueReady
	dispatch[stateStringFieldValue] = stringFieldValue
	dispatch[stateNonStringFieldValue] = nonStringFieldValue
	dispatch[stateStringValue] = stringValue
	dispatch[stateNonStringValue] = nonStringValue
	dispatch[stateFieldEnd] = fieldEnd
	dispatch[stateFirstArrayElementReady] = firstArrayElementReady
	dispatch[stateNonFirstArrayElementReady] = nonFirstArrayElementReady
	dispatch[stateStringArrayElement] = stringArrayElement
	dispatch[stateNonStringArrayElement] = nonStringArrayElement
	dispatch[stateArrayElementEnd] = arrayElementEnd
	dispatch[stateEscape] = escapeChar
	dispatch[stateUnicodeHex] = unicodeHex
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func parseErr(m *Machine, msg string) error {
	return &ParseError{Location: m.cur.at(), Message: msg}
}

func expectedErr(m *Machine, want ...string) error {
	return parseErr(m, "expected '"+strings.Join(want, "' or '")+"'")
}

// docStart handles the very first rune of the document: an opening brace or
// bracket, a quote starting a root-level string, or the first character of
// a root-level bareword literal.
func docStart(m *Machine, ch rune, eof bool) (stateID, error) {
	if eof {
		return 0, parseErr(m, "empty JSON document")
	}
	switch {
	case isWhitespace(ch):
		return stateDocStart, nil
	case ch == '{':
		expected := m.ts.peekExpected()
		container, err := m.builder.NewContainer(expected)
		if err != nil {
			return 0, err
		}
		// enterTop already opened this scope's field/rest entry for
		// Record/Map/Any; pushing it again here would leave closeRecord
		// popping only one of two matching entries.
		m.currentNode = container
		m.ts.pushContext(inMap)
		return stateFirstFieldReady, nil
	case ch == '[':
		expected := m.ts.peekExpected()
		if _, ok := expected.(schema.AnyType); ok {
			m.ts.pushIndex(0)
		}
		container, err := m.builder.NewArray(expected)
		if err != nil {
			return 0, err
		}
		m.currentNode = container
		m.ts.pushContext(inArray)
		return stateFirstArrayElementReady, nil
	case ch == '"':
		m.currentQuoteChar = '"'
		return stateStringValue, nil
	default:
		return nonStringValue(m, ch, false)
	}
}

func docEnd(m *Machine, ch rune, eof bool) (stateID, error) {
	if eof || isWhitespace(ch) {
		return stateDocEnd, nil
	}
	return 0, parseErr(m, "JSON document has already ended")
}

func firstFieldReady(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case ch == '"':
		m.currentQuoteChar = '"'
		return stateFieldName, nil
	case isWhitespace(ch):
		return stateFirstFieldReady, nil
	case ch == '}':
		next, err := m.finalizeNonArrayObject()
		if err != nil {
			return 0, err
		}
		m.ts.popExpected()
		return next, nil
	default:
		return 0, expectedErr(m, `"`, `}`)
	}
}

func nonFirstFieldReady(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case ch == '"':
		m.currentQuoteChar = '"'
		return stateFieldName, nil
	case isWhitespace(ch):
		return stateNonFirstFieldReady, nil
	default:
		return 0, expectedErr(m, `"`)
	}
}

// fieldName accumulates a field name up to its closing quote, then resolves
// it against the enclosing record/map scope (or, if that scope is itself
// projected away, stays projected without touching the scope's field map).
func fieldName(m *Machine, ch rune, eof bool) (stateID, error) {
	if eof {
		return 0, parseErr(m, "unexpected end of JSON document")
	}
	switch {
	case ch == m.currentQuoteChar:
		name := m.buf.take()
		var ft schema.Type
		if m.ts.peekExpected() != nil {
			ft = m.ts.resolveField(name)
		}
		m.ts.pushExpected(ft)
		m.fieldNames = append(m.fieldNames, name)
		return stateEndFieldName, nil
	case ch == '\\':
		m.escapeReturn = stateFieldName
		return stateEscape, nil
	default:
		m.buf.append(ch)
		return stateFieldName, nil
	}
}

func endFieldName(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case isWhitespace(ch):
		return stateEndFieldName, nil
	case ch == ':':
		return stateFieldValueReady, nil
	default:
		return 0, expectedErr(m, ":")
	}
}

func fieldValueReady(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case isWhitespace(ch):
		return stateFieldValueReady, nil
	case ch == '"':
		m.currentQuoteChar = '"'
		return stateStringFieldValue, nil
	case ch == '{':
		if err := m.enterNestedObject(true); err != nil {
			return 0, err
		}
		return stateFirstFieldReady, nil
	case ch == '[':
		if err := m.enterNestedArray(true); err != nil {
			return 0, err
		}
		return stateFirstArrayElementReady, nil
	default:
		return nonStringFieldValue(m, ch, eof)
	}
}

// stringFieldValue is the only state where a coercion failure can be
// swallowed instead of failing the parse: a quoted value that falls under a
// rest type (no named field matched) is dropped silently rather than
// rejecting the whole document, since the caller never asked for that value
// to exist at all.
func stringFieldValue(m *Machine, ch rune, eof bool) (stateID, error) {
	if eof {
		return 0, parseErr(m, "unexpected end of JSON document")
	}
	switch {
	case ch == m.currentQuoteChar:
		s := m.buf.take()
		expected := m.ts.popExpected()
		if expected == nil {
			m.popFieldName()
			return stateFieldEnd, nil
		}
		isRest := m.ts.currentField == nil
		v, err := m.builder.Coerce(s, true, expected)
		if err != nil {
			if isRest {
				m.popFieldName()
				return stateFieldEnd, nil
			}
			return 0, err
		}
		if err := m.writeValue(v); err != nil {
			return 0, err
		}
		return stateFieldEnd, nil
	case ch == '\\':
		m.escapeReturn = stateStringFieldValue
		return stateEscape, nil
	default:
		m.buf.append(ch)
		return stateStringFieldValue, nil
	}
}

// nonStringFieldValue accumulates a bareword field value (a number, true,
// false, or null). Unlike a quoted value it may terminate on either '}' or
// ']': the former closes the enclosing record normally, the latter closes
// an enclosing array whose last field's object was never itself closed.
func nonStringFieldValue(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case eof:
		return 0, parseErr(m, "unexpected end of JSON document")
	case ch == '}':
		if err := m.processScalar(false); err != nil {
			return 0, err
		}
		next, err := m.finalizeNonArrayObject()
		if err != nil {
			return 0, err
		}
		m.ts.popExpected()
		return next, nil
	case ch == ']':
		if err := m.processScalar(false); err != nil {
			return 0, err
		}
		idx := m.ts.popIndex()
		next, err := m.finalizeObject()
		if err != nil {
			return 0, err
		}
		if err := validateListSize(idx, m.ts.popExpected()); err != nil {
			return 0, err
		}
		return next, nil
	case ch == ',':
		if err := m.processScalar(false); err != nil {
			return 0, err
		}
		return stateNonFirstFieldReady, nil
	case isWhitespace(ch):
		if err := m.processScalar(false); err != nil {
			return 0, err
		}
		return stateFieldEnd, nil
	default:
		m.buf.append(ch)
		return stateNonStringFieldValue, nil
	}
}

func stringValue(m *Machine, ch rune, eof bool) (stateID, error) {
	if eof {
		return 0, parseErr(m, "unexpected end of JSON document")
	}
	switch {
	case ch == m.currentQuoteChar:
		s := m.buf.take()
		v, err := m.builder.Coerce(s, true, m.ts.peekExpected())
		if err != nil {
			return 0, err
		}
		m.currentNode = v
		return stateDocEnd, nil
	case ch == '\\':
		m.escapeReturn = stateStringValue
		return stateEscape, nil
	default:
		m.buf.append(ch)
		return stateStringValue, nil
	}
}

// nonStringValue is the root-level bareword state: its expected type is
// never popped, since nothing else will ever consult it once the document
// ends.
func nonStringValue(m *Machine, ch rune, eof bool) (stateID, error) {
	if eof || isWhitespace(ch) {
		lexeme := m.buf.take()
		v, err := m.builder.Coerce(lexeme, false, m.ts.peekExpected())
		if err != nil {
			return 0, err
		}
		m.currentNode = v
		return stateDocEnd, nil
	}
	m.buf.append(ch)
	return stateNonStringValue, nil
}

func fieldEnd(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case isWhitespace(ch):
		return stateFieldEnd, nil
	case ch == ',':
		return stateNonFirstFieldReady, nil
	case ch == '}':
		next, err := m.finalizeNonArrayObject()
		if err != nil {
			return 0, err
		}
		m.ts.popExpected()
		return next, nil
	default:
		return 0, expectedErr(m, ",", "}")
	}
}

func firstArrayElementReady(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case isWhitespace(ch):
		return stateFirstArrayElementReady, nil
	case ch == '"':
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		m.currentQuoteChar = '"'
		return stateStringArrayElement, nil
	case ch == '{':
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		if err := m.enterNestedObject(false); err != nil {
			return 0, err
		}
		return stateFirstFieldReady, nil
	case ch == '[':
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		if err := m.enterNestedArray(false); err != nil {
			return 0, err
		}
		return stateFirstArrayElementReady, nil
	case ch == ']':
		// Reached directly from "ready for the first element": no element
		// was ever read, so the index pushed at array entry (still at its
		// untouched initial 0) does not describe a written element. Report
		// the empty list as the doc comment on validateListSize requires.
		m.ts.popIndex()
		next, err := m.finalizeObject()
		if err != nil {
			return 0, err
		}
		if err := validateListSize(-1, m.ts.popExpected()); err != nil {
			return 0, err
		}
		return next, nil
	default:
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		return nonStringArrayElement(m, ch, eof)
	}
}

func nonFirstArrayElementReady(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case isWhitespace(ch):
		return stateNonFirstArrayElementReady, nil
	case ch == '"':
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		m.currentQuoteChar = '"'
		return stateStringArrayElement, nil
	case ch == '{':
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		if err := m.enterNestedObject(false); err != nil {
			return 0, err
		}
		return stateFirstFieldReady, nil
	case ch == '[':
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		if err := m.enterNestedArray(false); err != nil {
			return 0, err
		}
		return stateFirstArrayElementReady, nil
	default:
		m.ts.pushExpected(resolveElement(m.ts.peekExpected(), m.ts.peekIndex()))
		return nonStringArrayElement(m, ch, eof)
	}
}

func stringArrayElement(m *Machine, ch rune, eof bool) (stateID, error) {
	if eof {
		return 0, parseErr(m, "unexpected end of JSON document")
	}
	switch {
	case ch == m.currentQuoteChar:
		if err := m.processScalar(true); err != nil {
			return 0, err
		}
		return stateArrayElementEnd, nil
	case ch == '\\':
		m.escapeReturn = stateStringArrayElement
		return stateEscape, nil
	default:
		m.buf.append(ch)
		return stateStringArrayElement, nil
	}
}

// nonStringArrayElement never terminates on '}': a bareword array element
// that runs into a stray closing brace is a malformed document, not an
// implicit close of some enclosing object.
func nonStringArrayElement(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case eof:
		return 0, parseErr(m, "unexpected end of JSON document")
	case ch == ']':
		if err := m.processScalar(false); err != nil {
			return 0, err
		}
		idx := m.ts.popIndex()
		next, err := m.finalizeObject()
		if err != nil {
			return 0, err
		}
		if err := validateListSize(idx, m.ts.popExpected()); err != nil {
			return 0, err
		}
		return next, nil
	case ch == ',':
		if err := m.processScalar(false); err != nil {
			return 0, err
		}
		m.ts.bumpIndex()
		return stateNonFirstArrayElementReady, nil
	case isWhitespace(ch):
		if err := m.processScalar(false); err != nil {
			return 0, err
		}
		return stateArrayElementEnd, nil
	default:
		m.buf.append(ch)
		return stateNonStringArrayElement, nil
	}
}

func arrayElementEnd(m *Machine, ch rune, eof bool) (stateID, error) {
	switch {
	case isWhitespace(ch):
		return stateArrayElementEnd, nil
	case ch == ',':
		m.ts.bumpIndex()
		return stateNonFirstArrayElementReady, nil
	case ch == ']':
		idx := m.ts.popIndex()
		next, err := m.finalizeObject()
		if err != nil {
			return 0, err
		}
		if err := validateListSize(idx, m.ts.popExpected()); err != nil {
			return 0, err
		}
		return next, nil
	default:
		return 0, expectedErr(m, ",", "]")
	}
}

// escapeChar and unicodeHex are parameterized by m.escapeReturn rather than
// by a subclass per call site, the way the teacher's OOP state hierarchy
// would have done it: one pair of states serves every position an escape
// sequence can appear in (field name, string field value, string array
// element, root-level string).
func escapeChar(m *Machine, ch rune, eof bool) (stateID, error) {
	decoded, wantsHex, ok := escape.DecodeEscape(ch)
	if !ok {
		return 0, expectedErr(m, "escaped characters")
	}
	if wantsHex {
		m.hexLen = 0
		return stateUnicodeHex, nil
	}
	m.buf.append(decoded)
	return m.escapeReturn, nil
}

func unicodeHex(m *Machine, ch rune, eof bool) (stateID, error) {
	d, ok := escape.HexDigit(ch)
	if !ok {
		m.hexLen = 0
		return 0, expectedErr(m, "hexadecimal value of an unicode character")
	}
	m.hexDigits[m.hexLen] = d
	m.hexLen++
	if m.hexLen < 4 {
		return stateUnicodeHex, nil
	}
	m.buf.append(escape.DecodeUnicode(m.hexDigits))
	m.hexLen = 0
	return m.escapeReturn, nil
}
