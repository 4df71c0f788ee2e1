// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package typedjson

import (
	"bufio"
	"io"

	"github.com/go-jtree/typedjson/schema"
)

// stateID names one state of the character-level driver. Unlike the
// teacher's token-level Scanner, every state here consumes exactly one rune
// (or the end-of-input pseudo-rune) per step.
type stateID int

const (
	stateDocStart stateID = iota
	stateDocEnd
	stateFirstFieldReady
	stateNonFirstFieldReady
	stateFieldName
	stateEndFieldName
	stateFieldValueReady
	stateStringFieldValue
	stateNonStringFieldValue
	stateStringValue
	stateNonStringValue
	stateFieldEnd
	stateFirstArrayElementReady
	stateNonFirstArrayElementReady
	stateStringArrayElement
	stateNonStringArrayElement
	stateArrayElementEnd
	stateEscape
	stateUnicodeHex
	numStates
)

// stepFunc implements one state's transition rule. eof is true exactly once
// per parse, on the call that represents the end of input; ch is 0 in that
// call, since no real rune can be the terminator.
type stepFunc func(m *Machine, ch rune, eof bool) (stateID, error)

// Machine drives the character-level state machine described by dispatch. A
// Machine can be reused across calls to Parse; each call resets its stacks
// and buffers on its way out, whether the parse succeeded or failed.
type Machine struct {
	ts      typeStack
	buf     charBuf
	cur     cursor
	builder Builder

	currentNode any
	nodesStack  []any
	fieldNames  []string

	currentQuoteChar rune
	escapeReturn     stateID
	hexDigits        [4]int
	hexLen           int
}

// NewMachine returns a Machine that materializes values with the default
// Builder. Use Machine.ParseWith to supply a different one.
func NewMachine() *Machine {
	return &Machine{buf: newCharBuf(), builder: nativeBuilder{}}
}

func (m *Machine) reset() {
	m.cur = newCursor()
	m.ts.reset()
	m.buf.n = 0
	m.currentNode = nil
	m.nodesStack = m.nodesStack[:0]
	m.fieldNames = m.fieldNames[:0]
	m.currentQuoteChar = 0
	m.hexLen = 0
}

// Parse reads a single JSON document from r and builds a value matching
// expected, using a fresh Machine and the default Builder.
func Parse(r io.Reader, expected schema.Type) (any, error) {
	return NewMachine().Parse(r, expected)
}

// Parse reads a single JSON document from r and builds a value matching
// expected. The Machine may be reused for subsequent calls.
func (m *Machine) Parse(r io.Reader, expected schema.Type) (any, error) {
	defer m.reset()
	return m.parse(r, expected)
}

// parse is Parse without the reset, so tests in this package can inspect
// the stacks' post-parse, pre-reset state directly.
func (m *Machine) parse(r io.Reader, expected schema.Type) (any, error) {
	if err := m.enterTop(expected); err != nil {
		return nil, err
	}
	v, err := m.run(r)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(*[]any); ok {
		return *s, nil
	}
	return v, nil
}

// ParseWith is Parse, but materializes values with builder instead of the
// default.
func ParseWith(r io.Reader, expected schema.Type, builder Builder) (any, error) {
	m := NewMachine()
	m.builder = builder
	return m.Parse(r, expected)
}

// enterTop pushes the top-level expected type and, for a record, map, or
// untyped target, opens its field scope - the same decision the driver makes
// on encountering '{' or '[' at any deeper level, just without a parent to
// wire into.
func (m *Machine) enterTop(expected schema.Type) error {
	switch t := expected.(type) {
	case schema.RecordType:
		m.ts.pushExpected(t)
		m.ts.enterRecord(t)
	case schema.MapType:
		m.ts.pushExpected(t)
		m.ts.enterMap(t)
	case schema.AnyType:
		m.ts.pushExpected(t)
		m.ts.enterAny()
	case schema.ArrayType:
		m.ts.pushExpected(t)
		m.ts.pushIndex(0)
	case schema.TupleType:
		m.ts.pushExpected(t)
		m.ts.pushIndex(0)
	case schema.ScalarType:
		m.ts.pushExpected(t)
	case schema.UnionType:
		if !t.Supported() {
			return &TypeError{Code: UnsupportedType}
		}
		m.ts.pushExpected(t)
	default:
		return &TypeError{Code: UnsupportedType}
	}
	return nil
}

// run drives dispatch over the runes of r until the document closes or an
// error occurs. It mirrors the teacher's buffered-reader scan loop, but at
// rune rather than token granularity.
func (m *Machine) run(r io.Reader) (any, error) {
	br := bufio.NewReader(r)
	st := stateDocStart
	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			if err != io.EOF {
				return nil, &ReaderError{err}
			}
			next, perr := dispatch[st](m, 0, true)
			if perr != nil {
				return nil, perr
			}
			if next != stateDocEnd {
				return nil, &ParseError{Location: m.cur.at(), Message: "invalid JSON document"}
			}
			return m.currentNode, nil
		}
		m.cur.advance(ch)
		next, perr := dispatch[st](m, ch, false)
		if perr != nil {
			return nil, perr
		}
		st = next
	}
}
