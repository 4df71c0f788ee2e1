package typedjson

// enterNestedObject handles '{' in a position where expectedTypes' top is
// already the resolved type for this field or array element (pushed by the
// caller just before). If that type is the projection sentinel, the whole
// subtree is skipped structurally: only a parserContext is pushed, so the
// matching close event still knows which end state to return to.
//
// wireAsField distinguishes the two positions '{' can appear in: as a
// record/map field value, where the new container is wired into its parent
// immediately, or as an array/tuple element, where wiring is deferred until
// the element closes (see finalizeObject).
func (m *Machine) enterNestedObject(wireAsField bool) error {
	expected := m.ts.peekExpected()
	if expected == nil {
		m.ts.pushContext(inMap)
		if wireAsField {
			m.popFieldName()
		}
		return nil
	}
	container, err := m.builder.NewContainer(expected)
	if err != nil {
		return err
	}
	if err := m.ts.enterCompositeFields(expected); err != nil {
		return err
	}
	m.nodesStack = append(m.nodesStack, m.currentNode)
	m.ts.pushContext(inMap)
	if wireAsField {
		m.builder.SetField(m.nodesStack[len(m.nodesStack)-1], m.popFieldName(), container)
	}
	m.currentNode = container
	return nil
}

// enterNestedArray is enterNestedObject's counterpart for '['. A projected
// array also gets its own arrayIndexes entry, since its elements and its
// closing ']' read, bump, and pop an index just as a real array's do.
func (m *Machine) enterNestedArray(wireAsField bool) error {
	expected := m.ts.peekExpected()
	if expected == nil {
		m.ts.pushContext(inArray)
		m.ts.pushIndex(0)
		if wireAsField {
			m.popFieldName()
		}
		return nil
	}
	container, err := m.builder.NewArray(expected)
	if err != nil {
		return err
	}
	m.ts.pushIndex(0)
	m.nodesStack = append(m.nodesStack, m.currentNode)
	m.ts.pushContext(inArray)
	if wireAsField {
		m.builder.SetField(m.nodesStack[len(m.nodesStack)-1], m.popFieldName(), container)
	}
	m.currentNode = container
	return nil
}

// popFieldName removes and returns the field name most recently pushed by
// the FieldName state, once its value has been resolved one way or another
// (wired into a container, or dropped as a projected value). Array element
// positions never push a name, so only field-value paths call this.
func (m *Machine) popFieldName() string {
	n := len(m.fieldNames) - 1
	name := m.fieldNames[n]
	m.fieldNames = m.fieldNames[:n]
	return name
}

// finalizeNonArrayObject closes a record/map/any scope on '}'. It differs
// from finalizeObject only in checking for unconsumed required fields first;
// an object whose own type was projected away skips that check entirely,
// since closeRecord's bookkeeping was never set up for it.
func (m *Machine) finalizeNonArrayObject() (stateID, error) {
	if m.ts.peekExpected() == nil {
		m.ts.popContext()
		if len(m.ts.parserContexts) > 0 && m.ts.peekContext() == inMap {
			return stateFieldEnd, nil
		}
		return stateArrayElementEnd, nil
	}
	missing := m.ts.closeRecord()
	if len(missing) > 0 {
		return 0, &TypeError{Code: RequiredFieldNotPresent, Name: missing[0]}
	}
	return m.finalizeObject()
}

// finalizeObject closes the current composite (on '}' or ']') and returns
// the state to resume in. It pops exactly one parserContext - the one
// pushed when this composite was entered - and, unless the composite itself
// was projected away, restores currentNode to the parent and wires this
// composite into it if the parent is an array (record/map parents were
// already wired at entry, by enterNestedObject/enterNestedArray).
//
// The caller is responsible for popping this composite's own expectedTypes
// entry (afterwards; it is peeked here) and, for an array or tuple, its
// arrayIndexes entry (beforehand, so that peekIndex here reads the parent
// array's index); finalizeObject itself pops neither. Whether the parent is
// a record/map or an array is read from the enclosing parserContext, never
// from the parent value's concrete type.
func (m *Machine) finalizeObject() (stateID, error) {
	childProjected := m.ts.peekExpected() == nil
	m.ts.popContext()
	if childProjected {
		if len(m.ts.parserContexts) > 0 && m.ts.peekContext() == inMap {
			return stateFieldEnd, nil
		}
		return stateArrayElementEnd, nil
	}
	if len(m.nodesStack) == 0 {
		return stateDocEnd, nil
	}
	parent := m.nodesStack[len(m.nodesStack)-1]
	m.nodesStack = m.nodesStack[:len(m.nodesStack)-1]
	if m.ts.peekContext() == inArray {
		parentType := m.ts.peekExpectedAt(1)
		m.builder.SetElement(parent, m.ts.peekIndex(), m.currentNode, parentType)
		m.currentNode = parent
		return stateArrayElementEnd, nil
	}
	m.currentNode = parent
	return stateFieldEnd, nil
}

// writeValue wires a just-coerced scalar into its parent container - a
// record/map field, or an array/tuple element at the current index.
// currentNode still refers to that parent container afterward: unlike a
// completed nested composite, a scalar sibling never needs to be found
// through currentNode again, so leaving it pointed at the container (rather
// than the scalar just written) is what lets the next field or element in
// the same container write through the same reference.
func (m *Machine) writeValue(v any) error {
	switch m.ts.peekContext() {
	case inMap:
		m.builder.SetField(m.currentNode, m.popFieldName(), v)
	case inArray:
		arrType := m.ts.peekExpected()
		m.builder.SetElement(m.currentNode, m.ts.peekIndex(), v, arrType)
	}
	return nil
}

// processScalar pops the value's own expected type, coerces the buffered
// lexeme against it, and wires the result in. If the scope projected this
// value away (expected is nil), the lexeme is discarded unread.
func (m *Machine) processScalar(quoted bool) error {
	expected := m.ts.popExpected()
	lexeme := m.buf.take()
	if expected == nil {
		if m.ts.peekContext() == inMap {
			m.popFieldName()
		}
		return nil
	}
	v, err := m.builder.Coerce(lexeme, quoted, expected)
	if err != nil {
		return err
	}
	return m.writeValue(v)
}
