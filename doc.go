// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package typedjson implements a type-directed JSON parser: one that
// consults a caller-supplied expected-type descriptor at every structural
// boundary, instead of parsing JSON into a generic tree and coercing it
// afterward.
//
// # Parsing
//
// Parse reads a single JSON document from an io.Reader and builds a value
// matching an expected schema.Type, materialized by the default Builder as
// native Go values (map[string]any, []any, and Go scalars):
//
//	v, err := typedjson.Parse(r, schema.RecordType{
//	    Fields: map[string]*schema.Field{
//	        "name": {Name: "name", Type: schema.StringType, Required: true},
//	    },
//	})
//	if err != nil {
//	    log.Fatalf("Parse failed: %v", err)
//	}
//
// A Machine drives the same parse one rune at a time; NewMachine returns a
// reusable instance, useful when parsing many documents against the same
// expected type without reallocating its internal buffers each time.
//
// # Expected types
//
// The schema package defines the Type descriptors Parse consults: scalars,
// records with named and rest-typed fields, maps, arrays (open or closed to
// an exact size), tuples, untyped Any, and restricted unions. A Type never
// describes more than the parser needs to make an allocation or validation
// decision; it is not a general-purpose schema language.
//
// # Builders
//
// The Builder interface is the seam between the state machine and the
// values it produces. The default, returned implicitly by Parse, builds
// plain Go values. A caller that wants a different representation - an AST
// with source positions, a generated struct, a streaming sink - implements
// Builder and calls ParseWith instead.
//
// # Errors
//
// A structurally malformed document (an unexpected character, a bad escape,
// input that ends too early) reports a *ParseError, carrying the line and
// column of the offending rune. A document that does not match the expected
// type reports a *TypeError, classified by ErrorCode. The parser does not
// check the syntax of a bareword literal (a number, true, false, or null):
// it takes every rune up to the next delimiter and hands the text to the
// Builder, so a malformed literal is reported by coercion as a *TypeError
// with code IncompatibleValue. An I/O failure from the underlying reader
// reports a *ReaderError.
package typedjson
