package schema

import (
	"fmt"
	"strings"
)

// SchemaError reports a malformed or conflicting declaration.
type SchemaError struct {
	Schema  string
	Variant string
	Pos     string
	Msg     string
}

func (e *SchemaError) Error() string {
	return located(e.Pos, e.Schema, e.Variant, e.Msg)
}

// MissingDefaultError reports a slot no attribute can supply a default for.
type MissingDefaultError struct {
	Schema  string
	Variant string
	Slot    string
	Pos     string

	// Policy is the policy in effect, NoPolicy when none was declared.
	Policy Policy
}

func (e *MissingDefaultError) Error() string {
	path := e.Schema + "." + e.Variant
	if e.Slot != "" {
		path += "." + e.Slot
	}
	msg := "no default for " + path
	if e.Policy != NoPolicy {
		msg += fmt.Sprintf(": %s cannot apply to an opaque slot", e.Policy)
	}
	return located(e.Pos, "", "", msg)
}

// CyclicDefaultError reports nested slots whose defaults depend on each other.
type CyclicDefaultError struct {
	// Path lists the schemas of the cycle, the first repeated at the end.
	Path []string
}

func (e *CyclicDefaultError) Error() string {
	return "cyclic default: " + strings.Join(e.Path, " -> ")
}

// EmptySchemaError reports a sum type with no variants.
type EmptySchemaError struct {
	Schema string
	Pos    string
}

func (e *EmptySchemaError) Error() string {
	return located(e.Pos, e.Schema, "", "no variants")
}

// TypeMismatchError reports an explicit default that does not fit its slots.
type TypeMismatchError struct {
	Schema  string
	Variant string
	Slot    string
	Expr    string
	Pos     string
	Msg     string
}

func (e *TypeMismatchError) Error() string {
	path := e.Schema + "." + e.Variant
	if e.Slot != "" {
		path += "." + e.Slot
	}
	msg := "default for " + path
	if e.Expr != "" {
		msg += fmt.Sprintf(" (%s)", e.Expr)
	}
	return located(e.Pos, "", "", msg+": "+e.Msg)
}

func located(pos, schema, variant, msg string) string {
	var b strings.Builder
	if pos != "" {
		b.WriteString(pos)
		b.WriteString(": ")
	}
	if schema != "" {
		b.WriteString(schema)
		if variant != "" {
			b.WriteString(".")
			b.WriteString(variant)
		}
		b.WriteString(": ")
	}
	b.WriteString(msg)
	return b.String()
}
