package codegen

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/signadot/enumstate/schema"
)

// DirectivePrefix starts every attribute comment line.
const DirectivePrefix = "//enumstate:"

// TagKey is the struct tag key carrying variant attributes.
const TagKey = "enumstate"

// SplitTopLevel splits s on commas that are not nested in parentheses,
// brackets, braces or quoted literals. Items are trimmed; empty items are
// an error.
func SplitTopLevel(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var res []string
	var cur strings.Builder
	var closers []rune
	var quote rune
	escaped := false

	emit := func() error {
		item := strings.TrimSpace(cur.String())
		if item == "" {
			return fmt.Errorf("empty item in %q", s)
		}
		res = append(res, item)
		cur.Reset()
		return nil
	}

	for _, r := range s {
		if quote != 0 {
			cur.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\' && quote != '`':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '(':
			closers = append(closers, ')')
		case '[':
			closers = append(closers, ']')
		case '{':
			closers = append(closers, '}')
		case ')', ']', '}':
			if len(closers) == 0 || closers[len(closers)-1] != r {
				return nil, fmt.Errorf("unbalanced %q in %q", r, s)
			}
			closers = closers[:len(closers)-1]
		case ',':
			if len(closers) == 0 {
				if err := emit(); err != nil {
					return nil, err
				}
				continue
			}
		}
		cur.WriteRune(r)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated literal in %q", s)
	}
	if len(closers) != 0 {
		return nil, fmt.Errorf("missing %q in %q", closers[len(closers)-1], s)
	}
	if err := emit(); err != nil {
		return nil, err
	}
	return res, nil
}

// ParseAttr parses one attribute token: a name, optionally followed by a
// parenthesized argument list, e.g. auto or default(3, "x").
func ParseAttr(tok string) (schema.Attr, error) {
	tok = strings.TrimSpace(tok)
	end := strings.IndexFunc(tok, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if end < 0 {
		end = len(tok)
	}
	a := schema.Attr{Name: tok[:end]}
	if a.Name == "" {
		return a, fmt.Errorf("attribute %q has no name", tok)
	}
	rest := strings.TrimSpace(tok[end:])
	if rest == "" {
		return a, nil
	}
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return a, fmt.Errorf("malformed attribute %q", tok)
	}
	args, err := SplitTopLevel(rest[1 : len(rest)-1])
	if err != nil {
		return a, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	if args == nil {
		args = []string{}
	}
	a.Args = args
	return a, nil
}

// ParseAttrs parses a comma separated list of attribute tokens, as found
// after the directive prefix or in a struct tag.
func ParseAttrs(line, pos string) ([]schema.Attr, error) {
	toks, err := SplitTopLevel(line)
	if err != nil {
		return nil, err
	}
	attrs := make([]schema.Attr, 0, len(toks))
	for _, tok := range toks {
		a, err := ParseAttr(tok)
		if err != nil {
			return nil, err
		}
		a.Pos = pos
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// tagAttrs returns the content of the enumstate key of a raw struct tag
// literal, including its backquotes or double quotes.
func tagAttrs(lit string) (string, bool) {
	if len(lit) < 2 {
		return "", false
	}
	raw := lit[1 : len(lit)-1]
	if lit[0] == '"' {
		var err error
		if raw, err = strconv.Unquote(lit); err != nil {
			return "", false
		}
	}
	return reflect.StructTag(raw).Lookup(TagKey)
}
