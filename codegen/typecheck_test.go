package codegen

import (
	"errors"
	"go/ast"
	"go/token"
	"strings"
	"testing"

	"github.com/signadot/enumstate/schema"
)

// checkSource extracts, marks, builds and checks the schemas of src
// without resolving imports.
func checkSource(t *testing.T, src string) ([]*TypeInfo, error) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := ParseFile(fset, "a.go", src)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	files := []*ast.File{file}
	infos, err := ExtractTypes(fset, files, testPkgPath)
	if err != nil {
		t.Fatalf("ExtractTypes failed: %v", err)
	}
	c := NewChecker(fset, testPkgPath, files, nil, nil)
	c.MarkCapable(infos)
	for _, info := range infos {
		st, err := schema.Build(info.Decl)
		if err != nil {
			t.Fatalf("Build(%s) failed: %v", info.Decl.Name, err)
		}
		if err := c.Check(info, st); err != nil {
			return infos, err
		}
	}
	return infos, nil
}

func TestCheckerAccepts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "const form",
			src: `package ui
//enumstate:default(B)
type Mode uint8
const (
	A Mode = iota
	_
	B
	C Mode = 10
)
`,
		},
		{
			name: "explicit defaults",
			src: `package ui
import "github.com/signadot/enumstate"
type Kind int
const K Kind = 2
//enumstate:default(Pair)
type S struct {
	enumstate.Tag
	//enumstate:default(K)
	One Kind
	//enumstate:default(2.5, nil)
	Pair struct {
		X float64
		P *int
	}
}
`,
		},
		{
			name: "unresolved imports",
			src: `package ui
import (
	"time"

	"github.com/signadot/enumstate"
)
type S struct {
	enumstate.Tag
	//enumstate:default(time.Second)
	Wait time.Duration
	//enumstate:default(time.Minute)
	Count int
}
`,
		},
		{
			name: "stale generated methods",
			src: `package ui
//enumstate:
type Mode int
const (
	A Mode = iota
	B
)
func (m Mode) Gone() int { return m.Missing() }
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := checkSource(t, tt.src); err != nil {
				t.Errorf("Check() error = %v", err)
			}
		})
	}
}

func TestCheckerRejects(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		variant  string
		mismatch bool
		msg      string
	}{
		{
			name: "string underlying type",
			src: `package ui
//enumstate:
type Color string
const Red Color = "red"
`,
			msg: "integer underlying type",
		},
		{
			name: "float underlying type",
			src: `package ui
//enumstate:
type Level float64
const Low Level = 0.5
`,
			msg: "integer underlying type",
		},
		{
			name: "duplicate value",
			src: `package ui
//enumstate:
type Mode int
const (
	Off Mode = iota
	On
	Default Mode = Off
)
`,
			variant: "Default",
			msg:     "same value 0 as Off",
		},
		{
			name: "repeated iota expression",
			src: `package ui
//enumstate:
type Mode int
const (
	A Mode = iota * 0
	B
)
`,
			variant: "B",
			msg:     "same value 0 as A",
		},
		{
			name: "wrong kind",
			src: `package ui
import "github.com/signadot/enumstate"
type S struct {
	enumstate.Tag
	Never  struct{}
	Always int ` + "`enumstate:\"default(\\\"often\\\")\"`" + `
}
`,
			variant:  "Always",
			mismatch: true,
			msg:      "cannot use",
		},
		{
			name: "overflow",
			src: `package ui
import "github.com/signadot/enumstate"
type S struct {
	enumstate.Tag
	//enumstate:default(300)
	Small int8
}
`,
			variant:  "Small",
			mismatch: true,
			msg:      "overflows",
		},
		{
			name: "inner slot",
			src: `package ui
import "github.com/signadot/enumstate"
type S struct {
	enumstate.Tag
	//enumstate:default(1, 2)
	Pair struct {
		N     int
		Label string
	}
}
`,
			variant:  "Pair",
			mismatch: true,
			msg:      "cannot use",
		},
		{
			name: "type level arguments",
			src: `package ui
import "github.com/signadot/enumstate"
//enumstate:default(Pair(true))
type S struct {
	enumstate.Tag
	Unit struct{}
	Pair struct{ N int }
}
`,
			variant:  "Pair",
			mismatch: true,
			msg:      "cannot use",
		},
		{
			name: "undefined name",
			src: `package ui
import "github.com/signadot/enumstate"
type S struct {
	enumstate.Tag
	//enumstate:default(Nowhere)
	N int
}
`,
			variant:  "N",
			mismatch: true,
			msg:      "undefined",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkSource(t, tt.src)
			if err == nil {
				t.Fatal("Check() succeeded, want error")
			}
			var got, msg string
			if tt.mismatch {
				var me *schema.TypeMismatchError
				if !errors.As(err, &me) {
					t.Fatalf("Check() error = %v, want TypeMismatchError", err)
				}
				got, msg = me.Variant, me.Msg
			} else {
				var se *schema.SchemaError
				if !errors.As(err, &se) {
					t.Fatalf("Check() error = %v, want SchemaError", err)
				}
				got, msg = se.Variant, se.Msg
			}
			if got != tt.variant {
				t.Errorf("variant = %q, want %q", got, tt.variant)
			}
			if !strings.Contains(msg, tt.msg) {
				t.Errorf("message %q does not contain %q", msg, tt.msg)
			}
		})
	}
}

func TestCheckerMarkCapable(t *testing.T) {
	infos, err := checkSource(t, `package ui
import "github.com/signadot/enumstate"

type Manual struct{ n int }

func (Manual) First() Manual   { return Manual{} }
func (Manual) Last() Manual    { return Manual{n: 1} }
func (Manual) Default() Manual { return Manual{} }

type Partial int

func (Partial) First() Partial { return 0 }

//enumstate:first
type S struct {
	enumstate.Tag
	M Manual
	P Partial ` + "`enumstate:\"default(0)\"`" + `
}
`)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	slots := infos[0].Decl.Variants
	if c := slots[0].Slots[0].Capability; c != schema.StateCapable {
		t.Errorf("Manual capability = %v, want state-capable", c)
	}
	if c := slots[1].Slots[0].Capability; c != schema.Opaque {
		t.Errorf("Partial capability = %v, want opaque", c)
	}
}
