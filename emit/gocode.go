// Package emit turns resolved schemas into state enumeration operations:
// Go source for the generated file, and [Live] values that run the same
// operations in memory.
package emit

import (
	"bytes"
	"go/ast"
	"go/parser"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/signadot/enumstate/resolve"
	"github.com/signadot/enumstate/schema"
	"golang.org/x/tools/imports"
)

// DefaultHeader is the first line of every generated file.
const DefaultHeader = "// Code generated by enumstate-gen. DO NOT EDIT."

// File describes one generated file.
type File struct {
	// Name is the file name, used by the formatter to settle imports.
	Name string

	PkgName string

	// Header replaces DefaultHeader when set.
	Header string

	// Resolutions in emission order.
	Resolutions []*resolve.Resolution
}

// Source renders f as formatted Go source.
func Source(f *File) ([]byte, error) {
	data := fileData{
		Header:  f.Header,
		PkgName: f.PkgName,
	}
	if data.Header == "" {
		data.Header = DefaultHeader
	}
	for _, res := range f.Resolutions {
		td, err := newTypeData(res)
		if err != nil {
			return nil, err
		}
		data.Types = append(data.Types, td)
	}
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrapf(err, "executing template for %s", f.Name)
	}
	name := f.Name
	if name == "" {
		name = f.PkgName + "_enumstate.go"
	}
	out, err := imports.Process(name, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, errors.WithDetail(errors.Wrapf(err, "formatting %s", name), buf.String())
	}
	return out, nil
}

type fileData struct {
	Header  string
	PkgName string
	Types   []*typeData
}

type typeData struct {
	Name  string
	Recv  string
	Const bool
	Size  int
	Names []string

	// Values are the constant names of a const form type.
	Values       []string
	DefaultValue string

	// Cases build each variant of a struct form type, by ordinal.
	Cases   []*buildData
	Default *buildData

	// L names the locals and parameters of the generated methods.
	L locals
}

type buildData struct {
	Type    string
	Var     string
	Ordinal int
	Assign  []string
}

type locals struct {
	V, I, Zero, Cur, Steps, Ord, Res string
}

// newLocals names the method locals so that none shadows a name the
// method bodies refer to.
func newLocals(taken map[string]bool) locals {
	local := func(base string) string {
		for taken[base] {
			base += "_"
		}
		return base
	}
	return locals{
		V:     local("v"),
		I:     local("i"),
		Zero:  local("zero"),
		Cur:   local("cur"),
		Steps: local("steps"),
		Ord:   local("ord"),
		Res:   local("res"),
	}
}

// reserved are the package names the generated file imports.
var reserved = map[string]bool{
	"enumstate": true,
	"iter":      true,
	"slices":    true,
	"strconv":   true,
}

func newTypeData(res *resolve.Resolution) (*typeData, error) {
	s := res.Schema
	if len(res.Variants) != len(s.Variants) {
		return nil, errors.Newf("%s: resolution has %d variants, schema has %d", s.Name, len(res.Variants), len(s.Variants))
	}
	if reserved[s.Name] {
		return nil, errors.Newf("%s: type name collides with a package imported by the generated file", s.Name)
	}
	if s.Form == schema.ConstForm {
		for _, v := range s.Variants {
			if reserved[v.Name] {
				return nil, errors.Newf("%s.%s: constant collides with a package imported by the generated file", s.Name, v.Name)
			}
		}
	}
	taken := referenced(res)
	td := &typeData{
		Name:  s.Name,
		Recv:  receiver(s.Name, taken),
		Const: s.Form == schema.ConstForm,
		L:     newLocals(taken),
		Size:  len(s.Variants),
	}
	for _, v := range s.Variants {
		td.Names = append(td.Names, strconv.Quote(v.Name))
	}
	if td.Const {
		for _, v := range s.Variants {
			td.Values = append(td.Values, v.Name)
		}
		td.DefaultValue = res.Default.Variant.Name
		return td, nil
	}
	for _, d := range res.Variants {
		td.Cases = append(td.Cases, newBuildData(d, td.L.V))
	}
	td.Default = newBuildData(res.Default, td.L.V)
	return td, nil
}

func newBuildData(d *resolve.Default, local string) *buildData {
	b := &buildData{Type: d.Schema.Name, Var: local, Ordinal: d.Ordinal()}
	v := d.Variant
	for i, f := range d.Fields {
		path := local + "." + v.Name
		if !v.Single() {
			path += "." + v.Slots[i].Name
		}
		b.Assign = append(b.Assign, path+" = "+FieldExpr(path, f))
	}
	return b
}

// FieldExpr is the Go expression yielding the resolved value of f, for a
// slot reached through path. Nested constants are named directly; other
// state-capable slots call First, Last or Default on their own zero value.
func FieldExpr(path string, f *resolve.Field) string {
	switch {
	case f.Nested != nil && f.Nested.Schema.Form == schema.ConstForm:
		return f.Nested.Variant.Name
	case f.Nested != nil, f.External != nil:
		return path + "." + f.Method() + "()"
	}
	return f.Literal
}

// referenced collects the identifiers the generated methods of res use
// besides their locals: the type name, constant variants and the names
// inside default expressions.
func referenced(res *resolve.Resolution) map[string]bool {
	s := res.Schema
	taken := map[string]bool{s.Name: true}
	if s.Form == schema.ConstForm {
		for _, v := range s.Variants {
			taken[v.Name] = true
		}
		return taken
	}
	for _, d := range append([]*resolve.Default{res.Default}, res.Variants...) {
		for _, f := range d.Fields {
			switch {
			case f.Nested != nil && f.Nested.Schema.Form == schema.ConstForm:
				taken[f.Nested.Variant.Name] = true
			case f.Literal != "":
				expr, err := parser.ParseExpr(f.Literal)
				if err != nil {
					continue
				}
				ast.Inspect(expr, func(n ast.Node) bool {
					if id, ok := n.(*ast.Ident); ok {
						taken[id.Name] = true
					}
					return true
				})
			}
		}
	}
	return taken
}

// receiver is the lowercased first letter of name, or x when name starts
// with an underscore.
func receiver(name string, taken map[string]bool) string {
	r, _ := utf8.DecodeRuneInString(name)
	recv := "x"
	if unicode.IsLetter(r) {
		recv = string(unicode.ToLower(r))
	}
	for recv == name || taken[recv] {
		recv += "_"
	}
	return recv
}

var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`{{.Header}}

package {{.PkgName}}

import (
	"iter"
	"slices"
	"strconv"

	"github.com/signadot/enumstate"
)
{{range .Types}}{{if .Const}}{{template "const" .}}{{else}}{{template "struct" .}}{{end}}{{template "common" .}}{{end}}

{{define "const"}}
var _{{.Name}}Names = [...]string{ {{join .Names ", "}} }

var _{{.Name}}Values = [...]{{.Name}}{ {{join .Values ", "}} }

func ({{.Recv}} {{.Name}}) Index() int {
	switch {{.Recv}} {
{{- range $i, $v := .Values}}
	case {{$v}}:
		return {{$i}}
{{- end}}
	}
	return -1
}

func ({{.Recv}} {{.Name}}) Name() string {
	if {{.L.Cur}} := {{.Recv}}.Index(); {{.L.Cur}} >= 0 {
		return _{{.Name}}Names[{{.L.Cur}}]
	}
	return "{{.Name}}(" + strconv.FormatInt(int64({{.Recv}}), 10) + ")"
}

func ({{.Name}}) Default() {{.Name}} {
	return {{.DefaultValue}}
}

func ({{.Name}}) FromIndex({{.L.I}} int) ({{.Name}}, bool) {
	if {{.L.I}} < 0 || {{.L.I}} >= {{.Size}} {
		var {{.L.Zero}} {{.Name}}
		return {{.L.Zero}}, false
	}
	return _{{.Name}}Values[{{.L.I}}], true
}

func ({{.Recv}} *{{.Name}}) Skip({{.L.Steps}} int) {
	{{.L.Cur}} := {{.Recv}}.Index()
	if {{.L.Cur}} < 0 {
		*{{.Recv}} = {{.Recv}}.Default()
		return
	}
	*{{.Recv}} = _{{.Name}}Values[enumstate.Skip({{.L.Cur}}, {{.L.Steps}}, {{.Size}})]
}

func ({{.Recv}} *{{.Name}}) SkipBackward({{.L.Steps}} int) {
	if {{.L.Steps}} == 0 {
		return
	}
	{{.L.Cur}} := {{.Recv}}.Index()
	if {{.L.Cur}} < 0 {
		*{{.Recv}} = {{.Recv}}.Default()
		return
	}
	*{{.Recv}} = _{{.Name}}Values[enumstate.SkipBackward({{.L.Cur}}, {{.L.Steps}}, {{.Size}})]
}
{{end}}

{{define "build"}}
	var {{.Var}} {{.Type}}
	{{.Var}}.Tag = {{.Ordinal}}
{{- range .Assign}}
	{{.}}
{{- end}}
{{- end}}

{{define "struct"}}
var _{{.Name}}Names = [...]string{ {{join .Names ", "}} }

func ({{.Recv}} {{.Name}}) Index() int {
	if {{.Recv}}.Tag >= 0 && {{.Recv}}.Tag < {{.Size}} {
		return int({{.Recv}}.Tag)
	}
	return -1
}

func ({{.Recv}} {{.Name}}) Name() string {
	return enumstate.NameOf("{{.Name}}", _{{.Name}}Names[:], int({{.Recv}}.Tag))
}

func ({{.Name}}) Default() {{.Name}} {
{{- template "build" .Default}}
	return {{.L.V}}
}

// FromIndex returns the variant at ordinal i holding its default fields.
func ({{.Name}}) FromIndex({{.L.I}} int) ({{.Name}}, bool) {
	switch {{.L.I}} {
{{- range .Cases}}
	case {{.Ordinal}}:
{{- template "build" .}}
		return {{.Var}}, true
{{- end}}
	}
	var {{.L.Zero}} {{.Name}}
	return {{.L.Zero}}, false
}

// Skip moves steps variants forward, rebuilding the target variant with
// its default fields.
func ({{.Recv}} *{{.Name}}) Skip({{.L.Steps}} int) {
	{{.L.Cur}} := {{.Recv}}.Index()
	if {{.L.Cur}} < 0 {
		*{{.Recv}} = {{.Recv}}.Default()
		return
	}
	*{{.Recv}}, _ = {{.Recv}}.FromIndex(enumstate.Skip({{.L.Cur}}, {{.L.Steps}}, {{.Size}}))
}

func ({{.Recv}} *{{.Name}}) SkipBackward({{.L.Steps}} int) {
	if {{.L.Steps}} == 0 {
		return
	}
	{{.L.Cur}} := {{.Recv}}.Index()
	if {{.L.Cur}} < 0 {
		*{{.Recv}} = {{.Recv}}.Default()
		return
	}
	*{{.Recv}}, _ = {{.Recv}}.FromIndex(enumstate.SkipBackward({{.L.Cur}}, {{.L.Steps}}, {{.Size}}))
}
{{end}}

{{define "common"}}
func ({{.Recv}} {{.Name}}) First() {{.Name}} {
	{{.L.Res}}, _ := {{.Recv}}.FromIndex(0)
	return {{.L.Res}}
}

func ({{.Recv}} {{.Name}}) Last() {{.Name}} {
	{{.L.Res}}, _ := {{.Recv}}.FromIndex({{.Size}} - 1)
	return {{.L.Res}}
}

func ({{.Name}}) Size() int {
	return {{.Size}}
}

func ({{.Name}}) Names() []string {
	return slices.Clone(_{{.Name}}Names[:])
}

func ({{.Recv}} {{.Name}}) AllStates() iter.Seq[{{.Name}}] {
	return enumstate.States({{.Size}}, func({{.L.Ord}} int) {{.Name}} {
		{{.L.Res}}, _ := {{.Recv}}.FromIndex({{.L.Ord}})
		return {{.L.Res}}
	})
}

func ({{.Recv}} *{{.Name}}) Next() {
	{{.Recv}}.Skip(1)
}

func ({{.Recv}} *{{.Name}}) Previous() {
	{{.Recv}}.SkipBackward(1)
}

var _ enumstate.Cycler[{{.Name}}] = (*{{.Name}})(nil)
{{end}}
`))
