package emit

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/signadot/enumstate/resolve"
	"github.com/signadot/enumstate/schema"
)

func generate(t *testing.T, set *schema.Set) string {
	t.Helper()
	all, err := resolve.New(set).ResolveAll()
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	src, err := Source(&File{Name: "focus_enumstate.go", PkgName: "focus", Resolutions: all})
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "focus_enumstate.go", src, 0); err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	return string(src)
}

func TestSourceConstForm(t *testing.T) {
	code := generate(t, focusSet(t))
	for _, want := range []string{
		DefaultHeader,
		"package focus",
		`var _MainFocusNames = [...]string{"StatsTab", "GraphsTab", "InfoTab"}`,
		"var _MainFocusValues = [...]MainFocus{StatsTab, GraphsTab, InfoTab}",
		"func (m MainFocus) Index() int {",
		"case InfoTab:",
		"func (MainFocus) Default() MainFocus {\n\treturn StatsTab\n}",
		`return "MainFocus(" + strconv.FormatInt(int64(m), 10) + ")"`,
		"func (m *MainFocus) Next() {",
		"var _ enumstate.Cycler[MainFocus] = (*MainFocus)(nil)",
		`"github.com/signadot/enumstate"`,
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q:\n%s", want, code)
		}
	}
}

func TestSourceStructForm(t *testing.T) {
	code := generate(t, focusSet(t))
	for _, want := range []string{
		"func (a AppFocus) Index() int {",
		`return enumstate.NameOf("AppFocus", _AppFocusNames[:], int(a.Tag))`,
		"v.MainWindow = StatsTab",
		"v.Tag = 1",
		"v.Pair.N = 3",
		`v.Pair.Label = "x"`,
		"func (a *AppFocus) Skip(steps int) {",
		"*a, _ = a.FromIndex(enumstate.Skip(cur, steps, 3))",
		"*a, _ = a.FromIndex(enumstate.SkipBackward(cur, steps, 3))",
		"func (a *AppFocus) SkipBackward(steps int) {\n\tif steps == 0 {\n\t\treturn\n\t}",
		"func (a AppFocus) AllStates() iter.Seq[AppFocus] {",
		"var _ enumstate.Cycler[AppFocus] = (*AppFocus)(nil)",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q:\n%s", want, code)
		}
	}
}

func TestSourceTypeDefaultArgs(t *testing.T) {
	main := build(t, &schema.Decl{
		Name:     "MainFocus",
		Variants: units("StatsTab", "GraphsTab"),
	})
	app := build(t, &schema.Decl{
		Name:  "AppFocus",
		Form:  schema.StructForm,
		Attrs: []schema.Attr{attr(schema.AttrFirst), attr(schema.AttrDefault, "MainWindow(GraphsTab)")},
		Variants: []*schema.VariantDecl{
			{Name: "MainWindow", Slots: []*schema.Slot{{Type: ref("MainFocus"), Capability: schema.StateCapable}}},
		},
	})
	set, err := schema.NewSet(main, app)
	if err != nil {
		t.Fatal(err)
	}
	code := generate(t, set)
	if !strings.Contains(code, "v.MainWindow = GraphsTab") {
		t.Errorf("type default args not emitted:\n%s", code)
	}
	if !strings.Contains(code, "v.MainWindow = StatsTab") {
		t.Errorf("first policy not emitted:\n%s", code)
	}
	if !strings.Contains(code, `"strconv"`) {
		t.Errorf("const form name fallback needs strconv:\n%s", code)
	}
}

func TestSourceNestedCalls(t *testing.T) {
	other := schema.TypeRef{PkgPath: "example.com/other", PkgName: "other", Name: "Mode", Expr: "other.Mode"}
	inner := build(t, &schema.Decl{
		Name:     "Inner",
		Form:     schema.StructForm,
		Attrs:    []schema.Attr{attr(schema.AttrLast)},
		Variants: []*schema.VariantDecl{{Name: "Remote", Slots: []*schema.Slot{{Type: other, Capability: schema.StateCapable}}}},
	})
	outer := build(t, &schema.Decl{
		Name:     "Outer",
		Form:     schema.StructForm,
		Attrs:    []schema.Attr{attr(schema.AttrAuto)},
		Variants: []*schema.VariantDecl{{Name: "Wrapped", Slots: []*schema.Slot{{Type: ref("Inner"), Capability: schema.StateCapable}}}},
	})
	set, err := schema.NewSet(inner, outer)
	if err != nil {
		t.Fatal(err)
	}
	all, err := resolve.New(set).ResolveAll()
	if err != nil {
		t.Fatal(err)
	}
	src, err := Source(&File{PkgName: "focus", Header: "// custom header", Resolutions: all})
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	code := string(src)
	for _, want := range []string{
		"// custom header",
		"v.Remote = v.Remote.Last()",
		"v.Wrapped = v.Wrapped.Default()",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q:\n%s", want, code)
		}
	}
	if strings.Contains(code, `"strconv"`) {
		t.Errorf("struct-only file imports strconv:\n%s", code)
	}
}
