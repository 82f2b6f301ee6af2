package emit

import (
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/signadot/enumstate"
	"github.com/signadot/enumstate/plan"
	"github.com/signadot/enumstate/resolve"
	"github.com/signadot/enumstate/schema"
)

// Machine runs the generated operations of a resolved schema set in memory.
type Machine struct {
	types  map[string]*machineType
	byName map[string]*machineType
	order  []*machineType
}

type machineType struct {
	res  *resolve.Resolution
	plan *plan.Plan
}

// NewMachine resolves every schema of set and prepares live values for
// them.
func NewMachine(set *schema.Set) (*Machine, error) {
	all, err := resolve.New(set).ResolveAll()
	if err != nil {
		return nil, err
	}
	m := &Machine{
		types:  make(map[string]*machineType, len(all)),
		byName: make(map[string]*machineType, len(all)),
	}
	for _, res := range all {
		p, err := plan.New(res.Schema)
		if err != nil {
			return nil, err
		}
		mt := &machineType{res: res, plan: p}
		m.types[res.Schema.Ref().Key()] = mt
		if _, dup := m.byName[res.Schema.Name]; !dup {
			m.byName[res.Schema.Name] = mt
		}
		m.order = append(m.order, mt)
	}
	return m, nil
}

// Resolution returns the resolution of the schema called name.
func (m *Machine) Resolution(name string) (*resolve.Resolution, bool) {
	mt, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return mt.res, true
}

// Resolutions returns every resolution, in set order.
func (m *Machine) Resolutions() []*resolve.Resolution {
	res := make([]*resolve.Resolution, len(m.order))
	for i, mt := range m.order {
		res[i] = mt.res
	}
	return res
}

// Default returns the default value of the schema called name.
func (m *Machine) Default(name string) (*Live, error) {
	mt, ok := m.byName[name]
	if !ok {
		return nil, errors.Newf("unknown schema %q", name)
	}
	return m.build(mt.res.Default), nil
}

func (m *Machine) build(d *resolve.Default) *Live {
	l := &Live{
		m:      m,
		t:      m.types[d.Schema.Ref().Key()],
		ord:    d.Ordinal(),
		fields: make([]liveField, len(d.Fields)),
	}
	for i, f := range d.Fields {
		switch {
		case f.Nested != nil:
			l.fields[i].nested = m.build(f.Nested)
		case f.External != nil:
			l.fields[i].lit = f.External.String()
		default:
			l.fields[i].lit = f.Literal
		}
	}
	return l
}

// Live is a value of a state enumeration. It supports the operations of
// generated code; moving to another variant replaces the value with that
// variant's default.
type Live struct {
	m      *Machine
	t      *machineType
	ord    int
	fields []liveField
}

type liveField struct {
	lit    string
	nested *Live
}

func (l *Live) Schema() *schema.SumType {
	return l.t.res.Schema
}

func (l *Live) Index() int {
	return l.ord
}

func (l *Live) Name() string {
	return l.t.plan.Name(l.ord)
}

func (l *Live) Size() int {
	return l.t.plan.Size()
}

func (l *Live) Names() []string {
	return l.t.plan.Names()
}

func (l *Live) Default() *Live {
	return l.m.build(l.t.res.Default)
}

func (l *Live) First() *Live {
	return l.m.build(l.t.res.First())
}

func (l *Live) Last() *Live {
	return l.m.build(l.t.res.Last())
}

// FromIndex returns the variant at ordinal i holding its default fields.
func (l *Live) FromIndex(i int) (*Live, bool) {
	if !l.t.plan.Valid(i) {
		return nil, false
	}
	return l.m.build(l.t.res.Variants[i]), true
}

// AllStates yields the default of every variant, in ordinal order.
func (l *Live) AllStates() iter.Seq[*Live] {
	return enumstate.States(l.Size(), func(i int) *Live {
		v, _ := l.FromIndex(i)
		return v
	})
}

func (l *Live) Next() {
	l.Skip(1)
}

func (l *Live) Previous() {
	l.SkipBackward(1)
}

// Skip moves k variants forward. The target variant is rebuilt with its
// default fields, even when it is the active one.
func (l *Live) Skip(k int) {
	l.moveTo(l.t.plan.Skip(l.ord, k))
}

// SkipBackward moves k variants backward; k == 0 leaves l unchanged.
func (l *Live) SkipBackward(k int) {
	if k == 0 {
		return
	}
	l.moveTo(l.t.plan.SkipBackward(l.ord, k))
}

func (l *Live) moveTo(i int) {
	v, _ := l.FromIndex(i)
	*l = *v
}

// NumField is the number of slots of the active variant.
func (l *Live) NumField() int {
	return len(l.fields)
}

// Field returns the live value held in slot i of the active variant, or
// nil when the slot holds a literal or external value. Mutating the
// returned value changes l.
func (l *Live) Field(i int) *Live {
	if i < 0 || i >= len(l.fields) {
		return nil
	}
	return l.fields[i].nested
}

// String renders the value as a recipe, e.g. MainWindow(InfoTab).
func (l *Live) String() string {
	var b strings.Builder
	l.write(&b)
	return b.String()
}

func (l *Live) write(b *strings.Builder) {
	b.WriteString(l.Name())
	if len(l.fields) == 0 {
		return
	}
	b.WriteString("(")
	for i, f := range l.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.nested != nil {
			f.nested.write(b)
		} else {
			b.WriteString(f.lit)
		}
	}
	b.WriteString(")")
}
