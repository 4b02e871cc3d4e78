package sop

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/expr"
)

// ParmType enumerates parameter kinds.
type ParmType int

const (
	ParmFloat ParmType = iota
	ParmInt
	ParmToggle
	ParmMenu
	ParmString
	ParmVector3
)

func (t ParmType) String() string {
	switch t {
	case ParmFloat:
		return "float"
	case ParmInt:
		return "int"
	case ParmToggle:
		return "toggle"
	case ParmMenu:
		return "menu"
	case ParmString:
		return "string"
	case ParmVector3:
		return "vector3"
	default:
		return "unknown"
	}
}

// ParmTemplate declares one parameter of an operator. Default holds one
// raw string per component. Menu lists the tokens of a ParmMenu.
type ParmTemplate struct {
	Name    string
	Label   string
	Type    ParmType
	Default []string
	Menu    []string
}

// Size returns the number of components.
func (t ParmTemplate) Size() int {
	if t.Type == ParmVector3 {
		return 3
	}
	return 1
}

// ParmSet holds the values of a node's parameters. Numeric components are
// literals or expressions, compiled when set and evaluated on demand.
type ParmSet struct {
	templates []ParmTemplate
	values    map[string][]string
	compiled  map[string][]*expr.Expr
}

// NewParmSet returns a set initialized to the template defaults. It panics
// if a numeric default does not compile.
func NewParmSet(templates []ParmTemplate) *ParmSet {
	p := &ParmSet{
		templates: templates,
		values:    make(map[string][]string, len(templates)),
		compiled:  make(map[string][]*expr.Expr, len(templates)),
	}
	for _, t := range templates {
		v := make([]string, t.Size())
		copy(v, t.Default)
		exprs, err := compileValues(t, v)
		if err != nil {
			panic(err)
		}
		p.values[t.Name] = v
		p.compiled[t.Name] = exprs
	}
	return p
}

// compileValues compiles the numeric components of values. Menu tokens and
// string parameters have no expression and get a nil entry.
func compileValues(t ParmTemplate, values []string) ([]*expr.Expr, error) {
	exprs := make([]*expr.Expr, len(values))
	switch t.Type {
	case ParmString:
		return exprs, nil
	case ParmMenu:
		if slices.Contains(t.Menu, values[0]) {
			return exprs, nil
		}
		e, err := expr.Compile(values[0])
		if err != nil {
			return nil, fmt.Errorf("sop: parameter %q: %q is not one of %v", t.Name, values[0], t.Menu)
		}
		exprs[0] = e
		return exprs, nil
	}
	for i, v := range values {
		e, err := expr.Compile(v)
		if err != nil {
			return nil, fmt.Errorf("sop: parameter %q[%d]: %w", t.Name, i, err)
		}
		exprs[i] = e
	}
	return exprs, nil
}

// Templates returns the parameter declarations in order.
func (p *ParmSet) Templates() []ParmTemplate {
	return p.templates
}

func (p *ParmSet) template(name string) (ParmTemplate, error) {
	t, ok := lo.Find(p.templates, func(t ParmTemplate) bool { return t.Name == name })
	if !ok {
		return ParmTemplate{}, fmt.Errorf("sop: unknown parameter %q", name)
	}
	return t, nil
}

// Set replaces the raw component values of name. Numeric values are
// compiled here so that malformed input is rejected early.
func (p *ParmSet) Set(name string, values ...string) error {
	t, err := p.template(name)
	if err != nil {
		return err
	}
	if len(values) != t.Size() {
		return fmt.Errorf("sop: parameter %q takes %d values, got %d", name, t.Size(), len(values))
	}
	exprs, err := compileValues(t, values)
	if err != nil {
		return err
	}
	p.values[name] = slices.Clone(values)
	p.compiled[name] = exprs
	return nil
}

// SetVector sets a vector3 parameter to literal components.
func (p *ParmSet) SetVector(name string, v v3.Vec) error {
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	return p.Set(name, f(v.X), f(v.Y), f(v.Z))
}

// SetFloat sets a scalar parameter to a literal.
func (p *ParmSet) SetFloat(name string, v float64) error {
	return p.Set(name, strconv.FormatFloat(v, 'g', -1, 64))
}

// PointVarying reports whether any component of the named parameters uses
// point builtins.
func (p *ParmSet) PointVarying(names ...string) bool {
	for _, name := range names {
		for _, e := range p.compiled[name] {
			if e != nil && e.PointVarying() {
				return true
			}
		}
	}
	return false
}

func (p *ParmSet) eval(name string, i int, ctx expr.Context) (float64, error) {
	exprs, ok := p.compiled[name]
	if !ok {
		return 0, fmt.Errorf("sop: unknown parameter %q", name)
	}
	e := exprs[i]
	if e == nil {
		return 0, fmt.Errorf("sop: parameter %q has no numeric value", name)
	}
	v, err := e.Eval(ctx)
	if err != nil {
		return 0, fmt.Errorf("sop: parameter %q: %w", name, err)
	}
	return v, nil
}

// Float evaluates a scalar parameter.
func (p *ParmSet) Float(name string, ctx expr.Context) (float64, error) {
	return p.eval(name, 0, ctx)
}

// Vector3 evaluates a vector3 parameter.
func (p *ParmSet) Vector3(name string, ctx expr.Context) (v3.Vec, error) {
	var c [3]float64
	for i := range c {
		v, err := p.eval(name, i, ctx)
		if err != nil {
			return v3.Vec{}, err
		}
		c[i] = v
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// Int evaluates an integer parameter, rounding to nearest. For a menu the
// result is the index of the selected token.
func (p *ParmSet) Int(name string, ctx expr.Context) (int, error) {
	t, err := p.template(name)
	if err != nil {
		return 0, err
	}
	if t.Type == ParmMenu {
		if i := slices.Index(t.Menu, p.values[name][0]); i >= 0 {
			return i, nil
		}
	}
	v, err := p.eval(name, 0, ctx)
	if err != nil {
		return 0, err
	}
	i := int(math.Round(v))
	if t.Type == ParmMenu && (i < 0 || i >= len(t.Menu)) {
		return 0, fmt.Errorf("sop: parameter %q: menu index %d out of range", name, i)
	}
	return i, nil
}

// Toggle evaluates a toggle parameter; any non-zero value is on.
func (p *ParmSet) Toggle(name string, ctx expr.Context) (bool, error) {
	v, err := p.eval(name, 0, ctx)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// String returns a string parameter verbatim.
func (p *ParmSet) String(name string) (string, error) {
	vals, ok := p.values[name]
	if !ok {
		return "", fmt.Errorf("sop: unknown parameter %q", name)
	}
	return vals[0], nil
}
