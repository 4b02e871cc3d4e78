// Package sop is the operator plugin layer: operator descriptions, a
// name-to-factory table, parameter sets and the node types that cook
// geometry with the clip and flatten packages.
package sop

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// Operator describes a node type.
type Operator struct {
	Name      string
	Label     string
	Templates []ParmTemplate
	MinInputs int
	MaxInputs int
	Construct func(name string, op *Operator) Node
}

// Node is an instance of an operator.
type Node interface {
	ID() string
	Name() string
	Operator() *Operator
	Parms() *ParmSet
	Cook(ctx context.Context, cp *CookParms) (*Result, error)
}

// GuideCooker is implemented by nodes that provide guide geometry.
type GuideCooker interface {
	CookGuide(ctx context.Context, cp *CookParms) (geo.Detail, error)
}

// CookParms is the per-cook request.
type CookParms struct {
	Time   float64
	Inputs []geo.Detail
}

// Input returns input i or ErrInputUnavailable.
func (cp *CookParms) Input(i int) (geo.Detail, error) {
	if cp == nil || i >= len(cp.Inputs) || cp.Inputs[i] == nil {
		return nil, fmt.Errorf("input %d: %w", i, ErrInputUnavailable)
	}
	return cp.Inputs[i], nil
}

// Result is the output of a successful cook.
type Result struct {
	Geometry geo.Detail
	Warnings []string
}

// baseNode carries the state shared by all node types.
type baseNode struct {
	id    string
	name  string
	op    *Operator
	parms *ParmSet
}

func newBaseNode(name string, op *Operator) baseNode {
	return baseNode{
		id:    uuid.NewString(),
		name:  name,
		op:    op,
		parms: NewParmSet(op.Templates),
	}
}

func (n *baseNode) ID() string          { return n.id }
func (n *baseNode) Name() string        { return n.name }
func (n *baseNode) Operator() *Operator { return n.op }
func (n *baseNode) Parms() *ParmSet     { return n.parms }

// fail wraps err as a CookError of this node.
func (n *baseNode) fail(sev Severity, err error) error {
	return &CookError{Node: n.name, Severity: sev, Err: err}
}
