package sop

import (
	"context"
	"log"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/clip"
	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/expr"
	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// PolyClipName is the table name of the clip operator.
const PolyClipName = "hdk_polyclip"

// PolyClipOperator describes the clip operator: closed polygons of the
// input are cut by the plane through origin with the given normal, keeping
// the side the normal points to.
func PolyClipOperator() *Operator {
	return &Operator{
		Name:  PolyClipName,
		Label: "PolyClip",
		Templates: []ParmTemplate{
			{Name: "group", Label: "Group", Type: ParmString},
			{Name: "origin", Label: "Origin", Type: ParmVector3, Default: []string{"0", "0", "0"}},
			{Name: "normal", Label: "Normal", Type: ParmVector3, Default: []string{"0", "1", "0"}},
		},
		MinInputs: 1,
		MaxInputs: 1,
		Construct: func(name string, op *Operator) Node {
			return &PolyClipNode{baseNode: newBaseNode(name, op)}
		},
	}
}

// PolyClipNode is an instance of the clip operator.
type PolyClipNode struct {
	baseNode
}

var _ Node = (*PolyClipNode)(nil)

// Cook clips a copy of input 0. Parameter and group errors are reported
// before the copy is touched.
func (n *PolyClipNode) Cook(ctx context.Context, cp *CookParms) (*Result, error) {
	in, err := cp.Input(0)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}

	ectx := expr.Context{Time: cp.Time}
	origin, err := n.parms.Vector3("origin", ectx)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	normal, err := n.parms.Vector3("normal", ectx)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	plane, err := clip.NewPlane(origin, normal)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	pattern, err := n.parms.String("group")
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}

	gdp := in.Copy()
	group, err := geo.ParseGroup(gdp, geo.OwnerPrimitive, pattern)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}

	opts := clip.DefaultOptions()
	opts.Plane = plane
	if group != nil {
		opts.Group = group.Offsets()
	}
	stats, err := clip.Clip(ctx, gdp, opts)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}

	res := &Result{Geometry: gdp}
	if stats.Interrupted {
		log.Printf("sop: %s: cook interrupted after %d of %d clipped primitives", n.name, stats.Removed, stats.Scanned)
		res.Warnings = append(res.Warnings, WarnInterrupted)
	}
	return res, nil
}
