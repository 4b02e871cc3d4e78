package sop

import (
	"context"
	"log"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/expr"
	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/flatten"
	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// FlattenName is the table name of the flatten operator.
const FlattenName = "hdk_flatten"

// FlattenOperator describes the flatten operator. With usedir off the
// plane is one of the axis planes picked by orient, otherwise its normal
// is dir. dist offsets the plane along the normal.
func FlattenOperator() *Operator {
	return &Operator{
		Name:  FlattenName,
		Label: "Flatten",
		Templates: []ParmTemplate{
			{Name: "group", Label: "Group", Type: ParmString},
			{Name: "dist", Label: "Distance", Type: ParmFloat, Default: []string{"0"}},
			{Name: "usedir", Label: "Use Direction Vector", Type: ParmToggle, Default: []string{"0"}},
			{Name: "orient", Label: "Plane", Type: ParmMenu, Default: []string{"xy"}, Menu: []string{"xy", "yz", "xz"}},
			{Name: "dir", Label: "Direction", Type: ParmVector3, Default: []string{"0", "0", "1"}},
		},
		MinInputs: 1,
		MaxInputs: 1,
		Construct: func(name string, op *Operator) Node {
			return &FlattenNode{baseNode: newBaseNode(name, op)}
		},
	}
}

// FlattenNode is an instance of the flatten operator.
type FlattenNode struct {
	baseNode
}

var (
	_ Node        = (*FlattenNode)(nil)
	_ GuideCooker = (*FlattenNode)(nil)
)

// nodeParams evaluates a flatten node's parameters for one cook.
type nodeParams struct {
	parms   *ParmSet
	time    float64
	varying bool
}

var _ flatten.ParamSource = (*nodeParams)(nil)

func (n *FlattenNode) source(time float64) *nodeParams {
	return &nodeParams{
		parms:   n.parms,
		time:    time,
		varying: n.parms.PointVarying("dist", "usedir", "orient", "dir"),
	}
}

func (s *nodeParams) PointVarying() bool { return s.varying }

func (s *nodeParams) Params(pc flatten.PointContext) (flatten.Params, error) {
	ectx := expr.Context{Time: s.time}
	if pc.Offset.IsValid() {
		ectx.Point = &expr.Point{Number: pc.Number, Pos: pc.Pos}
	}
	var (
		p   flatten.Params
		err error
	)
	if p.Dist, err = s.parms.Float("dist", ectx); err != nil {
		return p, err
	}
	if p.UseDir, err = s.parms.Toggle("usedir", ectx); err != nil {
		return p, err
	}
	if p.UseDir {
		p.Dir, err = s.parms.Vector3("dir", ectx)
		return p, err
	}
	orient, err := s.parms.Int("orient", ectx)
	if err != nil {
		return p, err
	}
	p.Orient = flatten.Orient(orient)
	return p, nil
}

// Cook flattens a copy of input 0.
func (n *FlattenNode) Cook(ctx context.Context, cp *CookParms) (*Result, error) {
	in, err := cp.Input(0)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	pattern, err := n.parms.String("group")
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}

	gdp := in.Copy()
	group, err := geo.ParseGroup(gdp, geo.OwnerPoint, pattern)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	stats, err := flatten.Flatten(ctx, gdp, group, n.source(cp.Time))
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}

	res := &Result{Geometry: gdp}
	if stats.Interrupted {
		log.Printf("sop: %s: cook interrupted after %d points", n.name, stats.Points)
		res.Warnings = append(res.Warnings, WarnInterrupted)
	}
	return res, nil
}

// CookGuide returns a grid showing the flatten plane, sized to the input.
// Point-varying parameters are evaluated for point 0 at the center of the
// input's bounds.
func (n *FlattenNode) CookGuide(ctx context.Context, cp *CookParms) (geo.Detail, error) {
	in, err := cp.Input(0)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	bbox := in.BoundingBox()
	src := n.source(cp.Time)
	pc := flatten.PointContext{Offset: geo.InvalidOffset}
	if src.PointVarying() {
		pc = flatten.PointContext{Offset: 0, Pos: bbox.Center()}
	}
	p, err := src.Params(pc)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	g, err := flatten.Guide(bbox, p)
	if err != nil {
		return nil, n.fail(SeverityError, err)
	}
	return g, nil
}
