// Package flatten projects points onto a plane.
//
// Positions move along the plane normal onto the plane, normals snap to
// the plane normal or its negation, and vectors lose their component along
// the normal. Only point attributes that transform with the geometry are
// touched.
package flatten

import (
	"context"
	"errors"
	"fmt"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// ErrZeroDirection is returned when a custom direction has no length.
var ErrZeroDirection = errors.New("flatten: direction is zero")

// Orient selects one of the axis planes.
type Orient int

const (
	OrientXY Orient = iota
	OrientYZ
	OrientXZ
)

func (o Orient) String() string {
	switch o {
	case OrientXY:
		return "xy"
	case OrientYZ:
		return "yz"
	case OrientXZ:
		return "xz"
	default:
		return "unknown"
	}
}

// ParseOrient maps "xy", "yz" or "xz" to an Orient.
func ParseOrient(s string) (Orient, error) {
	for o := OrientXY; o <= OrientXZ; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("flatten: unknown plane %q", s)
}

// Params describes the target plane: the points with dot(N, p) == Dist,
// where N is the axis normal for Orient, or Dir normalized when UseDir is
// set.
type Params struct {
	Dist   float64
	UseDir bool
	Orient Orient
	Dir    v3.Vec
}

// Normal returns the unit plane normal.
func (p Params) Normal() (v3.Vec, error) {
	if p.UseDir {
		if p.Dir.Length() == 0 {
			return v3.Vec{}, ErrZeroDirection
		}
		return p.Dir.Normalize(), nil
	}
	switch p.Orient {
	case OrientXY:
		return v3.Vec{Z: 1}, nil
	case OrientYZ:
		return v3.Vec{X: 1}, nil
	case OrientXZ:
		return v3.Vec{Y: 1}, nil
	}
	return v3.Vec{}, fmt.Errorf("flatten: unknown orientation %d", p.Orient)
}

// PointContext identifies the point parameters are evaluated for.
type PointContext struct {
	Offset geo.Offset
	Number int
	Pos    v3.Vec
}

// ParamSource supplies Params. When PointVarying is false, Params is
// called once with a zero PointContext whose Offset is geo.InvalidOffset.
type ParamSource interface {
	Params(pc PointContext) (Params, error)
	PointVarying() bool
}

// Static is a ParamSource with fixed values.
type Static Params

func (s Static) Params(PointContext) (Params, error) { return Params(s), nil }
func (s Static) PointVarying() bool                  { return false }

// Stats summarizes one Flatten call.
type Stats struct {
	Points      int
	Attributes  int
	Interrupted bool
}

type attribSet struct {
	positions, normals, vectors []geo.Attribute
}

func (s attribSet) len() int {
	return len(s.positions) + len(s.normals) + len(s.vectors)
}

// collect gathers the point attributes to modify and bumps their data ids.
func collect(d geo.Detail) attribSet {
	var s attribSet
	for _, a := range d.Attributes(geo.OwnerPoint) {
		if !a.NeedsTransform() || !geo.IsVector3(a) {
			continue
		}
		switch a.TypeInfo() {
		case geo.TypePoint, geo.TypeHPoint:
			s.positions = append(s.positions, a)
		case geo.TypeNormal:
			s.normals = append(s.normals, a)
		case geo.TypeVector:
			s.vectors = append(s.vectors, a)
		default:
			continue
		}
		a.BumpDataID()
	}
	return s
}

// Flatten projects the points of d in group (all points when nil) onto the
// plane from src. Cancellation of ctx stops between blocks of geo.PageSize
// points and is reported in Stats.Interrupted; points already visited stay
// projected.
func Flatten(ctx context.Context, d geo.Detail, group *geo.Group, src ParamSource) (Stats, error) {
	var stats Stats
	if group != nil && group.IsEmpty() {
		return stats, nil
	}

	varying := src.PointVarying()
	var (
		normal v3.Vec
		dist   float64
	)
	if !varying {
		p, err := src.Params(PointContext{Offset: geo.InvalidOffset})
		if err != nil {
			return stats, fmt.Errorf("flatten: %w", err)
		}
		if normal, err = p.Normal(); err != nil {
			return stats, err
		}
		dist = p.Dist
	}

	pts := d.PointRange(group)
	if pts.IsEmpty() {
		return stats, nil
	}
	attrs := collect(d)
	stats.Attributes = attrs.len()

	var all []geo.Offset
	if varying {
		all = d.PointRange(nil).Offsets()
	}

	for _, block := range pts.Blocks(geo.PageSize) {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}
		for _, pt := range block.Offsets() {
			if varying {
				num, _ := slices.BinarySearch(all, pt)
				p, err := src.Params(PointContext{Offset: pt, Number: num, Pos: d.Pos3(pt)})
				if err != nil {
					return stats, fmt.Errorf("flatten: point %d: %w", num, err)
				}
				if normal, err = p.Normal(); err != nil {
					return stats, fmt.Errorf("flatten: point %d: %w", num, err)
				}
				dist = p.Dist
			}
			project(d, attrs, pt, normal, dist)
			stats.Points++
		}
	}
	return stats, nil
}

func project(d geo.Detail, s attribSet, pt geo.Offset, n v3.Vec, dist float64) {
	for _, a := range s.positions {
		p := d.Vector3(a, pt)
		d.SetVector3(a, pt, p.Sub(n.MulScalar(n.Dot(p)-dist)))
	}
	for _, a := range s.normals {
		if n.Dot(d.Vector3(a, pt)) < 0 {
			d.SetVector3(a, pt, n.Neg())
		} else {
			d.SetVector3(a, pt, n)
		}
	}
	for _, a := range s.vectors {
		v := d.Vector3(a, pt)
		d.SetVector3(a, pt, v.Sub(n.MulScalar(n.Dot(v))))
	}
}
