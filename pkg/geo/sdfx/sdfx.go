// Package sdfx builds source geometry from github.com/deadsy/sdfx solids.
// Solids are polygonized with marching cubes and welded into a
// detail.Detail of closed triangles sharing their points, which makes them
// suitable inputs for the clip and flatten operators.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo/detail"
)

// DefaultCells controls the marching cubes resolution along the longest
// bounding box axis.
const DefaultCells = 32

// weldQuantum is the grid size positions are snapped to when deciding
// whether two triangle corners are the same point.
const weldQuantum = 1e-7

// Solid wraps an sdf.SDF3.
type Solid struct {
	s sdf.SDF3
}

// SDF returns the wrapped signed distance function.
func (s *Solid) SDF() sdf.SDF3 {
	return s.s
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *Solid) BoundingBox() sdf.Box3 {
	return s.s.BoundingBox()
}

// Box creates a box of the given size centered on the origin.
func Box(x, y, z float64) (*Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	return &Solid{s: s}, nil
}

// Sphere creates a sphere of radius r centered on the origin.
func Sphere(r float64) (*Solid, error) {
	s, err := sdf.Sphere3D(r)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return &Solid{s: s}, nil
}

// Cylinder creates a Z-aligned cylinder centered on the origin.
func Cylinder(height, radius float64) (*Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return &Solid{s: s}, nil
}

// Union returns the union of s and o.
func (s *Solid) Union(o *Solid) *Solid {
	return &Solid{s: sdf.Union3D(s.s, o.s)}
}

// Difference returns s minus o.
func (s *Solid) Difference(o *Solid) *Solid {
	return &Solid{s: sdf.Difference3D(s.s, o.s)}
}

// Translate moves the solid by d.
func (s *Solid) Translate(d v3.Vec) *Solid {
	return &Solid{s: sdf.Transform3D(s.s, sdf.Translate3d(d))}
}

// Detail polygonizes the solid with cells marching cubes cells along the
// longest axis (DefaultCells when cells <= 0). Triangle corners closer than
// weldQuantum share a point; triangles that collapse after welding are
// dropped. Each point carries a normal attribute N averaged from the faces
// around it.
func (s *Solid) Detail(cells int) *detail.Detail {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(s.s, render.NewMarchingCubesUniform(cells))

	d := detail.New()
	nAttr := d.MustAddAttribute(geo.OwnerPoint, "N", geo.StorageFloat, 3, geo.TypeNormal)

	type key [3]int64
	quantize := func(p v3.Vec) key {
		return key{
			int64(math.Round(p.X / weldQuantum)),
			int64(math.Round(p.Y / weldQuantum)),
			int64(math.Round(p.Z / weldQuantum)),
		}
	}
	welded := make(map[key]geo.Offset, len(triangles)/2)
	normals := make(map[geo.Offset]v3.Vec, len(triangles)/2)

	for _, tri := range triangles {
		var pts [3]geo.Offset
		for j := 0; j < 3; j++ {
			p := tri[j]
			k := quantize(p)
			pt, ok := welded[k]
			if !ok {
				pt = d.AddPoint(p)
				welded[k] = pt
			}
			pts[j] = pt
		}
		if pts[0] == pts[1] || pts[1] == pts[2] || pts[0] == pts[2] {
			continue
		}
		d.AddPolygon(true, pts[:]...)
		n := tri.Normal()
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			continue
		}
		for _, pt := range pts {
			normals[pt] = normals[pt].Add(n)
		}
	}

	for pt, n := range normals {
		if n.Length() == 0 {
			continue
		}
		d.SetVector3(nAttr, pt, n.Normalize())
	}
	return d
}
