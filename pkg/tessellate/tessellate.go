// Package tessellate converts cooked geometry into triangle meshes for
// display. The tessellator is read-only and never mutates the detail.
package tessellate

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // node the geometry was cooked by
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Tessellate fan-triangulates every closed polygon of d with at least three
// vertices. Each polygon gets its own mesh vertices. Normals come from the
// point N attribute when d carries one, otherwise from the polygon's face
// normal. Open polygons and other primitive kinds are skipped.
func Tessellate(d geo.Detail) (*Mesh, error) {
	m := &Mesh{}
	if d == nil {
		return m, nil
	}

	var pointN geo.Attribute
	if a := d.FindAttribute(geo.OwnerPoint, "N"); a != nil && geo.IsVector3(a) {
		pointN = a
	}

	for _, pr := range d.PrimitiveRange(nil).Offsets() {
		if d.PrimitiveKind(pr) != geo.PrimPoly || !d.PrimitiveClosed(pr) {
			continue
		}
		n := d.PrimitiveVertexCount(pr)
		if n < 3 {
			continue
		}

		pts := make([]geo.Offset, n)
		pos := make([]v3.Vec, n)
		for i := range pts {
			pt := d.VertexPoint(d.PrimitiveVertexOffset(pr, i))
			if !pt.IsValid() {
				return nil, fmt.Errorf("tessellate: primitive %d vertex %d is not wired", pr, i)
			}
			pts[i] = pt
			pos[i] = d.Pos3(pt)
		}
		face := faceNormal(pos)

		base := uint32(m.VertexCount())
		for i, p := range pos {
			nrm := face
			if pointN != nil {
				nrm = d.Vector3(pointN, pts[i])
			}
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, float32(nrm.X), float32(nrm.Y), float32(nrm.Z))
		}
		for i := 1; i+1 < n; i++ {
			m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return m, nil
}

// faceNormal returns the unit Newell normal of pos, or zero for a
// degenerate polygon.
func faceNormal(pos []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range pos {
		q := pos[(i+1)%len(pos)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	l := n.Length()
	if l == 0 || math.IsNaN(l) {
		return v3.Vec{}
	}
	return n.MulScalar(1 / l)
}
