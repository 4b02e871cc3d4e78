package clip

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// Entry is one vertex of a rebuilt polygon. A kept entry references an
// original vertex and has Vtx1 set to geo.InvalidOffset. A cut entry
// references the two vertices of a crossing edge, ordered so that Vtx0's
// point offset is not greater than Vtx1's, with T measured from Vtx0.
type Entry struct {
	Vtx0, Vtx1 geo.Offset
	T          float64
}

// Kept reports whether e reuses an original vertex.
func (e Entry) Kept() bool {
	return !e.Vtx1.IsValid()
}

// Loop is the ordered vertex list of one output polygon.
type Loop []Entry

// Positions returns the positions the loop's entries will have once built.
func (l Loop) Positions(d geo.Detail) []v3.Vec {
	pos := make([]v3.Vec, len(l))
	for i, e := range l {
		p0 := d.Pos3(d.VertexPoint(e.Vtx0))
		if e.Kept() {
			pos[i] = p0
			continue
		}
		p1 := d.Pos3(d.VertexPoint(e.Vtx1))
		pos[i] = p0.Add(p1.Sub(p0).MulScalar(e.T))
	}
	return pos
}

// Partition walks the closed polygon prim once and returns the loops that
// survive clipping against plane. Each loop opens at the cut where the
// walk re-enters the inside and runs until the next re-entry. A polygon
// with no vertex outside, or every vertex outside, yields no loops.
func Partition(d geo.Detail, prim geo.Offset, plane Plane) []Loop {
	n := d.PrimitiveVertexCount(prim)
	if n == 0 {
		return nil
	}
	vtx := make([]geo.Offset, n)
	pts := make([]geo.Offset, n)
	clipped := make([]bool, n)
	for i := 0; i < n; i++ {
		vtx[i] = d.PrimitiveVertexOffset(prim, i)
		pts[i] = d.VertexPoint(vtx[i])
		clipped[i] = plane.Clipped(d.Pos3(pts[i]))
	}

	entries := make([]Entry, 0, n+2)
	var starts []int
	for i0 := 0; i0 < n; i0++ {
		if !clipped[i0] {
			entries = append(entries, Entry{Vtx0: vtx[i0], Vtx1: geo.InvalidOffset})
		}
		i1 := (i0 + 1) % n
		if clipped[i0] == clipped[i1] {
			continue
		}
		if clipped[i0] {
			starts = append(starts, len(entries))
		}
		a, b := i0, i1
		if pts[b] < pts[a] {
			a, b = b, a
		}
		t := plane.CutFraction(d.Pos3(pts[a]), d.Pos3(pts[b]))
		entries = append(entries, Entry{Vtx0: vtx[a], Vtx1: vtx[b], T: t})
	}

	if len(starts) == 0 {
		return nil
	}
	loops := make([]Loop, len(starts))
	for i, start := range starts {
		end := starts[(i+1)%len(starts)]
		size := end - start
		if size <= 0 {
			size += len(entries)
		}
		loop := make(Loop, size)
		for v := range loop {
			loop[v] = entries[(start+v)%len(entries)]
		}
		loops[i] = loop
	}
	return loops
}
