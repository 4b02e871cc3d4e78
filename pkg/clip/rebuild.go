package clip

import "github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"

// Rebuilder turns loops into new closed polygons on a detail. Original
// points are reused for kept entries; cut entries go through the cache.
type Rebuilder struct {
	d     geo.Detail
	cache *CutCache

	// NewPrimitives counts the polygons appended so far.
	NewPrimitives int
}

// NewRebuilder returns a Rebuilder appending to d. Cut points are placed
// on plane.
func NewRebuilder(d geo.Detail, plane Plane) *Rebuilder {
	return &Rebuilder{d: d, cache: NewCutCache(d, plane)}
}

// NewPoints returns the number of cut points created so far.
func (r *Rebuilder) NewPoints() int {
	return r.cache.Len()
}

// Rebuild appends one polygon per loop, copying primitive attributes from
// src. It returns the new primitive offsets.
func (r *Rebuilder) Rebuild(src geo.Offset, loops []Loop) []geo.Offset {
	out := make([]geo.Offset, 0, len(loops))
	for _, loop := range loops {
		pr, first := r.d.AppendPrimitiveWithVertices(geo.PrimPoly, len(loop), true)
		r.d.CopyAttributes(geo.OwnerPrimitive, pr, src)
		for i, e := range loop {
			vtx := first + geo.Offset(i)
			if e.Kept() {
				r.d.SetVertexPoint(vtx, r.d.VertexPoint(e.Vtx0))
				r.d.CopyAttributes(geo.OwnerVertex, vtx, e.Vtx0)
				continue
			}
			key := CutKey{Lo: r.d.VertexPoint(e.Vtx0), Hi: r.d.VertexPoint(e.Vtx1)}
			pt, _ := r.cache.Resolve(key, e.T)
			r.d.SetVertexPoint(vtx, pt)
			r.d.LerpAttributes(geo.OwnerVertex, vtx, e.Vtx0, e.Vtx1, e.T)
		}
		out = append(out, pr)
		r.NewPrimitives++
	}
	return out
}
