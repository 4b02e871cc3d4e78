package clip

import "github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"

// CutKey identifies an edge by its two end points, independent of the
// direction a polygon walks it.
type CutKey struct {
	Lo, Hi geo.Offset
}

// NewCutKey returns the canonical key for the edge between a and b.
func NewCutKey(a, b geo.Offset) CutKey {
	if a <= b {
		return CutKey{Lo: a, Hi: b}
	}
	return CutKey{Lo: b, Hi: a}
}

// CutCache hands out one new point per cut edge so that neighbouring
// polygons crossing the plane along a shared edge reuse the same point.
// It lives for the duration of one Clip call and is not safe for
// concurrent use.
type CutCache struct {
	d     geo.Detail
	plane Plane
	cuts  map[CutKey]geo.Offset
}

// NewCutCache returns an empty cache that appends points to d for edges
// crossing plane.
func NewCutCache(d geo.Detail, plane Plane) *CutCache {
	return &CutCache{d: d, plane: plane, cuts: make(map[CutKey]geo.Offset)}
}

// Resolve returns the point for key. On first use it appends a point whose
// attributes are interpolated from key.Lo to key.Hi at t, and reports
// created as true. The new point's position is then placed on the plane,
// never on its clipped side, so clipping again with the same plane keeps it.
func (c *CutCache) Resolve(key CutKey, t float64) (pt geo.Offset, created bool) {
	if pt, ok := c.cuts[key]; ok {
		return pt, false
	}
	pt = c.d.AppendPoint()
	c.d.LerpAttributes(geo.OwnerPoint, pt, key.Lo, key.Hi, t)
	c.d.SetPos3(pt, c.plane.Snap(c.d.Pos3(pt)))
	c.cuts[key] = pt
	return pt, true
}

// Len returns the number of cut points created so far.
func (c *CutCache) Len() int {
	return len(c.cuts)
}
