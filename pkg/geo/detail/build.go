package detail

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// Grid builds a rows x cols lattice of points in the XY plane, centered on
// the origin and spanning sizeX by sizeY, connected by counter-clockwise
// quads facing +Z. Fewer than two rows or columns yields only points.
func Grid(rows, cols int, sizeX, sizeY float64) *Detail {
	d := New()
	if rows < 1 || cols < 1 {
		return d
	}
	step := func(n int, size float64) float64 {
		if n < 2 {
			return 0
		}
		return size / float64(n-1)
	}
	dx, dy := step(cols, sizeX), step(rows, sizeY)
	x0, y0 := -sizeX/2, -sizeY/2
	if cols < 2 {
		x0 = 0
	}
	if rows < 2 {
		y0 = 0
	}

	pts := make([]geo.Offset, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pts = append(pts, d.AddPoint(v3.Vec{X: x0 + float64(c)*dx, Y: y0 + float64(r)*dy}))
		}
	}
	at := func(r, c int) geo.Offset { return pts[r*cols+c] }
	for r := 0; r+1 < rows; r++ {
		for c := 0; c+1 < cols; c++ {
			d.AddPolygon(true, at(r, c), at(r, c+1), at(r+1, c+1), at(r+1, c))
		}
	}
	return d
}

// Polygon appends points at pos and one polygon through them.
func (d *Detail) Polygon(closed bool, pos ...v3.Vec) geo.Offset {
	pts := make([]geo.Offset, len(pos))
	for i, p := range pos {
		pts[i] = d.AddPoint(p)
	}
	return d.AddPolygon(closed, pts...)
}

// Merge appends every live element of src to d, mapping attributes by name.
// Attributes missing on d are created with src's layout. It returns the
// offsets of the appended primitives.
func (d *Detail) Merge(src *Detail) []geo.Offset {
	for owner := geo.OwnerPoint; owner <= geo.OwnerPrimitive; owner++ {
		for _, a := range src.attribs[owner] {
			if d.Attribute(owner, a.name) == nil {
				d.MustAddAttribute(owner, a.name, a.storage, a.tuple, a.typeInfo)
			}
		}
	}

	ptMap := make(map[geo.Offset]geo.Offset, src.NumPoints())
	for _, pt := range src.PointRange(nil).Offsets() {
		np := d.AppendPoint()
		copyAcross(d, src, geo.OwnerPoint, np, pt)
		ptMap[pt] = np
	}

	var prims []geo.Offset
	for _, pr := range src.PrimitiveRange(nil).Offsets() {
		sp := src.prims[pr]
		np, first := d.AppendPrimitiveWithVertices(sp.kind, len(sp.vertices), sp.closed)
		copyAcross(d, src, geo.OwnerPrimitive, np, pr)
		for i, vtx := range sp.vertices {
			nv := first + geo.Offset(i)
			if pt := src.vtxPoint[vtx]; pt.IsValid() {
				d.SetVertexPoint(nv, ptMap[pt])
			}
			copyAcross(d, src, geo.OwnerVertex, nv, vtx)
		}
		prims = append(prims, np)
	}
	return prims
}

// copyAcross copies owner attributes of element so in src onto do in dst,
// matching attributes by name.
func copyAcross(dst, src *Detail, owner geo.Owner, do, so geo.Offset) {
	for _, sa := range src.attribs[owner] {
		da := dst.Attribute(owner, sa.name)
		if da == nil {
			continue
		}
		switch sa.storage {
		case geo.StorageString:
			da.SetString(do, sa.String(so))
		default:
			n := min(sa.tuple, da.tuple)
			for i := 0; i < n; i++ {
				da.SetFloat(do, i, sa.Float(so, i))
			}
		}
	}
}
