// Package detail implements the geo.Detail interface as an in-memory
// indexed mesh: flat element tables addressed by offset, per-owner
// attribute arrays, point reference counts for orphan cleanup and named
// groups.
package detail

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// Compile-time interface check.
var _ geo.Detail = (*Detail)(nil)

// PName is the name of the point position attribute.
const PName = "P"

type primitive struct {
	kind     geo.PrimitiveKind
	closed   bool
	vertices []geo.Offset
	alive    bool
}

// Detail is an in-memory geometry container. It is not safe for concurrent
// mutation; concurrent reads are fine.
type Detail struct {
	pointAlive []bool
	pointRefs  []int // vertices referencing each point

	vtxPoint []geo.Offset
	vtxPrim  []geo.Offset
	vtxAlive []bool

	prims []primitive

	livePoints, liveVertices, livePrims int

	attribs [4][]*Attribute
	groups  [4]map[string]*geo.Group

	p *Attribute
}

// New returns an empty detail with a P point attribute.
func New() *Detail {
	d := &Detail{}
	for i := range d.groups {
		d.groups[i] = make(map[string]*geo.Group)
	}
	d.p = newAttribute(geo.OwnerPoint, PName, geo.StorageFloat, 3, geo.TypePoint)
	d.attribs[geo.OwnerPoint] = []*Attribute{d.p}
	return d
}

// ---------------------------------------------------------------------------
// Counts and ranges
// ---------------------------------------------------------------------------

func (d *Detail) NumPoints() int     { return d.livePoints }
func (d *Detail) NumVertices() int   { return d.liveVertices }
func (d *Detail) NumPrimitives() int { return d.livePrims }

// PointRange returns live points in ascending order, restricted to g.
func (d *Detail) PointRange(g *geo.Group) geo.Range {
	return geo.NewRange(d.liveOffsets(d.pointAlive, g))
}

// PrimitiveRange returns live primitives in ascending order, restricted to g.
func (d *Detail) PrimitiveRange(g *geo.Group) geo.Range {
	alive := make([]bool, len(d.prims))
	for i := range d.prims {
		alive[i] = d.prims[i].alive
	}
	return geo.NewRange(d.liveOffsets(alive, g))
}

func (d *Detail) liveOffsets(alive []bool, g *geo.Group) []geo.Offset {
	var offs []geo.Offset
	if g != nil {
		for _, o := range g.Offsets() {
			if o.IsValid() && int(o) < len(alive) && alive[o] {
				offs = append(offs, o)
			}
		}
		return offs
	}
	offs = make([]geo.Offset, 0, len(alive))
	for i, ok := range alive {
		if ok {
			offs = append(offs, geo.Offset(i))
		}
	}
	return offs
}

// ---------------------------------------------------------------------------
// Read accessors
// ---------------------------------------------------------------------------

// Pos3 returns the position of pt.
func (d *Detail) Pos3(pt geo.Offset) v3.Vec {
	return d.Vector3(d.p, pt)
}

// SetPos3 sets the position of pt.
func (d *Detail) SetPos3(pt geo.Offset, p v3.Vec) {
	d.SetVector3(d.p, pt, p)
}

// BoundingBox returns the axis-aligned bounds of all live points. An empty
// detail yields a zero box.
func (d *Detail) BoundingBox() sdf.Box3 {
	pts := d.PointRange(nil).Offsets()
	if len(pts) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: d.Pos3(pts[0]), Max: d.Pos3(pts[0])}
	for _, pt := range pts[1:] {
		p := d.Pos3(pt)
		bb.Min = bb.Min.Min(p)
		bb.Max = bb.Max.Max(p)
	}
	return bb
}

func (d *Detail) VertexPoint(vtx geo.Offset) geo.Offset     { return d.vtxPoint[vtx] }
func (d *Detail) VertexPrimitive(vtx geo.Offset) geo.Offset { return d.vtxPrim[vtx] }

func (d *Detail) PrimitiveKind(pr geo.Offset) geo.PrimitiveKind { return d.prims[pr].kind }
func (d *Detail) PrimitiveClosed(pr geo.Offset) bool            { return d.prims[pr].closed }
func (d *Detail) PrimitiveVertexCount(pr geo.Offset) int        { return len(d.prims[pr].vertices) }

func (d *Detail) PrimitiveVertexOffset(pr geo.Offset, i int) geo.Offset {
	return d.prims[pr].vertices[i]
}

// PointAlive reports whether pt refers to a live point.
func (d *Detail) PointAlive(pt geo.Offset) bool {
	return pt.IsValid() && int(pt) < len(d.pointAlive) && d.pointAlive[pt]
}

// PrimitiveAlive reports whether pr refers to a live primitive.
func (d *Detail) PrimitiveAlive(pr geo.Offset) bool {
	return pr.IsValid() && int(pr) < len(d.prims) && d.prims[pr].alive
}

// PointRefs returns the number of vertices wired to pt.
func (d *Detail) PointRefs(pt geo.Offset) int {
	return d.pointRefs[pt]
}

// PrimitivePoints returns the point offsets of pr's vertices in order.
func (d *Detail) PrimitivePoints(pr geo.Offset) []geo.Offset {
	vtxs := d.prims[pr].vertices
	pts := make([]geo.Offset, len(vtxs))
	for i, v := range vtxs {
		pts[i] = d.vtxPoint[v]
	}
	return pts
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// AppendPoint adds a point at the origin with default attribute values.
func (d *Detail) AppendPoint() geo.Offset {
	off := geo.Offset(len(d.pointAlive))
	d.pointAlive = append(d.pointAlive, true)
	d.pointRefs = append(d.pointRefs, 0)
	d.livePoints++
	d.growAttribs(geo.OwnerPoint, len(d.pointAlive))
	return off
}

// AddPoint appends a point at p.
func (d *Detail) AddPoint(p v3.Vec) geo.Offset {
	pt := d.AppendPoint()
	d.SetPos3(pt, p)
	return pt
}

// AppendPrimitiveWithVertices allocates a primitive with nvtx contiguous,
// unwired vertices.
func (d *Detail) AppendPrimitiveWithVertices(kind geo.PrimitiveKind, nvtx int, closed bool) (geo.Offset, geo.Offset) {
	pr := geo.Offset(len(d.prims))
	first := geo.Offset(len(d.vtxPoint))
	vtxs := make([]geo.Offset, nvtx)
	for i := range vtxs {
		vtxs[i] = first + geo.Offset(i)
		d.vtxPoint = append(d.vtxPoint, geo.InvalidOffset)
		d.vtxPrim = append(d.vtxPrim, pr)
		d.vtxAlive = append(d.vtxAlive, true)
	}
	d.liveVertices += nvtx
	d.prims = append(d.prims, primitive{kind: kind, closed: closed, vertices: vtxs, alive: true})
	d.livePrims++
	d.growAttribs(geo.OwnerVertex, len(d.vtxPoint))
	d.growAttribs(geo.OwnerPrimitive, len(d.prims))
	return pr, first
}

// AddPolygon appends a polygon wired to pts in order.
func (d *Detail) AddPolygon(closed bool, pts ...geo.Offset) geo.Offset {
	pr, first := d.AppendPrimitiveWithVertices(geo.PrimPoly, len(pts), closed)
	for i, pt := range pts {
		d.SetVertexPoint(first+geo.Offset(i), pt)
	}
	return pr
}

// SetVertexPoint wires vtx to pt, maintaining point reference counts.
func (d *Detail) SetVertexPoint(vtx, pt geo.Offset) {
	if old := d.vtxPoint[vtx]; old.IsValid() {
		d.pointRefs[old]--
	}
	d.vtxPoint[vtx] = pt
	if pt.IsValid() {
		d.pointRefs[pt]++
	}
}

// CopyAttributes copies all attributes of owner from src to dst.
func (d *Detail) CopyAttributes(owner geo.Owner, dst, src geo.Offset) {
	for _, a := range d.attribs[owner] {
		a.copyValue(dst, src)
	}
}

// LerpAttributes interpolates all attributes of owner between src0 and
// src1 into dst.
func (d *Detail) LerpAttributes(owner geo.Owner, dst, src0, src1 geo.Offset, t float64) {
	for _, a := range d.attribs[owner] {
		a.lerpValue(dst, src0, src1, t)
	}
}

// DestroyPrimitives removes prims and their vertices. With cascade set,
// points whose last vertex was removed here are destroyed too; points that
// were already unreferenced are left alone.
func (d *Detail) DestroyPrimitives(prims []geo.Offset, cascade bool) int {
	var orphans []geo.Offset
	for _, pr := range prims {
		if !d.PrimitiveAlive(pr) {
			continue
		}
		p := &d.prims[pr]
		for _, vtx := range p.vertices {
			if pt := d.vtxPoint[vtx]; pt.IsValid() {
				d.pointRefs[pt]--
				if d.pointRefs[pt] == 0 {
					orphans = append(orphans, pt)
				}
			}
			d.vtxPoint[vtx] = geo.InvalidOffset
			d.vtxAlive[vtx] = false
			d.liveVertices--
		}
		p.alive = false
		d.livePrims--
		d.removeFromGroups(geo.OwnerPrimitive, pr)
	}

	if !cascade {
		return 0
	}
	destroyed := 0
	for _, pt := range orphans {
		if d.pointAlive[pt] && d.pointRefs[pt] == 0 {
			d.pointAlive[pt] = false
			d.livePoints--
			d.removeFromGroups(geo.OwnerPoint, pt)
			destroyed++
		}
	}
	return destroyed
}

// DestroyPoints removes unreferenced points. Points still wired to a vertex
// are kept and reported in the error.
func (d *Detail) DestroyPoints(pts []geo.Offset) error {
	var busy []geo.Offset
	for _, pt := range pts {
		if !d.PointAlive(pt) {
			continue
		}
		if d.pointRefs[pt] > 0 {
			busy = append(busy, pt)
			continue
		}
		d.pointAlive[pt] = false
		d.livePoints--
		d.removeFromGroups(geo.OwnerPoint, pt)
	}
	if len(busy) > 0 {
		return fmt.Errorf("detail: points %v are still referenced", busy)
	}
	return nil
}

func (d *Detail) removeFromGroups(owner geo.Owner, off geo.Offset) {
	for _, g := range d.groups[owner] {
		g.Remove(off)
	}
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

// AddAttribute creates an attribute, or returns the existing one when an
// attribute of the same name and layout already exists.
func (d *Detail) AddAttribute(owner geo.Owner, name string, storage geo.Storage, tuple int, ti geo.TypeInfo) (*Attribute, error) {
	if name == "" {
		return nil, fmt.Errorf("detail: attribute name must not be empty")
	}
	if existing := d.Attribute(owner, name); existing != nil {
		if existing.storage != storage || existing.tuple != tuple {
			return nil, fmt.Errorf("detail: %s attribute %q exists as %s[%d]",
				owner, name, existing.storage, existing.tuple)
		}
		return existing, nil
	}
	a := newAttribute(owner, name, storage, tuple, ti)
	a.grow(d.slots(owner))
	d.attribs[owner] = append(d.attribs[owner], a)
	return a, nil
}

// MustAddAttribute is AddAttribute for static setup code; it panics on
// error.
func (d *Detail) MustAddAttribute(owner geo.Owner, name string, storage geo.Storage, tuple int, ti geo.TypeInfo) *Attribute {
	a, err := d.AddAttribute(owner, name, storage, tuple, ti)
	if err != nil {
		panic(err)
	}
	return a
}

// Attribute returns the concrete attribute, or nil.
func (d *Detail) Attribute(owner geo.Owner, name string) *Attribute {
	for _, a := range d.attribs[owner] {
		if a.name == name {
			return a
		}
	}
	return nil
}

// Attributes lists the attributes of owner in creation order.
func (d *Detail) Attributes(owner geo.Owner) []geo.Attribute {
	out := make([]geo.Attribute, len(d.attribs[owner]))
	for i, a := range d.attribs[owner] {
		out[i] = a
	}
	return out
}

// FindAttribute returns the named attribute, or nil.
func (d *Detail) FindAttribute(owner geo.Owner, name string) geo.Attribute {
	if a := d.Attribute(owner, name); a != nil {
		return a
	}
	return nil
}

// Vector3 reads the first three float components of a at off.
func (d *Detail) Vector3(a geo.Attribute, off geo.Offset) v3.Vec {
	attr := d.Attribute(a.Owner(), a.Name())
	if attr == nil || attr.tuple < 3 {
		return v3.Vec{}
	}
	return v3.Vec{X: attr.Float(off, 0), Y: attr.Float(off, 1), Z: attr.Float(off, 2)}
}

// SetVector3 writes the first three float components of a at off.
func (d *Detail) SetVector3(a geo.Attribute, off geo.Offset, v v3.Vec) {
	attr := d.Attribute(a.Owner(), a.Name())
	if attr == nil || attr.tuple < 3 {
		return
	}
	attr.SetFloat(off, 0, v.X)
	attr.SetFloat(off, 1, v.Y)
	attr.SetFloat(off, 2, v.Z)
}

func (d *Detail) slots(owner geo.Owner) int {
	switch owner {
	case geo.OwnerPoint:
		return len(d.pointAlive)
	case geo.OwnerVertex:
		return len(d.vtxPoint)
	case geo.OwnerPrimitive:
		return len(d.prims)
	default:
		return 1
	}
}

func (d *Detail) growAttribs(owner geo.Owner, n int) {
	for _, a := range d.attribs[owner] {
		a.grow(n)
	}
}

// ---------------------------------------------------------------------------
// Groups
// ---------------------------------------------------------------------------

// NewGroup creates (or replaces) a named group.
func (d *Detail) NewGroup(owner geo.Owner, name string) *geo.Group {
	g := geo.NewGroup(owner, name)
	if owner >= 0 && int(owner) < len(d.groups) {
		d.groups[owner][name] = g
	}
	return g
}

// Group returns the named group, or nil.
func (d *Detail) Group(owner geo.Owner, name string) *geo.Group {
	if owner < 0 || int(owner) >= len(d.groups) {
		return nil
	}
	return d.groups[owner][name]
}

// ---------------------------------------------------------------------------
// Copy
// ---------------------------------------------------------------------------

// Copy returns an independent deep copy as a geo.Detail.
func (d *Detail) Copy() geo.Detail {
	return d.Clone()
}

// Clone returns an independent deep copy.
func (d *Detail) Clone() *Detail {
	c := &Detail{
		pointAlive:   append([]bool(nil), d.pointAlive...),
		pointRefs:    append([]int(nil), d.pointRefs...),
		vtxPoint:     append([]geo.Offset(nil), d.vtxPoint...),
		vtxPrim:      append([]geo.Offset(nil), d.vtxPrim...),
		vtxAlive:     append([]bool(nil), d.vtxAlive...),
		prims:        make([]primitive, len(d.prims)),
		livePoints:   d.livePoints,
		liveVertices: d.liveVertices,
		livePrims:    d.livePrims,
	}
	for i, p := range d.prims {
		p.vertices = append([]geo.Offset(nil), p.vertices...)
		c.prims[i] = p
	}
	for owner := range d.attribs {
		for _, a := range d.attribs[owner] {
			ca := a.clone()
			c.attribs[owner] = append(c.attribs[owner], ca)
			if owner == int(geo.OwnerPoint) && a.name == PName {
				c.p = ca
			}
		}
	}
	for owner := range d.groups {
		c.groups[owner] = make(map[string]*geo.Group, len(d.groups[owner]))
		for name, g := range d.groups[owner] {
			c.groups[owner][name] = g.Copy()
		}
	}
	return c
}

// ---------------------------------------------------------------------------
// Geometry helpers
// ---------------------------------------------------------------------------

// PrimitiveArea returns the area of a polygon by Newell's method.
func (d *Detail) PrimitiveArea(pr geo.Offset) float64 {
	pts := d.PrimitivePoints(pr)
	pos := make([]v3.Vec, len(pts))
	for i, pt := range pts {
		pos[i] = d.Pos3(pt)
	}
	return geo.PolygonArea(pos)
}
