// Package geo defines the abstract indexed-mesh interface consumed by the
// geometry operators. Implementations (detail) own the storage; operators
// only see points, vertices, primitives and attributes through stable
// integer offsets.
package geo

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Offset is a stable handle to a point, vertex or primitive. Offsets are
// never reused within the lifetime of a Detail.
type Offset int64

// InvalidOffset marks the absence of an element.
const InvalidOffset Offset = -1

// IsValid reports whether o refers to an element slot.
func (o Offset) IsValid() bool {
	return o >= 0
}

// PageSize is the number of elements processed between interrupt checks
// when iterating a range in blocks.
const PageSize = 1024

// Owner identifies the element class an attribute or group belongs to.
type Owner int

const (
	OwnerPoint Owner = iota
	OwnerVertex
	OwnerPrimitive
	OwnerDetail
)

func (o Owner) String() string {
	switch o {
	case OwnerPoint:
		return "point"
	case OwnerVertex:
		return "vertex"
	case OwnerPrimitive:
		return "primitive"
	case OwnerDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// PrimitiveKind enumerates primitive types. Only polygons take part in
// clipping; the other kinds pass through untouched.
type PrimitiveKind int

const (
	PrimPoly PrimitiveKind = iota
	PrimSphere
	PrimVolume
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimPoly:
		return "poly"
	case PrimSphere:
		return "sphere"
	case PrimVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// Detail is the mesh access facade. Read accessors are safe for concurrent
// use as long as no mutating method runs at the same time.
type Detail interface {
	NumPoints() int
	NumVertices() int
	NumPrimitives() int

	// PointRange and PrimitiveRange return the live offsets in ascending
	// order, restricted to g when g is non-nil.
	PointRange(g *Group) Range
	PrimitiveRange(g *Group) Range

	Pos3(pt Offset) v3.Vec
	SetPos3(pt Offset, p v3.Vec)
	BoundingBox() sdf.Box3

	VertexPoint(vtx Offset) Offset
	VertexPrimitive(vtx Offset) Offset
	PrimitiveKind(pr Offset) PrimitiveKind
	PrimitiveClosed(pr Offset) bool
	PrimitiveVertexCount(pr Offset) int
	PrimitiveVertexOffset(pr Offset, i int) Offset

	AppendPoint() Offset
	// AppendPrimitiveWithVertices allocates a primitive and nvtx contiguous
	// vertices; vertex i is firstVtx+i. New vertices are unwired.
	AppendPrimitiveWithVertices(kind PrimitiveKind, nvtx int, closed bool) (pr, firstVtx Offset)
	SetVertexPoint(vtx, pt Offset)

	// CopyAttributes copies every attribute of the given owner class from
	// src to dst. For points this includes P.
	CopyAttributes(owner Owner, dst, src Offset)
	// LerpAttributes sets every attribute of the owner class on dst to the
	// interpolation between src0 and src1 at fraction t.
	LerpAttributes(owner Owner, dst, src0, src1 Offset, t float64)

	// DestroyPrimitives removes prims and their vertices. With cascade set,
	// points left without any referencing vertex are removed as well. It
	// returns the number of points removed.
	DestroyPrimitives(prims []Offset, cascade bool) int

	Attributes(owner Owner) []Attribute
	FindAttribute(owner Owner, name string) Attribute
	Vector3(a Attribute, off Offset) v3.Vec
	SetVector3(a Attribute, off Offset, v v3.Vec)

	// Group returns the named group of the owner class, or nil.
	Group(owner Owner, name string) *Group

	// Copy returns an independent deep copy.
	Copy() Detail
}

// PolygonArea returns the area of a planar polygon by Newell's method.
func PolygonArea(pos []v3.Vec) float64 {
	if len(pos) < 3 {
		return 0
	}
	var n v3.Vec
	for i, p := range pos {
		q := pos[(i+1)%len(pos)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return 0.5 * n.Length()
}
