package detail

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

func unitSquare(d *Detail) geo.Offset {
	return d.Polygon(true,
		v3.Vec{X: 0, Y: 0, Z: 0},
		v3.Vec{X: 1, Y: 0, Z: 0},
		v3.Vec{X: 1, Y: 1, Z: 0},
		v3.Vec{X: 0, Y: 1, Z: 0},
	)
}

func TestAppendAndWire(t *testing.T) {
	d := New()
	pr := unitSquare(d)

	if d.NumPoints() != 4 || d.NumVertices() != 4 || d.NumPrimitives() != 1 {
		t.Fatalf("counts = %d/%d/%d, want 4/4/1", d.NumPoints(), d.NumVertices(), d.NumPrimitives())
	}
	if got := d.PrimitiveVertexCount(pr); got != 4 {
		t.Errorf("PrimitiveVertexCount() = %d, want 4", got)
	}
	for i := 0; i < 4; i++ {
		vtx := d.PrimitiveVertexOffset(pr, i)
		if d.VertexPrimitive(vtx) != pr {
			t.Errorf("vertex %d primitive = %d, want %d", vtx, d.VertexPrimitive(vtx), pr)
		}
		if refs := d.PointRefs(d.VertexPoint(vtx)); refs != 1 {
			t.Errorf("point %d refs = %d, want 1", d.VertexPoint(vtx), refs)
		}
	}
	if got := d.Pos3(2); got != (v3.Vec{X: 1, Y: 1}) {
		t.Errorf("Pos3(2) = %v, want (1,1,0)", got)
	}
}

func TestSetVertexPointRewires(t *testing.T) {
	d := New()
	pr := unitSquare(d)
	extra := d.AddPoint(v3.Vec{X: 5})
	vtx := d.PrimitiveVertexOffset(pr, 0)
	old := d.VertexPoint(vtx)

	d.SetVertexPoint(vtx, extra)

	if d.PointRefs(old) != 0 {
		t.Errorf("old point refs = %d, want 0", d.PointRefs(old))
	}
	if d.PointRefs(extra) != 1 {
		t.Errorf("new point refs = %d, want 1", d.PointRefs(extra))
	}
}

func TestDestroyPrimitivesCascade(t *testing.T) {
	tests := []struct {
		name       string
		cascade    bool
		wantPoints int
		wantGone   int
	}{
		{"cascade removes orphans", true, 4, 2},
		{"no cascade keeps points", false, 6, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			// Two triangles sharing the edge (1,2).
			p0 := d.AddPoint(v3.Vec{X: 0})
			p1 := d.AddPoint(v3.Vec{X: 1})
			p2 := d.AddPoint(v3.Vec{X: 1, Y: 1})
			p3 := d.AddPoint(v3.Vec{X: 2, Y: 1})
			a := d.AddPolygon(true, p0, p1, p2)
			d.AddPolygon(true, p1, p3, p2)
			// Already orphaned before the destroy: must survive the cascade.
			d.AddPoint(v3.Vec{Z: 9})
			stray := d.AddPoint(v3.Vec{Z: 10})
			d.AddPolygon(true, stray, stray, stray)
			last := geo.Offset(2)

			gone := d.DestroyPrimitives([]geo.Offset{a, last}, tt.cascade)
			if gone != tt.wantGone {
				t.Errorf("destroyed points = %d, want %d", gone, tt.wantGone)
			}
			if d.NumPoints() != tt.wantPoints {
				t.Errorf("NumPoints() = %d, want %d", d.NumPoints(), tt.wantPoints)
			}
			if d.NumPrimitives() != 1 {
				t.Errorf("NumPrimitives() = %d, want 1", d.NumPrimitives())
			}
			if !d.PointAlive(p1) || !d.PointAlive(p2) {
				t.Error("shared points must survive")
			}
			if tt.cascade && d.PointAlive(p0) {
				t.Error("p0 should be destroyed by cascade")
			}
		})
	}
}

func TestDestroyPrimitivesIgnoresDead(t *testing.T) {
	d := New()
	pr := unitSquare(d)
	d.DestroyPrimitives([]geo.Offset{pr}, true)
	if gone := d.DestroyPrimitives([]geo.Offset{pr}, true); gone != 0 {
		t.Errorf("second destroy removed %d points, want 0", gone)
	}
	if d.NumPrimitives() != 0 || d.NumVertices() != 0 {
		t.Errorf("counts = %d prims %d vertices, want 0/0", d.NumPrimitives(), d.NumVertices())
	}
}

func TestDestroyPointsRefusesReferenced(t *testing.T) {
	d := New()
	unitSquare(d)
	lone := d.AddPoint(v3.Vec{X: 3})
	if err := d.DestroyPoints([]geo.Offset{0, lone}); err == nil {
		t.Fatal("DestroyPoints() error = nil, want error for referenced point")
	}
	if d.PointAlive(lone) {
		t.Error("unreferenced point should be destroyed")
	}
	if !d.PointAlive(0) {
		t.Error("referenced point must be kept")
	}
}

func TestLerpAttributes(t *testing.T) {
	d := New()
	f := d.MustAddAttribute(geo.OwnerPoint, "Cd", geo.StorageFloat, 3, geo.TypeColor)
	id := d.MustAddAttribute(geo.OwnerPoint, "id", geo.StorageInt, 1, geo.TypeNone)
	name := d.MustAddAttribute(geo.OwnerPoint, "name", geo.StorageString, 1, geo.TypeNone)

	a := d.AddPoint(v3.Vec{X: 0})
	b := d.AddPoint(v3.Vec{X: 10})
	f.SetFloat(a, 0, 0)
	f.SetFloat(b, 0, 1)
	id.SetInt(a, 0, 0)
	id.SetInt(b, 0, 10)
	name.SetString(a, "a")
	name.SetString(b, "b")

	tests := []struct {
		t        float64
		wantX    float64
		wantCd   float64
		wantID   int64
		wantName string
	}{
		{0, 0, 0, 0, "a"},
		{0.26, 2.6, 0.26, 3, "a"},
		{0.5, 5, 0.5, 5, "b"},
		{1, 10, 1, 10, "b"},
	}
	for _, tt := range tests {
		c := d.AppendPoint()
		d.LerpAttributes(geo.OwnerPoint, c, a, b, tt.t)
		if got := d.Pos3(c).X; math.Abs(got-tt.wantX) > 1e-12 {
			t.Errorf("t=%v: P.x = %v, want %v", tt.t, got, tt.wantX)
		}
		if got := f.Float(c, 0); math.Abs(got-tt.wantCd) > 1e-12 {
			t.Errorf("t=%v: Cd.r = %v, want %v", tt.t, got, tt.wantCd)
		}
		if got := id.Int(c, 0); got != tt.wantID {
			t.Errorf("t=%v: id = %d, want %d", tt.t, got, tt.wantID)
		}
		if got := name.String(c); got != tt.wantName {
			t.Errorf("t=%v: name = %q, want %q", tt.t, got, tt.wantName)
		}
	}
}

func TestAddAttributeConflicts(t *testing.T) {
	d := New()
	uv := d.MustAddAttribute(geo.OwnerVertex, "uv", geo.StorageFloat, 3, geo.TypeTexCoord)
	again, err := d.AddAttribute(geo.OwnerVertex, "uv", geo.StorageFloat, 3, geo.TypeTexCoord)
	if err != nil || again != uv {
		t.Fatalf("AddAttribute() = %v, %v; want existing attribute", again, err)
	}
	if _, err := d.AddAttribute(geo.OwnerVertex, "uv", geo.StorageInt, 1, geo.TypeNone); err == nil {
		t.Error("AddAttribute() with conflicting layout should fail")
	}
	if _, err := d.AddAttribute(geo.OwnerVertex, "", geo.StorageInt, 1, geo.TypeNone); err == nil {
		t.Error("AddAttribute() with empty name should fail")
	}
}

func TestNeedsTransform(t *testing.T) {
	d := New()
	tests := []struct {
		name    string
		storage geo.Storage
		ti      geo.TypeInfo
		want    bool
	}{
		{"N", geo.StorageFloat, geo.TypeNormal, true},
		{"v", geo.StorageFloat, geo.TypeVector, true},
		{"rest", geo.StorageFloat, geo.TypePoint, true},
		{"Cd", geo.StorageFloat, geo.TypeColor, false},
		{"ivec", geo.StorageInt, geo.TypeVector, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := d.MustAddAttribute(geo.OwnerPoint, tt.name, tt.storage, 3, tt.ti)
			if got := a.NeedsTransform(); got != tt.want {
				t.Errorf("NeedsTransform() = %v, want %v", got, tt.want)
			}
		})
	}
	if !d.FindAttribute(geo.OwnerPoint, PName).NeedsTransform() {
		t.Error("P must need transform")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := New()
	pr := unitSquare(d)
	g := d.NewGroup(geo.OwnerPrimitive, "sel")
	g.Add(pr)

	c := d.Clone()
	c.SetPos3(0, v3.Vec{X: 42})
	c.DestroyPrimitives([]geo.Offset{pr}, true)

	if d.Pos3(0).X != 0 {
		t.Error("clone shares point positions with the original")
	}
	if d.NumPrimitives() != 1 || d.NumPoints() != 4 {
		t.Error("clone shares topology with the original")
	}
	if !d.Group(geo.OwnerPrimitive, "sel").Contains(pr) {
		t.Error("clone shares groups with the original")
	}
	if c.Group(geo.OwnerPrimitive, "sel").Contains(pr) {
		t.Error("destroyed primitive should leave the clone's group")
	}
}

func TestBoundingBox(t *testing.T) {
	d := New()
	if bb := d.BoundingBox(); bb.Min != (v3.Vec{}) || bb.Max != (v3.Vec{}) {
		t.Errorf("empty BoundingBox() = %v, want zero", bb)
	}
	d.AddPoint(v3.Vec{X: -1, Y: 2, Z: 3})
	d.AddPoint(v3.Vec{X: 4, Y: -5, Z: 6})
	bb := d.BoundingBox()
	if bb.Min != (v3.Vec{X: -1, Y: -5, Z: 3}) || bb.Max != (v3.Vec{X: 4, Y: 2, Z: 6}) {
		t.Errorf("BoundingBox() = %v", bb)
	}
}

func TestGrid(t *testing.T) {
	tests := []struct {
		rows, cols int
		wantPts    int
		wantPrims  int
	}{
		{5, 5, 25, 16},
		{2, 3, 6, 2},
		{1, 4, 4, 0},
		{0, 4, 0, 0},
	}
	for _, tt := range tests {
		d := Grid(tt.rows, tt.cols, 2, 2)
		if d.NumPoints() != tt.wantPts || d.NumPrimitives() != tt.wantPrims {
			t.Errorf("Grid(%d,%d) = %d points %d prims, want %d/%d",
				tt.rows, tt.cols, d.NumPoints(), d.NumPrimitives(), tt.wantPts, tt.wantPrims)
		}
	}

	d := Grid(5, 5, 2, 2)
	bb := d.BoundingBox()
	if bb.Min != (v3.Vec{X: -1, Y: -1}) || bb.Max != (v3.Vec{X: 1, Y: 1}) {
		t.Errorf("Grid bounds = %v, want [-1,1]^2", bb)
	}
	var area float64
	for _, pr := range d.PrimitiveRange(nil).Offsets() {
		area += d.PrimitiveArea(pr)
	}
	if math.Abs(area-4) > 1e-12 {
		t.Errorf("Grid area = %v, want 4", area)
	}
}

func TestMerge(t *testing.T) {
	a := New()
	unitSquare(a)
	b := Grid(2, 2, 1, 1)
	uv := b.MustAddAttribute(geo.OwnerVertex, "uv", geo.StorageFloat, 3, geo.TypeTexCoord)
	uv.SetFloat(2, 0, 0.75)

	prims := a.Merge(b)
	if len(prims) != 1 {
		t.Fatalf("Merge() returned %d prims, want 1", len(prims))
	}
	if a.NumPoints() != 8 || a.NumPrimitives() != 2 {
		t.Errorf("merged counts = %d points %d prims, want 8/2", a.NumPoints(), a.NumPrimitives())
	}
	got := a.Attribute(geo.OwnerVertex, "uv")
	if got == nil {
		t.Fatal("merged detail is missing uv")
	}
	if v := got.Float(a.PrimitiveVertexOffset(prims[0], 2), 0); v != 0.75 {
		t.Errorf("merged uv = %v, want 0.75", v)
	}
}

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name string
		pos  []v3.Vec
		want float64
	}{
		{"square", []v3.Vec{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}, 1},
		{"triangle xz", []v3.Vec{{X: 0}, {X: 2}, {Z: 2}}, 2},
		{"collinear", []v3.Vec{{X: 0}, {X: 1}, {X: 2}}, 0},
		{"too few", []v3.Vec{{X: 0}, {X: 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geo.PolygonArea(tt.pos); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("PolygonArea() = %v, want %v", got, tt.want)
			}
		})
	}
}
