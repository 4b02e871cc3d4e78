package clip

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo/detail"
)

func TestPlaneClassify(t *testing.T) {
	p := Plane{Origin: v3.Vec{X: 1}, Normal: v3.Vec{X: 2}}
	tests := []struct {
		name string
		pos  v3.Vec
		want bool
	}{
		{"outside", v3.Vec{X: 0.5}, true},
		{"on plane", v3.Vec{X: 1, Y: 9}, false},
		{"inside", v3.Vec{X: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Clipped(tt.pos); got != tt.want {
				t.Errorf("Clipped(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
	if _, err := NewPlane(v3.Vec{}, v3.Vec{}); err != ErrZeroNormal {
		t.Errorf("NewPlane(zero normal) error = %v, want ErrZeroNormal", err)
	}
}

func TestCutFraction(t *testing.T) {
	p := Plane{Normal: v3.Vec{Y: 1}}
	tests := []struct {
		name   string
		p0, p1 v3.Vec
		want   float64
	}{
		{"midpoint", v3.Vec{Y: -1}, v3.Vec{Y: 1}, 0.5},
		{"quarter", v3.Vec{Y: -1}, v3.Vec{Y: 3}, 0.25},
		{"parallel", v3.Vec{X: 0, Y: -1}, v3.Vec{X: 5, Y: -1}, 0},
		{"plane behind start", v3.Vec{Y: 2}, v3.Vec{Y: 3}, 0},
		{"plane past end", v3.Vec{Y: -3}, v3.Vec{Y: -2}, 1},
		{"start on plane", v3.Vec{}, v3.Vec{Y: -1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.CutFraction(tt.p0, tt.p1)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CutFraction(%v, %v) = %v, want %v", tt.p0, tt.p1, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("CutFraction() = %v outside [0, 1]", got)
			}
		})
	}
}

func TestPlaneSnap(t *testing.T) {
	planes := []Plane{
		{Origin: v3.Vec{X: 0.3, Y: -0.1, Z: 0.7}, Normal: v3.Vec{X: 0.31, Y: -0.77, Z: 0.52}},
		{Origin: v3.Vec{X: 1e3, Y: 2e3}, Normal: v3.Vec{X: 1e-3, Y: 3, Z: -7}},
		{Origin: v3.Vec{Y: 0.25}, Normal: v3.Vec{Y: 1}},
	}
	for i, p := range planes {
		for k := 0; k < 200; k++ {
			f := float64(k)
			pos := v3.Vec{X: math.Sin(f) * 3, Y: math.Cos(f*1.7) * 2, Z: math.Sin(f*0.3+1) * 5}
			q := p.Snap(pos)
			if p.Clipped(q) {
				t.Fatalf("plane %d: Snap(%v) = %v is clipped", i, pos, q)
			}
			if d := math.Abs(p.Distance(q)) / p.Normal.Length(); d > 1e-9 {
				t.Fatalf("plane %d: Snap(%v) is %v off the plane", i, pos, d)
			}
		}
	}
}

func TestNewCutKey(t *testing.T) {
	if NewCutKey(5, 2) != NewCutKey(2, 5) {
		t.Error("NewCutKey is not symmetric")
	}
	if k := NewCutKey(5, 2); k.Lo != 2 || k.Hi != 5 {
		t.Errorf("NewCutKey(5, 2) = %+v", k)
	}
}

func TestCutCacheResolve(t *testing.T) {
	d := detail.New()
	a := d.AddPoint(v3.Vec{X: 0})
	b := d.AddPoint(v3.Vec{X: 4})
	c := NewCutCache(d, Plane{Origin: v3.Vec{X: 1}, Normal: v3.Vec{X: 1}})

	pt, created := c.Resolve(NewCutKey(a, b), 0.25)
	if !created {
		t.Fatal("first Resolve() created = false")
	}
	if got := d.Pos3(pt); got != (v3.Vec{X: 1}) {
		t.Errorf("cut point at %v, want (1, 0, 0)", got)
	}
	again, created := c.Resolve(NewCutKey(b, a), 0.25)
	if created || again != pt {
		t.Errorf("second Resolve() = %d, %v; want %d, false", again, created, pt)
	}
	if c.Len() != 1 || d.NumPoints() != 3 {
		t.Errorf("Len() = %d, NumPoints() = %d; want 1, 3", c.Len(), d.NumPoints())
	}
}

func TestPartitionSquare(t *testing.T) {
	d := detail.New()
	pr := d.Polygon(true, v3.Vec{X: 0}, v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1}, v3.Vec{Y: 1})
	loops := Partition(d, pr, Plane{Origin: v3.Vec{X: 0.5}, Normal: v3.Vec{X: 1}})
	if len(loops) != 1 || len(loops[0]) != 4 {
		t.Fatalf("Partition() = %v, want one loop of 4", loops)
	}
	l := loops[0]
	if l[0].Kept() || !l[1].Kept() || !l[2].Kept() || l[3].Kept() {
		t.Errorf("entry kinds = %v, want cut, kept, kept, cut", l)
	}
	for _, e := range []Entry{l[0], l[3]} {
		if d.VertexPoint(e.Vtx0) > d.VertexPoint(e.Vtx1) {
			t.Errorf("cut entry %+v not in canonical order", e)
		}
	}
}

func TestPartitionConcaveYieldsTwoLoops(t *testing.T) {
	// A U opening upward; the plane y=1 cuts both arms.
	d := detail.New()
	pr := d.Polygon(true,
		v3.Vec{X: 0, Y: 0},
		v3.Vec{X: 3, Y: 0},
		v3.Vec{X: 3, Y: 2},
		v3.Vec{X: 2, Y: 2},
		v3.Vec{X: 2, Y: 0.5},
		v3.Vec{X: 1, Y: 0.5},
		v3.Vec{X: 1, Y: 2},
		v3.Vec{X: 0, Y: 2},
	)
	loops := Partition(d, pr, Plane{Origin: v3.Vec{Y: 1}, Normal: v3.Vec{Y: 1}})
	if len(loops) != 2 {
		t.Fatalf("Partition() = %d loops, want 2", len(loops))
	}
	for i, l := range loops {
		if len(l) != 4 {
			t.Errorf("loop %d has %d entries, want 4", i, len(l))
		}
		if area := geo.PolygonArea(l.Positions(d)); math.Abs(area-1) > 1e-12 {
			t.Errorf("loop %d area = %v, want 1", i, area)
		}
	}
}

func TestPartitionWithoutCrossing(t *testing.T) {
	d := detail.New()
	pr := d.Polygon(true, v3.Vec{X: 1}, v3.Vec{X: 2}, v3.Vec{X: 2, Y: 1})
	for _, origin := range []float64{0, 5} {
		if loops := Partition(d, pr, Plane{Origin: v3.Vec{X: origin}, Normal: v3.Vec{X: 1}}); loops != nil {
			t.Errorf("Partition(origin %v) = %v, want nil", origin, loops)
		}
	}
}
