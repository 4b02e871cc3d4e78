package flatten

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo/detail"
)

// GuideDivisions is the number of grid points along each side of the
// guide.
const GuideDivisions = 5

// Guide returns a square grid lying in the plane described by p, sized to
// the diagonal of bbox and centered at N*Dist.
func Guide(bbox sdf.Box3, p Params) (*detail.Detail, error) {
	n, err := p.Normal()
	if err != nil {
		return nil, err
	}
	size := bbox.Size().Length()
	g := detail.Grid(GuideDivisions, GuideDivisions, size, size)

	m := sdf.Translate3d(n.MulScalar(p.Dist)).Mul(rotateFromZ(n))
	for _, pt := range g.PointRange(nil).Offsets() {
		g.SetPos3(pt, m.MulPosition(g.Pos3(pt)))
	}
	return g, nil
}

// rotateFromZ returns the rotation taking +Z onto the unit vector n.
func rotateFromZ(n v3.Vec) sdf.M44 {
	z := v3.Vec{Z: 1}
	switch d := z.Dot(n); {
	case d > 1-1e-12:
		return sdf.Identity3d()
	case d < -1+1e-12:
		return sdf.RotateX(math.Pi)
	}
	return sdf.RotateToVector(z, n)
}
