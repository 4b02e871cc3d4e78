package clip

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// maxNudges bounds the steps Snap takes to move a projected point off the
// clipped side.
const maxNudges = 64

// ErrZeroNormal is returned when a clip plane has no direction.
var ErrZeroNormal = errors.New("clip: plane normal is zero")

// Plane is the clipping half-space boundary. Points with a negative signed
// distance are outside and get clipped; points on the plane are inside.
// The normal does not need to be unit length.
type Plane struct {
	Origin v3.Vec
	Normal v3.Vec
}

// NewPlane returns a plane through origin with the given normal.
func NewPlane(origin, normal v3.Vec) (Plane, error) {
	p := Plane{Origin: origin, Normal: normal}
	if err := p.Validate(); err != nil {
		return Plane{}, err
	}
	return p, nil
}

// Validate reports ErrZeroNormal for a plane without a direction.
func (p Plane) Validate() error {
	if p.Normal.X == 0 && p.Normal.Y == 0 && p.Normal.Z == 0 {
		return ErrZeroNormal
	}
	return nil
}

// Distance returns dot(N, pos-O). It is scaled by |N|.
func (p Plane) Distance(pos v3.Vec) float64 {
	return p.Normal.Dot(pos.Sub(p.Origin))
}

// Clipped reports whether pos lies strictly on the negative side.
func (p Plane) Clipped(pos v3.Vec) bool {
	return p.Distance(pos) < 0
}

// CutFraction returns the parameter t in [0, 1] at which the segment
// p0 -> p1 crosses the plane. A segment parallel to the plane yields 0.
func (p Plane) CutFraction(p0, p1 v3.Vec) float64 {
	denom := p.Normal.Dot(p1.Sub(p0))
	if denom == 0 {
		return 0
	}
	return lo.Clamp(p.Normal.Dot(p.Origin.Sub(p0))/denom, 0, 1)
}

// Snap projects pos onto the plane. Where rounding leaves the projection
// clipped it steps along the normal, starting at one ulp of the largest
// coordinate involved and doubling, until the point is kept.
func (p Plane) Snap(pos v3.Vec) v3.Vec {
	n := p.Normal
	q := pos.Sub(n.MulScalar(p.Distance(pos) / n.Dot(n)))
	if !p.Clipped(q) {
		return q
	}
	scale := math.Max(pos.Abs().MaxComponent(), p.Origin.Abs().MaxComponent())
	step := math.Nextafter(scale, math.Inf(1)) - scale
	unit := n.MulScalar(1 / n.Length())
	for i := 0; i < maxNudges && p.Clipped(q); i++ {
		q = q.Add(unit.MulScalar(step))
		step *= 2
	}
	return q
}
