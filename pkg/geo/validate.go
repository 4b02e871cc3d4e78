package geo

import (
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
)

// ValidationSeverity indicates whether a finding means the topology is
// broken or merely unusual.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // broken topology
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Owner    Owner
	Offset   Offset // InvalidOffset for detail-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if !e.Offset.IsValid() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s %d: %s", e.Severity, e.Owner, e.Offset, e.Message)
}

// Errors filters findings down to those with SeverityError.
func Errors(findings []ValidationError) []ValidationError {
	return lo.Filter(findings, func(f ValidationError, _ int) bool {
		return f.Severity == SeverityError
	})
}

// Validate runs structural checks over d and returns every finding. An
// empty slice means the mesh is well formed. It never mutates d.
func Validate(d Detail) []ValidationError {
	var errs []ValidationError
	refs, refErrs := validateVertexRefs(d)
	errs = append(errs, refErrs...)
	errs = append(errs, validatePolygons(d)...)
	errs = append(errs, validatePositions(d)...)
	errs = append(errs, validateOrphans(d, refs)...)
	return errs
}

// validateVertexRefs checks that every vertex of every live primitive is
// wired to a live point and reports the reference count per point.
func validateVertexRefs(d Detail) (map[Offset]int, []ValidationError) {
	var errs []ValidationError
	live := d.PointRange(nil).Offsets()
	refs := make(map[Offset]int, len(live))

	for _, pr := range d.PrimitiveRange(nil).Offsets() {
		n := d.PrimitiveVertexCount(pr)
		for i := 0; i < n; i++ {
			vtx := d.PrimitiveVertexOffset(pr, i)
			pt := d.VertexPoint(vtx)
			if !pt.IsValid() {
				errs = append(errs, ValidationError{
					Owner:    OwnerPrimitive,
					Offset:   pr,
					Message:  fmt.Sprintf("vertex %d is not wired to a point", vtx),
					Severity: SeverityError,
				})
				continue
			}
			if _, ok := slices.BinarySearch(live, pt); !ok {
				errs = append(errs, ValidationError{
					Owner:    OwnerPrimitive,
					Offset:   pr,
					Message:  fmt.Sprintf("vertex %d references destroyed point %d", vtx, pt),
					Severity: SeverityError,
				})
				continue
			}
			refs[pt]++
		}
	}
	return refs, errs
}

// validatePolygons flags closed polygons that cannot enclose any area.
func validatePolygons(d Detail) []ValidationError {
	var errs []ValidationError
	for _, pr := range d.PrimitiveRange(nil).Offsets() {
		if d.PrimitiveKind(pr) != PrimPoly || !d.PrimitiveClosed(pr) {
			continue
		}
		if n := d.PrimitiveVertexCount(pr); n < 3 {
			errs = append(errs, ValidationError{
				Owner:    OwnerPrimitive,
				Offset:   pr,
				Message:  fmt.Sprintf("closed polygon has %d vertices", n),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validatePositions checks that every point position is finite.
func validatePositions(d Detail) []ValidationError {
	var errs []ValidationError
	for _, pt := range d.PointRange(nil).Offsets() {
		p := d.Pos3(pt)
		for _, c := range [3]float64{p.X, p.Y, p.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				errs = append(errs, ValidationError{
					Owner:    OwnerPoint,
					Offset:   pt,
					Message:  fmt.Sprintf("position %v is not finite", p),
					Severity: SeverityError,
				})
				break
			}
		}
	}
	return errs
}

// validateOrphans reports points that no vertex references.
func validateOrphans(d Detail, refs map[Offset]int) []ValidationError {
	var errs []ValidationError
	for _, pt := range d.PointRange(nil).Offsets() {
		if refs[pt] == 0 {
			errs = append(errs, ValidationError{
				Owner:    OwnerPoint,
				Offset:   pt,
				Message:  "point is not referenced by any vertex",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
