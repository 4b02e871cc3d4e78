// Package clip cuts closed polygons of a geo.Detail against a half-space.
//
// Clipping runs in two phases. A parallel scan classifies primitives
// without touching the detail; a serial phase then rebuilds the partially
// clipped polygons from their surviving loops and finally destroys every
// clipped original, removing points that no primitive uses any more.
// Points created on an edge shared by two polygons are created once.
package clip

import (
	"context"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// Options configures Clip.
type Options struct {
	Plane Plane

	// Group restricts clipping to these primitives. Nil means all.
	Group []geo.Offset

	// Workers is the scan parallelism; <= 0 uses runtime.NumCPU.
	Workers int

	// DropDegenerate discards loops whose area is at most DegenerateArea.
	DropDegenerate bool
	DegenerateArea float64
}

// DefaultOptions clips against the XZ plane, keeping +Y.
func DefaultOptions() Options {
	return Options{
		Plane: Plane{Normal: v3.Vec{Y: 1}},
	}
}

// Stats summarizes one Clip call.
type Stats struct {
	Scanned         int
	Removed         int
	Rebuilt         int
	NewPrimitives   int
	NewPoints       int
	DestroyedPoints int
	DroppedLoops    int
	Interrupted     bool
}

// Clip clips the closed polygons of d against opts.Plane in place.
//
// Cancellation of ctx is not an error: Stats.Interrupted is set and the
// detail is left consistent. If the scan is interrupted nothing is
// modified. If the rebuild is interrupted, only the originals whose
// replacements were built are destroyed.
func Clip(ctx context.Context, d geo.Detail, opts Options) (Stats, error) {
	var stats Stats
	if err := opts.Plane.Validate(); err != nil {
		return stats, err
	}

	var group *geo.Group
	if opts.Group != nil {
		group = geo.NewGroup(geo.OwnerPrimitive, "")
		group.Add(opts.Group...)
	}
	prims := d.PrimitiveRange(group)

	cls, err := Scan(ctx, d, prims, opts.Plane, opts.Workers)
	if err != nil {
		if ctx.Err() != nil {
			stats.Interrupted = true
			return stats, nil
		}
		return stats, fmt.Errorf("clip: scan: %w", err)
	}
	stats.Scanned = cls.Scanned

	rb := NewRebuilder(d, opts.Plane)
	reached := make([]geo.Offset, 0, len(cls.Remove))
	for _, batch := range geo.NewRange(cls.Remove).Blocks(BatchSize) {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}
		for _, pr := range batch.Offsets() {
			if cls.NeedsRebuild(pr) {
				loops := Partition(d, pr, opts.Plane)
				if opts.DropDegenerate {
					kept := lo.Filter(loops, func(l Loop, _ int) bool {
						return geo.PolygonArea(l.Positions(d)) > opts.DegenerateArea
					})
					stats.DroppedLoops += len(loops) - len(kept)
					loops = kept
				}
				rb.Rebuild(pr, loops)
				stats.Rebuilt++
			}
			reached = append(reached, pr)
		}
	}

	stats.Removed = len(reached)
	stats.NewPrimitives = rb.NewPrimitives
	stats.NewPoints = rb.NewPoints()
	stats.DestroyedPoints = d.DestroyPrimitives(reached, true)
	return stats, nil
}
