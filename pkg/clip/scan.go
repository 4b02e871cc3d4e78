package clip

import (
	"context"
	"runtime"
	"slices"
	"sync"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// BatchSize is the number of primitives handled between cancellation
// checks in both the scan and the rebuild phase.
const BatchSize = 1024

// Classification is the result of scanning primitives against a plane.
// Remove holds every closed polygon with at least one vertex outside;
// Rebuild is the subset that also has a vertex inside. Both are sorted.
type Classification struct {
	Scanned int
	Remove  []geo.Offset
	Rebuild []geo.Offset
}

// NeedsRebuild reports whether pr is in c.Rebuild.
func (c *Classification) NeedsRebuild(pr geo.Offset) bool {
	_, ok := slices.BinarySearch(c.Rebuild, pr)
	return ok
}

// classify inspects one primitive. Non-polygons and open polygons are
// never touched.
func classify(d geo.Detail, pr geo.Offset, plane Plane) (remove, rebuild bool) {
	if d.PrimitiveKind(pr) != geo.PrimPoly || !d.PrimitiveClosed(pr) {
		return false, false
	}
	n := d.PrimitiveVertexCount(pr)
	var outside int
	for i := 0; i < n; i++ {
		pt := d.VertexPoint(d.PrimitiveVertexOffset(pr, i))
		if plane.Clipped(d.Pos3(pt)) {
			outside++
		}
	}
	if outside == 0 {
		return false, false
	}
	return true, outside < n
}

// Scan classifies prims against plane using workers goroutines
// (runtime.NumCPU when workers <= 0). The detail is only read. Each worker
// collects into local slices that are merged once it finishes. If ctx is
// cancelled the partial result is discarded and ctx.Err() is returned.
func Scan(ctx context.Context, d geo.Detail, prims geo.Range, plane Plane, workers int) (Classification, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = Classification{Scanned: prims.Len()}
	)
	for _, piece := range prims.Split(workers) {
		wg.Add(1)
		go func(piece geo.Range) {
			defer wg.Done()
			var remove, rebuild []geo.Offset
			for _, block := range piece.Blocks(BatchSize) {
				if ctx.Err() != nil {
					return
				}
				for _, pr := range block.Offsets() {
					rm, rb := classify(d, pr, plane)
					if rm {
						remove = append(remove, pr)
					}
					if rb {
						rebuild = append(rebuild, pr)
					}
				}
			}
			mu.Lock()
			out.Remove = append(out.Remove, remove...)
			out.Rebuild = append(out.Rebuild, rebuild...)
			mu.Unlock()
		}(piece)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Classification{}, err
	}
	slices.Sort(out.Remove)
	slices.Sort(out.Rebuild)
	return out, nil
}
