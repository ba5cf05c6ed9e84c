// Package ndvi computes the normalized difference vegetation index over a
// raster stack and reduces it to a maximum-value composite.
package ndvi

import (
	"math"
	"runtime"

	"github.com/eugene-tulu/ndvi-explorer/raster"
	"github.com/eugene-tulu/ndvi-explorer/util"
	"golang.org/x/sync/errgroup"
)

// rowChunk is how many grid rows one worker computes at a time
const rowChunk = 64

// Composite is a single NDVI raster on the working grid. Values are in
// [-1, 1]; NaN marks pixels with no valid observation.
type Composite struct {
	Grid raster.Grid
	Data []float64
}

// At returns the composite value at a cell
func (c *Composite) At(col, row int) float64 {
	return c.Data[row*c.Grid.Width+col]
}

// MaxComposite materializes the stack and computes, per pixel, the maximum
// NDVI value across all time steps. Pixels outside the `within` predicate
// (when non-nil) and pixels with no valid observation are NaN. Scenes whose
// assets could not be fetched are dropped and reported, not fatal.
//
// Returns a nil composite when no scene survived materialization.
func MaxComposite(context util.LogContext, stack *raster.Stack, within func(lon, lat float64) bool) (*Composite, []raster.DroppedScene, error) {
	dropped := stack.Materialize(context)
	layers := stack.Layers()
	if len(layers) == 0 {
		return nil, dropped, nil
	}

	grid := stack.Grid
	composite := &Composite{
		Grid: grid,
		Data: make([]float64, grid.Width*grid.Height),
	}

	group := errgroup.Group{}
	group.SetLimit(runtime.GOMAXPROCS(0))

	for startRow := 0; startRow < grid.Height; startRow += rowChunk {
		startRow := startRow
		group.Go(func() error {
			endRow := startRow + rowChunk
			if endRow > grid.Height {
				endRow = grid.Height
			}
			for row := startRow; row < endRow; row++ {
				for col := 0; col < grid.Width; col++ {
					lon, lat := grid.CellCenterLonLat(col, row)

					best := math.NaN()
					if within == nil || within(lon, lat) {
						for _, layer := range layers {
							value, ok := sceneNDVI(layer, lon, lat)
							if !ok {
								continue
							}
							if math.IsNaN(best) || value > best {
								best = value
							}
						}
					}
					composite.Data[row*grid.Width+col] = best
				}
			}
			return nil
		})
	}
	group.Wait()

	return composite, dropped, nil
}

// sceneNDVI computes (nir-red)/(nir+red) for one scene at one point.
// A zero denominator or a nodata band sample is an invalid observation,
// never a division error.
func sceneNDVI(layer *raster.SceneLayer, lon, lat float64) (float64, bool) {
	red, ok := layer.Sample(raster.Red, lon, lat)
	if !ok {
		return 0, false
	}
	nir, ok := layer.Sample(raster.NIR, lon, lat)
	if !ok {
		return 0, false
	}
	sum := nir + red
	if sum == 0 {
		return 0, false
	}
	return (nir - red) / sum, true
}
