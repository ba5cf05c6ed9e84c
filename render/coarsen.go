package render

import (
	"math"

	"github.com/eugene-tulu/ndvi-explorer/ndvi"
	"github.com/eugene-tulu/ndvi-explorer/raster"
)

// CoarsenMean reduces the composite by the given factor, averaging the valid
// pixels of each block. Blocks with no valid pixel stay NaN. Used for the
// low-resolution preview shown alongside the full-resolution data.
func CoarsenMean(composite *ndvi.Composite, factor int) *ndvi.Composite {
	if factor < 1 {
		factor = 1
	}
	grid := composite.Grid

	coarse := raster.Grid{
		OriginX:    grid.OriginX,
		OriginY:    grid.OriginY,
		Resolution: grid.Resolution * float64(factor),
		Width:      (grid.Width + factor - 1) / factor,
		Height:     (grid.Height + factor - 1) / factor,
		EPSG:       grid.EPSG,
	}

	result := &ndvi.Composite{
		Grid: coarse,
		Data: make([]float64, coarse.Width*coarse.Height),
	}

	for row := 0; row < coarse.Height; row++ {
		for col := 0; col < coarse.Width; col++ {
			var sum float64
			var count int
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					y := row*factor + dy
					x := col*factor + dx
					if y >= grid.Height || x >= grid.Width {
						continue
					}
					value := composite.At(x, y)
					if math.IsNaN(value) {
						continue
					}
					sum += value
					count++
				}
			}
			if count == 0 {
				result.Data[row*coarse.Width+col] = math.NaN()
			} else {
				result.Data[row*coarse.Width+col] = sum / float64(count)
			}
		}
	}

	return result
}
