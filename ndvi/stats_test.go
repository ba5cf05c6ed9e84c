package ndvi

import (
	"math"
	"testing"

	"github.com/eugene-tulu/ndvi-explorer/raster"
	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	// Mock
	composite := &Composite{
		Grid: raster.Grid{Width: 4, Height: 1},
		Data: []float64{0.2, math.NaN(), 0.6, 0.4},
	}

	// Tested code
	stats, ok := ComputeStats(composite)

	// Asserts
	assert.True(t, ok)
	assert.Equal(t, 3, stats.ValidCount)
	assert.InDelta(t, 0.4, stats.Mean, 1e-9)
	assert.Equal(t, 0.2, stats.Min)
	assert.Equal(t, 0.6, stats.Max)
}

func TestComputeStats_AllNaN(t *testing.T) {
	// Mock
	composite := &Composite{
		Grid: raster.Grid{Width: 2, Height: 1},
		Data: []float64{math.NaN(), math.NaN()},
	}

	// Tested code
	stats, ok := ComputeStats(composite)

	// Asserts
	assert.False(t, ok)
	assert.Equal(t, Stats{}, stats)
}
