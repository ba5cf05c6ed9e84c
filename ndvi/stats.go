package ndvi

import "math"

// Stats summarizes the valid pixels of a composite
type Stats struct {
	Mean       float64
	Min        float64
	Max        float64
	ValidCount int
}

// ComputeStats returns descriptive statistics over the non-NaN pixels of the
// composite. The second return value is false when no pixel is valid.
func ComputeStats(composite *Composite) (Stats, bool) {
	stats := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64

	for _, value := range composite.Data {
		if math.IsNaN(value) {
			continue
		}
		stats.ValidCount++
		sum += value
		if value < stats.Min {
			stats.Min = value
		}
		if value > stats.Max {
			stats.Max = value
		}
	}

	if stats.ValidCount == 0 {
		return Stats{}, false
	}
	stats.Mean = sum / float64(stats.ValidCount)
	return stats, true
}
