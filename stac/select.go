package stac

import (
	"encoding/json"
	"hash/fnv"
	"sort"

	"github.com/eugene-tulu/ndvi-explorer/model"
)

// SelectScenes picks the best-available subset of the search results:
// the cloud-cover threshold is re-validated, and within each distinct scene
// footprint only the least cloudy record is kept. Redundancy beyond that is
// resolved downstream by the maximum-value composite. The returned slice
// preserves acquisition-date order; it is empty when nothing qualifies.
func SelectScenes(results []model.SceneSearchResult, maxCloudCover float64) []model.SceneSearchResult {
	bestByFootprint := make(map[uint64]int)
	for i, result := range results {
		if result.CloudCover > maxCloudCover {
			continue
		}
		footprint := footprintHash(result.Geometry)
		if j, ok := bestByFootprint[footprint]; !ok || result.CloudCover < results[j].CloudCover {
			bestByFootprint[footprint] = i
		}
	}

	indices := make([]int, 0, len(bestByFootprint))
	for _, i := range bestByFootprint {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	selected := make([]model.SceneSearchResult, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, results[i])
	}
	return selected
}

func footprintHash(geometry interface{}) uint64 {
	encoded, _ := json.Marshal(geometry)
	h := fnv.New64a()
	h.Write(encoded)
	return h.Sum64()
}
