package raster

import (
	"fmt"
	"net/http"

	"github.com/eugene-tulu/ndvi-explorer/util"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/tiff"
)

// bandCacheSize bounds how many decoded band rasters stay resident
const bandCacheSize = 8

// bandRaster is a single decoded band asset, georeferenced by the scene's
// WGS84 footprint bounding box
type bandRaster struct {
	width  int
	height int
	data   []uint16

	minLon, minLat, maxLon, maxLat float64
}

// Sample returns the nearest-neighbor digital number at a WGS84 point.
// Zero is the Sentinel-2 L2A nodata value, reported as invalid.
func (b *bandRaster) Sample(lon, lat float64) (float64, bool) {
	if lon < b.minLon || lon > b.maxLon || lat < b.minLat || lat > b.maxLat {
		return 0, false
	}
	col := int((lon - b.minLon) / (b.maxLon - b.minLon) * float64(b.width))
	row := int((b.maxLat - lat) / (b.maxLat - b.minLat) * float64(b.height))
	if col >= b.width {
		col = b.width - 1
	}
	if row >= b.height {
		row = b.height - 1
	}
	dn := b.data[row*b.width+col]
	if dn == 0 {
		return 0, false
	}
	return float64(dn), true
}

type assetFetcher struct {
	cache *lru.Cache[string, *bandRaster]
}

func newAssetFetcher() *assetFetcher {
	cache, _ := lru.New[string, *bandRaster](bandCacheSize)
	return &assetFetcher{cache: cache}
}

// fetchBand downloads and decodes a band asset, georeferencing it to the
// given scene footprint. Decoded rasters are cached by asset URL.
func (f *assetFetcher) fetchBand(context util.LogContext, href string, minLon, minLat, maxLon, maxLat float64) (*bandRaster, error) {
	if cached, ok := f.cache.Get(href); ok {
		return cached, nil
	}

	util.LogAudit(context, util.LogAuditInput{Actor: "anon user", Action: "GET", Actee: href, Message: "Fetching band asset", Severity: util.INFO})
	response, err := util.HTTPClient().Get(href)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Non-200 response code: %d", response.StatusCode)
	}

	decoded, err := tiff.Decode(response.Body)
	if err != nil {
		return nil, err
	}

	bounds := decoded.Bounds()
	band := &bandRaster{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		data:   make([]uint16, bounds.Dx()*bounds.Dy()),
		minLon: minLon,
		minLat: minLat,
		maxLon: maxLon,
		maxLat: maxLat,
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dn, _, _, _ := decoded.At(x, y).RGBA()
			band.data[(y-bounds.Min.Y)*band.width+(x-bounds.Min.X)] = uint16(dn)
		}
	}

	f.cache.Add(href, band)
	return band, nil
}
