package model

// SceneFileFormat is an enum type for recognized scene asset file types
type SceneFileFormat string

// GeoTIFF corresponds to cloud-optimized .TIF assets
const GeoTIFF SceneFileFormat = "geotiff"

// JPEG2000 corresponds to .JP2 assets
const JPEG2000 SceneFileFormat = "jpeg2000"

// Sentinel2Collection is the STAC collection queried for imagery
const Sentinel2Collection = "sentinel-2-l2a"

// RedBandAsset and NIRBandAsset are the STAC asset keys of the spectral
// bands the NDVI computation requires
const (
	RedBandAsset = "B04"
	NIRBandAsset = "B08"
)
