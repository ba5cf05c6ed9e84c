package model

import (
	"errors"
	"net/url"

	"github.com/venicegeo/geojson-go/geojson"
)

// SentinelBandAssets is a mixin containing the red and near-infrared band
// asset locations of a Sentinel-2 scene
type SentinelBandAssets struct {
	Red url.URL
	NIR url.URL
}

// NewSentinelBandAssets creates a SentinelBandAssets from raw asset hrefs
func NewSentinelBandAssets(redHref, nirHref string) (*SentinelBandAssets, error) {
	redURL, err := url.Parse(redHref)
	if err == nil && (redURL == nil || redURL.String() == "") {
		err = errors.New("No red band asset location could be parsed")
	}
	if err != nil {
		return nil, err
	}

	nirURL, err := url.Parse(nirHref)
	if err == nil && (nirURL == nil || nirURL.String() == "") {
		err = errors.New("No near-infrared band asset location could be parsed")
	}
	if err != nil {
		return nil, err
	}

	return &SentinelBandAssets{Red: *redURL, NIR: *nirURL}, nil
}

// Apply implements the GeoJSONFeatureMixin interface
func (sba SentinelBandAssets) Apply(feature *geojson.Feature) error {
	feature.Properties["bands"] = map[string]string{
		"red": sba.Red.String(),
		"nir": sba.NIR.String(),
	}
	return nil
}
