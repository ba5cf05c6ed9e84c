package model

import (
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

// BasicSceneResult holds the fields common to all catalog scene results
type BasicSceneResult struct {
	ID           string
	Geometry     interface{}
	CloudCover   float64
	Resolution   float64
	AcquiredDate time.Time
	SensorName   string
	FileFormat   SceneFileFormat
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (sr BasicSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	f := geojson.NewFeature(sr.Geometry, sr.ID, map[string]interface{}{
		"cloudCover":   sr.CloudCover,
		"resolution":   sr.Resolution,
		"acquiredDate": sr.AcquiredDate.Format(StandardTimeLayout),
		"sensorName":   sr.SensorName,
		"fileFormat":   string(sr.FileFormat),
	})
	f.Bbox = f.ForceBbox()
	return f, nil
}

// SceneSearchResult is a catalog search result -- basic scene data,
// plus the spectral band assets needed downstream
type SceneSearchResult struct {
	BasicSceneResult
	*SentinelBandAssets
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result SceneSearchResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.BasicSceneResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	if result.SentinelBandAssets != nil {
		err = result.SentinelBandAssets.Apply(feature)
		if err != nil {
			return nil, err
		}
	}

	return feature, nil
}

// MultiSceneResult is a container type for bundling multiple results together,
// e.g. as results from a discover endpoint
type MultiSceneResult struct {
	FeatureCreators []GeoJSONFeatureCreator
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (result MultiSceneResult) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	var err error
	features := make([]*geojson.Feature, len(result.FeatureCreators))
	for i, creator := range result.FeatureCreators {
		features[i], err = creator.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
	}

	return geojson.NewFeatureCollection(features), nil
}
