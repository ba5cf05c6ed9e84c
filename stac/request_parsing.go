package stac

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/util"
	"github.com/venicegeo/geojson-go/geojson"
)

func parseSearchResults(context *Context, body []byte) ([]model.SceneSearchResult, error) {
	stacFeatureCollection, err := stacRawBytesToFeatureCollection(context, body)
	if err != nil {
		return nil, err
	}

	var envelope itemsEnvelope
	if err = json.Unmarshal(body, &envelope); err != nil {
		err = util.LogSimpleErr(context, "Failed to unmarshal STAC item assets.", err)
		return nil, err
	}

	results := make([]model.SceneSearchResult, 0, len(stacFeatureCollection.Features))
	for i, feature := range stacFeatureCollection.Features {
		var assets map[string]stacAsset
		if i < len(envelope.Features) {
			assets = envelope.Features[i].Assets
		}
		result, err := sceneSearchResultFromFeature(feature, assets)
		if err != nil {
			util.LogAlert(context, fmt.Sprintf("Skipping unusable scene %v: %v", feature.IDStr(), err))
			continue
		}
		results = append(results, *result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AcquiredDate.Before(results[j].AcquiredDate)
	})

	return results, nil
}

func parseItemResult(context *Context, body []byte) (*model.SceneSearchResult, error) {
	parsed, err := geojson.Parse(body)
	if err != nil {
		err = util.LogSimpleErr(context, fmt.Sprintf("Failed to parse GeoJSON.\n%v", string(body)), err)
		return nil, err
	}
	feature, ok := parsed.(*geojson.Feature)
	if !ok {
		stacErr := util.Error{SimpleMsg: fmt.Sprintf("Expected a Feature and got %T", parsed), Response: string(body)}
		return nil, stacErr.Log(context, "")
	}

	var item stacItem
	if err = json.Unmarshal(body, &item); err != nil {
		err = util.LogSimpleErr(context, "Failed to unmarshal STAC item assets.", err)
		return nil, err
	}

	return sceneSearchResultFromFeature(feature, item.Assets)
}

func stacRawBytesToFeatureCollection(context *Context, body []byte) (*geojson.FeatureCollection, error) {
	var (
		stacFeatureCollection *geojson.FeatureCollection
		geoJSONParsedData     interface{}
		ok                    bool
		err                   error
	)
	if geoJSONParsedData, err = geojson.Parse(body); err != nil {
		err = util.LogSimpleErr(context, fmt.Sprintf("Failed to parse GeoJSON.\n%v", string(body)), err)
		return nil, err
	}

	if stacFeatureCollection, ok = geoJSONParsedData.(*geojson.FeatureCollection); !ok {
		stacErr := util.Error{SimpleMsg: fmt.Sprintf("Expected a FeatureCollection and got %T", geoJSONParsedData), Response: string(body)}
		err = stacErr.Log(context, "")
		return nil, err
	}

	return stacFeatureCollection, nil
}

func sceneSearchResultFromFeature(feature *geojson.Feature, assets map[string]stacAsset) (*model.SceneSearchResult, error) {
	acquiredDate, err := model.ParseStacTime(feature.PropertyString("datetime"))
	if err != nil {
		return nil, err
	}

	bandAssets, err := model.NewSentinelBandAssets(assets[model.RedBandAsset].Href, assets[model.NIRBandAsset].Href)
	if err != nil {
		return nil, err
	}

	basicSceneResult := model.BasicSceneResult{
		AcquiredDate: acquiredDate,
		CloudCover:   feature.PropertyFloat(cloudCoverProperty),
		FileFormat:   model.GeoTIFF, // NOTE: all Planetary Computer band assets are COGs, hence this hardcoding
		Geometry:     feature.Geometry,
		ID:           feature.IDStr(),
		Resolution:   feature.PropertyFloat("gsd"),
		SensorName:   feature.PropertyString("platform"),
	}

	return &model.SceneSearchResult{BasicSceneResult: basicSceneResult, SentinelBandAssets: bandAssets}, nil
}
