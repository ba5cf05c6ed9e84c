// Copyright 2025, the NDVI Explorer authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analysis

import (
	"bytes"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eugene-tulu/ndvi-explorer/aoi"
	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/stac"
	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"
	"golang.org/x/image/tiff"
)

const smallAOIJSON = `{"type":"Polygon","coordinates":[[[0,0],[0.002,0],[0.002,0.002],[0,0.002],[0,0]]]}`
const largeAOIJSON = `{"type":"Polygon","coordinates":[[[0,0],[0.25,0],[0.25,0.25],[0,0.25],[0,0]]]}`

func validDates() model.DateRange {
	return model.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func identitySigner(context *stac.Context, collection string, scenes []model.SceneSearchResult) ([]model.SceneSearchResult, error) {
	return scenes, nil
}

func encodeBandFixture(t *testing.T, value uint16) []byte {
	img := image.NewGray16(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	var buffer bytes.Buffer
	if err := tiff.Encode(&buffer, img, nil); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buffer.Bytes()
}

func newBandServer(t *testing.T, bands map[string]uint16) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, ok := bands[r.URL.Path]
		if !ok {
			http.Error(w, "no such asset", http.StatusNotFound)
			return
		}
		w.Write(encodeBandFixture(t, value))
	}))
}

func pipelineTestScene(t *testing.T, id string, baseURL string, cloudCover float64, day int) model.SceneSearchResult {
	assets, err := model.NewSentinelBandAssets(baseURL+"/"+id+"/B04.tif", baseURL+"/"+id+"/B08.tif")
	assert.Nil(t, err)
	// Footprints must differ per scene so selection keeps them all; every
	// footprint still covers the whole test AOI
	extent := 0.002 + float64(day)*0.0001
	return model.SceneSearchResult{
		BasicSceneResult: model.BasicSceneResult{
			ID:           id,
			Geometry:     geojson.NewPolygon([][][]float64{{{0, 0}, {extent, 0}, {extent, extent}, {0, extent}, {0, 0}}}),
			CloudCover:   cloudCover,
			AcquiredDate: time.Date(2024, 3, day, 8, 30, 0, 0, time.UTC),
		},
		SentinelBandAssets: assets,
	}
}

func TestRun_AreaTooLargeRejectedBeforeSearch(t *testing.T) {
	// Mock
	searchCalled := false
	oldSearch := searchScenesFunc
	searchScenesFunc = func(options stac.SearchOptions, context *stac.Context) ([]model.SceneSearchResult, error) {
		searchCalled = true
		return nil, nil
	}
	defer func() { searchScenesFunc = oldSearch }()

	// Tested code
	_, err := Run(NewContext(), Input{AOIGeoJSON: []byte(largeAOIJSON), Dates: validDates(), MaxCloudCover: 10})

	// Asserts
	assert.IsType(t, aoi.AreaTooLargeError{}, err)
	assert.False(t, searchCalled, "validation failures should never reach the catalog")
}

func TestRun_InvalidDateRangeRejectedBeforeSearch(t *testing.T) {
	// Mock
	searchCalled := false
	oldSearch := searchScenesFunc
	searchScenesFunc = func(options stac.SearchOptions, context *stac.Context) ([]model.SceneSearchResult, error) {
		searchCalled = true
		return nil, nil
	}
	defer func() { searchScenesFunc = oldSearch }()

	inverted := model.DateRange{Start: validDates().End, End: validDates().Start}

	// Tested code
	_, err := Run(NewContext(), Input{AOIGeoJSON: []byte(smallAOIJSON), Dates: inverted, MaxCloudCover: 10})

	// Asserts
	assert.IsType(t, model.InvalidDateRangeError{}, err)
	assert.False(t, searchCalled)
}

func TestRun_InvalidGeometry(t *testing.T) {
	// Tested code
	_, err := Run(NewContext(), Input{AOIGeoJSON: []byte(`{"type":"Point","coordinates":[0,0]}`), Dates: validDates()})

	// Asserts
	assert.IsType(t, aoi.InvalidGeometryError{}, err)
}

func TestRun_NoScenesFound(t *testing.T) {
	// Mock
	oldSearch := searchScenesFunc
	searchScenesFunc = func(options stac.SearchOptions, context *stac.Context) ([]model.SceneSearchResult, error) {
		return nil, nil
	}
	defer func() { searchScenesFunc = oldSearch }()

	// Tested code
	result, err := Run(NewContext(), Input{AOIGeoJSON: []byte(smallAOIJSON), Dates: validDates(), MaxCloudCover: 10})

	// Asserts
	assert.Nil(t, err, "an empty catalog result is not an error")
	assert.True(t, result.NoImagery)
	assert.Nil(t, result.Composite)
	assert.Nil(t, result.Stats)
	assert.Contains(t, result.Log, "No imagery found")
}

func TestRun_SelectionCanEmptyOut(t *testing.T) {
	// Mock: the catalog returns a scene, but it exceeds the strict threshold
	mockAssets := newBandServer(t, map[string]uint16{})
	defer mockAssets.Close()

	oldSearch := searchScenesFunc
	searchScenesFunc = func(options stac.SearchOptions, context *stac.Context) ([]model.SceneSearchResult, error) {
		return []model.SceneSearchResult{pipelineTestScene(t, "cloudy", mockAssets.URL, 0.5, 1)}, nil
	}
	defer func() { searchScenesFunc = oldSearch }()

	// Tested code
	result, err := Run(NewContext(), Input{AOIGeoJSON: []byte(smallAOIJSON), Dates: validDates(), MaxCloudCover: 0})

	// Asserts
	assert.Nil(t, err)
	assert.True(t, result.NoImagery)
	assert.Equal(t, 1, result.ScenesFound)
	assert.Empty(t, result.ScenesSelected)
}

func TestRun_HappyPath(t *testing.T) {
	// Mock: two scenes with per-pixel NDVI of 0.2 and 0.5
	mockAssets := newBandServer(t, map[string]uint16{
		"/low/B04.tif":  2000,
		"/low/B08.tif":  3000,
		"/high/B04.tif": 1000,
		"/high/B08.tif": 3000,
	})
	defer mockAssets.Close()

	oldSearch := searchScenesFunc
	oldSign := signSceneAssetsFunc
	searchScenesFunc = func(options stac.SearchOptions, context *stac.Context) ([]model.SceneSearchResult, error) {
		return []model.SceneSearchResult{
			pipelineTestScene(t, "low", mockAssets.URL, 5, 1),
			pipelineTestScene(t, "high", mockAssets.URL, 8, 6),
		}, nil
	}
	signSceneAssetsFunc = identitySigner
	defer func() {
		searchScenesFunc = oldSearch
		signSceneAssetsFunc = oldSign
	}()

	// Tested code
	result, err := Run(NewContext(), Input{AOIGeoJSON: []byte(smallAOIJSON), Dates: validDates(), MaxCloudCover: 10})

	// Asserts
	assert.Nil(t, err)
	assert.False(t, result.NoImagery)
	assert.Equal(t, 2, result.ScenesFound)
	assert.Len(t, result.ScenesSelected, 2)
	assert.Empty(t, result.Dropped)
	assert.NotNil(t, result.Composite)
	assert.NotNil(t, result.Preview)
	assert.NotNil(t, result.Stats)
	assert.InDelta(t, 0.5, result.Stats.Max, 1e-9, "the composite should keep the maximum NDVI across time")
	assert.True(t, result.Preview.Grid.Width < result.Composite.Grid.Width)
}

func TestRun_FailingSceneIsDroppedNotFatal(t *testing.T) {
	// Mock: the "broken" scene's assets 404
	mockAssets := newBandServer(t, map[string]uint16{
		"/good/B04.tif": 2000,
		"/good/B08.tif": 3000,
	})
	defer mockAssets.Close()

	oldSearch := searchScenesFunc
	oldSign := signSceneAssetsFunc
	searchScenesFunc = func(options stac.SearchOptions, context *stac.Context) ([]model.SceneSearchResult, error) {
		return []model.SceneSearchResult{
			pipelineTestScene(t, "good", mockAssets.URL, 5, 1),
			pipelineTestScene(t, "broken", mockAssets.URL, 8, 6),
		}, nil
	}
	signSceneAssetsFunc = identitySigner
	defer func() {
		searchScenesFunc = oldSearch
		signSceneAssetsFunc = oldSign
	}()

	// Tested code
	result, err := Run(NewContext(), Input{AOIGeoJSON: []byte(smallAOIJSON), Dates: validDates(), MaxCloudCover: 10})

	// Asserts
	assert.Nil(t, err)
	assert.False(t, result.NoImagery)
	assert.Len(t, result.Dropped, 1)
	assert.Equal(t, "broken", result.Dropped[0].SceneID)
	assert.NotNil(t, result.Stats)
	assert.InDelta(t, 0.2, result.Stats.Max, 1e-9)
}

func TestRun_SearchFailurePropagates(t *testing.T) {
	// Mock
	oldSearch := searchScenesFunc
	searchScenesFunc = func(options stac.SearchOptions, context *stac.Context) ([]model.SceneSearchResult, error) {
		return nil, stac.CatalogUnavailableError{URL: "http://localhost:0"}
	}
	defer func() { searchScenesFunc = oldSearch }()

	// Tested code
	_, err := Run(NewContext(), Input{AOIGeoJSON: []byte(smallAOIJSON), Dates: validDates(), MaxCloudCover: 10})

	// Asserts
	assert.IsType(t, stac.CatalogUnavailableError{}, err)
}
