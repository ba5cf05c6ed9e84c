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

package raster

import (
	"bytes"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/util"
	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"
	"golang.org/x/image/tiff"
)

const testFootprintBbox = "0,0,0.01,0.01"

func encodeBandFixture(t *testing.T, value uint16, width, height int) []byte {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	var buffer bytes.Buffer
	if err := tiff.Encode(&buffer, img, nil); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buffer.Bytes()
}

// newAssetServer serves TIFF fixtures keyed by URL path, counting requests
func newAssetServer(t *testing.T, bands map[string]uint16, requestCounts map[string]int) *httptest.Server {
	var mutex sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mutex.Lock()
		requestCounts[r.URL.Path]++
		mutex.Unlock()
		value, ok := bands[r.URL.Path]
		if !ok {
			http.Error(w, "no such asset", http.StatusNotFound)
			return
		}
		w.Write(encodeBandFixture(t, value, 4, 4))
	}))
}

func testScene(t *testing.T, id string, baseURL string, day int) model.SceneSearchResult {
	assets, err := model.NewSentinelBandAssets(baseURL+"/"+id+"/B04.tif", baseURL+"/"+id+"/B08.tif")
	assert.Nil(t, err)
	return model.SceneSearchResult{
		BasicSceneResult: model.BasicSceneResult{
			ID:           id,
			Geometry:     geojson.NewPolygon([][][]float64{{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}}),
			AcquiredDate: time.Date(2024, 3, day, 8, 30, 0, 0, time.UTC),
		},
		SentinelBandAssets: assets,
	}
}

func TestNewStack_RejectsScenesWithoutAssets(t *testing.T) {
	bbox, _ := geojson.NewBoundingBox(testFootprintBbox)
	scenes := []model.SceneSearchResult{{BasicSceneResult: model.BasicSceneResult{ID: "bare"}}}

	// Tested code
	_, err := NewStack(NewGrid(bbox, DefaultResolution), scenes)

	// Asserts
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "bare")
}

func TestStack_LayersNilBeforeMaterialize(t *testing.T) {
	bbox, _ := geojson.NewBoundingBox(testFootprintBbox)

	// Tested code
	stack, err := NewStack(NewGrid(bbox, DefaultResolution), nil)

	// Asserts
	assert.Nil(t, err)
	assert.Nil(t, stack.Layers())
}

func TestStack_Materialize(t *testing.T) {
	// Mock
	requestCounts := map[string]int{}
	mockAssets := newAssetServer(t, map[string]uint16{
		"/scene-1/B04.tif": 2000,
		"/scene-1/B08.tif": 3000,
		"/scene-2/B04.tif": 1000,
		"/scene-2/B08.tif": 3000,
	}, requestCounts)
	defer mockAssets.Close()

	bbox, _ := geojson.NewBoundingBox(testFootprintBbox)
	stack, err := NewStack(NewGrid(bbox, DefaultResolution), []model.SceneSearchResult{
		testScene(t, "scene-1", mockAssets.URL, 1),
		testScene(t, "scene-2", mockAssets.URL, 6),
	})
	assert.Nil(t, err)

	// Tested code
	dropped := stack.Materialize(&util.BasicLogContext{})

	// Asserts
	assert.Empty(t, dropped)
	layers := stack.Layers()
	assert.Len(t, layers, 2)
	assert.Equal(t, "scene-1", layers[0].ID, "time order should be preserved")
	assert.Equal(t, "scene-2", layers[1].ID)

	red, redOK := layers[0].Sample(Red, 0.005, 0.005)
	nir, nirOK := layers[0].Sample(NIR, 0.005, 0.005)
	assert.True(t, redOK)
	assert.True(t, nirOK)
	assert.Equal(t, 2000.0, red)
	assert.Equal(t, 3000.0, nir)
}

func TestStack_Materialize_DropsFailingScene(t *testing.T) {
	// Mock: scene-2's near-infrared asset is missing
	requestCounts := map[string]int{}
	mockAssets := newAssetServer(t, map[string]uint16{
		"/scene-1/B04.tif": 2000,
		"/scene-1/B08.tif": 3000,
		"/scene-2/B04.tif": 1000,
	}, requestCounts)
	defer mockAssets.Close()

	bbox, _ := geojson.NewBoundingBox(testFootprintBbox)
	stack, _ := NewStack(NewGrid(bbox, DefaultResolution), []model.SceneSearchResult{
		testScene(t, "scene-1", mockAssets.URL, 1),
		testScene(t, "scene-2", mockAssets.URL, 6),
	})

	// Tested code
	dropped := stack.Materialize(&util.BasicLogContext{})

	// Asserts
	assert.Len(t, dropped, 1)
	assert.Equal(t, "scene-2", dropped[0].SceneID)
	assert.Contains(t, dropped[0].Reason, "nir")
	assert.Len(t, stack.Layers(), 1)
	assert.Equal(t, "scene-1", stack.Layers()[0].ID)
}

func TestAssetFetcher_CachesDecodedBands(t *testing.T) {
	// Mock
	requestCounts := map[string]int{}
	mockAssets := newAssetServer(t, map[string]uint16{"/scene-1/B04.tif": 2000}, requestCounts)
	defer mockAssets.Close()

	fetcher := newAssetFetcher()
	href := mockAssets.URL + "/scene-1/B04.tif"

	// Tested code
	first, firstErr := fetcher.fetchBand(&util.BasicLogContext{}, href, 0, 0, 0.01, 0.01)
	second, secondErr := fetcher.fetchBand(&util.BasicLogContext{}, href, 0, 0, 0.01, 0.01)

	// Asserts
	assert.Nil(t, firstErr)
	assert.Nil(t, secondErr)
	assert.Same(t, first, second)
	assert.Equal(t, 1, requestCounts["/scene-1/B04.tif"], "the decoded asset should be served from cache")
}

func TestSceneLayer_Sample_NodataAndOutOfBounds(t *testing.T) {
	// Mock: DN 0 is the L2A nodata value
	requestCounts := map[string]int{}
	mockAssets := newAssetServer(t, map[string]uint16{
		"/scene-1/B04.tif": 0,
		"/scene-1/B08.tif": 3000,
	}, requestCounts)
	defer mockAssets.Close()

	bbox, _ := geojson.NewBoundingBox(testFootprintBbox)
	stack, _ := NewStack(NewGrid(bbox, DefaultResolution), []model.SceneSearchResult{
		testScene(t, "scene-1", mockAssets.URL, 1),
	})
	stack.Materialize(&util.BasicLogContext{})
	layer := stack.Layers()[0]

	// Tested code
	_, nodataOK := layer.Sample(Red, 0.005, 0.005)
	_, outsideOK := layer.Sample(NIR, 0.5, 0.5)

	// Asserts
	assert.False(t, nodataOK, "nodata should be reported invalid")
	assert.False(t, outsideOK, "points outside the footprint should be invalid")
}
