package raster

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/util"
	"github.com/venicegeo/geojson-go/geojson"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds the band asset downloads running at once
const maxConcurrentFetches = 4

// Band identifies a spectral band within the stack
type Band int

// The spectral bands carried by the stack
const (
	Red Band = iota
	NIR
)

// AssetFetchError indicates a required band asset could not be fetched or
// decoded. The affected scene is dropped from the stack; the run continues.
type AssetFetchError struct {
	SceneID string
	Band    string
	Err     error
}

// Error implements the error interface
func (err AssetFetchError) Error() string {
	return fmt.Sprintf("Could not fetch %s band asset for scene %s: %v", err.Band, err.SceneID, err.Err)
}

// Unwrap exposes the underlying failure
func (err AssetFetchError) Unwrap() error {
	return err.Err
}

// DroppedScene records a scene removed from the stack during materialization
type DroppedScene struct {
	SceneID string
	Reason  string
}

// SceneLayer is one time step of the stack
type SceneLayer struct {
	ID           string
	AcquiredDate time.Time

	redHref, nirHref               string
	minLon, minLat, maxLon, maxLat float64
	red, nir                       *bandRaster
}

// Sample returns the band value of the layer at a WGS84 point. The layer
// must be materialized first.
func (l *SceneLayer) Sample(band Band, lon, lat float64) (float64, bool) {
	switch band {
	case Red:
		return l.red.Sample(lon, lat)
	case NIR:
		return l.nir.Sample(lon, lat)
	}
	return 0, false
}

// Stack is a lazy raster stack over time × band × the target grid.
// No pixel data is held until Materialize is called.
type Stack struct {
	Grid   Grid
	scenes []*SceneLayer

	fetcher      *assetFetcher
	materialized bool
}

// NewStack builds a lazy stack from selected scene records. Scene records
// must carry band assets; records without them are rejected here because
// nothing downstream could compute with them.
func NewStack(grid Grid, scenes []model.SceneSearchResult) (*Stack, error) {
	layers := make([]*SceneLayer, 0, len(scenes))
	for _, scene := range scenes {
		if scene.SentinelBandAssets == nil {
			return nil, errors.New("scene " + scene.ID + " carries no band assets")
		}

		footprint := geojson.NewFeature(scene.Geometry, scene.ID, nil).ForceBbox()
		minLon, minLat, maxLon, maxLat := bboxEdges(footprint)
		layers = append(layers, &SceneLayer{
			ID:           scene.ID,
			AcquiredDate: scene.AcquiredDate,
			redHref:      scene.SentinelBandAssets.Red.String(),
			nirHref:      scene.SentinelBandAssets.NIR.String(),
			minLon:       minLon,
			minLat:       minLat,
			maxLon:       maxLon,
			maxLat:       maxLat,
		})
	}

	return &Stack{Grid: grid, scenes: layers, fetcher: newAssetFetcher()}, nil
}

// Materialize fetches and decodes the band assets of every layer, a bounded
// number at a time. A scene whose red or near-infrared asset fails is
// dropped and reported; the remaining layers stay usable.
func (s *Stack) Materialize(context util.LogContext) []DroppedScene {
	var (
		mutex   sync.Mutex
		dropped []DroppedScene
		kept    []*SceneLayer
	)

	group := errgroup.Group{}
	group.SetLimit(maxConcurrentFetches)

	for _, layer := range s.scenes {
		layer := layer
		group.Go(func() error {
			red, err := s.fetcher.fetchBand(context, layer.redHref, layer.minLon, layer.minLat, layer.maxLon, layer.maxLat)
			if err != nil {
				fetchErr := AssetFetchError{SceneID: layer.ID, Band: "red", Err: err}
				util.LogAlert(context, fetchErr.Error())
				mutex.Lock()
				dropped = append(dropped, DroppedScene{SceneID: layer.ID, Reason: fetchErr.Error()})
				mutex.Unlock()
				return nil
			}
			nir, err := s.fetcher.fetchBand(context, layer.nirHref, layer.minLon, layer.minLat, layer.maxLon, layer.maxLat)
			if err != nil {
				fetchErr := AssetFetchError{SceneID: layer.ID, Band: "nir", Err: err}
				util.LogAlert(context, fetchErr.Error())
				mutex.Lock()
				dropped = append(dropped, DroppedScene{SceneID: layer.ID, Reason: fetchErr.Error()})
				mutex.Unlock()
				return nil
			}

			mutex.Lock()
			layer.red, layer.nir = red, nir
			kept = append(kept, layer)
			mutex.Unlock()
			return nil
		})
	}
	group.Wait()

	// Keep the original time order
	ordered := make([]*SceneLayer, 0, len(kept))
	for _, layer := range s.scenes {
		if layer.red != nil && layer.nir != nil {
			ordered = append(ordered, layer)
		}
	}
	s.scenes = ordered
	s.materialized = true

	return dropped
}

// Layers returns the materialized scene layers in acquisition order
func (s *Stack) Layers() []*SceneLayer {
	if !s.materialized {
		return nil
	}
	return s.scenes
}
