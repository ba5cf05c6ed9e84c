// Package analysis runs the NDVI pipeline: validate the area of interest,
// search the catalog, select scenes, build the lazy band stack, compute the
// maximum-NDVI composite, and summarize it. One linear pass per invocation,
// no retries, nothing shared between runs.
package analysis

import (
	"fmt"
	"time"

	"github.com/eugene-tulu/ndvi-explorer/aoi"
	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/ndvi"
	"github.com/eugene-tulu/ndvi-explorer/raster"
	"github.com/eugene-tulu/ndvi-explorer/render"
	"github.com/eugene-tulu/ndvi-explorer/stac"
	"github.com/eugene-tulu/ndvi-explorer/util"
)

// searchLimit caps how many catalog records one run requests
const searchLimit = 500

// previewFactor is the coarsening factor of the low-resolution preview
const previewFactor = 4

// Test seams
var searchScenesFunc = stac.SearchScenes
var signSceneAssetsFunc = func(context *stac.Context, collection string, scenes []model.SceneSearchResult) ([]model.SceneSearchResult, error) {
	return stac.NewSigner(context).SignSceneAssets(collection, scenes)
}

// Context is the context for one analysis run
type Context struct {
	Stac      stac.Context
	sessionID string
}

// NewContext creates a run context from environment configuration
func NewContext() *Context {
	return &Context{
		Stac: stac.Context{
			BaseStacURL: util.GetStacAPIURL(),
			BaseSasURL:  util.GetSasAPIURL(),
		},
	}
}

// AppName returns the name of the application
func (c *Context) AppName() string {
	return "ndvi-explorer"
}

// SessionID returns a Session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = util.PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}

// Input is what a caller supplies for one analysis run
type Input struct {
	AOIGeoJSON    []byte
	Dates         model.DateRange
	MaxCloudCover float64 // percent, 0-100
}

// Result is the outcome of a completed run. When NoImagery is true the
// composite, preview, and statistics are absent and the log explains why.
type Result struct {
	AOI            *aoi.AreaOfInterest
	ScenesFound    int
	ScenesSelected []model.SceneSearchResult
	Dropped        []raster.DroppedScene
	NoImagery      bool
	Composite      *ndvi.Composite
	Preview        *ndvi.Composite
	Stats          *ndvi.Stats
	Log            []string
}

func (r *Result) logf(context util.LogContext, format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	r.Log = append(r.Log, line)
	util.LogInfo(context, line)
}

// Run executes the pipeline once. Validation failures and catalog/service
// failures are returned as errors; an empty catalog result is not an error
// but a Result with NoImagery set.
func Run(context *Context, input Input) (*Result, error) {
	result := &Result{}

	area, err := aoi.Parse(input.AOIGeoJSON)
	if err != nil {
		return nil, err
	}
	if err = area.Validate(); err != nil {
		return nil, err
	}
	result.AOI = area
	result.logf(context, "AOI loaded: %.2f km²", area.AreaKm2)

	if err = input.Dates.Validate(); err != nil {
		return nil, err
	}

	options := stac.SearchOptions{
		Collection:      model.Sentinel2Collection,
		Bbox:            area.Bbox,
		AcquiredDate:    input.Dates.Start.UTC().Format(time.RFC3339),
		MaxAcquiredDate: input.Dates.End.UTC().Format(time.RFC3339),
		CloudCover:      input.MaxCloudCover,
		Limit:           searchLimit,
	}
	found, err := searchScenesFunc(options, &context.Stac)
	if err != nil {
		return nil, err
	}
	result.ScenesFound = len(found)
	result.logf(context, "%d available scene(s) found", len(found))
	if len(found) == 0 {
		result.NoImagery = true
		result.logf(context, "No imagery found")
		return result, nil
	}

	selected := stac.SelectScenes(found, input.MaxCloudCover)
	result.ScenesSelected = selected
	result.logf(context, "%d best scene(s) selected", len(selected))
	if len(selected) == 0 {
		result.NoImagery = true
		result.logf(context, "No imagery found")
		return result, nil
	}

	signed, err := signSceneAssetsFunc(&context.Stac, options.Collection, selected)
	if err != nil {
		return nil, err
	}

	grid := raster.NewGrid(area.Bbox, raster.DefaultResolution)
	result.logf(context, "Working grid: %dx%d pixels at %.0f m (EPSG:%d)", grid.Width, grid.Height, grid.Resolution, grid.EPSG)

	stack, err := raster.NewStack(grid, signed)
	if err != nil {
		return nil, err
	}

	composite, dropped, err := ndvi.MaxComposite(context, stack, area.Contains)
	if err != nil {
		return nil, err
	}
	result.Dropped = dropped
	for _, drop := range dropped {
		result.logf(context, "Dropped scene %s: %s", drop.SceneID, drop.Reason)
	}
	if composite == nil {
		result.NoImagery = true
		result.logf(context, "No imagery found")
		return result, nil
	}

	stats, ok := ndvi.ComputeStats(composite)
	if !ok {
		result.NoImagery = true
		result.logf(context, "No valid NDVI data found")
		return result, nil
	}

	result.Composite = composite
	result.Preview = render.CoarsenMean(composite, previewFactor)
	result.Stats = &stats
	result.logf(context, "NDVI statistics: mean=%.4f min=%.4f max=%.4f over %d valid pixel(s)",
		stats.Mean, stats.Min, stats.Max, stats.ValidCount)

	return result, nil
}
