package analysis

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/eugene-tulu/ndvi-explorer/aoi"
	"github.com/eugene-tulu/ndvi-explorer/geotiff"
	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/render"
	"github.com/eugene-tulu/ndvi-explorer/stac"
	"github.com/eugene-tulu/ndvi-explorer/util"
)

// AnalyzeHandler is a handler for /analyze
// @Title analyzeHandler
// @Description runs the NDVI pipeline over an area of interest
// @Accept  json
// @Param   body    body    analyzeRequest  true   "AOI GeoJSON, ISO dates, cloud cover percent"
// @Param   format  query   string  false  "Response format: json (default), png, or geotiff"
// @Success 200 {object}  analyzeResponse
// @Failure 400 {object}  string
// @Router /analyze [post]
type AnalyzeHandler struct{}

// NewAnalyzeHandler creates a new handler
func NewAnalyzeHandler() *AnalyzeHandler {
	return &AnalyzeHandler{}
}

type analyzeRequest struct {
	AOI        json.RawMessage `json:"aoi"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
	CloudCover float64         `json:"cloudCover"`
}

type statsResponse struct {
	Mean       float64 `json:"mean"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	ValidCount int     `json:"validCount"`
}

type analyzeResponse struct {
	Found          bool           `json:"found"`
	AreaKm2        float64        `json:"areaKm2"`
	ScenesFound    int            `json:"scenesFound"`
	ScenesSelected int            `json:"scenesSelected"`
	ScenesDropped  int            `json:"scenesDropped"`
	Width          int            `json:"width,omitempty"`
	Height         int            `json:"height,omitempty"`
	Statistics     *statsResponse `json:"statistics,omitempty"`
	Preview        string         `json:"preview,omitempty"` // base64 PNG of the coarsened heatmap
	Log            []string       `json:"log"`
}

// ServeHTTP implements the http.Handler interface for the AnalyzeHandler type
func (h AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	context := NewContext()

	var request analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		message := fmt.Sprintf("Could not parse request body: %v", err)
		util.LogSimpleErr(context, message, err)
		util.HTTPError(r, w, context, message, http.StatusBadRequest)
		return
	}

	startDate, err := model.ParseStacTime(request.StartDate)
	if err != nil {
		message := fmt.Sprintf("Start date value of %v is invalid.", request.StartDate)
		util.LogSimpleErr(context, message, err)
		util.HTTPError(r, w, context, message, http.StatusBadRequest)
		return
	}
	endDate, err := model.ParseStacTime(request.EndDate)
	if err != nil {
		message := fmt.Sprintf("End date value of %v is invalid.", request.EndDate)
		util.LogSimpleErr(context, message, err)
		util.HTTPError(r, w, context, message, http.StatusBadRequest)
		return
	}
	if request.CloudCover < 0 || request.CloudCover > 100 {
		message := fmt.Sprintf("Cloud Cover value of %v is invalid.", request.CloudCover)
		util.LogAlert(context, message)
		util.HTTPError(r, w, context, message, http.StatusBadRequest)
		return
	}

	result, err := Run(context, Input{
		AOIGeoJSON:    request.AOI,
		Dates:         model.DateRange{Start: startDate, End: endDate},
		MaxCloudCover: request.CloudCover,
	})
	if err != nil {
		handlePipelineError(w, r, context, err)
		return
	}

	switch r.FormValue("format") {
	case "", "json":
		writeJSONResult(w, r, context, result)
	case "png":
		if result.NoImagery {
			util.HTTPError(r, w, context, "No imagery found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		render.EncodePNG(w, render.Heatmap(result.Composite))
	case "geotiff":
		if result.NoImagery {
			util.HTTPError(r, w, context, "No imagery found", http.StatusNotFound)
			return
		}
		grid := result.Composite.Grid
		w.Header().Set("Content-Type", "image/tiff")
		w.Header().Set("Content-Disposition", `attachment; filename="ndvi-composite.tif"`)
		geotiff.EncodeFloat32(w, result.Composite.Data, grid.Width, grid.Height, geotiff.GeoReference{
			OriginX:    grid.OriginX,
			OriginY:    grid.OriginY,
			PixelSizeX: grid.Resolution,
			PixelSizeY: grid.Resolution,
			EPSG:       uint16(grid.EPSG),
		})
	default:
		util.HTTPError(r, w, context, fmt.Sprintf("Unknown format %q", r.FormValue("format")), http.StatusBadRequest)
	}
}

func writeJSONResult(w http.ResponseWriter, r *http.Request, context *Context, result *Result) {
	response := analyzeResponse{
		Found:          !result.NoImagery,
		ScenesFound:    result.ScenesFound,
		ScenesSelected: len(result.ScenesSelected),
		ScenesDropped:  len(result.Dropped),
		Log:            result.Log,
	}
	if result.AOI != nil {
		response.AreaKm2 = result.AOI.AreaKm2
	}
	if !result.NoImagery {
		grid := result.Composite.Grid
		response.Width = grid.Width
		response.Height = grid.Height
		response.Statistics = &statsResponse{
			Mean:       result.Stats.Mean,
			Min:        result.Stats.Min,
			Max:        result.Stats.Max,
			ValidCount: result.Stats.ValidCount,
		}

		var buffer bytes.Buffer
		if err := render.EncodePNG(&buffer, render.Heatmap(result.Preview)); err == nil {
			response.Preview = base64.StdEncoding.EncodeToString(buffer.Bytes())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		util.LogSimpleErr(context, "Failed to encode analyze response", err)
	}
}

func handlePipelineError(w http.ResponseWriter, r *http.Request, context *Context, err error) {
	var (
		invalidGeometry  aoi.InvalidGeometryError
		areaTooLarge     aoi.AreaTooLargeError
		invalidDateRange model.InvalidDateRangeError
		unavailable      stac.CatalogUnavailableError
		httpErr          util.HTTPErr
	)
	switch {
	case errors.As(err, &invalidGeometry), errors.As(err, &areaTooLarge), errors.As(err, &invalidDateRange):
		util.HTTPError(r, w, context, err.Error(), http.StatusBadRequest)
	case errors.As(err, &unavailable):
		util.HTTPError(r, w, context, err.Error(), http.StatusBadGateway)
	case errors.As(err, &httpErr):
		util.HTTPError(r, w, context, httpErr.Message, httpErr.Status)
	default:
		util.HTTPError(r, w, context, fmt.Sprintf("Analysis failed: %v", err), http.StatusInternalServerError)
	}
}
