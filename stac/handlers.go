package stac

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/util"
	"github.com/gorilla/mux"
	"github.com/venicegeo/geojson-go/geojson"
)

// DiscoverHandler is a handler for /discover
// @Title discoverHandler
// @Description discovers scenes from the STAC catalog
// @Accept  plain
// @Param   bbox            query   string  true         "The bounding box, as a GeoJSON Bounding box (x1,y1,x2,y2)"
// @Param   cloudCover      query   string  false        "The maximum cloud cover, as a percentage (0-100)"
// @Param   acquiredDate    query   string  false        "The minimum (earliest) acquired date, as RFC 3339"
// @Param   maxAcquiredDate query   string  false        "The maximum acquired date, as RFC 3339"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /discover [get]
type DiscoverHandler struct {
	Context Context
}

// NewDiscoverHandler creates a new handler using configuration
// from environment variables
func NewDiscoverHandler() *DiscoverHandler {
	return &DiscoverHandler{
		Context: Context{
			BaseStacURL: util.GetStacAPIURL(),
			BaseSasURL:  util.GetSasAPIURL(),
		},
	}
}

// ServeHTTP implements the http.Handler interface for the DiscoverHandler type
func (h DiscoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bbox, err := geojson.NewBoundingBox(r.FormValue("bbox"))
	if err != nil {
		message := fmt.Sprintf("The bbox value of %v is invalid", r.FormValue("bbox"))
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	maxCloudCover := float64(100)
	if r.FormValue("cloudCover") != "" {
		if maxCloudCover, err = strconv.ParseFloat(r.FormValue("cloudCover"), 64); err != nil {
			message := fmt.Sprintf("Cloud Cover value of %v is invalid.", r.FormValue("cloudCover"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
	}

	options := SearchOptions{
		Collection: model.Sentinel2Collection,
		Bbox:       bbox,
		CloudCover: maxCloudCover,
	}
	if r.FormValue("acquiredDate") != "" {
		minAcquiredDate, err := time.Parse(time.RFC3339, r.FormValue("acquiredDate"))
		if err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("acquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
		options.AcquiredDate = minAcquiredDate.UTC().Format(time.RFC3339)
	}
	if r.FormValue("maxAcquiredDate") != "" {
		maxAcquiredDate, err := time.Parse(time.RFC3339, r.FormValue("maxAcquiredDate"))
		if err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("maxAcquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
		options.MaxAcquiredDate = maxAcquiredDate.UTC().Format(time.RFC3339)
	}

	featureCollection, err := GetScenes(options, &h.Context)
	if err != nil {
		handleSearchError(w, r, &h.Context, err)
		return
	}
	w.Write([]byte(featureCollection.String()))
}

// SceneHandler is a handler for /scenes/{id}
// @Title sceneHandler
// @Description returns the metadata for a single scene
// @Accept  plain
// @Param   id  path  string  true  "The ID of the requested scene"
// @Success 200 {object}  geojson.Feature
// @Failure 404 {object}  string
// @Router /scenes/{id} [get]
type SceneHandler struct {
	Context Context
}

// NewSceneHandler creates a new handler using configuration
// from environment variables
func NewSceneHandler() *SceneHandler {
	return &SceneHandler{
		Context: Context{
			BaseStacURL: util.GetStacAPIURL(),
			BaseSasURL:  util.GetSasAPIURL(),
		},
	}
}

// ServeHTTP implements the http.Handler interface for the SceneHandler type
func (h SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sceneID, ok := mux.Vars(r)["id"]
	if !ok {
		message := "No scene ID found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	feature, err := GetSceneMetadata(MetadataOptions{ID: sceneID, Collection: model.Sentinel2Collection}, &h.Context)
	if err != nil {
		handleSearchError(w, r, &h.Context, err)
		return
	}
	w.Write([]byte(feature.String()))
}

func handleSearchError(w http.ResponseWriter, r *http.Request, context *Context, err error) {
	var httpErr util.HTTPErr
	if errors.As(err, &httpErr) {
		util.HTTPError(r, w, context, httpErr.Message, httpErr.Status)
		return
	}

	var unavailableErr CatalogUnavailableError
	if errors.As(err, &unavailableErr) {
		util.HTTPError(r, w, context, unavailableErr.Error(), http.StatusBadGateway)
		return
	}

	util.HTTPError(r, w, context, fmt.Sprintf("Error searching for scenes: %v", err), http.StatusInternalServerError)
}
