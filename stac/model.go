package stac

import (
	"github.com/eugene-tulu/ndvi-explorer/util"
	"github.com/venicegeo/geojson-go/geojson"
)

// Context is the context for a STAC catalog operation
type Context struct {
	BaseStacURL string
	BaseSasURL  string
	sessionID   string
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

// CatalogUnavailableError indicates the remote catalog could not be reached
// or failed while servicing the search
type CatalogUnavailableError struct {
	URL string
	Err error
}

// Error implements the error interface
func (err CatalogUnavailableError) Error() string {
	message := "The imagery catalog is unavailable"
	if err.Err != nil {
		message += ": " + err.Err.Error()
	}
	return message
}

// Unwrap exposes the underlying failure
func (err CatalogUnavailableError) Unwrap() error {
	return err.Err
}

// SearchOptions are the search options for a catalog search request
type SearchOptions struct {
	Collection      string
	Bbox            geojson.BoundingBox
	AcquiredDate    string
	MaxAcquiredDate string
	CloudCover      float64
	Limit           int
}

// MetadataOptions are the options for a single-scene metadata request
type MetadataOptions struct {
	ID         string
	Collection string
}

type searchRequest struct {
	Collections []string               `json:"collections"`
	Bbox        []float64              `json:"bbox,omitempty"`
	Datetime    string                 `json:"datetime,omitempty"`
	Query       map[string]rangeConfig `json:"query,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
}

type rangeConfig struct {
	GTE float64 `json:"gte,omitempty"`
	LTE float64 `json:"lte,omitempty"`
	GT  float64 `json:"gt,omitempty"`
	LT  float64 `json:"lt,omitempty"`
}

// cloudCoverProperty is the STAC extension attribute used for filtering
const cloudCoverProperty = "eo:cloud_cover"

type stacAsset struct {
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

type stacItem struct {
	ID     string               `json:"id"`
	Assets map[string]stacAsset `json:"assets"`
}

type itemsEnvelope struct {
	Features []stacItem `json:"features"`
}

type stacRequestInput struct {
	method      string
	inputURL    string // URL may be relative or absolute based on BaseStacURL
	body        []byte
	contentType string
}
