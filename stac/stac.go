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

package stac

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/util"
	"github.com/venicegeo/geojson-go/geojson"
)

// SearchScenes queries the catalog for scenes matching the search options
// and returns them ordered by acquisition date
func SearchScenes(options SearchOptions, context *Context) ([]model.SceneSearchResult, error) {
	var (
		err          error
		response     *http.Response
		requestBody  []byte
		responseBody []byte
		req          searchRequest
	)

	req.Collections = append(req.Collections, options.Collection)
	if options.Bbox != nil {
		req.Bbox = []float64(options.Bbox)
	}
	if options.AcquiredDate != "" || options.MaxAcquiredDate != "" {
		req.Datetime = options.AcquiredDate + "/" + options.MaxAcquiredDate
	}
	if options.CloudCover > 0 {
		req.Query = map[string]rangeConfig{cloudCoverProperty: {LT: options.CloudCover}}
	}
	if options.Limit > 0 {
		req.Limit = options.Limit
	}
	if requestBody, err = json.Marshal(req); err != nil {
		err = util.LogSimpleErr(context, fmt.Sprintf("Failed to marshal request object %#v.", req), err)
		return nil, err
	}
	if response, err = stacRequest(stacRequestInput{method: "POST", inputURL: "search", body: requestBody, contentType: "application/json"}, context); err != nil {
		util.LogSimpleErr(context, fmt.Sprintf("Failed to complete STAC search request %#v.", string(requestBody)), err)
		return nil, CatalogUnavailableError{URL: context.BaseStacURL, Err: err}
	}
	switch {
	case (response.StatusCode >= 400) && (response.StatusCode < 500):
		message := fmt.Sprintf("Failed to discover scenes from the STAC catalog: %v. ", response.Status)
		err := util.HTTPErr{Status: response.StatusCode, Message: message}
		util.LogAlert(context, message)
		return nil, err
	case response.StatusCode >= 500:
		util.LogSimpleErr(context, "Failed to discover scenes from the STAC catalog.", errors.New(response.Status))
		return nil, CatalogUnavailableError{URL: context.BaseStacURL, Err: errors.New(response.Status)}
	default:
		//no op
	}

	defer response.Body.Close()
	responseBody, _ = io.ReadAll(response.Body)

	return parseSearchResults(context, responseBody)
}

// GetScenes returns a FeatureCollection containing the scenes requested
func GetScenes(options SearchOptions, context *Context) (*geojson.FeatureCollection, error) {
	results, err := SearchScenes(options, context)
	if err != nil {
		return nil, err
	}

	featureCreators := make([]model.GeoJSONFeatureCreator, len(results))
	for i, result := range results {
		featureCreators[i] = result
	}

	return model.MultiSceneResult{FeatureCreators: featureCreators}.GeoJSONFeatureCollection()
}

// GetSceneMetadata returns the metadata for a single scene
func GetSceneMetadata(options MetadataOptions, context *Context) (*geojson.Feature, error) {
	var (
		response *http.Response
		err      error
		body     []byte
	)
	inputURL := "collections/" + options.Collection + "/items/" + options.ID
	if response, err = stacRequest(stacRequestInput{method: "GET", inputURL: inputURL}, context); err != nil {
		util.LogSimpleErr(context, fmt.Sprintf("Failed to retrieve metadata for scene %v. ", options.ID), err)
		return nil, CatalogUnavailableError{URL: context.BaseStacURL, Err: err}
	}
	defer response.Body.Close()
	body, _ = io.ReadAll(response.Body)
	switch {
	case (response.StatusCode >= 400) && (response.StatusCode < 500):
		message := fmt.Sprintf("Failed to find metadata for scene %v: %v. ", options.ID, response.Status)
		err := util.HTTPErr{Status: response.StatusCode, Message: message}
		util.LogAlert(context, message)
		return nil, err
	case response.StatusCode >= 500:
		util.LogSimpleErr(context, fmt.Sprintf("Failed to retrieve metadata for scene %v. ", options.ID), errors.New(response.Status))
		return nil, CatalogUnavailableError{URL: context.BaseStacURL, Err: errors.New(response.Status)}
	default:
		//no op
	}

	result, err := parseItemResult(context, body)
	if err != nil {
		return nil, err
	}

	return result.GeoJSONFeature()
}

// stacRequest performs the request
func stacRequest(input stacRequestInput, context *Context) (*http.Response, error) {
	var (
		request   *http.Request
		parsedURL *url.URL
		inputURL  string
		err       error
	)
	inputURL = input.inputURL
	if !strings.Contains(inputURL, context.BaseStacURL) {
		baseURL, _ := url.Parse(strings.TrimSuffix(context.BaseStacURL, "/") + "/")
		parsedRelativeURL, _ := url.Parse(input.inputURL)
		resolvedURL := baseURL.ResolveReference(parsedRelativeURL)

		if parsedURL, err = url.Parse(resolvedURL.String()); err != nil {
			err = util.LogSimpleErr(context, fmt.Sprintf("Failed to parse %v into a URL.", resolvedURL.String()), err)
			return nil, err
		}
		inputURL = parsedURL.String()
	}
	message := "Requesting data from the STAC catalog"
	bodyStr := string(input.body)
	if bodyStr != "" {
		message += ": " + bodyStr
	}
	if request, err = http.NewRequest(input.method, inputURL, bytes.NewBuffer(input.body)); err != nil {
		err = util.LogSimpleErr(context, fmt.Sprintf("Failed to make a new HTTP request for %v.", inputURL), err)
		return nil, err
	}
	if input.contentType != "" {
		request.Header.Set("Content-Type", input.contentType)
	}

	util.LogAudit(context, util.LogAuditInput{Actor: "stac/doRequest", Action: input.method, Actee: inputURL, Message: message, Severity: util.INFO})
	util.LogAudit(context, util.LogAuditInput{Actor: inputURL, Action: input.method + " response", Actee: "stac/doRequest", Message: "Receiving data from the STAC catalog", Severity: util.INFO})
	return util.HTTPClient().Do(request)
}
