package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

var httpClient = &http.Client{}

// HTTPClient returns the shared HTTP client for outbound requests
func HTTPClient() *http.Client {
	return httpClient
}

// ReqByObjJSON performs a JSON request with the input object as the body,
// unmarshaling the response into the output object. The response is returned
// so callers can inspect status and headers.
func ReqByObjJSON(method, url, auth string, input, output interface{}) (*http.Response, error) {
	var requestBody []byte
	var err error

	if input != nil {
		if requestBody, err = json.Marshal(input); err != nil {
			return nil, err
		}
	}

	request, err := http.NewRequest(method, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, err
	}
	if input != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		request.Header.Set("Authorization", auth)
	}

	response, err := HTTPClient().Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBody, _ := io.ReadAll(response.Body)
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return response, HTTPErr{Status: response.StatusCode, Message: fmt.Sprintf("Request to %v failed: %v", url, response.Status)}
	}

	if output != nil {
		if err = json.Unmarshal(responseBody, output); err != nil {
			return response, Error{
				LogMsg:     "Failed to unmarshal JSON response: " + err.Error(),
				SimpleMsg:  "The remote service returned an unexpected response.",
				Response:   string(responseBody),
				URL:        url,
				HTTPStatus: response.StatusCode,
			}
		}
	}

	return response, nil
}
