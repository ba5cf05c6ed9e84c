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

package util

import (
	"os"
)

// Environment variables
const (
	STAC_API_URL = "STAC_API_URL"
	SAS_API_URL  = "SAS_API_URL"
)

const defaultStacAPIURL = "https://planetarycomputer.microsoft.com/api/stac/v1"
const defaultSasAPIURL = "https://planetarycomputer.microsoft.com/api/sas/v1"

// GetStacAPIURL returns a string for the STAC_API_URL environment variable,
// falling back to the Planetary Computer catalog
func GetStacAPIURL() string {
	stacURL, ok := os.LookupEnv(STAC_API_URL)
	if !ok {
		LogInfo(&BasicLogContext{}, "Did not get STAC API URL from the environment. Using default catalog URL: "+defaultStacAPIURL)
		stacURL = defaultStacAPIURL
	}
	return stacURL
}

// GetSasAPIURL returns a string for the SAS_API_URL environment variable,
// falling back to the Planetary Computer token service
func GetSasAPIURL() string {
	sasURL, ok := os.LookupEnv(SAS_API_URL)
	if !ok {
		LogInfo(&BasicLogContext{}, "Did not get SAS token API URL from the environment. Using default token URL: "+defaultSasAPIURL)
		sasURL = defaultSasAPIURL
	}
	return sasURL
}
