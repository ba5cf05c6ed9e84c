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

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var commands = cli.Commands{
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the ndvi-explorer webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Run one NDVI analysis from an AOI GeoJSON file",
		Flags:   analyzeFlags,
		Action:  analyzeAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the NDVI Explorer CLI",
		Action:  versionAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "ndvi-explorer"
	app.Usage = "Launch an ndvi-explorer process"
	app.Commands = commands
	return
}
