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
	"fmt"
	"os"

	"github.com/eugene-tulu/ndvi-explorer/analysis"
	"github.com/eugene-tulu/ndvi-explorer/geotiff"
	"github.com/eugene-tulu/ndvi-explorer/model"
	"github.com/eugene-tulu/ndvi-explorer/render"
	cli "gopkg.in/urfave/cli.v1"
)

var analyzeFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "file, f",
		Usage: "AOI GeoJSON file",
	},
	cli.StringFlag{
		Name:  "start",
		Usage: "Start date (ISO, e.g. 2024-01-01)",
	},
	cli.StringFlag{
		Name:  "end",
		Usage: "End date (ISO, e.g. 2024-12-31)",
	},
	cli.Float64Flag{
		Name:  "cloud",
		Usage: "Maximum cloud cover percentage (0-100)",
		Value: 10,
	},
	cli.StringFlag{
		Name:  "output, o",
		Usage: "Heatmap PNG output path",
		Value: "ndvi.png",
	},
	cli.StringFlag{
		Name:  "geotiff",
		Usage: "Optional GeoTIFF composite output path",
	},
}

func analyzeAction(c *cli.Context) error {
	aoiPath := c.String("file")
	if aoiPath == "" {
		return cli.NewExitError("an AOI GeoJSON file is required (--file)", 1)
	}
	aoiData, err := os.ReadFile(aoiPath)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("could not read AOI file: %v", err), 1)
	}

	startDate, err := model.ParseStacTime(c.String("start"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid start date: %v", err), 1)
	}
	endDate, err := model.ParseStacTime(c.String("end"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid end date: %v", err), 1)
	}

	context := analysis.NewContext()
	result, err := analysis.Run(context, analysis.Input{
		AOIGeoJSON:    aoiData,
		Dates:         model.DateRange{Start: startDate, End: endDate},
		MaxCloudCover: c.Float64("cloud"),
	})
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	for _, line := range result.Log {
		fmt.Println(line)
	}
	if result.NoImagery {
		fmt.Println("No imagery found for the given parameters.")
		return nil
	}

	outputPath := c.String("output")
	output, err := os.Create(outputPath)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("could not create %v: %v", outputPath, err), 1)
	}
	defer output.Close()
	if err = render.EncodePNG(output, render.Heatmap(result.Composite)); err != nil {
		return cli.NewExitError(fmt.Sprintf("could not write heatmap: %v", err), 1)
	}
	fmt.Printf("Wrote heatmap to %v\n", outputPath)

	if tiffPath := c.String("geotiff"); tiffPath != "" {
		tiffFile, err := os.Create(tiffPath)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("could not create %v: %v", tiffPath, err), 1)
		}
		defer tiffFile.Close()
		grid := result.Composite.Grid
		err = geotiff.EncodeFloat32(tiffFile, result.Composite.Data, grid.Width, grid.Height, geotiff.GeoReference{
			OriginX:    grid.OriginX,
			OriginY:    grid.OriginY,
			PixelSizeX: grid.Resolution,
			PixelSizeY: grid.Resolution,
			EPSG:       uint16(grid.EPSG),
		})
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("could not write GeoTIFF: %v", err), 1)
		}
		fmt.Printf("Wrote GeoTIFF composite to %v\n", tiffPath)
	}

	return nil
}
