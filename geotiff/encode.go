// Package geotiff writes a single-band 32-bit float GeoTIFF, carrying the
// projection and georeferencing tags a GIS needs to place the raster.
package geotiff

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"
)

const (
	dataTypeASCII  = 2
	dataTypeShort  = 3
	dataTypeLong   = 4
	dataTypeDouble = 12

	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagSampleFormat    = 339

	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagGeoKeyDirectory = 34735
	tagGDALNoData      = 42113

	sampleFormatFloat = 3

	geoKeyModelType     = 1024
	geoKeyRasterType    = 1025
	geoKeyProjectedCRS  = 3072
	modelTypeProjected  = 1
	rasterTypePixelArea = 1
)

var enc = binary.LittleEndian

// GeoReference places the raster in a projected coordinate system
type GeoReference struct {
	OriginX    float64 // left edge of the top-left pixel
	OriginY    float64 // top edge of the top-left pixel
	PixelSizeX float64
	PixelSizeY float64
	EPSG       uint16
}

type ifdEntry struct {
	tag      uint16
	datatype uint16
	count    uint32
	data     []byte
}

type byTag []ifdEntry

func (d byTag) Len() int           { return len(d) }
func (d byTag) Less(i, j int) bool { return d[i].tag < d[j].tag }
func (d byTag) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }

// EncodeFloat32 writes data (row-major, NaN = nodata) as an uncompressed
// single-band float32 GeoTIFF
func EncodeFloat32(w io.Writer, data []float64, width, height int, geo GeoReference) error {
	// Header: LittleEndian (II), version 42, first IFD at offset 8
	header := []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00}
	if _, err := w.Write(header); err != nil {
		return err
	}

	pixels := make([]byte, 4*width*height)
	for i, value := range data[:width*height] {
		enc.PutUint32(pixels[i*4:], math.Float32bits(float32(value)))
	}

	var entries []ifdEntry
	addEntry := func(tag uint16, datatype uint16, count uint32, data []byte) {
		entries = append(entries, ifdEntry{tag, datatype, count, data})
	}

	addEntry(tagImageWidth, dataTypeLong, 1, enc32(uint32(width)))
	addEntry(tagImageLength, dataTypeLong, 1, enc32(uint32(height)))
	addEntry(tagBitsPerSample, dataTypeShort, 1, enc16(32))
	addEntry(tagCompression, dataTypeShort, 1, enc16(1))  // none
	addEntry(tagPhotometric, dataTypeShort, 1, enc16(1))  // BlackIsZero
	addEntry(tagSamplesPerPixel, dataTypeShort, 1, enc16(1))
	addEntry(tagRowsPerStrip, dataTypeLong, 1, enc32(uint32(height)))
	addEntry(tagSampleFormat, dataTypeShort, 1, enc16(sampleFormatFloat))

	// Filled in once the pixel offset is known; single strip
	addEntry(tagStripOffsets, dataTypeLong, 1, make([]byte, 4))
	addEntry(tagStripByteCounts, dataTypeLong, 1, make([]byte, 4))

	addEntry(tagModelPixelScale, dataTypeDouble, 3, encDoubles([]float64{geo.PixelSizeX, geo.PixelSizeY, 0}))
	addEntry(tagModelTiepoint, dataTypeDouble, 6, encDoubles([]float64{0, 0, 0, geo.OriginX, geo.OriginY, 0}))

	geoKeys := []uint16{
		1, 1, 0, 3, // directory version, revision, minor, key count
		geoKeyModelType, 0, 1, modelTypeProjected,
		geoKeyRasterType, 0, 1, rasterTypePixelArea,
		geoKeyProjectedCRS, 0, 1, geo.EPSG,
	}
	addEntry(tagGeoKeyDirectory, dataTypeShort, uint32(len(geoKeys)), enc16s(geoKeys))

	addEntry(tagGDALNoData, dataTypeASCII, 4, []byte("nan\x00"))

	sort.Sort(byTag(entries))

	// IFD size: count + 12 bytes per entry + next-IFD offset
	ifdSize := 2 + 12*len(entries) + 4
	valueDataOffset := 8 + ifdSize

	// Values over 4 bytes go to a data area after the IFD table
	var largeDataBuf bytes.Buffer
	for i := range entries {
		e := &entries[i]
		if len(e.data) > 4 {
			currentOffset := uint32(valueDataOffset + largeDataBuf.Len())
			largeDataBuf.Write(e.data)
			e.data = enc32(currentOffset)
		}
	}

	pixelsOffset := uint32(valueDataOffset + largeDataBuf.Len())
	for i := range entries {
		if entries[i].tag == tagStripOffsets {
			entries[i].data = enc32(pixelsOffset)
		}
		if entries[i].tag == tagStripByteCounts {
			entries[i].data = enc32(uint32(len(pixels)))
		}
	}

	if err := binary.Write(w, enc, uint16(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := binary.Write(w, enc, e.tag); err != nil {
			return err
		}
		if err := binary.Write(w, enc, e.datatype); err != nil {
			return err
		}
		if err := binary.Write(w, enc, e.count); err != nil {
			return err
		}
		var val [4]byte
		copy(val[:], e.data)
		if _, err := w.Write(val[:]); err != nil {
			return err
		}
	}
	if err := binary.Write(w, enc, uint32(0)); err != nil { // next IFD offset
		return err
	}

	if _, err := largeDataBuf.WriteTo(w); err != nil {
		return err
	}
	_, err := w.Write(pixels)
	return err
}

func enc16(v uint16) []byte {
	b := make([]byte, 2)
	enc.PutUint16(b, v)
	return b
}

func enc32(v uint32) []byte {
	b := make([]byte, 4)
	enc.PutUint32(b, v)
	return b
}

func enc16s(vs []uint16) []byte {
	b := make([]byte, 2*len(vs))
	for i, v := range vs {
		enc.PutUint16(b[i*2:], v)
	}
	return b
}

func encDoubles(vs []float64) []byte {
	b := make([]byte, 8*len(vs))
	for i, v := range vs {
		enc.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}
