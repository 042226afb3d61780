package demtile

import (
	"image"
	"image/color"
	"math"
	"strconv"
)

const (
	minInt24  = -1 << 23
	int24Span = 1 << 24

	// maxCentimeters bounds encoded heights. -1<<23 is not encodable: its
	// pixel is the no-data value.
	maxCentimeters = 1<<23 - 1
)

// noDataRGB is the pixel value of tiles with no elevation, e.g. over the sea.
var noDataRGB = [3]uint8{128, 0, 0}

// DecodeRGB decodes the elevation, in meters, encoded by an RGB pixel as a
// signed 24-bit big-endian count of centimeters. It returns false if the
// pixel is the no-data value.
func DecodeRGB(r, g, b uint8) (float64, bool) {
	if [3]uint8{r, g, b} == noDataRGB {
		return math.NaN(), false
	}
	d := int(r)<<16 | int(g)<<8 | int(b)
	h := d
	if d >= -minInt24 {
		h = d - int24Span
	}
	if h == minInt24 {
		return 0, true
	}
	return float64(h) * 0.01, true
}

// EncodeRGB encodes h, in meters, as an RGB pixel. NaN encodes to the no-data
// value. Heights outside ±83886.07m are clamped to that range.
func EncodeRGB(h float64) (r, g, b uint8) {
	if math.IsNaN(h) {
		return noDataRGB[0], noDataRGB[1], noDataRGB[2]
	}
	d := int(math.Round(min(max(h*100, -maxCentimeters), maxCentimeters)))
	if d < 0 {
		d += int24Span
	}
	return uint8(d >> 16), uint8(d >> 8), uint8(d)
}

// DecodePixel decodes the elevation at a's pixel in img, which must be a
// whole tile.
func DecodePixel(img image.Image, a TileAddress) (float64, bool) {
	bounds := img.Bounds()
	x, y := bounds.Min.X+a.PixelX, bounds.Min.Y+a.PixelY
	if !(image.Point{X: x, Y: y}).In(bounds) {
		return math.NaN(), false
	}
	var c color.NRGBA
	if nrgba, ok := img.(*image.NRGBA); ok {
		c = nrgba.NRGBAAt(x, y)
	} else {
		c = color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
	return DecodeRGB(c.R, c.G, c.B)
}

// FormatHeight formats h with precision decimal digits.
func FormatHeight(h float64, precision int) string {
	return strconv.FormatFloat(h, 'f', max(precision, 0), 64)
}
