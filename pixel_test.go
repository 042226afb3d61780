package demtile_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/kokudo/go-demtile"
)

func assertHeight(t *testing.T, expected, actual float64) {
	t.Helper()
	assert.True(t, math.Abs(expected-actual) < 1e-6, "expected %v, got %v", expected, actual)
}

func TestDecodeRGB(t *testing.T) {
	for _, tc := range []struct {
		name     string
		rgb      [3]uint8
		expected float64
	}{
		{name: "zero", rgb: [3]uint8{0, 0, 0}, expected: 0},
		{name: "one_centimeter", rgb: [3]uint8{0, 0, 1}, expected: 0.01},
		{name: "fuji_summit", rgb: [3]uint8{10, 0, 5}, expected: 6553.65},
		{name: "max", rgb: [3]uint8{127, 255, 255}, expected: 83886.07},
		{name: "minus_one_centimeter", rgb: [3]uint8{255, 255, 255}, expected: -0.01},
		{name: "min", rgb: [3]uint8{128, 0, 1}, expected: -83886.07},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, ok := demtile.DecodeRGB(tc.rgb[0], tc.rgb[1], tc.rgb[2])
			assert.True(t, ok)
			assertHeight(t, tc.expected, actual)
		})
	}
}

func TestDecodeRGBNoData(t *testing.T) {
	actual, ok := demtile.DecodeRGB(128, 0, 0)
	assert.False(t, ok)
	assert.True(t, math.IsNaN(actual))
}

func TestEncodeRGB(t *testing.T) {
	for _, expected := range []float64{
		-83886.07,
		-428.5,
		-0.01,
		0,
		0.01,
		3776.24,
		6553.65,
		8848.86,
		83886.07,
	} {
		r, g, b := demtile.EncodeRGB(expected)
		actual, ok := demtile.DecodeRGB(r, g, b)
		assert.True(t, ok)
		assert.True(t, math.Abs(expected-actual) <= 0.01)
	}

	r, g, b := demtile.EncodeRGB(math.NaN())
	assert.Equal(t, [3]uint8{128, 0, 0}, [3]uint8{r, g, b})

	r, g, b = demtile.EncodeRGB(6553.65)
	assert.Equal(t, [3]uint8{10, 0, 5}, [3]uint8{r, g, b})
}

func TestEncodeRGBClamps(t *testing.T) {
	for _, tc := range []struct {
		height   float64
		expected float64
	}{
		{height: 83886.08, expected: 83886.07},
		{height: 1e9, expected: 83886.07},
		{height: math.Inf(1), expected: 83886.07},
		{height: -83886.08, expected: -83886.07},
		{height: -1e9, expected: -83886.07},
		{height: math.Inf(-1), expected: -83886.07},
	} {
		r, g, b := demtile.EncodeRGB(tc.height)
		actual, ok := demtile.DecodeRGB(r, g, b)
		assert.True(t, ok)
		assertHeight(t, tc.expected, actual)
	}
}

func TestDecodePixel(t *testing.T) {
	address := demtile.TileAddress{PixelX: 67, PixelY: 41}

	t.Run("nrgba", func(t *testing.T) {
		img := newTileImage(address, 6553.65)
		actual, ok := demtile.DecodePixel(img, address)
		assert.True(t, ok)
		assertHeight(t, 6553.65, actual)

		_, ok = demtile.DecodePixel(img, demtile.TileAddress{PixelX: 68, PixelY: 41})
		assert.False(t, ok)
	})

	t.Run("offset_rgba", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(256, 512, 512, 768))
		img.SetRGBA(256+67, 512+41, color.RGBA{R: 0, G: 14, B: 192, A: 255})
		actual, ok := demtile.DecodePixel(img, address)
		assert.True(t, ok)
		assertHeight(t, 37.76, actual)
	})

	t.Run("small_image", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
		_, ok := demtile.DecodePixel(img, address)
		assert.False(t, ok)
	})
}

func TestFormatHeight(t *testing.T) {
	assert.Equal(t, "6553.7", demtile.FormatHeight(6553.65001, 1))
	assert.Equal(t, "3776", demtile.FormatHeight(3776.24, 0))
	assert.Equal(t, "-0.01", demtile.FormatHeight(-0.01, 2))
	assert.Equal(t, "12", demtile.FormatHeight(12.3, -1))
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "3776.2", demtile.Result{Height: 3776.24, Precision: 1}.String())
	assert.Equal(t, "", demtile.Result{Height: math.NaN(), Precision: 1}.String())
	assert.False(t, demtile.Result{Height: math.NaN()}.HasHeight())
	assert.True(t, demtile.Result{}.HasHeight())
}
