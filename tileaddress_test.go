package demtile_test

import (
	"math/rand/v2"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/kokudo/go-demtile"
)

func TestTileAddressAt(t *testing.T) {
	for _, tc := range []struct {
		name     string
		lat      float64
		lng      float64
		zoom     int
		expected demtile.TileAddress
	}{
		{
			name: "null_island_z0",
			expected: demtile.TileAddress{
				PixelX: 128,
				PixelY: 128,
			},
		},
		{
			name: "tokyo_tower_z15",
			lat:  35.6586,
			lng:  139.7454,
			zoom: 15,
			expected: demtile.TileAddress{
				TileX:  29103,
				TileY:  12905,
				PixelX: 239,
				PixelY: 218,
				Zoom:   15,
			},
		},
		{
			name: "fuji_z15",
			lat:  35.3607411,
			lng:  138.727262,
			zoom: 15,
			expected: demtile.TileAddress{
				TileX:  29011,
				TileY:  12939,
				PixelX: 67,
				PixelY: 41,
				Zoom:   15,
			},
		},
		{
			name: "fuji_z14",
			lat:  35.3607411,
			lng:  138.727262,
			zoom: 14,
			expected: demtile.TileAddress{
				TileX:  14505,
				TileY:  6469,
				PixelX: 161,
				PixelY: 148,
				Zoom:   14,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual := demtile.TileAddressAt(tc.lat, tc.lng, tc.zoom)
			assert.Equal(t, tc.expected, actual)
			assert.Equal(t, actual, demtile.TileAddressAt(tc.lat, tc.lng, tc.zoom))
		})
	}
}

func TestTileAddressAtPixelRange(t *testing.T) {
	r := rand.New(rand.NewPCG(0, 0))
	for range 16384 {
		lat := 170*r.Float64() - 85
		lng := 360*r.Float64() - 180
		zoom := r.IntN(21)
		address := demtile.TileAddressAt(lat, lng, zoom)
		assert.True(t, 0 <= address.PixelX && address.PixelX < 256)
		assert.True(t, 0 <= address.PixelY && address.PixelY < 256)

		tile, ok := address.MapTile()
		assert.True(t, ok)
		assert.Equal(t, maptile.At(orb.Point{lng, lat}, maptile.Zoom(zoom)), tile)
	}

	// Out of range input still yields in-tile pixel offsets.
	for _, lat := range []float64{-90, -89.999, 89.999, 90, 1000} {
		address := demtile.TileAddressAt(lat, 720, 15)
		assert.True(t, 0 <= address.PixelX && address.PixelX < 256)
		assert.True(t, 0 <= address.PixelY && address.PixelY < 256)
	}
}

func TestTileAddress_MapTile(t *testing.T) {
	for _, tc := range []struct {
		name       string
		address    demtile.TileAddress
		expected   maptile.Tile
		expectedOK bool
	}{
		{
			name:       "origin",
			expected:   maptile.New(0, 0, 0),
			expectedOK: true,
		},
		{
			name:       "fuji",
			address:    demtile.TileAddress{TileX: 29011, TileY: 12939, Zoom: 15},
			expected:   maptile.New(29011, 12939, 15),
			expectedOK: true,
		},
		{
			name:    "negative_x",
			address: demtile.TileAddress{TileX: -1, Zoom: 3},
		},
		{
			name:    "y_beyond_pyramid",
			address: demtile.TileAddress{TileY: 8, Zoom: 3},
		},
		{
			name:    "negative_zoom",
			address: demtile.TileAddress{Zoom: -1},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, ok := tc.address.MapTile()
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expected, actual)
		})
	}
}
