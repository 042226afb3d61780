package demtile

import (
	"math"

	"github.com/paulmach/orb/maptile"
)

// A TileAddress locates a pixel within a tile of the Web Mercator pyramid.
type TileAddress struct {
	TileX  int
	TileY  int
	PixelX int
	PixelY int
	Zoom   int
}

// TileAddressAt returns the address of the pixel containing (lat, lng) at
// zoom. Out of range latitudes and longitudes are not rejected; they produce
// addresses outside the pyramid.
func TileAddressAt(lat, lng float64, zoom int) TileAddress {
	const r = tileSize / 2 / math.Pi
	scale := math.Exp2(float64(zoom))

	lngRad := lng * math.Pi / 180
	worldX := r * (lngRad + math.Pi)
	pixelX := worldX * scale
	tileX := math.Floor(pixelX / tileSize)

	sinLat := math.Sin(lat * math.Pi / 180)
	worldY := -r/2*math.Log((1+sinLat)/(1-sinLat)) + tileSize/2
	pixelY := worldY * scale
	tileY := math.Floor(pixelY / tileSize)

	return TileAddress{
		TileX:  int(tileX),
		TileY:  int(tileY),
		PixelX: clampPixel(math.Floor(pixelX - tileX*tileSize)),
		PixelY: clampPixel(math.Floor(pixelY - tileY*tileSize)),
		Zoom:   zoom,
	}
}

// clampPixel bounds a pixel offset to the tile. Only non-finite positions,
// such as the poles, fall outside it.
func clampPixel(p float64) int {
	return min(max(int(p), 0), tileSize-1)
}

// MapTile returns the tile containing a. It returns false if a lies outside
// the pyramid at its zoom.
func (a TileAddress) MapTile() (maptile.Tile, bool) {
	if a.Zoom < 0 || a.Zoom > 30 {
		return maptile.Tile{}, false
	}
	n := 1 << a.Zoom
	if a.TileX < 0 || n <= a.TileX || a.TileY < 0 || n <= a.TileY {
		return maptile.Tile{}, false
	}
	return maptile.New(uint32(a.TileX), uint32(a.TileY), maptile.Zoom(a.Zoom)), true
}
