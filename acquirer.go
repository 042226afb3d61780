package demtile

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maypok86/otter/v2"
	"github.com/paulmach/orb/maptile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/image/draw"
)

// ErrTileNotFound is returned when a tier has no tile at an address.
var ErrTileNotFound = errors.New("tile not found")

var errTileSize = errors.New("tile is not 256x256")

var (
	tileFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demtile_tile_fetches_total",
		Help: "The total number of tile fetches by tier and outcome",
	}, []string{"tier", "outcome"})
	tileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_tile_cache_hits_total",
		Help: "The total number of hits on the tile cache",
	})
	tileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_tile_cache_misses_total",
		Help: "The total number of misses on the tile cache",
	})
	missingTileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_missing_tile_cache_hits_total",
		Help: "The total number of hits on the missing tile cache",
	})
)

// An Acquirer acquires the tile image for a candidate at an address.
type Acquirer interface {
	Acquire(ctx context.Context, candidate Candidate, address TileAddress) (image.Image, error)
}

// A tileKey identifies a tile of a tier.
type tileKey struct {
	urlTemplate string
	tile        maptile.Tile
}

// An HTTPAcquirer fetches tiles over HTTP, caching decoded tiles and
// remembering tiles that do not exist.
type HTTPAcquirer struct {
	client               *http.Client
	userAgent            string
	tileCacheSize        int
	missingTileCacheSize int
	tileCache            *otter.Cache[tileKey, *image.NRGBA]
	missingTiles         *lru.Cache[tileKey, struct{}]
}

// An HTTPAcquirerOption sets an option on an HTTPAcquirer.
type HTTPAcquirerOption func(*HTTPAcquirer)

// NewHTTPAcquirer returns a new HTTPAcquirer with the given options.
func NewHTTPAcquirer(options ...HTTPAcquirerOption) (*HTTPAcquirer, error) {
	a := &HTTPAcquirer{
		client:               http.DefaultClient,
		tileCacheSize:        256, // 64MB of decoded tiles.
		missingTileCacheSize: 4096,
	}
	for _, option := range options {
		option(a)
	}

	var err error
	a.tileCache, err = otter.New(&otter.Options[tileKey, *image.NRGBA]{
		MaximumSize: max(a.tileCacheSize, 1),
	})
	if err != nil {
		return nil, err
	}
	a.missingTiles, err = lru.New[tileKey, struct{}](max(a.missingTileCacheSize, 1))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func WithHTTPClient(client *http.Client) HTTPAcquirerOption {
	return func(a *HTTPAcquirer) {
		a.client = client
	}
}

func WithMissingTileCacheSize(missingTileCacheSize int) HTTPAcquirerOption {
	return func(a *HTTPAcquirer) {
		a.missingTileCacheSize = missingTileCacheSize
	}
}

// WithTileCacheSize sets the number of decoded tiles to cache.
func WithTileCacheSize(tileCacheSize int) HTTPAcquirerOption {
	return func(a *HTTPAcquirer) {
		a.tileCacheSize = tileCacheSize
	}
}

func WithUserAgent(userAgent string) HTTPAcquirerOption {
	return func(a *HTTPAcquirer) {
		a.userAgent = userAgent
	}
}

// Acquire returns the tile for candidate at address. It returns
// ErrTileNotFound if the tile does not exist or address is outside the
// pyramid.
//
// Concurrent calls for the same tile share a single fetch. The fetch is not
// bound to ctx's cancellation, so a caller that gives up does not fail the
// fetch for the callers that joined it.
func (a *HTTPAcquirer) Acquire(ctx context.Context, candidate Candidate, address TileAddress) (image.Image, error) {
	address.Zoom = candidate.Zoom
	tile, ok := address.MapTile()
	if !ok {
		return nil, ErrTileNotFound
	}
	key := tileKey{
		urlTemplate: candidate.Tier.URLTemplate,
		tile:        tile,
	}

	if a.missingTiles.Contains(key) {
		missingTileCacheHits.Inc()
		return nil, ErrTileNotFound
	}

	loaded := false
	url := candidate.URL(address)
	img, err := a.tileCache.Get(ctx, key, otter.LoaderFunc[tileKey, *image.NRGBA](func(ctx context.Context, _ tileKey) (*image.NRGBA, error) {
		loaded = true
		return a.fetch(context.WithoutCancel(ctx), candidate, url)
	}))
	if loaded {
		tileCacheMisses.Inc()
	} else {
		tileCacheHits.Inc()
	}
	switch {
	case errors.Is(err, otter.ErrNotFound):
		a.missingTiles.Add(key, struct{}{})
		return nil, ErrTileNotFound
	case err != nil:
		return nil, err
	default:
		return img, nil
	}
}

// fetch fetches and decodes the tile at url. A missing tile is reported as
// otter.ErrNotFound so that it is not cached.
func (a *HTTPAcquirer) fetch(ctx context.Context, candidate Candidate, url string) (*image.NRGBA, error) {
	img, err := a.get(ctx, url)
	switch {
	case errors.Is(err, otter.ErrNotFound):
		tileFetches.WithLabelValues(candidate.Tier.Title, "not_found").Inc()
	case err != nil:
		tileFetches.WithLabelValues(candidate.Tier.Title, "error").Inc()
	default:
		tileFetches.WithLabelValues(candidate.Tier.Title, "ok").Inc()
	}
	return img, err
}

func (a *HTTPAcquirer) get(ctx context.Context, url string) (*image.NRGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, otter.ErrNotFound
	case resp.StatusCode < 200 || 300 <= resp.StatusCode:
		return nil, fmt.Errorf("%s: %s", url, resp.Status)
	}

	src, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	if src.Bounds().Dx() != tileSize || src.Bounds().Dy() != tileSize {
		return nil, fmt.Errorf("%s: %w", url, errTileSize)
	}

	// Tiles are decoded to non-premultiplied RGBA so that pixels with alpha
	// keep their encoded channel values.
	dst := image.NewNRGBA(image.Rect(0, 0, tileSize, tileSize))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst, nil
}
