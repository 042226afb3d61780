package demtile

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "demtile_lookups_total",
	Help: "The total number of lookups by outcome",
}, []string{"outcome"})

// A stepOutcome is the outcome of trying a single candidate.
type stepOutcome int

const (
	stepElevation stepOutcome = iota
	stepNoData
	stepLoadFailure
)

// A Resolver resolves positions to elevations by trying each candidate of a
// catalog in turn.
type Resolver struct {
	catalog  *Catalog
	acquirer Acquirer
}

// NewResolver returns a new Resolver.
func NewResolver(catalog *Catalog, acquirer Acquirer) *Resolver {
	return &Resolver{
		catalog:  catalog,
		acquirer: acquirer,
	}
}

// Resolve returns the elevation at pos from the most precise candidate with
// data. If no candidate has data then the result's height is NaN. The only
// error returned is ctx's.
func (r *Resolver) Resolve(ctx context.Context, pos GeoPosition) (Result, error) {
	result, ok := r.resolve(ctx, pos, func() bool {
		return ctx.Err() == nil
	})
	if !ok {
		return Result{}, ctx.Err()
	}
	return result, nil
}

// resolve walks the cascade for pos. Before each candidate is dispatched and
// after each completes, current is consulted; once it returns false the
// lookup is abandoned and resolve returns false.
func (r *Resolver) resolve(ctx context.Context, pos GeoPosition, current func() bool) (Result, bool) {
	for _, candidate := range r.catalog.Plan() {
		if !current() {
			lookups.WithLabelValues("superseded").Inc()
			return Result{}, false
		}
		height, outcome := r.step(ctx, pos, candidate)
		if !current() {
			lookups.WithLabelValues("superseded").Inc()
			return Result{}, false
		}
		if outcome == stepElevation {
			lookups.WithLabelValues("resolved").Inc()
			return Result{
				Height:    height,
				TierTitle: candidate.Tier.Title,
				Precision: candidate.Tier.Precision,
				Zoom:      candidate.Zoom,
				Position:  pos,
			}, true
		}
	}
	if !current() {
		lookups.WithLabelValues("superseded").Inc()
		return Result{}, false
	}
	lookups.WithLabelValues("unknown").Inc()
	return unknownResult(pos), true
}

// step tries a single candidate.
func (r *Resolver) step(ctx context.Context, pos GeoPosition, candidate Candidate) (float64, stepOutcome) {
	address := TileAddressAt(pos.Lat, pos.Lng, candidate.Zoom)
	img, err := r.acquirer.Acquire(ctx, candidate, address)
	if err != nil {
		return 0, stepLoadFailure
	}
	height, ok := DecodePixel(img, address)
	if !ok {
		return 0, stepNoData
	}
	return height, stepElevation
}
