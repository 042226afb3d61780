package demtile

import (
	"context"
	"sync"
	"sync/atomic"
)

// A Coordinator runs at most one active lookup at a time. Starting a lookup
// supersedes the previous one, whose callback is then never called.
type Coordinator struct {
	resolver   *Resolver
	generation atomic.Uint64
	mutex      sync.Mutex
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewCoordinator returns a new Coordinator that resolves lookups with
// resolver.
func NewCoordinator(resolver *Resolver) *Coordinator {
	return &Coordinator{
		resolver: resolver,
	}
}

// ResolveElevation starts a lookup of the elevation at (lat, lng). onResult
// is called at most once, from another goroutine, unless the lookup is
// superseded first.
func (c *Coordinator) ResolveElevation(lat, lng float64, onResult func(Result)) {
	c.Start(GeoPosition{Lat: lat, Lng: lng}, onResult)
}

// Start starts a lookup of the elevation at pos, superseding any lookup in
// progress.
//
// A superseded lookup is detected when its current fetch completes. A lookup
// that has already passed its final check when it is superseded still calls
// onResult, so callers that start lookups concurrently with callbacks may
// observe the older result just before the newer one.
func (c *Coordinator) Start(pos GeoPosition, onResult func(Result)) {
	ctx, cancel := context.WithCancel(context.Background())
	generation := c.supersede(cancel)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		result, ok := c.resolver.resolve(ctx, pos, func() bool {
			return c.generation.Load() == generation
		})
		if !ok || onResult == nil {
			return
		}
		onResult(result)
	}()
}

// Cancel supersedes the lookup in progress, if any.
func (c *Coordinator) Cancel() {
	c.supersede(nil)
}

// Wait waits for all lookup goroutines to exit.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// supersede invalidates the current lookup, aborting its fetch, and makes
// cancel the current lookup's cancel function. It returns the new
// generation.
func (c *Coordinator) supersede(cancel context.CancelFunc) uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	generation := c.generation.Add(1)
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	return generation
}
