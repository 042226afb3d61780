package demtile

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var errEmptyCatalog = errors.New("empty catalog")

// A Tier is a DEM tile dataset of a single precision class.
type Tier struct {
	Title       string
	URLTemplate string
	MinZoom     int
	MaxZoom     int
	Precision   int // Decimal digits shown for heights from this tier.
}

// GSITiers returns the GSI elevation tile tiers, most precise first.
func GSITiers() []Tier {
	return []Tier{
		{
			Title:       "DEM5A",
			URLTemplate: "https://cyberjapandata.gsi.go.jp/xyz/dem5a_png/{z}/{x}/{y}.png",
			MinZoom:     15,
			MaxZoom:     15,
			Precision:   1,
		},
		{
			Title:       "DEM5B",
			URLTemplate: "https://cyberjapandata.gsi.go.jp/xyz/dem5b_png/{z}/{x}/{y}.png",
			MinZoom:     15,
			MaxZoom:     15,
			Precision:   1,
		},
		{
			Title:       "DEM5C",
			URLTemplate: "https://cyberjapandata.gsi.go.jp/xyz/dem5c_png/{z}/{x}/{y}.png",
			MinZoom:     15,
			MaxZoom:     15,
			Precision:   1,
		},
		{
			Title:       "DEM10B",
			URLTemplate: "https://cyberjapandata.gsi.go.jp/xyz/dem_png/{z}/{x}/{y}.png",
			MinZoom:     14,
			MaxZoom:     14,
			Precision:   0,
		},
	}
}

// A Catalog is an immutable, priority ordered list of tiers.
type Catalog struct {
	tiers []Tier
}

// NewCatalog returns a new Catalog of tiers in the given order. Tiers with an
// inverted zoom range have it swapped.
func NewCatalog(tiers ...Tier) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, errEmptyCatalog
	}
	c := &Catalog{
		tiers: slices.Clone(tiers),
	}
	for i := range c.tiers {
		tier := &c.tiers[i]
		if tier.Title == "" {
			return nil, fmt.Errorf("tier %d: missing title", i)
		}
		for _, placeholder := range []string{"{x}", "{y}", "{z}"} {
			if !strings.Contains(tier.URLTemplate, placeholder) {
				return nil, fmt.Errorf("%s: URL template missing %s", tier.Title, placeholder)
			}
		}
		if tier.MaxZoom < tier.MinZoom {
			tier.MinZoom, tier.MaxZoom = tier.MaxZoom, tier.MinZoom
		}
	}
	return c, nil
}

// DefaultCatalog returns the catalog of GSITiers.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(GSITiers()...)
	if err != nil {
		panic(err)
	}
	return c
}

// Tiers returns a copy of c's tiers.
func (c *Catalog) Tiers() []Tier {
	return slices.Clone(c.tiers)
}

// A Candidate is a single attempt: one tier at one zoom level.
type Candidate struct {
	Tier Tier
	Zoom int
}

func (c Candidate) String() string {
	return c.Tier.Title + "@" + strconv.Itoa(c.Zoom)
}

// URL returns the URL of the tile at a.
func (c Candidate) URL(a TileAddress) string {
	return strings.NewReplacer(
		"{x}", strconv.Itoa(a.TileX),
		"{y}", strconv.Itoa(a.TileY),
		"{z}", strconv.Itoa(c.Zoom),
	).Replace(c.Tier.URLTemplate)
}

// Plan returns the candidates to try for one lookup, in order. All zoom
// levels of a tier, finest first, precede those of the next tier.
func (c *Catalog) Plan() []Candidate {
	var candidates []Candidate
	for _, tier := range c.tiers {
		for zoom := tier.MaxZoom; zoom >= tier.MinZoom; zoom-- {
			candidates = append(candidates, Candidate{
				Tier: tier,
				Zoom: zoom,
			})
		}
	}
	return candidates
}
