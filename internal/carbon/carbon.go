// Package carbon holds the in-memory category -> CO2 factor table and the
// arithmetic that turns item feeds into CO2 totals and human-relatable
// equivalencies.  The table is built from the categories table at startup
// and treated as read-only by request-handling code; Reload builds a fresh
// snapshot and swaps it in atomically, so readers never need locks.
package carbon

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/truekea/truekea-api/internal/model"
)

// Equivalency divisors.  treesNeeded = total/22 and so on, each rounded
// to two decimals.
const (
	TreeDivisor      = 22.0 // kg CO2 absorbed by one tree per year
	CarKmDivisor     = 0.2  // kg CO2 emitted per km driven
	LightBulbDivisor = 0.01 // kg CO2 per hour of a light bulb
	FlightDivisor    = 0.25 // kg CO2 per minute of flight
)

// Equivalencies translates a CO2 total into relatable quantities.
type Equivalencies struct {
	TotalCO2       float64 `json:"total_co2"`
	TreesNeeded    float64 `json:"trees_needed"`
	CarKilometers  float64 `json:"car_kilometers"`
	LightBulbHours float64 `json:"light_bulb_hours"`
	FlightMinutes  float64 `json:"flight_minutes"`
}

// Entry is one row of the factor table as exposed by search and stats
// endpoints.
type Entry struct {
	CategoryID uint64  `json:"category_id"`
	Name       string  `json:"name"`
	Factor     float64 `json:"factor"`
}

// Stats summarizes the factor table.
type Stats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// EquivalenciesFor computes the fixed linear transforms of a CO2 total.
// Each value is rounded to two decimal places.
func EquivalenciesFor(totalCO2 float64) Equivalencies {
	return Equivalencies{
		TotalCO2:       round2(totalCO2),
		TreesNeeded:    round2(totalCO2 / TreeDivisor),
		CarKilometers:  round2(totalCO2 / CarKmDivisor),
		LightBulbHours: round2(totalCO2 / LightBulbDivisor),
		FlightMinutes:  round2(totalCO2 / FlightDivisor),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Table is an immutable snapshot of the category -> factor mapping.
// Lookups are exact and case-sensitive, matching how category names are
// stored.
type Table struct {
	factors map[string]float64
	entries []Entry // sorted by name for stable output
}

// NewTable builds a snapshot from category rows.
func NewTable(cats []model.Category) *Table {
	t := &Table{
		factors: make(map[string]float64, len(cats)),
		entries: make([]Entry, 0, len(cats)),
	}
	for _, c := range cats {
		t.factors[c.Name] = c.CO2
		t.entries = append(t.entries, Entry{CategoryID: c.ID, Name: c.Name, Factor: c.CO2})
	}
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].Name < t.entries[j].Name })
	return t
}

// FactorFor returns the CO2 factor for an exact category name and whether
// the name is present in the table.
func (t *Table) FactorFor(name string) (float64, bool) {
	f, ok := t.factors[name]
	return f, ok
}

// PerItemFootprint is the per-unit CO2 contribution of one item in the
// named category, with no quantity multiplier.  Unknown names contribute 0.
// This is the operation used by the login feed; see
// QuantityWeightedFootprint for the multiplied variant.
func (t *Table) PerItemFootprint(name string) float64 {
	return t.factors[name]
}

// QuantityWeightedFootprint multiplies the category factor by a quantity.
// It is deliberately a distinct operation from PerItemFootprint: the two
// code paths in the product have different semantics and must not be
// merged.  Non-positive quantities contribute 0.
func (t *Table) QuantityWeightedFootprint(name string, quantity int) float64 {
	if quantity <= 0 {
		return 0
	}
	return t.factors[name] * float64(quantity)
}

// SearchByName returns entries whose category name contains the query,
// case-insensitively.  An empty query matches nothing.
func (t *Table) SearchByName(query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var out []Entry
	for _, e := range t.entries {
		if strings.Contains(strings.ToLower(e.Name), query) {
			out = append(out, e)
		}
	}
	return out
}

// NearestFactor returns entries whose factor lies within tolerance of the
// given value, ordered nearest first.  A negative tolerance is treated
// as zero (exact matches only).
func (t *Table) NearestFactor(value, tolerance float64) []Entry {
	if tolerance < 0 {
		tolerance = 0
	}
	var out []Entry
	for _, e := range t.entries {
		if math.Abs(e.Factor-value) <= tolerance {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Factor-value) < math.Abs(out[j].Factor-value)
	})
	return out
}

// Stats computes descriptive statistics over the factor table.  An empty
// table yields all zeros.
func (t *Table) Stats() Stats {
	s := Stats{Count: len(t.entries)}
	if s.Count == 0 {
		return s
	}
	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)
	var sum float64
	for _, e := range t.entries {
		sum += e.Factor
		s.Min = math.Min(s.Min, e.Factor)
		s.Max = math.Max(s.Max, e.Factor)
	}
	s.Average = round2(sum / float64(s.Count))
	return s
}

// Entries returns the snapshot rows sorted by name.  The returned slice
// must not be mutated.
func (t *Table) Entries() []Entry { return t.entries }

// CategorySource lists the full category catalog; satisfied by the
// category repository.
type CategorySource interface {
	ListAll(ctx context.Context) ([]model.Category, error)
}

// Aggregator owns the current Table snapshot.  It is safe for concurrent
// readers; Reload is the single writer and swaps the pointer atomically.
type Aggregator struct {
	src  CategorySource
	snap atomic.Pointer[Table]
}

// NewAggregator creates an aggregator with an empty snapshot.  Call
// Reload before serving traffic.
func NewAggregator(src CategorySource) *Aggregator {
	a := &Aggregator{src: src}
	a.snap.Store(NewTable(nil))
	return a
}

// Reload rebuilds the factor table from the category catalog and swaps
// it in.  On error the previous snapshot stays in place.
func (a *Aggregator) Reload(ctx context.Context) error {
	cats, err := a.src.ListAll(ctx)
	if err != nil {
		return err
	}
	a.snap.Store(NewTable(cats))
	return nil
}

// Snapshot returns the current read-only table.
func (a *Aggregator) Snapshot() *Table { return a.snap.Load() }
