package carbon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truekea/truekea-api/internal/model"
)

func testCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Books", CO2: 2},
		{ID: 2, Name: "Tech", CO2: 15},
		{ID: 3, Name: "Clothing", CO2: 5},
		{ID: 4, Name: "Home", CO2: 8},
	}
}

func TestEquivalenciesFor(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		want  Equivalencies
	}{
		{
			name:  "zero total",
			total: 0,
			want:  Equivalencies{},
		},
		{
			name:  "single tree worth",
			total: 22,
			want: Equivalencies{
				TotalCO2:       22,
				TreesNeeded:    1,
				CarKilometers:  110,
				LightBulbHours: 2200,
				FlightMinutes:  88,
			},
		},
		{
			name:  "mixed feed total",
			total: 17,
			want: Equivalencies{
				TotalCO2:       17,
				TreesNeeded:    0.77,
				CarKilometers:  85,
				LightBulbHours: 1700,
				FlightMinutes:  68,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EquivalenciesFor(tt.total))
		})
	}
}

func TestTableFactorLookups(t *testing.T) {
	tbl := NewTable(testCategories())

	f, ok := tbl.FactorFor("Tech")
	require.True(t, ok)
	assert.Equal(t, 15.0, f)

	// Exact, case-sensitive match only.
	_, ok = tbl.FactorFor("tech")
	assert.False(t, ok)

	assert.Equal(t, 2.0, tbl.PerItemFootprint("Books"))
	assert.Equal(t, 0.0, tbl.PerItemFootprint("Unknown"))
}

func TestQuantityWeightedFootprint(t *testing.T) {
	tbl := NewTable(testCategories())

	assert.Equal(t, 45.0, tbl.QuantityWeightedFootprint("Tech", 3))
	assert.Equal(t, 15.0, tbl.QuantityWeightedFootprint("Tech", 1))
	assert.Equal(t, 0.0, tbl.QuantityWeightedFootprint("Tech", 0))
	assert.Equal(t, 0.0, tbl.QuantityWeightedFootprint("Tech", -2))
	assert.Equal(t, 0.0, tbl.QuantityWeightedFootprint("Unknown", 5))
}

func TestSearchByName(t *testing.T) {
	tbl := NewTable(testCategories())

	got := tbl.SearchByName("o")
	require.Len(t, got, 3)
	// Entries come back sorted by name.
	assert.Equal(t, "Books", got[0].Name)
	assert.Equal(t, "Clothing", got[1].Name)
	assert.Equal(t, "Home", got[2].Name)

	assert.Len(t, tbl.SearchByName("TECH"), 1)
	assert.Nil(t, tbl.SearchByName(""))
	assert.Nil(t, tbl.SearchByName("   "))
	assert.Nil(t, tbl.SearchByName("nope"))
}

func TestNearestFactor(t *testing.T) {
	tbl := NewTable(testCategories())

	got := tbl.NearestFactor(6, 3)
	require.Len(t, got, 2)
	assert.Equal(t, "Clothing", got[0].Name) // distance 1
	assert.Equal(t, "Home", got[1].Name)     // distance 2

	// Negative tolerance behaves like zero: exact matches only.
	got = tbl.NearestFactor(5, -1)
	require.Len(t, got, 1)
	assert.Equal(t, "Clothing", got[0].Name)

	assert.Empty(t, tbl.NearestFactor(100, 1))
}

func TestStats(t *testing.T) {
	tbl := NewTable(testCategories())
	assert.Equal(t, Stats{Count: 4, Average: 7.5, Max: 15, Min: 2}, tbl.Stats())

	empty := NewTable(nil)
	assert.Equal(t, Stats{}, empty.Stats())
}

type stubSource struct {
	cats []model.Category
	err  error
}

func (s *stubSource) ListAll(context.Context) ([]model.Category, error) {
	return s.cats, s.err
}

func TestAggregatorReload(t *testing.T) {
	src := &stubSource{cats: testCategories()}
	agg := NewAggregator(src)

	// Before the first reload the snapshot is empty but usable.
	assert.Equal(t, 0, agg.Snapshot().Stats().Count)

	require.NoError(t, agg.Reload(context.Background()))
	assert.Equal(t, 4, agg.Snapshot().Stats().Count)

	// A failing reload keeps the previous snapshot in place.
	src.err = errors.New("db down")
	require.Error(t, agg.Reload(context.Background()))
	assert.Equal(t, 4, agg.Snapshot().Stats().Count)

	// A successful reload swaps in the new catalog.
	src.err = nil
	src.cats = append(testCategories(), model.Category{ID: 5, Name: "Garden", CO2: 3})
	require.NoError(t, agg.Reload(context.Background()))
	snap := agg.Snapshot()
	assert.Equal(t, 5, snap.Stats().Count)
	f, ok := snap.FactorFor("Garden")
	require.True(t, ok)
	assert.Equal(t, 3.0, f)
}
