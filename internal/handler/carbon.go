package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/carbon"
)

// CarbonHandler exposes the factor table's auxiliary operations: search,
// nearest-factor lookup, descriptive stats, equivalency conversion and
// the admin-only snapshot reload.
type CarbonHandler struct {
	Agg *carbon.Aggregator
}

func NewCarbonHandler(agg *carbon.Aggregator) *CarbonHandler { return &CarbonHandler{Agg: agg} }

// Search handles GET /v1/carbon/search?q=.
func (h *CarbonHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	entries := h.Agg.Snapshot().SearchByName(q)
	if entries == nil {
		entries = []carbon.Entry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

// Nearest handles GET /v1/carbon/nearest?value=&tolerance=.
func (h *CarbonHandler) Nearest(c echo.Context) error {
	value, err := strconv.ParseFloat(c.QueryParam("value"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must be a number"})
	}
	tolerance := 1.0
	if t := c.QueryParam("tolerance"); t != "" {
		tolerance, err = strconv.ParseFloat(t, 64)
		if err != nil || tolerance < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tolerance must be a non-negative number"})
		}
	}
	entries := h.Agg.Snapshot().NearestFactor(value, tolerance)
	if entries == nil {
		entries = []carbon.Entry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

// Stats handles GET /v1/carbon/stats.
func (h *CarbonHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Agg.Snapshot().Stats())
}

// Equivalencies handles GET /v1/carbon/equivalencies?total=.
func (h *CarbonHandler) Equivalencies(c echo.Context) error {
	total, err := strconv.ParseFloat(c.QueryParam("total"), 64)
	if err != nil || total < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total must be a non-negative number"})
	}
	return c.JSON(http.StatusOK, carbon.EquivalenciesFor(total))
}

// Footprint handles GET /v1/carbon/footprint?category=&quantity=.  This
// is the quantity-weighted variant; the login feed uses the per-item one.
func (h *CarbonHandler) Footprint(c echo.Context) error {
	name := c.QueryParam("category")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category is required"})
	}
	quantity := 1
	if q := c.QueryParam("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
		}
		quantity = n
	}
	snap := h.Agg.Snapshot()
	factor, ok := snap.FactorFor(name)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown category"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"category":  name,
		"factor":    factor,
		"quantity":  quantity,
		"footprint": snap.QuantityWeightedFootprint(name, quantity),
	})
}

// Reload handles POST /v1/carbon/reload (admin).  The snapshot never
// self-invalidates after catalog edits made outside this API.
func (h *CarbonHandler) Reload(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Agg.Reload(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload failed"})
	}
	return c.JSON(http.StatusOK, h.Agg.Snapshot().Stats())
}
