package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/carbon"
	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/repository"
)

// CategoryHandler exposes the category catalog.  Writes are admin-only
// and refresh the carbon aggregator snapshot, which otherwise never
// self-invalidates.
type CategoryHandler struct {
	Cats *repository.CategoryRepo
	Agg  *carbon.Aggregator
}

func NewCategoryHandler(cats *repository.CategoryRepo, agg *carbon.Aggregator) *CategoryHandler {
	return &CategoryHandler{Cats: cats, Agg: agg}
}

type categoryReq struct {
	Name string  `json:"name"`
	CO2  float64 `json:"co2"`
}

func (h *CategoryHandler) bindValid(c echo.Context) (categoryReq, bool) {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CO2 < 0 {
		return req, false
	}
	return req, true
}

// List handles GET /v1/categories.
func (h *CategoryHandler) List(c echo.Context) error {
	cats, err := h.Cats.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if cats == nil {
		cats = []model.Category{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cats})
}

// Get handles GET /v1/categories/:id.
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cat, err := h.Cats.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, cat)
}

// Create handles POST /v1/categories (admin).
func (h *CategoryHandler) Create(c echo.Context) error {
	req, ok := h.bindValid(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required and co2 must be >= 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat := &model.Category{Name: req.Name, CO2: req.CO2}
	if err := h.Cats.Create(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create category"})
	}
	h.reloadFactors(ctx)
	return c.JSON(http.StatusCreated, cat)
}

// Update handles PUT /v1/categories/:id (admin).
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, ok := h.bindValid(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required and co2 must be >= 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat := &model.Category{ID: id, Name: req.Name, CO2: req.CO2}
	if err := h.Cats.Update(ctx, cat); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "category name already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	h.reloadFactors(ctx)
	return c.JSON(http.StatusOK, cat)
}

// Delete handles DELETE /v1/categories/:id (admin).
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cats.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "category still has items"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	h.reloadFactors(ctx)
	return c.NoContent(http.StatusNoContent)
}

// reloadFactors refreshes the aggregator snapshot after a catalog write.
// A failed reload keeps the previous snapshot; the write itself stands.
func (h *CategoryHandler) reloadFactors(ctx context.Context) {
	_ = h.Agg.Reload(ctx)
}
