package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/repository"
)

// PreferenceHandler manages the categories a user wants in their feed.
// The join table allows duplicate (user, category) rows; they are
// returned as stored.
type PreferenceHandler struct {
	Prefs *repository.PreferenceRepo
	Cats  *repository.CategoryRepo
}

func NewPreferenceHandler(prefs *repository.PreferenceRepo, cats *repository.CategoryRepo) *PreferenceHandler {
	return &PreferenceHandler{Prefs: prefs, Cats: cats}
}

// List handles GET /v1/user/preferences.
func (h *PreferenceHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	prefs, err := h.Prefs.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if prefs == nil {
		prefs = []model.UserPreference{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": prefs})
}

// Add handles POST /v1/user/preferences with body {category_id}.
func (h *PreferenceHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		CategoryID uint64 `json:"category_id"`
	}
	if err := c.Bind(&body); err != nil || body.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Cats.GetByID(ctx, body.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	p := &model.UserPreference{UserID: uid, CategoryID: body.CategoryID}
	if err := h.Prefs.Add(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add preference"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Replace handles PUT /v1/user/preferences with body {category_ids}.
// The whole set is swapped atomically.
func (h *PreferenceHandler) Replace(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		CategoryIDs []uint64 `json:"category_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	for _, cid := range body.CategoryIDs {
		if _, err := h.Cats.GetByID(ctx, cid); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}

	if err := h.Prefs.Replace(ctx, uid, body.CategoryIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save preferences"})
	}
	prefs, err := h.Prefs.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if prefs == nil {
		prefs = []model.UserPreference{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": prefs})
}

// Delete handles DELETE /v1/user/preferences/:id.
func (h *PreferenceHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Prefs.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrPreferenceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "preference not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
