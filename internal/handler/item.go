package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/repository"
)

// ItemHandler exposes listing CRUD.  Reads are public; writes require an
// authenticated owner.
type ItemHandler struct {
	Items *repository.ItemRepo
	Cats  *repository.CategoryRepo
}

func NewItemHandler(items *repository.ItemRepo, cats *repository.CategoryRepo) *ItemHandler {
	return &ItemHandler{Items: items, Cats: cats}
}

type itemReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	CategoryID  uint64  `json:"category_id"`
	ImageURL    string  `json:"image_url"`
}

// validate checks the DTO at the boundary before any domain logic runs.
func (r *itemReq) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.Value <= 0 {
		return errors.New("value must be > 0")
	}
	if r.CategoryID == 0 {
		return errors.New("category_id is required")
	}
	return nil
}

// List handles GET /v1/items.  The optional ?category_id= query filters
// by one category.
func (h *ItemHandler) List(c echo.Context) error {
	var (
		items []model.Item
		err   error
	)
	if q := c.QueryParam("category_id"); q != "" {
		cid, perr := strconv.ParseUint(q, 10, 64)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		items, err = h.Items.ListByCategoryIDs(c.Request().Context(), []uint64{cid})
	} else {
		items, err = h.Items.ListAll(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if items == nil {
		items = []model.Item{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/items/:id.
func (h *ItemHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	it, err := h.Items.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, it)
}

// ListMine handles GET /v1/items/mine.
func (h *ItemHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Items.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if items == nil {
		items = []model.Item{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/items.
func (h *ItemHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Cats.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	it := &model.Item{
		Title:       req.Title,
		Description: req.Description,
		Value:       req.Value,
		CategoryID:  req.CategoryID,
		OwnerID:     uid,
		ImageURL:    req.ImageURL,
	}
	if err := h.Items.Create(ctx, it); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create item"})
	}
	return c.JSON(http.StatusCreated, it)
}

// Update handles PUT /v1/items/:id.
func (h *ItemHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it := &model.Item{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Value:       req.Value,
		CategoryID:  req.CategoryID,
		OwnerID:     uid,
		ImageURL:    req.ImageURL,
	}
	if err := h.Items.Update(ctx, it, uid); err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, it)
}

// Delete handles DELETE /v1/items/:id.
func (h *ItemHandler) Delete(c echo.Context) error {
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

	if err := h.Items.Delete(ctx, id, uid); err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "item is part of an open swap"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
