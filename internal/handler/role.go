package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/repository"
)

// RoleHandler manages the roles lookup table.  All endpoints are behind
// the ADMIN role middleware.
type RoleHandler struct {
	Roles *repository.RoleRepo
}

func NewRoleHandler(roles *repository.RoleRepo) *RoleHandler { return &RoleHandler{Roles: roles} }

// List handles GET /v1/roles.
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.Roles.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if roles == nil {
		roles = []model.Role{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": roles})
}

// Get handles GET /v1/roles/:id.
func (h *RoleHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil || id > 255 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	role, err := h.Roles.GetByID(c.Request().Context(), uint8(id))
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, role)
}

// Create handles POST /v1/roles.
func (h *RoleHandler) Create(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.ToUpper(strings.TrimSpace(body.Name))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role := &model.Role{Name: name}
	if err := h.Roles.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "role already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create role"})
	}
	return c.JSON(http.StatusCreated, role)
}

// Delete handles DELETE /v1/roles/:id.
func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil || id > 255 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Roles.Delete(ctx, uint8(id)); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "role still has users"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
