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

// RatingHandler exposes post-swap feedback.  A rating can only be left on
// a completed swap, by one of its parties, about the other party.
type RatingHandler struct {
	Ratings *repository.RatingRepo
	Swaps   *repository.SwapRepo
}

func NewRatingHandler(ratings *repository.RatingRepo, swaps *repository.SwapRepo) *RatingHandler {
	return &RatingHandler{Ratings: ratings, Swaps: swaps}
}

type ratingReq struct {
	SwapID  uint64 `json:"swap_id"`
	Score   uint8  `json:"score"`
	Comment string `json:"comment"`
}

// Create handles POST /v1/ratings.
func (h *RatingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SwapID == 0 || req.Score < 1 || req.Score > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "swap_id required and score must be 1..5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Swaps.GetByID(ctx, req.SwapID)
	if err != nil {
		if errors.Is(err, repository.ErrSwapNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "swap not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if s.Status != model.SwapCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "swap is not completed"})
	}
	var rated uint64
	switch uid {
	case s.ProposerID:
		rated = s.ReceiverID
	case s.ReceiverID:
		rated = s.ProposerID
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	rt := &model.Rating{
		SwapID:  req.SwapID,
		RaterID: uid,
		RatedID: rated,
		Score:   req.Score,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := h.Ratings.Create(ctx, rt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "swap already rated"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create rating"})
	}
	return c.JSON(http.StatusCreated, rt)
}

// ListForUser handles GET /v1/users/:id/ratings.
func (h *RatingHandler) ListForUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ratings, err := h.Ratings.ListForUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}
	avg, n, err := h.Ratings.AverageForUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": ratings, "average": avg, "count": n})
}
