package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/queue"
	"github.com/truekea/truekea-api/internal/repository"
)

// SwapHandler manages the lifecycle of item exchanges: propose, accept or
// reject, complete.  Completing a swap exchanges item ownership in the
// repository transaction and publishes a swap.completed event; a broker
// failure never rolls back the completed swap.
type SwapHandler struct {
	Swaps *repository.SwapRepo
	Items *repository.ItemRepo
}

func NewSwapHandler(swaps *repository.SwapRepo, items *repository.ItemRepo) *SwapHandler {
	return &SwapHandler{Swaps: swaps, Items: items}
}

type swapCreateReq struct {
	ProposerItemID uint64 `json:"proposer_item_id"`
	ReceiverItemID uint64 `json:"receiver_item_id"`
}

type swapStatusReq struct {
	Status string `json:"status"`
}

// Create handles POST /v1/swaps.  The proposer must own the offered item;
// the receiver is derived from the requested item's owner.
func (h *SwapHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req swapCreateReq
	if err := c.Bind(&req); err != nil || req.ProposerItemID == 0 || req.ReceiverItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "proposer_item_id and receiver_item_id required"})
	}
	if req.ProposerItemID == req.ReceiverItemID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot swap an item with itself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offered, err := h.Items.GetByID(ctx, req.ProposerItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "proposer item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if offered.OwnerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not own the offered item"})
	}
	requested, err := h.Items.GetByID(ctx, req.ReceiverItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receiver item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if requested.OwnerID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot swap with yourself"})
	}

	s := &model.Swap{
		ProposerID:     uid,
		ReceiverID:     requested.OwnerID,
		ProposerItemID: offered.ID,
		ReceiverItemID: requested.ID,
	}
	if err := h.Swaps.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create swap"})
	}
	return c.JSON(http.StatusCreated, s)
}

// Get handles GET /v1/swaps/:id; only the two parties may view a swap.
func (h *SwapHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.Swaps.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSwapNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "swap not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if s.ProposerID != uid && s.ReceiverID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, s)
}

// ListMine handles GET /v1/swaps.
func (h *SwapHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	swaps, err := h.Swaps.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if swaps == nil {
		swaps = []model.Swap{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": swaps})
}

// UpdateStatus handles PUT /v1/swaps/:id/status.  The receiver accepts or
// rejects a proposal; either party may complete an accepted swap.
func (h *SwapHandler) UpdateStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req swapStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Status {
	case model.SwapAccepted, model.SwapRejected, model.SwapCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be accepted, rejected or completed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Swaps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSwapNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "swap not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if req.Status == model.SwapCompleted {
		if s.ProposerID != uid && s.ReceiverID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	} else if s.ReceiverID != uid {
		// Only the receiver decides on a proposal.
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	updated, err := h.Swaps.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "swap not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	if updated.Status == model.SwapCompleted {
		h.publishCompleted(ctx, updated)
	}
	return c.JSON(http.StatusOK, updated)
}

// publishCompleted emits the swap.completed event.  Failures are logged
// inside the publisher and ignored here; the swap is already committed.
func (h *SwapHandler) publishCompleted(ctx context.Context, s *model.Swap) {
	ev := queue.SwapCompletedEvent{
		SwapID:         s.ID,
		ProposerID:     s.ProposerID,
		ReceiverID:     s.ReceiverID,
		ProposerItemID: s.ProposerItemID,
		ReceiverItemID: s.ReceiverItemID,
		CompletedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if it, err := h.Items.GetByID(ctx, s.ProposerItemID); err == nil {
		ev.ProposerItemName = it.Title
		ev.CO2Saved += it.Value
	}
	if it, err := h.Items.GetByID(ctx, s.ReceiverItemID); err == nil {
		ev.ReceiverItemName = it.Title
		ev.CO2Saved += it.Value
	}
	_ = queue.PublishSwapCompleted(ctx, ev)
}
