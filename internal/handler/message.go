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

// MessageHandler exposes the chat attached to a swap negotiation.  Only
// the two parties of a swap may read or write its messages.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Swaps    *repository.SwapRepo
}

func NewMessageHandler(messages *repository.MessageRepo, swaps *repository.SwapRepo) *MessageHandler {
	return &MessageHandler{Messages: messages, Swaps: swaps}
}

type messageReq struct {
	SwapID  uint64 `json:"swap_id"`
	Content string `json:"content"`
}

// swapParty loads a swap and verifies the user participates in it.
func (h *MessageHandler) swapParty(ctx context.Context, swapID, uid uint64) (*model.Swap, int, string) {
	s, err := h.Swaps.GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, repository.ErrSwapNotFound) {
			return nil, http.StatusNotFound, "swap not found"
		}
		return nil, http.StatusInternalServerError, "db error"
	}
	if s.ProposerID != uid && s.ReceiverID != uid {
		return nil, http.StatusForbidden, "forbidden"
	}
	return s, 0, ""
}

// Create handles POST /v1/messages.
func (h *MessageHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req messageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.SwapID == 0 || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "swap_id and content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, code, msg := h.swapParty(ctx, req.SwapID, uid); code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	m := &model.Message{SwapID: req.SwapID, SenderID: uid, Content: req.Content}
	if err := h.Messages.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create message"})
	}
	return c.JSON(http.StatusCreated, m)
}

// ListBySwap handles GET /v1/swaps/:id/messages.
func (h *MessageHandler) ListBySwap(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	swapID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, code, msg := h.swapParty(ctx, swapID, uid); code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	msgs, err := h.Messages.ListBySwap(ctx, swapID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": msgs})
}

// Delete handles DELETE /v1/messages/:id; only the author may delete.
func (h *MessageHandler) Delete(c echo.Context) error {
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

	if err := h.Messages.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
