package model

import "time"

// Swap statuses.  A swap starts out proposed, may be accepted or
// rejected by the receiver, and an accepted swap can be completed.
const (
	SwapProposed  = "proposed"
	SwapAccepted  = "accepted"
	SwapRejected  = "rejected"
	SwapCompleted = "completed"
)

// Swap represents a proposed exchange of two items between two users.
// ProposerItemID is offered by ProposerID, ReceiverItemID is requested
// from ReceiverID.  When a swap completes, item ownership is exchanged
// inside a single transaction.
type Swap struct {
	ID             uint64    `json:"id"`               // swaps.id
	ProposerID     uint64    `json:"proposer_id"`      // swaps.proposer_id
	ReceiverID     uint64    `json:"receiver_id"`      // swaps.receiver_id
	ProposerItemID uint64    `json:"proposer_item_id"` // swaps.proposer_item_id
	ReceiverItemID uint64    `json:"receiver_item_id"` // swaps.receiver_item_id
	Status         string    `json:"status"`           // swaps.status
	CreatedAt      time.Time `json:"created_at"`       // swaps.created_at
	UpdatedAt      time.Time `json:"updated_at"`       // swaps.updated_at
}

// ValidSwapTransition reports whether a swap may move from one status
// to another.  Proposed swaps can be accepted or rejected; accepted
// swaps can only be completed.  Terminal states never change.
func ValidSwapTransition(from, to string) bool {
	switch from {
	case SwapProposed:
		return to == SwapAccepted || to == SwapRejected
	case SwapAccepted:
		return to == SwapCompleted
	default:
		return false
	}
}
