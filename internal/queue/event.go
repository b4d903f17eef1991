// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer for them.
package queue

// SwapCompletedEvent is published when a swap reaches the completed state.
// It carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type SwapCompletedEvent struct {
	SwapID           uint64  `json:"swap_id"`
	ProposerID       uint64  `json:"proposer_id"`
	ReceiverID       uint64  `json:"receiver_id"`
	ProposerItemID   uint64  `json:"proposer_item_id"`
	ReceiverItemID   uint64  `json:"receiver_item_id"`
	ProposerItemName string  `json:"proposer_item"`
	ReceiverItemName string  `json:"receiver_item"`
	CO2Saved         float64 `json:"co2_saved"`
	CompletedAt      string  `json:"completed_at"`
}
