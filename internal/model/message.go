package model

import "time"

// Message is a chat message exchanged between the two parties of a swap
// negotiation.  Messages are append-only; there is no edit flow.
type Message struct {
	ID        uint64    `json:"id"`         // messages.id
	SwapID    uint64    `json:"swap_id"`    // messages.swap_id
	SenderID  uint64    `json:"sender_id"`  // messages.sender_id
	Content   string    `json:"content"`    // messages.content
	CreatedAt time.Time `json:"created_at"` // messages.created_at
}
