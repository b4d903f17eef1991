package model

import "time"

// Rating is feedback left by one party of a completed swap about the
// other.  Score is constrained to 1..5 at the request boundary.
type Rating struct {
	ID        uint64    `json:"id"`         // ratings.id
	SwapID    uint64    `json:"swap_id"`    // ratings.swap_id
	RaterID   uint64    `json:"rater_id"`   // ratings.rater_id
	RatedID   uint64    `json:"rated_id"`   // ratings.rated_id
	Score     uint8     `json:"score"`      // ratings.score (1..5)
	Comment   string    `json:"comment"`    // ratings.comment
	CreatedAt time.Time `json:"created_at"` // ratings.created_at
}
