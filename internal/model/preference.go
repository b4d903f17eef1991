package model

// UserPreference joins a user to a category they want in their feed.
// The schema carries no uniqueness constraint on (user_id, category_id),
// so duplicate rows are possible and are surfaced as-is rather than
// silently deduplicated.
type UserPreference struct {
	ID         uint64 `json:"id"`          // user_preferences.id
	UserID     uint64 `json:"user_id"`     // user_preferences.user_id
	CategoryID uint64 `json:"category_id"` // user_preferences.category_id
}
