package model

import "time"

// Item represents a tradable good listed by a user.  Each item belongs
// to exactly one owner and references exactly one category.  Value is
// expressed in CO2 units saved and must be strictly positive.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – short listing title.
//  Description – free-form listing text.
//  Value       – CO2 units saved, > 0.
//  CategoryID  – foreign key into categories.
//  OwnerID     – foreign key into users.
//  ImageURL    – location of the listing photo in object storage.
//  CreatedAt   – timestamp of creation.
type Item struct {
	ID          uint64    `json:"id"`          // items.id
	Title       string    `json:"title"`       // items.title
	Description string    `json:"description"` // items.description
	Value       float64   `json:"value"`       // items.value
	CategoryID  uint64    `json:"category_id"` // items.category_id
	OwnerID     uint64    `json:"owner_id"`    // items.owner_id
	ImageURL    string    `json:"image_url"`   // items.image_url
	CreatedAt   time.Time `json:"created_at"`  // items.created_at
}
