package model

// Category represents a row in the `categories` table.  CO2 is the
// average kilograms of CO2 saved by reusing one item in this category;
// it feeds the carbon aggregator's lookup table and is never negative.
type Category struct {
	ID   uint64  `json:"id"`   // categories.id
	Name string  `json:"name"` // categories.name (unique)
	CO2  float64 `json:"co2"`  // categories.co2 (kg CO2 per item, >= 0)
}
