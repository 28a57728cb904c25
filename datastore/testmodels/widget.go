package testmodels

import "github.com/go-openapi/strfmt"

// Widget is the test entity used across the DocStore test suites.
type Widget struct {

	// Unique identifier, generated at save time when empty.
	ID string `json:"_id,omitempty"`

	// Name of the widget.
	// Required: true
	Name string `json:"name,omitempty"`

	// Quantity on hand.
	Qty int64 `json:"qty,omitempty"`

	// Unit price.
	Price float64 `json:"price,omitempty"`

	// Timestamp when the widget was created.
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt,omitempty"`
}
