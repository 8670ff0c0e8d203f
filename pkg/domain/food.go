package domain

import (
	"time"

	"github.com/google/uuid"
)

// Food is a menu item sold by a vendor.
type Food struct {
	ID              uuid.UUID `json:"id"`
	VendorID        uuid.UUID `json:"vendor_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"image_url,omitempty"`
	IsAvailable     bool      `json:"is_available"`
	PreparationTime int       `json:"preparation_time"` // minutes
	CreatedAt       time.Time `json:"created_at"`
}

// FoodInput is the payload for creating or replacing a menu item.
type FoodInput struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	IsAvailable     bool    `json:"is_available"`
	PreparationTime int     `json:"preparation_time"`
}
