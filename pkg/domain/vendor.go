package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a street-food stall owned by a vendor user.
type Vendor struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone,omitempty"`
	IsOpen       bool      `json:"is_open"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewVendor is the payload for creating a vendor row.
type NewVendor struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Address      string    `json:"address"`
	Phone        *string   `json:"phone"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	IsOpen       bool      `json:"is_open"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
}

// FeaturedVendor is a curated "hidden gem" entry with its vendor embedded.
type FeaturedVendor struct {
	ID          uuid.UUID `json:"id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	Vendor      *Vendor   `json:"vendors,omitempty"`
}

// Category is a food category with the number of open vendors serving it.
type Category struct {
	Name        string `json:"name"`
	VendorCount int    `json:"count"`
}
