package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's rating of a vendor. One review per (user, vendor).
type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	VendorID  uuid.UUID `json:"vendor_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// Favorite links a customer to a vendor they saved.
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	VendorID  uuid.UUID `json:"vendor_id"`
	CreatedAt time.Time `json:"created_at"`
	Vendor    *Vendor   `json:"vendors,omitempty"`
}

// NewReview is the payload for creating a review.
type NewReview struct {
	UserID   uuid.UUID `json:"user_id"`
	VendorID uuid.UUID `json:"vendor_id"`
	Rating   int       `json:"rating"`
	Comment  string    `json:"comment"`
}
