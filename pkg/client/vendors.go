package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// ListOpenVendors returns open vendors, newest first.
func (c *Client) ListOpenVendors(ctx context.Context) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	q := c.from("vendors").sel("*").eq("is_open", true).order("created_at", false)
	if err := c.selectRows(ctx, q, &vendors); err != nil {
		return nil, fmt.Errorf("client.ListOpenVendors: %w", err)
	}
	return vendors, nil
}

// GetVendorByUser returns the vendor owned by a user.
func (c *Client) GetVendorByUser(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := c.selectRows(ctx, c.from("vendors").sel("*").eq("user_id", userID).one(), &v); err != nil {
		return nil, fmt.Errorf("client.GetVendorByUser: %w", err)
	}
	return &v, nil
}

// CreateVendor inserts a vendor row.
func (c *Client) CreateVendor(ctx context.Context, nv domain.NewVendor) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := c.insertRows(ctx, c.from("vendors").sel("*").one(), nv, &v); err != nil {
		return nil, fmt.Errorf("client.CreateVendor: %w", err)
	}
	return &v, nil
}

// SetVendorOpen opens or closes a vendor.
func (c *Client) SetVendorOpen(ctx context.Context, vendorID uuid.UUID, open bool) error {
	if err := c.updateRows(ctx, c.from("vendors").eq("id", vendorID), map[string]bool{"is_open": open}, nil); err != nil {
		return fmt.Errorf("client.SetVendorOpen: %w", err)
	}
	return nil
}

// ListFeatured returns active featured vendors in display order.
func (c *Client) ListFeatured(ctx context.Context) ([]domain.FeaturedVendor, error) {
	var featured []domain.FeaturedVendor
	q := c.from("featured_vendors").
		sel("*,vendors(id,name,address,rating,total_reviews,is_open,latitude,longitude)").
		eq("is_active", true).
		order("sort_order", true)
	if err := c.selectRows(ctx, q, &featured); err != nil {
		return nil, fmt.Errorf("client.ListFeatured: %w", err)
	}
	return featured, nil
}

// --- Foods ---

// CategoryRow is one available food's category at an open vendor.
type CategoryRow struct {
	Category string    `json:"category"`
	VendorID uuid.UUID `json:"vendor_id"`
}

// ListAvailableFoods returns a vendor's available foods ordered by category.
func (c *Client) ListAvailableFoods(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error) {
	var foods []domain.Food
	q := c.from("foods").sel("*").eq("vendor_id", vendorID).eq("is_available", true).order("category", true)
	if err := c.selectRows(ctx, q, &foods); err != nil {
		return nil, fmt.Errorf("client.ListAvailableFoods: %w", err)
	}
	return foods, nil
}

// ListFoods returns all of a vendor's foods, newest first.
func (c *Client) ListFoods(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error) {
	var foods []domain.Food
	q := c.from("foods").sel("*").eq("vendor_id", vendorID).order("created_at", false)
	if err := c.selectRows(ctx, q, &foods); err != nil {
		return nil, fmt.Errorf("client.ListFoods: %w", err)
	}
	return foods, nil
}

// ListCategoryRows returns the category of every available food at an open vendor.
func (c *Client) ListCategoryRows(ctx context.Context) ([]CategoryRow, error) {
	var rows []CategoryRow
	q := c.from("foods").
		sel("category,vendor_id,vendors!inner(id,is_open)").
		eq("is_available", true).
		eq("vendors.is_open", true)
	if err := c.selectRows(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("client.ListCategoryRows: %w", err)
	}
	return rows, nil
}

type foodRow struct {
	VendorID uuid.UUID `json:"vendor_id"`
	domain.FoodInput
}

// CreateFood adds a menu item to a vendor.
func (c *Client) CreateFood(ctx context.Context, vendorID uuid.UUID, in domain.FoodInput) (*domain.Food, error) {
	var f domain.Food
	if err := c.insertRows(ctx, c.from("foods").sel("*").one(), foodRow{VendorID: vendorID, FoodInput: in}, &f); err != nil {
		return nil, fmt.Errorf("client.CreateFood: %w", err)
	}
	return &f, nil
}

// UpdateFood replaces a menu item's editable fields.
func (c *Client) UpdateFood(ctx context.Context, id uuid.UUID, in domain.FoodInput) (*domain.Food, error) {
	var f domain.Food
	if err := c.updateRows(ctx, c.from("foods").sel("*").eq("id", id).one(), in, &f); err != nil {
		return nil, fmt.Errorf("client.UpdateFood: %w", err)
	}
	return &f, nil
}

// SetFoodAvailable toggles whether a menu item can be ordered.
func (c *Client) SetFoodAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	if err := c.updateRows(ctx, c.from("foods").eq("id", id), map[string]bool{"is_available": available}, nil); err != nil {
		return fmt.Errorf("client.SetFoodAvailable: %w", err)
	}
	return nil
}

// DeleteFood removes a menu item.
func (c *Client) DeleteFood(ctx context.Context, id uuid.UUID) error {
	if err := c.deleteRows(ctx, c.from("foods").eq("id", id)); err != nil {
		return fmt.Errorf("client.DeleteFood: %w", err)
	}
	return nil
}

// --- Favorites ---

// ListFavoriteVendors returns the vendors a user saved.
func (c *Client) ListFavoriteVendors(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	var favs []domain.Favorite
	if err := c.selectRows(ctx, c.from("favorites").sel("vendor_id,vendors(*)").eq("user_id", userID), &favs); err != nil {
		return nil, fmt.Errorf("client.ListFavoriteVendors: %w", err)
	}
	vendors := make([]domain.Vendor, 0, len(favs))
	for _, f := range favs {
		// Vendors hidden by row-level policy come back as null.
		if f.Vendor != nil {
			vendors = append(vendors, *f.Vendor)
		}
	}
	return vendors, nil
}

// IsFavorite reports whether a user saved a vendor.
func (c *Client) IsFavorite(ctx context.Context, userID, vendorID uuid.UUID) (bool, error) {
	var favs []domain.Favorite
	q := c.from("favorites").sel("id").eq("user_id", userID).eq("vendor_id", vendorID)
	if err := c.selectRows(ctx, q, &favs); err != nil {
		return false, fmt.Errorf("client.IsFavorite: %w", err)
	}
	return len(favs) > 0, nil
}

// AddFavorite saves a vendor for a user.
func (c *Client) AddFavorite(ctx context.Context, userID, vendorID uuid.UUID) error {
	body := map[string]uuid.UUID{"user_id": userID, "vendor_id": vendorID}
	if err := c.insertRows(ctx, c.from("favorites"), body, nil); err != nil {
		return fmt.Errorf("client.AddFavorite: %w", err)
	}
	return nil
}

// RemoveFavorite unsaves a vendor for a user.
func (c *Client) RemoveFavorite(ctx context.Context, userID, vendorID uuid.UUID) error {
	if err := c.deleteRows(ctx, c.from("favorites").eq("user_id", userID).eq("vendor_id", vendorID)); err != nil {
		return fmt.Errorf("client.RemoveFavorite: %w", err)
	}
	return nil
}

// ListVendorFavorites returns the favorites pointing at a vendor.
func (c *Client) ListVendorFavorites(ctx context.Context, vendorID uuid.UUID) ([]domain.Favorite, error) {
	var favs []domain.Favorite
	if err := c.selectRows(ctx, c.from("favorites").sel("id,user_id,vendor_id,created_at").eq("vendor_id", vendorID), &favs); err != nil {
		return nil, fmt.Errorf("client.ListVendorFavorites: %w", err)
	}
	return favs, nil
}

// CountUserFavorites returns how many vendors a user saved.
func (c *Client) CountUserFavorites(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := c.countRows(ctx, c.from("favorites").sel("id").eq("user_id", userID))
	if err != nil {
		return 0, fmt.Errorf("client.CountUserFavorites: %w", err)
	}
	return n, nil
}

// --- Reviews ---

// CreateReview inserts a review. A second review of the same vendor by the
// same user fails with an APIError for which IsUniqueViolation is true.
func (c *Client) CreateReview(ctx context.Context, r domain.NewReview) error {
	if err := c.insertRows(ctx, c.from("reviews"), r, nil); err != nil {
		return fmt.Errorf("client.CreateReview: %w", err)
	}
	return nil
}

// ListVendorReviews returns a vendor's reviews, newest first.
func (c *Client) ListVendorReviews(ctx context.Context, vendorID uuid.UUID) ([]domain.Review, error) {
	var reviews []domain.Review
	q := c.from("reviews").sel("*").eq("vendor_id", vendorID).order("created_at", false)
	if err := c.selectRows(ctx, q, &reviews); err != nil {
		return nil, fmt.Errorf("client.ListVendorReviews: %w", err)
	}
	return reviews, nil
}

// CountUserReviews returns how many reviews a user wrote.
func (c *Client) CountUserReviews(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := c.countRows(ctx, c.from("reviews").sel("id").eq("user_id", userID))
	if err != nil {
		return 0, fmt.Errorf("client.CountUserReviews: %w", err)
	}
	return n, nil
}
