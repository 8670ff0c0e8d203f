package catalog

import (
	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/client"
)

const (
	MsgLoadVendors     = "Failed to load vendors"
	MsgLoadFeatured    = "Failed to load featured vendors"
	MsgLoadCategories  = "Failed to load categories"
	MsgLoadFavorites   = "Failed to load favorites"
	MsgLoadMenu        = "Failed to load menu data"
	MsgLoadAnalytics   = "Failed to load analytics"
	MsgLoadStats       = "Failed to load profile stats"
	MsgLoadVendor      = "Failed to load vendor profile"
	MsgLoadReviews     = "Failed to load reviews"
	MsgLoginFavorite   = "Please login to add favorites"
	MsgFavoriteFailed  = "Failed to update favorite"
	MsgLoginReview     = "Please login to submit a review"
	MsgReviewComment   = "Please add a comment to your review"
	MsgReviewRating    = "Please choose a rating from 1 to 5"
	MsgAlreadyReviewed = "You have already reviewed this vendor"
	MsgReviewFailed    = "Failed to submit review. Please try again."
	MsgReviewThanks    = "Thank you for your review!"
	MsgFillRequired    = "Please fill in all required fields"
	MsgInvalidPrice    = "Please enter a valid price"
	MsgInvalidPrepTime = "Preparation time must be a whole number of minutes"
	MsgAddFood         = "Failed to add food item"
	MsgUpdateFood      = "Failed to update food item"
	MsgDeleteFood      = "Failed to delete food item"
	MsgFoodAvailable   = "Failed to update food availability"
	MsgBusinessName    = "Business name is required"
	MsgBusinessAddress = "Business address is required"
	MsgBusinessDesc    = "Business description is required"
	MsgInvalidLocation = "Please enter a valid location"
	MsgVendorExists    = "You already have a vendor profile"
	MsgSetupFailed     = "Failed to create vendor profile"
	MsgSetOpenFailed   = "Failed to update vendor status"
)

// failed wraps a backend error under a display message.
func failed(msg string, err error) error {
	if client.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.Conflict, msg, err)
	}
	return apperr.Wrap(apperr.Transport, msg, err)
}
