package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// Favorites lists the vendors userID saved.
func (s *Service) Favorites(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	if userID == uuid.Nil {
		return nil, apperr.New(apperr.State, MsgLoginFavorite)
	}
	vendors, err := s.backend.ListFavoriteVendors(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Msg("list favorites")
		return nil, failed(MsgLoadFavorites, err)
	}
	return vendors, nil
}

// IsFavorite reports whether userID saved vendorID. Anonymous users have no
// favorites.
func (s *Service) IsFavorite(ctx context.Context, userID, vendorID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	ok, err := s.backend.IsFavorite(ctx, userID, vendorID)
	if err != nil {
		return false, failed(MsgLoadFavorites, err)
	}
	return ok, nil
}

// AddFavorite saves a vendor. Saving it twice is not an error.
func (s *Service) AddFavorite(ctx context.Context, userID, vendorID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperr.New(apperr.State, MsgLoginFavorite)
	}
	err := s.backend.AddFavorite(ctx, userID, vendorID)
	if err != nil && !client.IsUniqueViolation(err) {
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("add favorite")
		return apperr.Wrap(apperr.Transport, MsgFavoriteFailed, err)
	}
	return nil
}

// RemoveFavorite unsaves a vendor.
func (s *Service) RemoveFavorite(ctx context.Context, userID, vendorID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperr.New(apperr.State, MsgLoginFavorite)
	}
	if err := s.backend.RemoveFavorite(ctx, userID, vendorID); err != nil {
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("remove favorite")
		return apperr.Wrap(apperr.Transport, MsgFavoriteFailed, err)
	}
	return nil
}

// ToggleFavorite flips the saved state the caller last saw and returns the
// new state.
func (s *Service) ToggleFavorite(ctx context.Context, userID, vendorID uuid.UUID, saved bool) (bool, error) {
	if saved {
		if err := s.RemoveFavorite(ctx, userID, vendorID); err != nil {
			return saved, err
		}
		return false, nil
	}
	if err := s.AddFavorite(ctx, userID, vendorID); err != nil {
		return saved, err
	}
	return true, nil
}
