package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// SubmitReview records userID's rating of vendorID. Each user may review a
// vendor once.
func (s *Service) SubmitReview(ctx context.Context, userID, vendorID uuid.UUID, rating int, comment string) error {
	if userID == uuid.Nil {
		return apperr.New(apperr.State, MsgLoginReview)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return apperr.New(apperr.Validation, MsgReviewComment)
	}
	if rating < 1 || rating > 5 {
		return apperr.New(apperr.Validation, MsgReviewRating)
	}

	err := s.backend.CreateReview(ctx, domain.NewReview{
		UserID:   userID,
		VendorID: vendorID,
		Rating:   rating,
		Comment:  comment,
	})
	switch {
	case err == nil:
		return nil
	case client.IsUniqueViolation(err):
		return apperr.Wrap(apperr.Conflict, MsgAlreadyReviewed, err)
	default:
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("create review")
		return apperr.Wrap(apperr.Transport, MsgReviewFailed, err)
	}
}

// Reviews lists a vendor's reviews, newest first.
func (s *Service) Reviews(ctx context.Context, vendorID uuid.UUID) ([]domain.Review, error) {
	reviews, err := s.backend.ListVendorReviews(ctx, vendorID)
	if err != nil {
		return nil, failed(MsgLoadReviews, err)
	}
	return reviews, nil
}
