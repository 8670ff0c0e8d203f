package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// OpenVendors lists open vendors, newest first.
func (s *Service) OpenVendors(ctx context.Context) ([]domain.Vendor, error) {
	vendors, err := s.backend.ListOpenVendors(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list open vendors")
		return nil, failed(MsgLoadVendors, err)
	}
	return vendors, nil
}

// FilterVendors keeps vendors whose name, description or address contains
// query, ignoring case. A blank query keeps everything.
func FilterVendors(vendors []domain.Vendor, query string) []domain.Vendor {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return vendors
	}
	var out []domain.Vendor
	for _, v := range vendors {
		if strings.Contains(strings.ToLower(v.Name), q) ||
			strings.Contains(strings.ToLower(v.Description), q) ||
			strings.Contains(strings.ToLower(v.Address), q) {
			out = append(out, v)
		}
	}
	return out
}

// Featured lists the active featured vendors in display order.
func (s *Service) Featured(ctx context.Context) ([]domain.FeaturedVendor, error) {
	featured, err := s.backend.ListFeatured(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list featured vendors")
		return nil, failed(MsgLoadFeatured, err)
	}
	return featured, nil
}

// MyVendor returns the vendor owned by userID, or nil when the user has not
// set one up yet.
func (s *Service) MyVendor(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	v, err := s.backend.GetVendorByUser(ctx, userID)
	if client.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		s.log.Warn().Err(err).Stringer("user_id", userID).Msg("get vendor")
		return nil, failed(MsgLoadVendor, err)
	}
	return v, nil
}

// SetupVendor creates the business profile for a vendor user. New vendors
// start open with no reviews.
func (s *Service) SetupVendor(ctx context.Context, userID uuid.UUID, setup VendorSetup) (*domain.Vendor, error) {
	nv, err := setup.row(userID)
	if err != nil {
		return nil, err
	}
	v, err := s.backend.CreateVendor(ctx, nv)
	if err != nil {
		s.log.Warn().Err(err).Stringer("user_id", userID).Msg("create vendor")
		if client.IsUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.Conflict, MsgVendorExists, err)
		}
		return nil, failed(MsgSetupFailed, err)
	}
	s.log.Info().Stringer("vendor_id", v.ID).Msg("vendor created")
	return v, nil
}

// SetOpen opens or closes a vendor for business.
func (s *Service) SetOpen(ctx context.Context, vendorID uuid.UUID, open bool) error {
	if err := s.backend.SetVendorOpen(ctx, vendorID, open); err != nil {
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("set vendor open")
		return failed(MsgSetOpenFailed, err)
	}
	return nil
}
