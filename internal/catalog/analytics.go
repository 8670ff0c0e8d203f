package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// recentWindow is how far back "recent" reaches in Analytics.
const recentWindow = 7 * 24 * time.Hour

// Analytics summarises a vendor's reviews, favorites and menu. The three
// are fetched concurrently; any failure fails the whole summary.
func (s *Service) Analytics(ctx context.Context, vendorID uuid.UUID) (*domain.Analytics, error) {
	var (
		reviews   []domain.Review
		favorites []domain.Favorite
		foods     []domain.Food
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviews, err = s.backend.ListVendorReviews(gctx, vendorID)
		return err
	})
	g.Go(func() error {
		var err error
		favorites, err = s.backend.ListVendorFavorites(gctx, vendorID)
		return err
	})
	g.Go(func() error {
		var err error
		foods, err = s.backend.ListFoods(gctx, vendorID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("load analytics")
		return nil, failed(MsgLoadAnalytics, err)
	}
	return summarize(s.now(), reviews, favorites, foods), nil
}

func summarize(now time.Time, reviews []domain.Review, favorites []domain.Favorite, foods []domain.Food) *domain.Analytics {
	a := &domain.Analytics{
		TotalReviews:    len(reviews),
		TotalFavorites:  len(favorites),
		MenuItems:       len(foods),
		ItemsByCategory: make(map[string]int),
	}
	since := now.Add(-recentWindow)

	var sum, recentSum, recentN int
	for _, r := range reviews {
		sum += r.Rating
		if r.Rating >= 1 && r.Rating <= 5 {
			a.RatingHistogram[r.Rating-1]++
		}
		a.ReviewsByWeekday[r.CreatedAt.In(now.Location()).Weekday()]++
		if r.CreatedAt.After(since) {
			recentSum += r.Rating
			recentN++
		}
	}
	if len(reviews) > 0 {
		a.AverageRating = float64(sum) / float64(len(reviews))
	}
	if recentN > 0 {
		a.RecentChange = float64(recentSum)/float64(recentN) - a.AverageRating
	}

	for _, f := range favorites {
		if f.CreatedAt.After(since) {
			a.RecentFavorites++
		}
	}
	for _, f := range foods {
		a.ItemsByCategory[strings.TrimSpace(f.Category)]++
	}
	return a
}

// CustomerStats counts the reviews and favorites of a customer.
func (s *Service) CustomerStats(ctx context.Context, userID uuid.UUID) (domain.CustomerStats, error) {
	var stats domain.CustomerStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.backend.CountUserReviews(gctx, userID)
		stats.Reviews = n
		return err
	})
	g.Go(func() error {
		n, err := s.backend.CountUserFavorites(gctx, userID)
		stats.Favorites = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Stringer("user_id", userID).Msg("load customer stats")
		return domain.CustomerStats{}, failed(MsgLoadStats, err)
	}
	return stats, nil
}
