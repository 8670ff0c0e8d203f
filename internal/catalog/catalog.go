// Package catalog serves the vendor, menu, favorite and review data behind
// the customer and vendor screens.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

// DefaultMenuCacheSize is the number of vendor menus kept in memory.
const DefaultMenuCacheSize = 64

// Backend is the subset of the REST client the catalog needs.
type Backend interface {
	ListOpenVendors(ctx context.Context) ([]domain.Vendor, error)
	ListFeatured(ctx context.Context) ([]domain.FeaturedVendor, error)
	GetVendorByUser(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error)
	CreateVendor(ctx context.Context, nv domain.NewVendor) (*domain.Vendor, error)
	SetVendorOpen(ctx context.Context, vendorID uuid.UUID, open bool) error

	ListAvailableFoods(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error)
	ListFoods(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error)
	ListCategoryRows(ctx context.Context) ([]client.CategoryRow, error)
	CreateFood(ctx context.Context, vendorID uuid.UUID, in domain.FoodInput) (*domain.Food, error)
	UpdateFood(ctx context.Context, id uuid.UUID, in domain.FoodInput) (*domain.Food, error)
	SetFoodAvailable(ctx context.Context, id uuid.UUID, available bool) error
	DeleteFood(ctx context.Context, id uuid.UUID) error

	ListFavoriteVendors(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error)
	IsFavorite(ctx context.Context, userID, vendorID uuid.UUID) (bool, error)
	AddFavorite(ctx context.Context, userID, vendorID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, vendorID uuid.UUID) error
	ListVendorFavorites(ctx context.Context, vendorID uuid.UUID) ([]domain.Favorite, error)
	CountUserFavorites(ctx context.Context, userID uuid.UUID) (int, error)

	CreateReview(ctx context.Context, r domain.NewReview) error
	ListVendorReviews(ctx context.Context, vendorID uuid.UUID) ([]domain.Review, error)
	CountUserReviews(ctx context.Context, userID uuid.UUID) (int, error)
}

var _ Backend = (*client.Client)(nil)

// Service answers catalog queries and applies vendor edits.
type Service struct {
	backend Backend
	menus   *lru.Cache[uuid.UUID, []domain.Food]
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*config)

type config struct {
	cacheSize int
	log       zerolog.Logger
	now       func() time.Time
}

// WithMenuCacheSize bounds the number of cached vendor menus.
func WithMenuCacheSize(n int) Option {
	return func(c *config) { c.cacheSize = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithClock overrides the time source used by Analytics.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New returns a Service over backend.
func New(backend Backend, opts ...Option) (*Service, error) {
	cfg := config{cacheSize: DefaultMenuCacheSize, log: zerolog.Nop(), now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	menus, err := lru.New[uuid.UUID, []domain.Food](cfg.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		backend: backend,
		menus:   menus,
		log:     cfg.log.With().Str("component", "catalog").Logger(),
		now:     cfg.now,
	}, nil
}
