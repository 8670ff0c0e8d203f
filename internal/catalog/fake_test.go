package catalog

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/pkg/client"
	"github.com/kengakuru/kibanda/pkg/domain"
)

var (
	errNoRows    = &client.APIError{StatusCode: 406, Code: client.CodeNoRows, Message: "JSON object requested, multiple (or no) rows returned"}
	errDuplicate = &client.APIError{StatusCode: 409, Code: client.CodeUniqueViolation, Message: "duplicate key value violates unique constraint"}
	errDown      = &client.APIError{StatusCode: 503, Message: "upstream unavailable"}
)

type fakeBackend struct {
	mu        sync.Mutex
	vendors   []domain.Vendor
	featured  []domain.FeaturedVendor
	foods     []domain.Food
	favorites []domain.Favorite
	reviews   []domain.Review
	fail      map[string]error
	calls     map[string]int
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fail: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeBackend) enter(call string) error {
	f.mu.Lock()
	f.calls[call]++
	return f.fail[call]
}

func (f *fakeBackend) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func (f *fakeBackend) addVendor(name string, open bool) domain.Vendor {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := domain.Vendor{ID: uuid.New(), UserID: uuid.New(), Name: name, IsOpen: open, CreatedAt: time.Now()}
	f.vendors = append(f.vendors, v)
	return v
}

func (f *fakeBackend) addFood(vendorID uuid.UUID, name, category string, available bool) domain.Food {
	f.mu.Lock()
	defer f.mu.Unlock()
	food := domain.Food{ID: uuid.New(), VendorID: vendorID, Name: name, Category: category, IsAvailable: available, Price: 1}
	f.foods = append(f.foods, food)
	return food
}

func (f *fakeBackend) vendor(id uuid.UUID) *domain.Vendor {
	for i := range f.vendors {
		if f.vendors[i].ID == id {
			return &f.vendors[i]
		}
	}
	return nil
}

func (f *fakeBackend) ListOpenVendors(context.Context) ([]domain.Vendor, error) {
	err := f.enter("ListOpenVendors")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []domain.Vendor
	for _, v := range f.vendors {
		if v.IsOpen {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListFeatured(context.Context) ([]domain.FeaturedVendor, error) {
	err := f.enter("ListFeatured")
	defer f.mu.Unlock()
	return slices.Clone(f.featured), err
}

func (f *fakeBackend) GetVendorByUser(_ context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	err := f.enter("GetVendorByUser")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, v := range f.vendors {
		if v.UserID == userID {
			return &v, nil
		}
	}
	return nil, errNoRows
}

func (f *fakeBackend) CreateVendor(_ context.Context, nv domain.NewVendor) (*domain.Vendor, error) {
	err := f.enter("CreateVendor")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, v := range f.vendors {
		if v.UserID == nv.UserID {
			return nil, errDuplicate
		}
	}
	v := domain.Vendor{
		ID:           uuid.New(),
		UserID:       nv.UserID,
		Name:         nv.Name,
		Description:  nv.Description,
		Address:      nv.Address,
		Latitude:     nv.Latitude,
		Longitude:    nv.Longitude,
		IsOpen:       nv.IsOpen,
		Rating:       nv.Rating,
		TotalReviews: nv.TotalReviews,
	}
	if nv.Phone != nil {
		v.Phone = *nv.Phone
	}
	f.vendors = append(f.vendors, v)
	return &v, nil
}

func (f *fakeBackend) SetVendorOpen(_ context.Context, vendorID uuid.UUID, open bool) error {
	err := f.enter("SetVendorOpen")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	if v := f.vendor(vendorID); v != nil {
		v.IsOpen = open
	}
	return nil
}

func (f *fakeBackend) ListAvailableFoods(_ context.Context, vendorID uuid.UUID) ([]domain.Food, error) {
	err := f.enter("ListAvailableFoods")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []domain.Food
	for _, food := range f.foods {
		if food.VendorID == vendorID && food.IsAvailable {
			out = append(out, food)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (f *fakeBackend) ListFoods(_ context.Context, vendorID uuid.UUID) ([]domain.Food, error) {
	err := f.enter("ListFoods")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []domain.Food
	for _, food := range f.foods {
		if food.VendorID == vendorID {
			out = append(out, food)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListCategoryRows(context.Context) ([]client.CategoryRow, error) {
	err := f.enter("ListCategoryRows")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var rows []client.CategoryRow
	for _, food := range f.foods {
		if v := f.vendor(food.VendorID); food.IsAvailable && v != nil && v.IsOpen {
			rows = append(rows, client.CategoryRow{Category: food.Category, VendorID: food.VendorID})
		}
	}
	return rows, nil
}

func (f *fakeBackend) CreateFood(_ context.Context, vendorID uuid.UUID, in domain.FoodInput) (*domain.Food, error) {
	err := f.enter("CreateFood")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	food := domain.Food{
		ID:              uuid.New(),
		VendorID:        vendorID,
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		Category:        in.Category,
		IsAvailable:     in.IsAvailable,
		PreparationTime: in.PreparationTime,
	}
	f.foods = append(f.foods, food)
	return &food, nil
}

func (f *fakeBackend) UpdateFood(_ context.Context, id uuid.UUID, in domain.FoodInput) (*domain.Food, error) {
	err := f.enter("UpdateFood")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range f.foods {
		if f.foods[i].ID == id {
			food := &f.foods[i]
			food.Name, food.Description, food.Price = in.Name, in.Description, in.Price
			food.Category, food.IsAvailable, food.PreparationTime = in.Category, in.IsAvailable, in.PreparationTime
			out := *food
			return &out, nil
		}
	}
	return nil, errNoRows
}

func (f *fakeBackend) SetFoodAvailable(_ context.Context, id uuid.UUID, available bool) error {
	err := f.enter("SetFoodAvailable")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	for i := range f.foods {
		if f.foods[i].ID == id {
			f.foods[i].IsAvailable = available
		}
	}
	return nil
}

func (f *fakeBackend) DeleteFood(_ context.Context, id uuid.UUID) error {
	err := f.enter("DeleteFood")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.foods = slices.DeleteFunc(f.foods, func(food domain.Food) bool { return food.ID == id })
	return nil
}

func (f *fakeBackend) ListFavoriteVendors(_ context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	err := f.enter("ListFavoriteVendors")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []domain.Vendor
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			if v := f.vendor(fav.VendorID); v != nil {
				out = append(out, *v)
			}
		}
	}
	return out, nil
}

func (f *fakeBackend) IsFavorite(_ context.Context, userID, vendorID uuid.UUID) (bool, error) {
	err := f.enter("IsFavorite")
	defer f.mu.Unlock()
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(f.favorites, func(fav domain.Favorite) bool {
		return fav.UserID == userID && fav.VendorID == vendorID
	}), nil
}

func (f *fakeBackend) AddFavorite(_ context.Context, userID, vendorID uuid.UUID) error {
	err := f.enter("AddFavorite")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	for _, fav := range f.favorites {
		if fav.UserID == userID && fav.VendorID == vendorID {
			return errDuplicate
		}
	}
	f.favorites = append(f.favorites, domain.Favorite{ID: uuid.New(), UserID: userID, VendorID: vendorID, CreatedAt: time.Now()})
	return nil
}

func (f *fakeBackend) RemoveFavorite(_ context.Context, userID, vendorID uuid.UUID) error {
	err := f.enter("RemoveFavorite")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.favorites = slices.DeleteFunc(f.favorites, func(fav domain.Favorite) bool {
		return fav.UserID == userID && fav.VendorID == vendorID
	})
	return nil
}

func (f *fakeBackend) ListVendorFavorites(_ context.Context, vendorID uuid.UUID) ([]domain.Favorite, error) {
	err := f.enter("ListVendorFavorites")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []domain.Favorite
	for _, fav := range f.favorites {
		if fav.VendorID == vendorID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (f *fakeBackend) CountUserFavorites(_ context.Context, userID uuid.UUID) (int, error) {
	err := f.enter("CountUserFavorites")
	defer f.mu.Unlock()
	n := 0
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			n++
		}
	}
	return n, err
}

func (f *fakeBackend) CreateReview(_ context.Context, r domain.NewReview) error {
	err := f.enter("CreateReview")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	for _, existing := range f.reviews {
		if existing.UserID == r.UserID && existing.VendorID == r.VendorID {
			return errDuplicate
		}
	}
	f.reviews = append(f.reviews, domain.Review{
		ID:        uuid.New(),
		UserID:    r.UserID,
		VendorID:  r.VendorID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeBackend) ListVendorReviews(_ context.Context, vendorID uuid.UUID) ([]domain.Review, error) {
	err := f.enter("ListVendorReviews")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []domain.Review
	for _, r := range f.reviews {
		if r.VendorID == vendorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBackend) CountUserReviews(_ context.Context, userID uuid.UUID) (int, error) {
	err := f.enter("CountUserReviews")
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reviews {
		if r.UserID == userID {
			n++
		}
	}
	return n, err
}
