package catalog

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// VendorMenu lists a vendor's available foods ordered by category. Results
// are cached per vendor until one of the vendor's items changes.
func (s *Service) VendorMenu(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error) {
	if foods, ok := s.menus.Get(vendorID); ok {
		return slices.Clone(foods), nil
	}
	foods, err := s.backend.ListAvailableFoods(ctx, vendorID)
	if err != nil {
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("list available foods")
		return nil, failed(MsgLoadMenu, err)
	}
	s.menus.Add(vendorID, slices.Clone(foods))
	return foods, nil
}

// ForgetMenu drops a vendor's cached menu.
func (s *Service) ForgetMenu(vendorID uuid.UUID) {
	s.menus.Remove(vendorID)
}

// MenuSection is one category of a menu.
type MenuSection struct {
	Category string
	Foods    []domain.Food
}

// GroupByCategory splits foods into sections by trimmed category, keeping
// the order in which each category first appears.
func GroupByCategory(foods []domain.Food) []MenuSection {
	var sections []MenuSection
	index := make(map[string]int)
	for _, f := range foods {
		cat := strings.TrimSpace(f.Category)
		i, ok := index[cat]
		if !ok {
			i = len(sections)
			index[cat] = i
			sections = append(sections, MenuSection{Category: cat})
		}
		sections[i].Foods = append(sections[i].Foods, f)
	}
	return sections
}

// Menu lists every item a vendor sells, available or not, newest first.
func (s *Service) Menu(ctx context.Context, vendorID uuid.UUID) ([]domain.Food, error) {
	foods, err := s.backend.ListFoods(ctx, vendorID)
	if err != nil {
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("list foods")
		return nil, failed(MsgLoadMenu, err)
	}
	return foods, nil
}

// AddFood adds an item to a vendor's menu.
func (s *Service) AddFood(ctx context.Context, vendorID uuid.UUID, form FoodForm) (*domain.Food, error) {
	in, err := form.Input()
	if err != nil {
		return nil, err
	}
	food, err := s.backend.CreateFood(ctx, vendorID, in)
	if err != nil {
		s.log.Warn().Err(err).Stringer("vendor_id", vendorID).Msg("create food")
		return nil, failed(MsgAddFood, err)
	}
	s.ForgetMenu(vendorID)
	return food, nil
}

// UpdateFood replaces an item's editable fields.
func (s *Service) UpdateFood(ctx context.Context, vendorID, foodID uuid.UUID, form FoodForm) (*domain.Food, error) {
	in, err := form.Input()
	if err != nil {
		return nil, err
	}
	food, err := s.backend.UpdateFood(ctx, foodID, in)
	if err != nil {
		s.log.Warn().Err(err).Stringer("food_id", foodID).Msg("update food")
		return nil, failed(MsgUpdateFood, err)
	}
	s.ForgetMenu(vendorID)
	return food, nil
}

// DeleteFood removes an item from a vendor's menu.
func (s *Service) DeleteFood(ctx context.Context, vendorID, foodID uuid.UUID) error {
	if err := s.backend.DeleteFood(ctx, foodID); err != nil {
		s.log.Warn().Err(err).Stringer("food_id", foodID).Msg("delete food")
		return failed(MsgDeleteFood, err)
	}
	s.ForgetMenu(vendorID)
	return nil
}

// SetFoodAvailability marks an item as available or sold out.
func (s *Service) SetFoodAvailability(ctx context.Context, vendorID, foodID uuid.UUID, available bool) error {
	if err := s.backend.SetFoodAvailable(ctx, foodID, available); err != nil {
		s.log.Warn().Err(err).Stringer("food_id", foodID).Msg("set food availability")
		return failed(MsgFoodAvailable, err)
	}
	s.ForgetMenu(vendorID)
	return nil
}

// Categories counts the distinct open vendors serving each category of
// available food, most widely served first.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.backend.ListCategoryRows(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list category rows")
		return nil, failed(MsgLoadCategories, err)
	}
	vendors := make(map[string]map[uuid.UUID]struct{})
	for _, r := range rows {
		cat := strings.TrimSpace(r.Category)
		if cat == "" {
			continue
		}
		if vendors[cat] == nil {
			vendors[cat] = make(map[uuid.UUID]struct{})
		}
		vendors[cat][r.VendorID] = struct{}{}
	}
	out := make([]domain.Category, 0, len(vendors))
	for name, ids := range vendors {
		out = append(out, domain.Category{Name: name, VendorCount: len(ids)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VendorCount != out[j].VendorCount {
			return out[i].VendorCount > out[j].VendorCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
