package catalog

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/internal/apperr"
	"github.com/kengakuru/kibanda/pkg/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// firstFailure maps the first failing field to its message. Fields are
// reported in declaration order.
func firstFailure(v any, msgs map[string]string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	if msg, ok := msgs[verrs[0].Field()]; ok {
		return apperr.New(apperr.Validation, msg)
	}
	return apperr.New(apperr.Validation, verrs[0].Error())
}

// FoodForm is a menu item as typed by a vendor.
type FoodForm struct {
	Name            string `validate:"required"`
	Price           string `validate:"required"`
	Category        string `validate:"required"`
	Description     string
	PreparationTime string
	Available       bool
}

// DefaultPreparationTime is used when a form leaves the field blank.
const DefaultPreparationTime = 10

// Input validates the form and converts it to a backend payload.
func (f FoodForm) Input() (domain.FoodInput, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Price = strings.TrimSpace(f.Price)
	f.Category = strings.TrimSpace(f.Category)
	if err := firstFailure(f, map[string]string{
		"Name":     MsgFillRequired,
		"Price":    MsgFillRequired,
		"Category": MsgFillRequired,
	}); err != nil {
		return domain.FoodInput{}, err
	}

	price, err := strconv.ParseFloat(f.Price, 64)
	if err != nil || price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		return domain.FoodInput{}, apperr.New(apperr.Validation, MsgInvalidPrice)
	}

	prep := DefaultPreparationTime
	if s := strings.TrimSpace(f.PreparationTime); s != "" {
		prep, err = strconv.Atoi(s)
		if err != nil || prep <= 0 {
			return domain.FoodInput{}, apperr.New(apperr.Validation, MsgInvalidPrepTime)
		}
	}

	return domain.FoodInput{
		Name:            f.Name,
		Description:     strings.TrimSpace(f.Description),
		Price:           price,
		Category:        f.Category,
		IsAvailable:     f.Available,
		PreparationTime: prep,
	}, nil
}

// FormFromFood fills a form for editing an existing item.
func FormFromFood(food domain.Food) FoodForm {
	return FoodForm{
		Name:            food.Name,
		Price:           strconv.FormatFloat(food.Price, 'f', -1, 64),
		Category:        food.Category,
		Description:     food.Description,
		PreparationTime: strconv.Itoa(food.PreparationTime),
		Available:       food.IsAvailable,
	}
}

// VendorSetup is the business profile a new vendor fills in.
type VendorSetup struct {
	Name        string  `validate:"required"`
	Address     string  `validate:"required"`
	Description string  `validate:"required"`
	Phone       string
	Latitude    float64 `validate:"latitude"`
	Longitude   float64 `validate:"longitude"`
}

func (v VendorSetup) row(userID uuid.UUID) (domain.NewVendor, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.Address = strings.TrimSpace(v.Address)
	v.Description = strings.TrimSpace(v.Description)
	if err := firstFailure(v, map[string]string{
		"Name":        MsgBusinessName,
		"Address":     MsgBusinessAddress,
		"Description": MsgBusinessDesc,
		"Latitude":    MsgInvalidLocation,
		"Longitude":   MsgInvalidLocation,
	}); err != nil {
		return domain.NewVendor{}, err
	}
	nv := domain.NewVendor{
		UserID:      userID,
		Name:        v.Name,
		Description: v.Description,
		Address:     v.Address,
		Latitude:    v.Latitude,
		Longitude:   v.Longitude,
		IsOpen:      true,
	}
	if phone := strings.TrimSpace(v.Phone); phone != "" {
		nv.Phone = &phone
	}
	return nv, nil
}
