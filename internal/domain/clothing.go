package domain

import (
	"errors"
	"fmt"

	"github.com/syncwatch/server/pkg/validator"
)

var (
	ErrInvalidClothing  = errors.New("invalid clothing item")
	ErrClothingNotFound = errors.New("clothing item not found")
)

var validate = validator.NewValidator()

// Clothing is a single catalogue item shown alongside a video. Items are
// shared by reference: the same *Clothing may live in several outfits and
// in the wishlist at once, it is never copied.
type Clothing struct {
	Id          int    `json:"id" validate:"gte=0"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Photo       string `json:"photo" validate:"required"`
}

type NewClothingParams struct {
	Id          int
	Name        string
	Description string
	Photo       string
}

func NewClothing(params *NewClothingParams) (*Clothing, error) {
	clothing := Clothing{
		Id:          params.Id,
		Name:        params.Name,
		Description: params.Description,
		Photo:       params.Photo,
	}

	if errs, ok := validate.Validate(&clothing); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidClothing, errs[0].Message)
	}

	return &clothing, nil
}
