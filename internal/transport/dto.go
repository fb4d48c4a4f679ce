package transport

import (
	"time"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/inventory"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,max=64,username"`
	Password string `json:"password" validate:"required,max=72"`
	Section  string `json:"section"  validate:"required,user_section"`
}

type RegisterProductRequest struct {
	Code       string `json:"code"        validate:"required,max=64"`
	Name       string `json:"name"        validate:"required,max=200"`
	ExpiryDate string `json:"expiry_date" validate:"required,calendar_date"`
	Lot        string `json:"lot"         validate:"max=64"`
	Quantity   int    `json:"quantity"    validate:"gte=1"`
	Section    string `json:"section"     validate:"required,department"`
}

// DeleteMatchRequest names a row by every field of its tuple.
type DeleteMatchRequest struct {
	Code       string `json:"code"        validate:"required"`
	Name       string `json:"name"        validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required,calendar_date"`
	Lot        string `json:"lot"`
	Quantity   int    `json:"quantity"    validate:"gte=1"`
	Section    string `json:"section"     validate:"required,department"`
}

func (r DeleteMatchRequest) Key() inventory.Key {
	return inventory.Key{
		Code:       r.Code,
		Name:       r.Name,
		ExpiryDate: r.ExpiryDate,
		Lot:        r.Lot,
		Quantity:   r.Quantity,
		Section:    r.Section,
	}.Normalize()
}

type SetStatusRequest struct {
	Color   string `json:"color"   validate:"required,status_color"`
	Message string `json:"message" validate:"required,max=500"`
}

type ListProductsQuery struct {
	Section string
	Tier    string
	Query   string
	Page    int
	Size    int
}

// ProductView is a product with its expiry classification at request time.
type ProductView struct {
	models.Product
	expiry.Result
}

type PageMeta struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

type ProductPage struct {
	Data []ProductView `json:"data"`
	Meta PageMeta      `json:"meta"`
}

type DeleteMatchResult struct {
	Removed int `json:"removed"`
}

type Me struct {
	Username string `json:"username"`
	Section  string `json:"section"`
	IsAdmin  bool   `json:"is_admin"`
	SeesAll  bool   `json:"sees_all_sections"`
}

type Sections struct {
	Departments []string `json:"departments"`
	UserScopes  []string `json:"user_scopes"`
}

type Bucket struct {
	Products int `json:"products"`
	Quantity int `json:"quantity"`
}

type SectionBucket struct {
	Section string `json:"section"`
	Bucket
}

type TierBucket struct {
	Tier  expiry.Tier `json:"tier"`
	Color string      `json:"color"`
	Bucket
}

type Summary struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Today         string          `json:"today"`
	TotalProducts int             `json:"total_products"`
	TotalQuantity int             `json:"total_quantity"`
	BySection     []SectionBucket `json:"by_section"`
	ByTier        []TierBucket    `json:"by_tier"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
