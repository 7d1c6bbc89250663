package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalogue entry.
type Product struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Slug             string           `json:"slug" db:"slug"`
	Description      string           `json:"description" db:"description"`
	ShortDescription string           `json:"shortDescription" db:"short_description"`
	Price            decimal.Decimal  `json:"price" db:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty" db:"sale_price"`
	Image            string           `json:"image" db:"image"`
	CategoryID       uuid.UUID        `json:"categoryId" db:"category_id"`
	CategoryName     string           `json:"categoryName,omitempty" db:"category_name"`
	SupplierID       *string          `json:"supplierId,omitempty" db:"supplier_id"`
	Stock            int              `json:"stock" db:"stock"`
	IsBestSeller     bool             `json:"isBestSeller" db:"is_best_seller"`
	IsNew            bool             `json:"isNew" db:"is_new"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
}

// ProductInput is the create and update payload. Nil fields are left unchanged on update.
type ProductInput struct {
	Name             *string          `json:"name"`
	Slug             *string          `json:"slug"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"shortDescription"`
	Price            *decimal.Decimal `json:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice"`
	Image            *string          `json:"image"`
	CategoryID       *uuid.UUID       `json:"categoryId"`
	SupplierID       *string          `json:"supplierId"`
	Stock            *int             `json:"stock"`
	IsBestSeller     *bool            `json:"isBestSeller"`
	IsNew            *bool            `json:"isNew"`
}

// ValidateCreate checks the fields a new product must carry.
func (in *ProductInput) ValidateCreate() error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return InvalidInput("name is required")
	}
	if in.Slug == nil || strings.TrimSpace(*in.Slug) == "" {
		return InvalidInput("slug is required")
	}
	if in.Price == nil {
		return InvalidInput("price is required")
	}
	if in.CategoryID == nil {
		return InvalidInput("categoryId is required")
	}
	return in.validateValues()
}

// ValidateUpdate checks only the fields that are present.
func (in *ProductInput) ValidateUpdate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return InvalidInput("name cannot be empty")
	}
	if in.Slug != nil && strings.TrimSpace(*in.Slug) == "" {
		return InvalidInput("slug cannot be empty")
	}
	return in.validateValues()
}

func (in *ProductInput) validateValues() error {
	if in.Price != nil && in.Price.IsNegative() {
		return InvalidInput("price cannot be negative")
	}
	if in.SalePrice != nil && in.SalePrice.IsNegative() {
		return InvalidInput("salePrice cannot be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return InvalidInput("stock cannot be negative")
	}
	return nil
}

// Apply copies the present fields onto p.
func (in *ProductInput) Apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Slug != nil {
		p.Slug = *in.Slug
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ShortDescription != nil {
		p.ShortDescription = *in.ShortDescription
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.SalePrice != nil {
		p.SalePrice = in.SalePrice
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.SupplierID != nil {
		p.SupplierID = in.SupplierID
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsBestSeller != nil {
		p.IsBestSeller = *in.IsBestSeller
	}
	if in.IsNew != nil {
		p.IsNew = *in.IsNew
	}
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID   *uuid.UUID
	SupplierID   *string
	IsBestSeller *bool
	IsNew        *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Sort         Sort
	Page         Page
}

// ProductWithVariants is a product together with its variants.
type ProductWithVariants struct {
	Product  *Product  `json:"product"`
	Variants []Variant `json:"variants"`
}

// StockDelta is a signed stock adjustment for one product.
type StockDelta struct {
	ProductID uuid.UUID
	Delta     int
}

// ProductSortFields maps sortable API fields to their columns.
var ProductSortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"price":     "price",
	"name":      "name",
	"stock":     "stock",
}

// DefaultProductSort lists newest products first.
var DefaultProductSort = Sort{Field: "createdAt", Desc: true}
