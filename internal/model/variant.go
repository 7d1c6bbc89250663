package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is a size or presentation option of a product.
type Variant struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ProductID     uuid.UUID       `json:"productId" db:"product_id"`
	Size          string          `json:"size" db:"size"`
	Variant       string          `json:"variant" db:"variant"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stockQuantity" db:"stock_quantity"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// VariantInput is the payload for adding a variant.
type VariantInput struct {
	Size          string          `json:"size"`
	Variant       string          `json:"variant"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

func (in *VariantInput) Validate() error {
	if in.Size == "" && in.Variant == "" {
		return InvalidInput("size or variant is required")
	}
	if in.Price.IsNegative() {
		return InvalidInput("price cannot be negative")
	}
	if in.StockQuantity < 0 {
		return InvalidInput("stockQuantity cannot be negative")
	}
	return nil
}
