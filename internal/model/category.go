package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups products. ProductCount is maintained by product writes.
type Category struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description" db:"description"`
	Image        string    `json:"image" db:"image"`
	ProductCount int       `json:"productCount" db:"product_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryInput is the create and update payload.
type CategoryInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func (in *CategoryInput) ValidateCreate() error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return InvalidInput("name is required")
	}
	if in.Slug == nil || strings.TrimSpace(*in.Slug) == "" {
		return InvalidInput("slug is required")
	}
	return nil
}

func (in *CategoryInput) ValidateUpdate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return InvalidInput("name cannot be empty")
	}
	if in.Slug != nil && strings.TrimSpace(*in.Slug) == "" {
		return InvalidInput("slug cannot be empty")
	}
	return nil
}

// Apply copies the present fields onto c.
func (in *CategoryInput) Apply(c *Category) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Slug != nil {
		c.Slug = *in.Slug
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Image != nil {
		c.Image = *in.Image
	}
}

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	Search string
	Page   Page
}
