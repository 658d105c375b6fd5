package domain

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Parent      *int64    `json:"parent,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	ShortDescription string        `json:"short_description"`
	Description      string        `json:"description,omitempty"`
	Category         Category      `json:"category"`
	PrimaryImage     *ProductImage `json:"primary_image,omitempty"`
	PriceRange       string        `json:"price_range"`
	IsActive         bool          `json:"is_active"`
	IsFeatured       bool          `json:"is_featured"`
	VariantCount     int           `json:"variant_count"`
	Variants         []Variant     `json:"variants,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ProductPage is one page of a paginated product listing.
type ProductPage struct {
	Results  []Product `json:"results"`
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
}

// ProductFilter holds the listing query. Zero values are not sent.
type ProductFilter struct {
	Search     string
	Category   string
	MinPrice   string
	MaxPrice   string
	IsFeatured bool
	InStock    bool
	Ordering   string
	Page       int
}
