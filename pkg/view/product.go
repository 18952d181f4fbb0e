package view

import "time"

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Position int    `json:"position"`
	Active   bool   `json:"active,omitempty"`
}

type ProductCard struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	CategorySlug  string `json:"category_slug,omitempty"`
	Unit          string `json:"unit,omitempty"`
	Price         Money  `json:"price"`
	MRP           Money  `json:"mrp"`
	Discount      int    `json:"discount_percent"`
	DiscountLabel string `json:"discount_label,omitempty"`
	ImageURL      string `json:"image_url"`
	InStock       bool   `json:"in_stock"`
	Featured      bool   `json:"featured"`
}

type ProductDetail struct {
	ProductCard
	Description string    `json:"description"`
	Category    *Category `json:"category,omitempty"`
	Stock       int       `json:"stock"`
}

type GiftBoxItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type GiftBox struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description"`
	Price         Money         `json:"price"`
	MRP           Money         `json:"mrp"`
	Discount      int           `json:"discount_percent"`
	DiscountLabel string        `json:"discount_label,omitempty"`
	ImageURL      string        `json:"image_url"`
	InStock       bool          `json:"in_stock"`
	Contents      []GiftBoxItem `json:"contents"`
}

// AdminProduct exposes stock and storage details hidden from shoppers.
type AdminProduct struct {
	ProductDetail
	CategoryID string    `json:"category_id,omitempty"`
	Active     bool      `json:"active"`
	Position   int       `json:"position"`
	ImageKey   string    `json:"image_key,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AdminGiftBox struct {
	GiftBox
	Stock     int       `json:"stock"`
	Active    bool      `json:"active"`
	Position  int       `json:"position"`
	ImageKey  string    `json:"image_key,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
