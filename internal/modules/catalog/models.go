package catalog

import (
	"time"

	"gorm.io/datatypes"
)

type Kind string

const (
	KindProduct Kind = "product"
	KindGiftBox Kind = "gift_box"
)

func (k Kind) Valid() bool { return k == KindProduct || k == KindGiftBox }

// Table is the backing table holding stock for items of this kind.
func (k Kind) Table() string {
	if k == KindGiftBox {
		return "gift_boxes"
	}
	return "products"
}

// ItemRef identifies anything that can be put in a cart.
type ItemRef struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (r ItemRef) Key() string { return string(r.Kind) + ":" + r.ID }

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Slug      string    `gorm:"size:140;not null;uniqueIndex:ux_categories_slug" json:"slug"`
	Position  int       `gorm:"not null" json:"position"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID          string    `gorm:"primaryKey;size:36"`
	CategoryID  *string   `gorm:"size:36;index:ix_products_category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID"`
	Name        string    `gorm:"size:200;not null"`
	Slug        string    `gorm:"size:220;not null;uniqueIndex:ux_products_slug"`
	Description string    `gorm:"type:text"`
	Unit        string    `gorm:"size:40"` // "1 box", "10 pcs"
	PriceCents  int       `gorm:"not null"`
	MRPCents    int       `gorm:"not null"`
	Stock       int       `gorm:"not null"`
	ImageURL    string    `gorm:"size:500"`
	ImageKey    string    `gorm:"size:255"`
	Active      bool      `gorm:"not null;index:ix_products_active"`
	Featured    bool      `gorm:"not null"`
	Position    int       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Product) TableName() string { return "products" }

type GiftBoxItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type GiftBox struct {
	ID          string                            `gorm:"primaryKey;size:36"`
	Name        string                            `gorm:"size:200;not null"`
	Slug        string                            `gorm:"size:220;not null;uniqueIndex:ux_gift_boxes_slug"`
	Description string                            `gorm:"type:text"`
	PriceCents  int                               `gorm:"not null"`
	MRPCents    int                               `gorm:"not null"`
	Stock       int                               `gorm:"not null"`
	ImageURL    string                            `gorm:"size:500"`
	ImageKey    string                            `gorm:"size:255"`
	Contents    datatypes.JSONSlice[GiftBoxItem] `gorm:"not null"`
	Active      bool                              `gorm:"not null"`
	Position    int                               `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (GiftBox) TableName() string { return "gift_boxes" }

// Sellable is the price/stock snapshot of one ItemRef.
type Sellable struct {
	Ref        ItemRef
	Name       string
	Slug       string
	ImageURL   string
	PriceCents int
	MRPCents   int
	Stock      int
	Active     bool
}

// DiscountPercent derives the advertised discount from MRP, rounded down.
func DiscountPercent(priceCents, mrpCents int) int {
	if mrpCents <= 0 || priceCents >= mrpCents {
		return 0
	}
	return (mrpCents - priceCents) * 100 / mrpCents
}

// Models lists every table owned by this package.
func Models() []any { return []any{&Category{}, &Product{}, &GiftBox{}} }
