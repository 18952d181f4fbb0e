package cart

import "time"

type Cart struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:36;not null;uniqueIndex:ux_carts_user_id"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	ID       string `gorm:"primaryKey;size:36"`
	CartID   string `gorm:"size:36;not null;uniqueIndex:ux_cart_items_line,priority:1"`
	Kind     string `gorm:"size:16;not null;uniqueIndex:ux_cart_items_line,priority:2"`
	ItemID   string `gorm:"size:36;not null;uniqueIndex:ux_cart_items_line,priority:3"`
	Quantity int    `gorm:"not null"`
	Position int    `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItem) TableName() string { return "cart_items" }

func Models() []any { return []any{&Cart{}, &CartItem{}} }
