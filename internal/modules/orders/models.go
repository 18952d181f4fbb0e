package orders

import "time"

const (
	StatusCreated           = "created"
	StatusPaid              = "paid"
	StatusConfirmed         = "confirmed"
	StatusPacked            = "packed"
	StatusShipped           = "shipped"
	StatusDelivered         = "delivered"
	StatusCancelled         = "cancelled"
	StatusPartiallyRefunded = "partially_refunded"
	StatusRefunded          = "refunded"
)

const (
	MethodOnline = "online"
	MethodManual = "manual"

	ModeUPI  = "upi"
	ModeBank = "bank"
	ModeCOD  = "cod"
)

const CurrencyINR = "INR"

// ActorSystem marks events written by checkout, gateways and webhooks.
const ActorSystem = "system"

type Order struct {
	ID     string  `gorm:"primaryKey;size:36"`
	Number string  `gorm:"size:20;not null;uniqueIndex:ux_orders_number"`
	UserID *string `gorm:"size:36;index:ix_orders_user_id"`

	CustomerID   string `gorm:"size:36;not null;index:ix_orders_customer_id"`
	CustomerName string `gorm:"size:120;not null"`
	Phone        string `gorm:"size:20;not null;index:ix_orders_phone"`
	Email        string `gorm:"size:255"`
	AddressLine  string `gorm:"size:500;not null"`
	City         string `gorm:"size:100;not null"`
	State        string `gorm:"size:100;not null"`
	Pincode      string `gorm:"size:10;not null"`
	Notes        string `gorm:"size:1000"`

	Status        string `gorm:"size:32;not null;index:ix_orders_status"`
	PaymentMethod string `gorm:"size:16;not null"`
	ManualMode    string `gorm:"size:16"`
	Currency      string `gorm:"size:3;not null"`

	SubtotalCents int `gorm:"not null"`
	DeliveryCents int `gorm:"not null"`
	TotalCents    int `gorm:"not null"`
	RefundedCents int `gorm:"not null"`

	IdemScope string `gorm:"size:80;not null;uniqueIndex:ux_orders_idem,priority:1"`
	IdemKey   string `gorm:"size:64;not null;uniqueIndex:ux_orders_idem,priority:2"`

	PaidAt      *time.Time
	ConfirmedAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time
	CreatedAt   time.Time `gorm:"index:ix_orders_created_at"`
	UpdatedAt   time.Time
}

func (Order) TableName() string { return "orders" }

func (o Order) IsCOD() bool { return o.PaymentMethod == MethodManual && o.ManualMode == ModeCOD }

type OrderItem struct {
	ID             string `gorm:"primaryKey;size:36"`
	OrderID        string `gorm:"size:36;not null;index:ix_order_items_order_id"`
	Kind           string `gorm:"size:16;not null"`
	ItemID         string `gorm:"size:36;not null"`
	Name           string `gorm:"size:200;not null"`
	Slug           string `gorm:"size:220"`
	UnitPriceCents int    `gorm:"not null"`
	MRPCents       int    `gorm:"not null"`
	Quantity       int    `gorm:"not null"`
	LineTotalCents int    `gorm:"not null"`
	Position       int    `gorm:"not null"`
	CreatedAt      time.Time
}

func (OrderItem) TableName() string { return "order_items" }

type OrderEvent struct {
	ID          string  `gorm:"primaryKey;size:36"`
	OrderID     string  `gorm:"size:36;not null;index:ix_order_events_order_id"`
	ActorUserID string  `gorm:"size:36;not null"`
	Action      string  `gorm:"size:32;not null"`
	FromStatus  string  `gorm:"size:32"`
	ToStatus    string  `gorm:"size:32;not null"`
	Note        *string `gorm:"size:255"`
	CreatedAt   time.Time
}

func (OrderEvent) TableName() string { return "order_events" }

// FinancialEntry is the money ledger: positive in, negative out.
type FinancialEntry struct {
	ID          string `gorm:"primaryKey;size:36"`
	OrderID     string `gorm:"size:36;not null;index:ix_financial_entries_order_id"`
	Event       string `gorm:"size:32;not null;uniqueIndex:ux_financial_entries_ref,priority:3"`
	AmountCents int    `gorm:"not null"`
	Currency    string `gorm:"size:3;not null"`
	RefType     string `gorm:"size:16;not null;uniqueIndex:ux_financial_entries_ref,priority:1"`
	RefID       string `gorm:"size:36;not null;uniqueIndex:ux_financial_entries_ref,priority:2"`
	CreatedAt   time.Time
}

func (FinancialEntry) TableName() string { return "financial_entries" }

func Models() []any {
	return []any{&Order{}, &OrderItem{}, &OrderEvent{}, &FinancialEntry{}}
}
