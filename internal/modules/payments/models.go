package payments

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusInitiated = "initiated"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

type Payment struct {
	ID      string `gorm:"primaryKey;size:36"`
	OrderID string `gorm:"size:36;not null;index:ix_payments_order_id;uniqueIndex:ux_payments_idem,priority:1"`

	Provider          string  `gorm:"size:32;not null;index:ix_payments_provider_ref,priority:1"`
	ProviderRef       *string `gorm:"size:64;index:ix_payments_provider_ref,priority:2"` // gateway order id
	ProviderPaymentID *string `gorm:"size:64"`

	Status         string  `gorm:"size:32;not null"`
	AmountCents    int     `gorm:"not null"`
	Currency       string  `gorm:"size:3;not null"`
	IdempotencyKey string  `gorm:"size:64;not null;uniqueIndex:ux_payments_idem,priority:2"`
	ErrorMessage   *string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Payment) TableName() string { return "payments" }

type Refund struct {
	ID        string `gorm:"primaryKey;size:36"`
	OrderID   string `gorm:"size:36;not null;index:ix_refunds_order_id"`
	PaymentID string `gorm:"size:36;not null;uniqueIndex:ux_refunds_idem,priority:1"`

	Provider    string  `gorm:"size:32;not null"`
	ProviderRef *string `gorm:"size:64;index:ix_refunds_provider_ref"`

	Status         string `gorm:"size:32;not null"`
	AmountCents    int    `gorm:"not null"`
	Currency       string `gorm:"size:3;not null"`
	IdempotencyKey string `gorm:"size:64;not null;uniqueIndex:ux_refunds_idem,priority:2"`

	Reason       *string `gorm:"size:255"`
	ErrorMessage *string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Refund) TableName() string { return "refunds" }

// ProviderEvent is a received webhook; (provider, event_id) dedupes retries.
type ProviderEvent struct {
	ID          string         `gorm:"primaryKey;size:36"`
	Provider    string         `gorm:"size:32;not null;uniqueIndex:ux_provider_events_provider_event,priority:1"`
	EventID     string         `gorm:"size:128;not null;uniqueIndex:ux_provider_events_provider_event,priority:2"`
	EventType   string         `gorm:"size:64;not null"`
	PayloadJSON datatypes.JSON `gorm:"not null"`

	ReceivedAt   time.Time
	ProcessedAt  *time.Time
	ProcessError *string `gorm:"size:255"`
}

func (ProviderEvent) TableName() string { return "provider_events" }

func Models() []any { return []any{&Payment{}, &Refund{}, &ProviderEvent{}} }
