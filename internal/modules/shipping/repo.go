package shipping

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shipment struct {
	ID         string `gorm:"primaryKey;size:36"`
	OrderID    string `gorm:"size:36;not null;index:ix_shipments_order_id"`
	Courier    string `gorm:"size:80;not null"`
	TrackingNo string `gorm:"size:80"`
	Note       string `gorm:"size:255"`
	ShippedAt  time.Time
	CreatedAt  time.Time
}

func (Shipment) TableName() string { return "shipments" }

func Models() []any { return []any{&Shipment{}} }

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListByOrder(ctx context.Context, orderID string) ([]Shipment, error) {
	orderID = strings.ToLower(strings.TrimSpace(orderID))

	var shipments []Shipment
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&shipments, "order_id = ?", orderID).Error
	return shipments, err
}

type CreateInput struct {
	OrderID    string
	Courier    string
	TrackingNo string
	Note       string
}

// CreateInTx records a dispatch inside the order transition transaction.
func CreateInTx(ctx context.Context, tx *gorm.DB, in CreateInput, at time.Time) (Shipment, error) {
	s := Shipment{
		ID:         uuid.NewString(),
		OrderID:    in.OrderID,
		Courier:    strings.TrimSpace(in.Courier),
		TrackingNo: strings.TrimSpace(in.TrackingNo),
		Note:       strings.TrimSpace(in.Note),
		ShippedAt:  at,
		CreatedAt:  at,
	}
	return s, tx.WithContext(ctx).Create(&s).Error
}
