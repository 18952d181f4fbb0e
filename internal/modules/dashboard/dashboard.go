// Package dashboard computes the admin overview counters.
package dashboard

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
)

const LowStockThreshold = 10

var (
	pendingStatuses = []string{orders.StatusCreated, orders.StatusPaid, orders.StatusConfirmed}
	revenueStatuses = []string{
		orders.StatusPaid, orders.StatusConfirmed, orders.StatusPacked, orders.StatusShipped,
		orders.StatusDelivered, orders.StatusPartiallyRefunded,
	}
)

type Stats struct {
	OrdersToday      int64         `json:"orders_today"`
	PendingOrders    int64         `json:"pending_orders"`
	RevenueCents     int64         `json:"revenue_cents"`
	LowStockProducts int64         `json:"low_stock_products"`
	Customers        int64         `json:"customers"`
	Recent           []RecentOrder `json:"recent_orders"`
}

type RecentOrder struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	Customer   string    `json:"customer"`
	TotalCents int       `json:"total_cents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type Service struct {
	db        *gorm.DB
	catalog   *catalog.Repo
	customers *customers.Repo
	now       func() time.Time
}

func NewService(db *gorm.DB, cat *catalog.Repo, cust *customers.Repo) *Service {
	return &Service{db: db, catalog: cat, customers: cust, now: time.Now}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	q := s.db.WithContext(ctx).Model(&orders.Order{})

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := q.Session(&gorm.Session{}).Where("created_at >= ?", dayStart).Count(&st.OrdersToday).Error; err != nil {
		return Stats{}, err
	}
	if err := q.Session(&gorm.Session{}).Where("status IN ?", pendingStatuses).Count(&st.PendingOrders).Error; err != nil {
		return Stats{}, err
	}
	if err := q.Session(&gorm.Session{}).
		Select("COALESCE(SUM(total_cents - refunded_cents), 0)").
		Where("status IN ?", revenueStatuses).
		Scan(&st.RevenueCents).Error; err != nil {
		return Stats{}, err
	}

	var err error
	if st.LowStockProducts, err = s.catalog.LowStock(ctx, LowStockThreshold); err != nil {
		return Stats{}, err
	}
	if st.Customers, err = s.customers.Count(ctx); err != nil {
		return Stats{}, err
	}

	var recent []orders.Order
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(8).Find(&recent).Error; err != nil {
		return Stats{}, err
	}
	st.Recent = make([]RecentOrder, 0, len(recent))
	for _, o := range recent {
		st.Recent = append(st.Recent, RecentOrder{
			ID: o.ID, Number: o.Number, Customer: o.CustomerName,
			TotalCents: o.TotalCents, Status: o.Status, CreatedAt: o.CreatedAt,
		})
	}
	return st, nil
}
