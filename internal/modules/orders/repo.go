package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/shipping"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// DB returns the underlying database connection for direct queries.
func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) GetByNumber(ctx context.Context, number string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).First(&o, "number = ?", strings.ToUpper(strings.TrimSpace(number))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) Items(ctx context.Context, orderID string) ([]OrderItem, error) {
	var items []OrderItem
	err := r.db.WithContext(ctx).Order("position ASC").Find(&items, "order_id = ?", orderID).Error
	return items, err
}

func (r *Repo) GetWithItems(ctx context.Context, id string) (Order, []OrderItem, error) {
	o, err := r.Get(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	items, err := r.Items(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	return o, items, nil
}

func (r *Repo) Events(ctx context.Context, orderID string) ([]OrderEvent, error) {
	var ev []OrderEvent
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&ev, "order_id = ?", orderID).Error
	return ev, err
}

type Tracking struct {
	Order     Order
	Items     []OrderItem
	Events    []OrderEvent
	Shipments []shipping.Shipment
}

// Track looks an order up by number and the phone it was placed with.
// A phone mismatch is reported as not found.
func (r *Repo) Track(ctx context.Context, number, phone string) (Tracking, error) {
	o, err := r.GetByNumber(ctx, number)
	if err != nil {
		return Tracking{}, err
	}
	if o.Phone != NormalizePhone(phone) {
		return Tracking{}, ErrNotFound
	}
	return r.tracking(ctx, o)
}

func (r *Repo) tracking(ctx context.Context, o Order) (Tracking, error) {
	items, err := r.Items(ctx, o.ID)
	if err != nil {
		return Tracking{}, err
	}
	ev, err := r.Events(ctx, o.ID)
	if err != nil {
		return Tracking{}, err
	}
	sh, err := shipping.NewRepo(r.db).ListByOrder(ctx, o.ID)
	if err != nil {
		return Tracking{}, err
	}
	return Tracking{Order: o, Items: items, Events: ev, Shipments: sh}, nil
}

type ListByUserParams struct {
	UserID   string
	Page     int
	PageSize int
}

type ListItem struct {
	Order     Order
	ItemCount int
}

type ListResult struct {
	Items []ListItem
	Total int64
}

func (r *Repo) ListByUser(ctx context.Context, in ListByUserParams) (ListResult, error) {
	page, size := pageOf(in.Page, in.PageSize, 20)
	q := r.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", in.UserID)
	return r.list(ctx, q, page, size)
}

type AdminListParams struct {
	Q          string
	Status     string
	CustomerID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

func (r *Repo) AdminList(ctx context.Context, in AdminListParams) (ListResult, error) {
	page, size := pageOf(in.Page, in.PageSize, 30)

	q := r.db.WithContext(ctx).Model(&Order{})
	if status := strings.TrimSpace(in.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	if in.CustomerID != "" {
		q = q.Where("customer_id = ?", in.CustomerID)
	}
	if s := strings.TrimSpace(in.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(number) LIKE ? OR phone LIKE ? OR LOWER(customer_name) LIKE ?)", like, like, like)
	}
	if in.From != nil {
		q = q.Where("created_at >= ?", *in.From)
	}
	if in.To != nil {
		q = q.Where("created_at < ?", *in.To)
	}
	return r.list(ctx, q, page, size)
}

func (r *Repo) list(ctx context.Context, q *gorm.DB, page, size int) (ListResult, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, err
	}

	var orders []Order
	if err := q.Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&orders).Error; err != nil {
		return ListResult{}, err
	}

	counts := map[string]int{}
	if len(orders) > 0 {
		ids := make([]string, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		type row struct {
			OrderID string
			Units   int
		}
		var rows []row
		if err := r.db.WithContext(ctx).Model(&OrderItem{}).
			Select("order_id, SUM(quantity) AS units").
			Where("order_id IN ?", ids).
			Group("order_id").
			Scan(&rows).Error; err != nil {
			return ListResult{}, err
		}
		for _, rw := range rows {
			counts[rw.OrderID] = rw.Units
		}
	}

	items := make([]ListItem, len(orders))
	for i, o := range orders {
		items[i] = ListItem{Order: o, ItemCount: counts[o.ID]}
	}
	return ListResult{Items: items, Total: total}, nil
}

type AdminDetail struct {
	Tracking
	Financial []FinancialEntry
}

func (r *Repo) AdminGetDetail(ctx context.Context, orderID string) (AdminDetail, error) {
	o, err := r.Get(ctx, orderID)
	if err != nil {
		return AdminDetail{}, err
	}
	t, err := r.tracking(ctx, o)
	if err != nil {
		return AdminDetail{}, err
	}
	var fin []FinancialEntry
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&fin, "order_id = ?", orderID).Error; err != nil {
		return AdminDetail{}, err
	}
	return AdminDetail{Tracking: t, Financial: fin}, nil
}

// ListForExport returns orders created in [from, to) oldest first.
func (r *Repo) ListForExport(ctx context.Context, from, to time.Time) ([]Order, error) {
	var out []Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func pageOf(page, size, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = def
	}
	return page, size
}
