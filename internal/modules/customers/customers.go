package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID          string  `gorm:"primaryKey;size:36"`
	UserID      *string `gorm:"size:36;index:ix_customers_user_id"`
	Name        string  `gorm:"size:120;not null"`
	Phone       string  `gorm:"size:20;not null;uniqueIndex:ux_customers_phone"`
	Email       string  `gorm:"size:255"`
	AddressLine string  `gorm:"size:500"`
	City        string  `gorm:"size:100"`
	State       string  `gorm:"size:100"`
	Pincode     string  `gorm:"size:10"`
	Notes       string  `gorm:"type:text"`
	OrdersCount int     `gorm:"not null"`
	LastOrderAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Customer) TableName() string { return "customers" }

func Models() []any { return []any{&Customer{}} }

type Contact struct {
	UserID      *string
	Name        string
	Phone       string
	Email       string
	AddressLine string
	City        string
	State       string
	Pincode     string
}

// UpsertInTx records a checkout against the customer keyed by phone,
// refreshing the contact details with the latest ones given.
func UpsertInTx(ctx context.Context, tx *gorm.DB, in Contact, at time.Time) (Customer, error) {
	var c Customer
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("phone = ?", in.Phone).
		First(&c).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c = Customer{
			ID:          uuid.NewString(),
			UserID:      in.UserID,
			Name:        in.Name,
			Phone:       in.Phone,
			Email:       in.Email,
			AddressLine: in.AddressLine,
			City:        in.City,
			State:       in.State,
			Pincode:     in.Pincode,
			OrdersCount: 1,
			LastOrderAt: &at,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		return c, tx.WithContext(ctx).Create(&c).Error
	case err != nil:
		return Customer{}, err
	}

	updates := map[string]any{
		"name":          in.Name,
		"address_line":  in.AddressLine,
		"city":          in.City,
		"state":         in.State,
		"pincode":       in.Pincode,
		"orders_count":  gorm.Expr("orders_count + 1"),
		"last_order_at": at,
		"updated_at":    at,
	}
	if in.Email != "" {
		updates["email"] = in.Email
	}
	if c.UserID == nil && in.UserID != nil {
		updates["user_id"] = *in.UserID
	}
	if err := tx.WithContext(ctx).Model(&Customer{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return Customer{}, err
	}
	err = tx.WithContext(ctx).First(&c, "id = ?", c.ID).Error
	return c, err
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

type ListParams struct {
	Q        string
	Page     int
	PageSize int
}

type ListResult struct {
	Items []Customer
	Total int64
}

func (r *Repo) List(ctx context.Context, in ListParams) (ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 30
	}

	q := r.db.WithContext(ctx).Model(&Customer{})
	if s := strings.TrimSpace(in.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, err
	}
	var items []Customer
	if err := q.Order("last_order_at DESC, created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Customer, error) {
	var c Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

type UpdateInput struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	Email string `json:"email" binding:"omitempty,email,max=255"`
	Notes string `json:"notes" binding:"max=2000"`
}

func (r *Repo) Update(ctx context.Context, id string, in UpdateInput) (Customer, error) {
	res := r.db.WithContext(ctx).Model(&Customer{}).Where("id = ?", id).Updates(map[string]any{
		"name":       strings.TrimSpace(in.Name),
		"email":      strings.TrimSpace(in.Email),
		"notes":      strings.TrimSpace(in.Notes),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return Customer{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Customer{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Customer{}).Count(&n).Error
	return n, err
}
