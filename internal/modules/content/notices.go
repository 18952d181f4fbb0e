package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNoticeNotFound = errors.New("notice not found")

// Notice is a dismissible storefront banner message.
type Notice struct {
	ID        string `gorm:"primaryKey;size:36"`
	Message   string `gorm:"size:500;not null"`
	Kind      string `gorm:"size:16;not null"` // info|offer|warning
	Active    bool   `gorm:"not null"`
	Position  int    `gorm:"not null"`
	StartsAt  *time.Time
	EndsAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Notice) TableName() string { return "notices" }

type NoticeInput struct {
	Message  string     `json:"message" binding:"required,min=2,max=500"`
	Kind     string     `json:"kind" binding:"omitempty,oneof=info offer warning"`
	Active   bool       `json:"active"`
	Position int        `json:"position"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type NoticeRepo struct{ db *gorm.DB }

func NewNoticeRepo(db *gorm.DB) *NoticeRepo { return &NoticeRepo{db: db} }

// Visible lists notices active at now, minus those the caller dismissed.
func (r *NoticeRepo) Visible(ctx context.Context, now time.Time, dismissed []string) ([]Notice, error) {
	q := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("(starts_at IS NULL OR starts_at <= ?)", now).
		Where("(ends_at IS NULL OR ends_at > ?)", now)
	if len(dismissed) > 0 {
		q = q.Where("id NOT IN ?", dismissed)
	}
	var out []Notice
	err := q.Order("position ASC, created_at DESC").Find(&out).Error
	return out, err
}

func (r *NoticeRepo) List(ctx context.Context) ([]Notice, error) {
	var out []Notice
	err := r.db.WithContext(ctx).Order("position ASC, created_at DESC").Find(&out).Error
	return out, err
}

func (r *NoticeRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Notice{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *NoticeRepo) Create(ctx context.Context, in NoticeInput) (Notice, error) {
	now := time.Now()
	n := Notice{
		ID:        uuid.NewString(),
		Message:   strings.TrimSpace(in.Message),
		Kind:      noticeKind(in.Kind),
		Active:    in.Active,
		Position:  in.Position,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return n, r.db.WithContext(ctx).Create(&n).Error
}

func (r *NoticeRepo) Update(ctx context.Context, id string, in NoticeInput) (Notice, error) {
	var n Notice
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Notice{}, ErrNoticeNotFound
		}
		return Notice{}, err
	}
	n.Message = strings.TrimSpace(in.Message)
	n.Kind = noticeKind(in.Kind)
	n.Active = in.Active
	n.Position = in.Position
	n.StartsAt = in.StartsAt
	n.EndsAt = in.EndsAt
	n.UpdatedAt = time.Now()
	return n, r.db.WithContext(ctx).Save(&n).Error
}

func (r *NoticeRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Notice{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoticeNotFound
	}
	return nil
}

func noticeKind(k string) string {
	switch k {
	case "offer", "warning":
		return k
	}
	return "info"
}

func Models() []any { return []any{&SiteSetting{}, &Notice{}} }
