package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("feedback not found")

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusHidden   = "hidden"
)

// Feedback is a customer testimonial shown on the storefront once approved.
type Feedback struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:120;not null"`
	City      string `gorm:"size:100"`
	Rating    int    `gorm:"not null"`
	Message   string `gorm:"type:text;not null"`
	Status    string `gorm:"size:16;not null;index:ix_feedback_status"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Feedback) TableName() string { return "feedback" }

func Models() []any { return []any{&Feedback{}} }

type SubmitInput struct {
	Name    string `json:"name" binding:"required,min=2,max=120"`
	City    string `json:"city" binding:"max=100"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Message string `json:"message" binding:"required,min=5,max=2000"`
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// Submit stores new feedback pending moderation.
func (r *Repo) Submit(ctx context.Context, in SubmitInput) (Feedback, error) {
	now := time.Now()
	f := Feedback{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		City:      strings.TrimSpace(in.City),
		Rating:    in.Rating,
		Message:   strings.TrimSpace(in.Message),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return f, r.db.WithContext(ctx).Create(&f).Error
}

func (r *Repo) Approved(ctx context.Context, limit int) ([]Feedback, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var out []Feedback
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusApproved).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// List returns all feedback for moderation, optionally filtered by status.
func (r *Repo) List(ctx context.Context, status string) ([]Feedback, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Feedback
	err := q.Find(&out).Error
	return out, err
}

func (r *Repo) SetStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&Feedback{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Approve(ctx context.Context, id string) error { return r.SetStatus(ctx, id, StatusApproved) }
func (r *Repo) Hide(ctx context.Context, id string) error    { return r.SetStatus(ctx, id, StatusHidden) }

func (r *Repo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Feedback{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
