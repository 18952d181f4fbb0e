package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) cartIDInTx(tx *gorm.DB, userID string, create bool) (string, error) {
	var c Cart
	err := tx.Where("user_id = ?", userID).First(&c).Error
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) || !create {
		return "", err
	}
	now := time.Now()
	c = Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		// lost a race with a concurrent first add
		var existing Cart
		if err := tx.Where("user_id = ?", userID).First(&existing).Error; err != nil {
			return "", err
		}
		return existing.ID, nil
	}
	return c.ID, nil
}

// LoadUserLines returns the user's cart lines in insertion order.
func (r *Repo) LoadUserLines(ctx context.Context, userID string) (Lines, error) {
	return r.LoadUserLinesInTx(r.db.WithContext(ctx), userID)
}

func (r *Repo) LoadUserLinesInTx(tx *gorm.DB, userID string) (Lines, error) {
	cartID, err := r.cartIDInTx(tx, userID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Lines{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []CartItem
	if err := tx.Where("cart_id = ?", cartID).
		Order("position ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	out := make(Lines, 0, len(items))
	for _, it := range items {
		out = append(out, Line{
			Ref: catalog.ItemRef{Kind: catalog.Kind(it.Kind), ID: it.ItemID},
			Qty: it.Quantity,
		})
	}
	return out, nil
}

// SaveUserLines replaces the stored cart with lines.
func (r *Repo) SaveUserLines(ctx context.Context, userID string, lines Lines) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cartID, err := r.cartIDInTx(tx, userID, true)
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		now := time.Now()
		if len(lines) > 0 {
			items := make([]CartItem, 0, len(lines))
			for i, l := range lines {
				items = append(items, CartItem{
					ID:        uuid.NewString(),
					CartID:    cartID,
					Kind:      string(l.Ref.Kind),
					ItemID:    l.Ref.ID,
					Quantity:  l.Qty,
					Position:  i,
					CreatedAt: now,
					UpdatedAt: now,
				})
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Cart{}).Where("id = ?", cartID).Update("updated_at", now).Error
	})
}

// ClearUserCartInTx empties the cart inside an outer transaction.
func (r *Repo) ClearUserCartInTx(tx *gorm.DB, userID string) error {
	cartID, err := r.cartIDInTx(tx, userID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error
}
