package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/slug"
)

var ErrDuplicateSlug = errors.New("slug already in use")

// Repo is the admin write side of the catalog.
type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

type CategoryInput struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Slug     string `json:"slug" binding:"omitempty,max=140"`
	Position int    `json:"position"`
	Active   bool   `json:"active"`
}

type ProductInput struct {
	CategoryID  string `json:"category_id" binding:"omitempty,max=36"`
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Slug        string `json:"slug" binding:"omitempty,max=220"`
	Description string `json:"description" binding:"max=5000"`
	Unit        string `json:"unit" binding:"max=40"`
	PriceCents  int    `json:"price_cents" binding:"gte=0"`
	MRPCents    int    `json:"mrp_cents" binding:"gte=0"`
	Stock       int    `json:"stock" binding:"gte=0"`
	Active      bool   `json:"active"`
	Featured    bool   `json:"featured"`
	Position    int    `json:"position"`
}

type GiftBoxInput struct {
	Name        string        `json:"name" binding:"required,min=2,max=200"`
	Slug        string        `json:"slug" binding:"omitempty,max=220"`
	Description string        `json:"description" binding:"max=5000"`
	PriceCents  int           `json:"price_cents" binding:"gte=0"`
	MRPCents    int           `json:"mrp_cents" binding:"gte=0"`
	Stock       int           `json:"stock" binding:"gte=0"`
	Contents    []GiftBoxItem `json:"contents" binding:"dive"`
	Active      bool          `json:"active"`
	Position    int           `json:"position"`
}

func slugOr(explicit, name, fallback string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return slug.FromName(s, fallback)
	}
	return slug.FromName(name, fallback)
}

func mapWriteErr(err error) error {
	if db.IsDuplicateKey(err) {
		return ErrDuplicateSlug
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func mrpOrPrice(mrp, price int) int {
	if mrp < price {
		return price
	}
	return mrp
}

// --- categories ---

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := r.db.WithContext(ctx).Order("position ASC, name ASC").Find(&out).Error
	return out, err
}

func (r *Repo) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	now := time.Now()
	c := Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Slug:      slugOr(in.Slug, in.Name, "category"),
		Position:  in.Position,
		Active:    in.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return Category{}, mapWriteErr(err)
	}
	return c, nil
}

func (r *Repo) UpdateCategory(ctx context.Context, id string, in CategoryInput) (Category, error) {
	res := r.db.WithContext(ctx).Model(&Category{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":       strings.TrimSpace(in.Name),
			"slug":       slugOr(in.Slug, in.Name, "category"),
			"position":   in.Position,
			"active":     in.Active,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return Category{}, mapWriteErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return Category{}, ErrNotFound
	}
	var c Category
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return c, mapWriteErr(err)
}

// DeleteCategory detaches its products before removing the row.
func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- products ---

type AdminListParams struct {
	Q          string
	CategoryID string
	Page       int
	PageSize   int
}

func (r *Repo) ListProducts(ctx context.Context, in AdminListParams) (ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 200 {
		size = 50
	}

	q := r.db.WithContext(ctx).Model(&Product{})
	if s := strings.TrimSpace(in.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR slug LIKE ?)", like, like)
	}
	if in.CategoryID != "" {
		q = q.Where("category_id = ?", in.CategoryID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, err
	}
	var items []Product
	if err := q.Preload("Category").
		Order("position ASC, name ASC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}

// AllProducts is used by exports.
func (r *Repo) AllProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	err := r.db.WithContext(ctx).Preload("Category").Order("name ASC").Find(&out).Error
	return out, err
}

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.db.WithContext(ctx).Preload("Category").First(&p, "id = ?", id).Error
	return p, mapWriteErr(err)
}

func (r *Repo) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	now := time.Now()
	p := Product{
		ID:          uuid.NewString(),
		CategoryID:  optionalID(in.CategoryID),
		Name:        strings.TrimSpace(in.Name),
		Slug:        slugOr(in.Slug, in.Name, "product"),
		Description: strings.TrimSpace(in.Description),
		Unit:        strings.TrimSpace(in.Unit),
		PriceCents:  in.PriceCents,
		MRPCents:    mrpOrPrice(in.MRPCents, in.PriceCents),
		Stock:       in.Stock,
		Active:      in.Active,
		Featured:    in.Featured,
		Position:    in.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return Product{}, mapWriteErr(err)
	}
	return p, nil
}

func (r *Repo) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	res := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"category_id": optionalID(in.CategoryID),
			"name":        strings.TrimSpace(in.Name),
			"slug":        slugOr(in.Slug, in.Name, "product"),
			"description": strings.TrimSpace(in.Description),
			"unit":        strings.TrimSpace(in.Unit),
			"price_cents": in.PriceCents,
			"mrp_cents":   mrpOrPrice(in.MRPCents, in.PriceCents),
			"stock":       in.Stock,
			"active":      in.Active,
			"featured":    in.Featured,
			"position":    in.Position,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return Product{}, mapWriteErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetProduct(ctx, id)
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) (Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := r.db.WithContext(ctx).Delete(&Product{}, "id = ?", id).Error; err != nil {
		return Product{}, err
	}
	return p, nil
}

// SetProductImage stores the new image and returns the previous storage key.
func (r *Repo) SetProductImage(ctx context.Context, id, key, url string) (string, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return "", err
	}
	err = r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"image_key": key, "image_url": url, "updated_at": time.Now()}).Error
	return p.ImageKey, err
}

// --- gift boxes ---

func (r *Repo) ListGiftBoxes(ctx context.Context) ([]GiftBox, error) {
	var out []GiftBox
	err := r.db.WithContext(ctx).Order("position ASC, name ASC").Find(&out).Error
	return out, err
}

func (r *Repo) GetGiftBox(ctx context.Context, id string) (GiftBox, error) {
	var g GiftBox
	err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error
	return g, mapWriteErr(err)
}

func (r *Repo) CreateGiftBox(ctx context.Context, in GiftBoxInput) (GiftBox, error) {
	now := time.Now()
	g := GiftBox{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Slug:        slugOr(in.Slug, in.Name, "gift-box"),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		MRPCents:    mrpOrPrice(in.MRPCents, in.PriceCents),
		Stock:       in.Stock,
		Contents:    cleanContents(in.Contents),
		Active:      in.Active,
		Position:    in.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&g).Error; err != nil {
		return GiftBox{}, mapWriteErr(err)
	}
	return g, nil
}

func (r *Repo) UpdateGiftBox(ctx context.Context, id string, in GiftBoxInput) (GiftBox, error) {
	g, err := r.GetGiftBox(ctx, id)
	if err != nil {
		return GiftBox{}, err
	}
	g.Name = strings.TrimSpace(in.Name)
	g.Slug = slugOr(in.Slug, in.Name, "gift-box")
	g.Description = strings.TrimSpace(in.Description)
	g.PriceCents = in.PriceCents
	g.MRPCents = mrpOrPrice(in.MRPCents, in.PriceCents)
	g.Stock = in.Stock
	g.Contents = cleanContents(in.Contents)
	g.Active = in.Active
	g.Position = in.Position
	g.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(&g).Error; err != nil {
		return GiftBox{}, mapWriteErr(err)
	}
	return g, nil
}

func (r *Repo) DeleteGiftBox(ctx context.Context, id string) (GiftBox, error) {
	g, err := r.GetGiftBox(ctx, id)
	if err != nil {
		return GiftBox{}, err
	}
	if err := r.db.WithContext(ctx).Delete(&GiftBox{}, "id = ?", id).Error; err != nil {
		return GiftBox{}, err
	}
	return g, nil
}

func (r *Repo) SetGiftBoxImage(ctx context.Context, id, key, url string) (string, error) {
	g, err := r.GetGiftBox(ctx, id)
	if err != nil {
		return "", err
	}
	err = r.db.WithContext(ctx).Model(&GiftBox{}).
		Where("id = ?", id).
		Updates(map[string]any{"image_key": key, "image_url": url, "updated_at": time.Now()}).Error
	return g.ImageKey, err
}

// LowStock counts active products at or below threshold.
func (r *Repo) LowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Product{}).
		Where("active = ? AND stock <= ?", true, threshold).
		Count(&n).Error
	return n, err
}

func optionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cleanContents(in []GiftBoxItem) []GiftBoxItem {
	out := make([]GiftBoxItem, 0, len(in))
	for _, it := range in {
		name := strings.TrimSpace(it.Name)
		if name == "" || it.Qty <= 0 {
			continue
		}
		out = append(out, GiftBoxItem{Name: name, Qty: it.Qty})
	}
	return out
}
