package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("catalog item not found")

type ListParams struct {
	CategorySlug string
	Q            string
	FeaturedOnly bool
	Page         int
	PageSize     int
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 24
	}
	p.CategorySlug = strings.TrimSpace(p.CategorySlug)
	p.Q = strings.TrimSpace(p.Q)
	return p
}

type ListResult struct {
	Items []Product
	Total int64
}

// Repository is the storefront read side of the catalog.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListProducts(ctx context.Context, in ListParams) (ListResult, error)
	ProductBySlug(ctx context.Context, slug string) (Product, error)
	ListGiftBoxes(ctx context.Context) ([]GiftBox, error)
	GiftBoxBySlug(ctx context.Context, slug string) (GiftBox, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC, name ASC").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) ListProducts(ctx context.Context, in ListParams) (ListResult, error) {
	in = in.normalized()

	q := r.db.WithContext(ctx).Model(&Product{}).Where("products.active = ?", true)
	if in.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ? AND categories.active = ?", in.CategorySlug, true)
	}
	if in.Q != "" {
		like := "%" + strings.ToLower(in.Q) + "%"
		q = q.Where("LOWER(products.name) LIKE ?", like)
	}
	if in.FeaturedOnly {
		q = q.Where("products.featured = ?", true)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, err
	}

	var items []Product
	if err := q.
		Preload("Category").
		Order("products.position ASC, products.name ASC").
		Limit(in.PageSize).
		Offset((in.Page - 1) * in.PageSize).
		Find(&items).Error; err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}

func (r *GormRepository) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	var p Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND active = ?", slug, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *GormRepository) ListGiftBoxes(ctx context.Context) ([]GiftBox, error) {
	var out []GiftBox
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC, name ASC").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) GiftBoxBySlug(ctx context.Context, slug string) (GiftBox, error) {
	var g GiftBox
	err := r.db.WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GiftBox{}, ErrNotFound
	}
	return g, err
}

// Resolve loads fresh price and stock for refs, keyed by ItemRef.Key().
// Unknown refs are simply absent from the result. It always reads the
// database so checkout never sees cached prices.
func Resolve(ctx context.Context, db *gorm.DB, refs []ItemRef) (map[string]Sellable, error) {
	var productIDs, boxIDs []string
	for _, ref := range refs {
		switch ref.Kind {
		case KindProduct:
			productIDs = append(productIDs, ref.ID)
		case KindGiftBox:
			boxIDs = append(boxIDs, ref.ID)
		}
	}

	out := make(map[string]Sellable, len(refs))

	if len(productIDs) > 0 {
		var ps []Product
		if err := db.WithContext(ctx).Where("id IN ?", productIDs).Find(&ps).Error; err != nil {
			return nil, err
		}
		for _, p := range ps {
			ref := ItemRef{Kind: KindProduct, ID: p.ID}
			out[ref.Key()] = Sellable{
				Ref: ref, Name: p.Name, Slug: p.Slug, ImageURL: p.ImageURL,
				PriceCents: p.PriceCents, MRPCents: p.MRPCents, Stock: p.Stock, Active: p.Active,
			}
		}
	}

	if len(boxIDs) > 0 {
		var gs []GiftBox
		if err := db.WithContext(ctx).Where("id IN ?", boxIDs).Find(&gs).Error; err != nil {
			return nil, err
		}
		for _, g := range gs {
			ref := ItemRef{Kind: KindGiftBox, ID: g.ID}
			out[ref.Key()] = Sellable{
				Ref: ref, Name: g.Name, Slug: g.Slug, ImageURL: g.ImageURL,
				PriceCents: g.PriceCents, MRPCents: g.MRPCents, Stock: g.Stock, Active: g.Active,
			}
		}
	}

	return out, nil
}
