package catalog

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/storage"
)

// AdminService wraps Repo writes with image storage and cache invalidation.
type AdminService struct {
	repo  *Repo
	store storage.Storage
	cache Invalidator
	log   logrus.FieldLogger
}

func NewAdminService(repo *Repo, store storage.Storage, cache Invalidator, log logrus.FieldLogger) *AdminService {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &AdminService{repo: repo, store: store, cache: cache, log: log}
}

func (s *AdminService) Repo() *Repo { return s.repo }

type Upload struct {
	Body        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	c, err := s.repo.CreateCategory(ctx, in)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return c, err
}

func (s *AdminService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (Category, error) {
	c, err := s.repo.UpdateCategory(ctx, id, in)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return c, err
}

func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	err := s.repo.DeleteCategory(ctx, id)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return err
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	p, err := s.repo.CreateProduct(ctx, in)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return p, err
}

func (s *AdminService) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	p, err := s.repo.UpdateProduct(ctx, id, in)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return p, err
}

func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.dropObject(ctx, p.ImageKey)
	return nil
}

func (s *AdminService) SetProductImage(ctx context.Context, id string, up Upload) (Product, error) {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return Product{}, err
	}
	res, err := s.put(ctx, "products", up)
	if err != nil {
		return Product{}, err
	}
	old, err := s.repo.SetProductImage(ctx, id, res.Key, res.URL)
	if err != nil {
		s.dropObject(ctx, res.Key)
		return Product{}, err
	}
	s.dropObject(ctx, old)
	s.cache.Invalidate(ctx)
	return s.repo.GetProduct(ctx, id)
}

func (s *AdminService) CreateGiftBox(ctx context.Context, in GiftBoxInput) (GiftBox, error) {
	g, err := s.repo.CreateGiftBox(ctx, in)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return g, err
}

func (s *AdminService) UpdateGiftBox(ctx context.Context, id string, in GiftBoxInput) (GiftBox, error) {
	g, err := s.repo.UpdateGiftBox(ctx, id, in)
	if err == nil {
		s.cache.Invalidate(ctx)
	}
	return g, err
}

func (s *AdminService) DeleteGiftBox(ctx context.Context, id string) error {
	g, err := s.repo.DeleteGiftBox(ctx, id)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.dropObject(ctx, g.ImageKey)
	return nil
}

func (s *AdminService) SetGiftBoxImage(ctx context.Context, id string, up Upload) (GiftBox, error) {
	if _, err := s.repo.GetGiftBox(ctx, id); err != nil {
		return GiftBox{}, err
	}
	res, err := s.put(ctx, "gift-boxes", up)
	if err != nil {
		return GiftBox{}, err
	}
	old, err := s.repo.SetGiftBoxImage(ctx, id, res.Key, res.URL)
	if err != nil {
		s.dropObject(ctx, res.Key)
		return GiftBox{}, err
	}
	s.dropObject(ctx, old)
	s.cache.Invalidate(ctx)
	return s.repo.GetGiftBox(ctx, id)
}

func (s *AdminService) put(ctx context.Context, folder string, up Upload) (storage.PutResult, error) {
	return s.store.Put(ctx, up.Body, storage.PutInput{
		Folder:      folder,
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Size:        up.Size,
	})
}

func (s *AdminService) dropObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("delete stored image failed")
	}
}
