// Package seed loads a starter catalog and site settings from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/slug"
)

type File struct {
	Site       map[string]string `yaml:"site"`
	Categories []Category        `yaml:"categories"`
	GiftBoxes  []GiftBox         `yaml:"gift_boxes"`
}

type Category struct {
	Name     string    `yaml:"name"`
	Slug     string    `yaml:"slug"`
	Position int       `yaml:"position"`
	Products []Product `yaml:"products"`
}

type Product struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`
	Price       int    `yaml:"price_cents"`
	MRP         int    `yaml:"mrp_cents"`
	Stock       int    `yaml:"stock"`
	Featured    bool   `yaml:"featured"`
}

type GiftBox struct {
	Name        string                `yaml:"name"`
	Slug        string                `yaml:"slug"`
	Description string                `yaml:"description"`
	Price       int                   `yaml:"price_cents"`
	MRP         int                   `yaml:"mrp_cents"`
	Stock       int                   `yaml:"stock"`
	Contents    []catalog.GiftBoxItem `yaml:"contents"`
}

type Result struct {
	Categories int
	Products   int
	GiftBoxes  int
	Skipped    int
	Settings   []string
}

func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse seed: %w", err)
	}
	return f, nil
}

// Apply inserts everything in f. Rows whose slug already exists are skipped,
// so running the same file twice is harmless.
func Apply(ctx context.Context, repo *catalog.Repo, site *content.SettingsRepo, f File, log logrus.FieldLogger) (Result, error) {
	var res Result

	if len(f.Site) > 0 {
		keys, err := site.Put(ctx, f.Site)
		if err != nil {
			return res, fmt.Errorf("site settings: %w", err)
		}
		res.Settings = keys
	}

	existing, err := repo.ListCategories(ctx)
	if err != nil {
		return res, err
	}
	bySlug := make(map[string]string, len(existing))
	for _, c := range existing {
		bySlug[c.Slug] = c.ID
	}

	for i, sc := range f.Categories {
		in := catalog.CategoryInput{Name: sc.Name, Slug: sc.Slug, Position: sc.Position, Active: true}
		if in.Position == 0 {
			in.Position = i + 1
		}
		cat, err := repo.CreateCategory(ctx, in)
		switch {
		case errors.Is(err, catalog.ErrDuplicateSlug):
			res.Skipped++
			cat.ID = bySlug[categorySlug(sc)]
		case err != nil:
			return res, fmt.Errorf("category %q: %w", sc.Name, err)
		default:
			res.Categories++
			bySlug[cat.Slug] = cat.ID
		}
		if cat.ID == "" {
			log.WithField("category", sc.Name).Warn("seed: category slug taken but not found; products skipped")
			continue
		}

		for j, sp := range sc.Products {
			_, err := repo.CreateProduct(ctx, catalog.ProductInput{
				CategoryID:  cat.ID,
				Name:        sp.Name,
				Slug:        sp.Slug,
				Description: sp.Description,
				Unit:        sp.Unit,
				PriceCents:  sp.Price,
				MRPCents:    sp.MRP,
				Stock:       sp.Stock,
				Featured:    sp.Featured,
				Active:      true,
				Position:    j + 1,
			})
			if errors.Is(err, catalog.ErrDuplicateSlug) {
				res.Skipped++
				continue
			}
			if err != nil {
				return res, fmt.Errorf("product %q: %w", sp.Name, err)
			}
			res.Products++
		}
	}

	for i, sg := range f.GiftBoxes {
		_, err := repo.CreateGiftBox(ctx, catalog.GiftBoxInput{
			Name:        sg.Name,
			Slug:        sg.Slug,
			Description: sg.Description,
			PriceCents:  sg.Price,
			MRPCents:    sg.MRP,
			Stock:       sg.Stock,
			Contents:    sg.Contents,
			Active:      true,
			Position:    i + 1,
		})
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("gift box %q: %w", sg.Name, err)
		}
		res.GiftBoxes++
	}
	return res, nil
}

func categorySlug(sc Category) string {
	if sc.Slug != "" {
		return slug.FromName(sc.Slug, "")
	}
	return slug.FromName(sc.Name, "")
}
