package present

import (
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

func Category(c catalog.Category) view.Category {
	return view.Category{ID: c.ID, Name: c.Name, Slug: c.Slug, Position: c.Position, Active: c.Active}
}

func Categories(cs []catalog.Category) []view.Category {
	out := make([]view.Category, 0, len(cs))
	for _, c := range cs {
		out = append(out, Category(c))
	}
	return out
}

func ProductCard(p catalog.Product) view.ProductCard {
	d := catalog.DiscountPercent(p.PriceCents, p.MRPCents)
	card := view.ProductCard{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Unit:          p.Unit,
		Price:         view.INR(p.PriceCents),
		MRP:           view.INR(p.MRPCents),
		Discount:      d,
		DiscountLabel: view.DiscountLabel(d),
		ImageURL:      p.ImageURL,
		InStock:       p.Stock > 0,
		Featured:      p.Featured,
	}
	if p.Category != nil {
		card.CategorySlug = p.Category.Slug
	}
	return card
}

func ProductCards(ps []catalog.Product) []view.ProductCard {
	out := make([]view.ProductCard, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductCard(p))
	}
	return out
}

func ProductDetail(p catalog.Product) view.ProductDetail {
	d := view.ProductDetail{
		ProductCard: ProductCard(p),
		Description: p.Description,
		Stock:       p.Stock,
	}
	if p.Category != nil {
		c := Category(*p.Category)
		d.Category = &c
	}
	return d
}

func AdminProduct(p catalog.Product) view.AdminProduct {
	out := view.AdminProduct{
		ProductDetail: ProductDetail(p),
		Active:        p.Active,
		Position:      p.Position,
		ImageKey:      p.ImageKey,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	return out
}

func AdminProducts(ps []catalog.Product) []view.AdminProduct {
	out := make([]view.AdminProduct, 0, len(ps))
	for _, p := range ps {
		out = append(out, AdminProduct(p))
	}
	return out
}

func GiftBox(g catalog.GiftBox) view.GiftBox {
	d := catalog.DiscountPercent(g.PriceCents, g.MRPCents)
	contents := make([]view.GiftBoxItem, 0, len(g.Contents))
	for _, it := range g.Contents {
		contents = append(contents, view.GiftBoxItem{Name: it.Name, Qty: it.Qty})
	}
	return view.GiftBox{
		ID:            g.ID,
		Name:          g.Name,
		Slug:          g.Slug,
		Description:   g.Description,
		Price:         view.INR(g.PriceCents),
		MRP:           view.INR(g.MRPCents),
		Discount:      d,
		DiscountLabel: view.DiscountLabel(d),
		ImageURL:      g.ImageURL,
		InStock:       g.Stock > 0,
		Contents:      contents,
	}
}

func GiftBoxes(gs []catalog.GiftBox) []view.GiftBox {
	out := make([]view.GiftBox, 0, len(gs))
	for _, g := range gs {
		out = append(out, GiftBox(g))
	}
	return out
}

func AdminGiftBox(g catalog.GiftBox) view.AdminGiftBox {
	return view.AdminGiftBox{
		GiftBox:   GiftBox(g),
		Stock:     g.Stock,
		Active:    g.Active,
		Position:  g.Position,
		ImageKey:  g.ImageKey,
		UpdatedAt: g.UpdatedAt,
	}
}

func AdminGiftBoxes(gs []catalog.GiftBox) []view.AdminGiftBox {
	out := make([]view.AdminGiftBox, 0, len(gs))
	for _, g := range gs {
		out = append(out, AdminGiftBox(g))
	}
	return out
}
