package present

import (
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

// Cart adds the delivery charge and minimum-order check from site settings.
func Cart(v cart.View, site content.Site) view.Cart {
	out := view.Cart{
		Lines:    make([]view.CartLine, 0, len(v.Lines)),
		Count:    v.Count,
		Subtotal: view.INR(v.SubtotalCents),
		MRPTotal: view.INR(v.MRPTotalCents),
		Savings:  view.INR(v.SavingsCents),
		MinOrder: view.INR(site.MinOrderCents),
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, view.CartLine{
			Kind:         string(l.Ref.Kind),
			ID:           l.Ref.ID,
			Name:         l.Name,
			Slug:         l.Slug,
			ImageURL:     l.ImageURL,
			Qty:          l.Qty,
			UnitPrice:    view.INR(l.UnitPriceCents),
			MRP:          view.INR(l.MRPCents),
			LineTotal:    view.INR(l.LineTotalCents),
			Discount:     l.DiscountPercent,
			ExceedsStock: l.Qty > l.Stock,
			StockLeft:    l.Stock,
		})
	}
	delivery := 0
	if v.Count > 0 {
		delivery = site.DeliveryCents
	}
	out.Delivery = view.INR(delivery)
	out.Total = view.INR(v.SubtotalCents + delivery)
	out.BelowMinimum = v.Count > 0 && v.SubtotalCents < site.MinOrderCents
	return out
}
