package present

import (
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func OrderSummary(o orders.Order, itemCount int) view.OrderSummary {
	return view.OrderSummary{
		ID:          o.ID,
		Number:      o.Number,
		Status:      o.Status,
		StatusLabel: view.StatusLabel(o.Status),
		Payment:     view.PaymentLabel(o.PaymentMethod, o.ManualMode),
		Total:       view.INR(o.TotalCents),
		ItemCount:   itemCount,
		CreatedAt:   o.CreatedAt,
	}
}

func OrderSummaries(items []orders.ListItem) []view.OrderSummary {
	out := make([]view.OrderSummary, 0, len(items))
	for _, it := range items {
		out = append(out, OrderSummary(it.Order, it.ItemCount))
	}
	return out
}

func AdminOrderList(items []orders.ListItem) []view.AdminOrderListItem {
	out := make([]view.AdminOrderListItem, 0, len(items))
	for _, it := range items {
		out = append(out, view.AdminOrderListItem{
			OrderSummary: OrderSummary(it.Order, it.ItemCount),
			CustomerName: it.Order.CustomerName,
			Phone:        it.Order.Phone,
			City:         it.Order.City,
		})
	}
	return out
}

// Tracking is the public order view; admin actor ids are left out.
func Tracking(t orders.Tracking) view.OrderDetail {
	return orderDetail(t, false)
}

func orderDetail(t orders.Tracking, withActors bool) view.OrderDetail {
	o := t.Order
	count := 0
	items := make([]view.OrderItem, 0, len(t.Items))
	for _, it := range t.Items {
		count += it.Quantity
		items = append(items, view.OrderItem{
			Kind:      it.Kind,
			ItemID:    it.ItemID,
			Name:      it.Name,
			Slug:      it.Slug,
			Qty:       it.Quantity,
			UnitPrice: view.INR(it.UnitPriceCents),
			LineTotal: view.INR(it.LineTotalCents),
		})
	}
	timeline := make([]view.OrderEvent, 0, len(t.Events))
	for _, ev := range t.Events {
		e := view.OrderEvent{
			Action: ev.Action,
			From:   ev.FromStatus,
			To:     ev.ToStatus,
			Label:  view.StatusLabel(ev.ToStatus),
			Note:   deref(ev.Note),
			At:     ev.CreatedAt,
		}
		if withActors {
			e.ActorUserID = ev.ActorUserID
		}
		timeline = append(timeline, e)
	}
	ships := make([]view.Shipment, 0, len(t.Shipments))
	for _, s := range t.Shipments {
		ships = append(ships, view.Shipment{Courier: s.Courier, TrackingNo: s.TrackingNo, Note: s.Note, ShippedAt: s.ShippedAt})
	}

	return view.OrderDetail{
		OrderSummary: OrderSummary(o, count),
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Email:        o.Email,
		Address:      o.AddressLine,
		City:         o.City,
		State:        o.State,
		Pincode:      o.Pincode,
		Notes:        o.Notes,
		Subtotal:     view.INR(o.SubtotalCents),
		Delivery:     view.INR(o.DeliveryCents),
		Refunded:     view.INR(o.RefundedCents),
		PaidAt:       o.PaidAt,
		Items:        items,
		Timeline:     timeline,
		Shipments:    ships,
	}
}

func AdminOrderDetail(d orders.AdminDetail, pays []payments.Payment, refunds []payments.Refund) view.AdminOrderDetail {
	o := d.Order
	out := view.AdminOrderDetail{
		OrderDetail:    orderDetail(d.Tracking, true),
		CustomerID:     o.CustomerID,
		IdempotencyKey: o.IdemKey,
		Actions:        orders.AllowedActions(o),
		Payments:       make([]view.AdminPayment, 0, len(pays)),
		Refunds:        make([]view.AdminRefund, 0, len(refunds)),
		Ledger:         make([]view.LedgerEntry, 0, len(d.Financial)),
	}

	paid := false
	for _, p := range pays {
		if p.Status == payments.StatusSucceeded {
			paid = true
		}
		out.Payments = append(out.Payments, view.AdminPayment{
			ID:          p.ID,
			Provider:    p.Provider,
			ProviderRef: deref(p.ProviderRef),
			PaymentRef:  deref(p.ProviderPaymentID),
			Status:      p.Status,
			Amount:      view.INR(p.AmountCents),
			Error:       deref(p.ErrorMessage),
			CreatedAt:   p.CreatedAt,
		})
	}
	pending := 0
	for _, r := range refunds {
		if r.Status == payments.StatusInitiated {
			pending += r.AmountCents
		}
		out.Refunds = append(out.Refunds, view.AdminRefund{
			ID:          r.ID,
			ProviderRef: deref(r.ProviderRef),
			Status:      r.Status,
			Amount:      view.INR(r.AmountCents),
			Reason:      deref(r.Reason),
			Error:       deref(r.ErrorMessage),
			CreatedAt:   r.CreatedAt,
		})
	}
	for _, f := range d.Financial {
		out.Ledger = append(out.Ledger, view.LedgerEntry{
			Event:     f.Event,
			Amount:    view.INR(f.AmountCents),
			RefType:   f.RefType,
			RefID:     f.RefID,
			CreatedAt: f.CreatedAt,
		})
	}

	out.Refundable = view.INR(0)
	if left := o.TotalCents - o.RefundedCents - pending; paid && left > 0 {
		out.Refundable = view.INR(left)
	}
	if out.Actions == nil {
		out.Actions = []string{}
	}
	return out
}
