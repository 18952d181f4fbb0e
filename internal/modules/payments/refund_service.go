package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
)

const orderActor = orders.ActorSystem

type RefundService struct {
	svc *Service
	log logrus.FieldLogger
}

func NewRefundService(svc *Service, log logrus.FieldLogger) *RefundService {
	return &RefundService{svc: svc, log: log}
}

type RefundOrderInput struct {
	OrderID        string
	ActorUserID    string
	IdempotencyKey string
	AmountCents    int // 0 refunds the remaining balance
	Reason         string
}

type RefundOrderResult struct {
	RefundID    string `json:"refund_id"`
	Status      string `json:"status"`
	AmountCents int    `json:"amount_cents"`
	Idempotent  bool   `json:"idempotent"`
}

func refundable(status string) bool {
	switch status {
	case orders.StatusPaid, orders.StatusConfirmed, orders.StatusPacked, orders.StatusShipped,
		orders.StatusDelivered, orders.StatusCancelled, orders.StatusPartiallyRefunded:
		return true
	}
	return false
}

// RefundOrder refunds a captured online payment in full or in part.
func (s *RefundService) RefundOrder(ctx context.Context, in RefundOrderInput) (RefundOrderResult, error) {
	if in.OrderID == "" || in.ActorUserID == "" || in.IdempotencyKey == "" || in.AmountCents < 0 {
		return RefundOrderResult{}, ErrNotRefundable
	}
	ps, err := s.svc.settings.Get(ctx)
	if err != nil {
		return RefundOrderResult{}, err
	}
	creds := credentialsOf(ps)
	if creds.KeyID == "" || creds.KeySecret == "" {
		return RefundOrderResult{}, ErrGatewayDisabled
	}

	// Phase-1: lock order, pick the payment, create the initiated refund
	var pay Payment
	var ref Refund
	err = s.svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ord orders.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ord, "id = ?", in.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return orders.ErrNotFound
			}
			return err
		}

		if err := tx.Order("updated_at DESC").
			First(&pay, "order_id = ? AND status = ?", ord.ID, StatusSucceeded).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoSucceededPayment
			}
			return err
		}

		e := tx.First(&ref, "payment_id = ? AND idempotency_key = ?", pay.ID, in.IdempotencyKey).Error
		if e == nil {
			return nil
		}
		if !errors.Is(e, gorm.ErrRecordNotFound) {
			return e
		}

		if !refundable(ord.Status) {
			return ErrNotRefundable
		}
		// in-flight refunds count against the balance
		var pending int64
		if err := tx.Model(&Refund{}).Where("order_id = ? AND status = ?", ord.ID, StatusInitiated).
			Select("COALESCE(SUM(amount_cents), 0)").Scan(&pending).Error; err != nil {
			return err
		}
		remaining := ord.TotalCents - ord.RefundedCents - int(pending)
		if remaining <= 0 {
			return ErrNotRefundable
		}
		amount := in.AmountCents
		if amount > remaining {
			return &RefundAmountError{RequestedCents: amount, RemainingCents: remaining}
		}
		if amount == 0 {
			amount = remaining
		}

		now := s.svc.now()
		ref = Refund{
			ID:             uuid.NewString(),
			OrderID:        ord.ID,
			PaymentID:      pay.ID,
			Provider:       s.svc.provider.Name(),
			Status:         StatusInitiated,
			AmountCents:    amount,
			Currency:       ord.Currency,
			IdempotencyKey: in.IdempotencyKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if in.Reason != "" {
			ref.Reason = ptr(truncate(in.Reason, 255))
		}
		return tx.Create(&ref).Error
	})
	if err != nil {
		return RefundOrderResult{}, err
	}
	if ref.Status != StatusInitiated || ref.ProviderRef != nil {
		return RefundOrderResult{RefundID: ref.ID, Status: ref.Status, AmountCents: ref.AmountCents, Idempotent: true}, nil
	}

	// Phase-2: gateway call outside the transaction
	paymentRef := ""
	if pay.ProviderPaymentID != nil {
		paymentRef = *pay.ProviderPaymentID
	}
	resp, perr := s.svc.provider.Refund(ctx, creds, RefundRequest{
		PaymentRef:     paymentRef,
		AmountCents:    ref.AmountCents,
		IdempotencyKey: ref.IdempotencyKey,
		Reason:         in.Reason,
	})

	// Phase-3: finalize
	status := resp.Status
	if perr != nil {
		status = StatusFailed
	}
	err = s.svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.svc.now()
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ref, "id = ?", ref.ID).Error; err != nil {
			return err
		}
		if resp.ProviderRef != "" {
			ref.ProviderRef = ptr(resp.ProviderRef)
			if err := tx.Model(&Refund{}).Where("id = ?", ref.ID).
				Updates(map[string]any{"provider_ref": resp.ProviderRef, "updated_at": now}).Error; err != nil {
				return err
			}
		}

		switch {
		case perr != nil:
			return failRefundInTx(tx, ref, in.ActorUserID, perr.Error(), now)
		case status == StatusSucceeded:
			return settleRefundInTx(tx, ref, in.ActorUserID, now)
		case status == StatusFailed:
			return failRefundInTx(tx, ref, in.ActorUserID, "refund failed", now)
		default:
			// settled later by the refund.processed webhook
			return nil
		}
	})
	if err != nil {
		return RefundOrderResult{}, err
	}

	log := s.log.WithFields(logrus.Fields{"order_id": ref.OrderID, "refund_id": ref.ID, "status": status})
	if perr != nil {
		log.WithError(perr).Warn("refund failed")
		return RefundOrderResult{}, perr
	}
	log.Info("refund requested")
	return RefundOrderResult{RefundID: ref.ID, Status: status, AmountCents: ref.AmountCents}, nil
}

// Refunds lists the refunds of an order, newest first.
func (s *RefundService) Refunds(ctx context.Context, orderID string) ([]Refund, error) {
	var out []Refund
	err := s.svc.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// settleRefundInTx books a processed refund against the order. Settling
// twice is a no-op.
func settleRefundInTx(tx *gorm.DB, ref Refund, actor string, now time.Time) error {
	if ref.Status == StatusSucceeded {
		return nil
	}
	var ord orders.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ord, "id = ?", ref.OrderID).Error; err != nil {
		return err
	}

	if err := tx.Model(&Refund{}).Where("id = ?", ref.ID).
		Updates(map[string]any{"status": StatusSucceeded, "error_message": nil, "updated_at": now}).Error; err != nil {
		return err
	}

	fe := orders.FinancialEntry{
		ID:          uuid.NewString(),
		OrderID:     ord.ID,
		Event:       "refund_succeeded",
		AmountCents: -ref.AmountCents,
		Currency:    ref.Currency,
		RefType:     "refund",
		RefID:       ref.ID,
		CreatedAt:   now,
	}
	if err := tx.Create(&fe).Error; err != nil {
		return err
	}

	refunded := ord.RefundedCents + ref.AmountCents
	upd := map[string]any{"refunded_cents": refunded, "updated_at": now}
	newStatus := ord.Status
	if refunded >= ord.TotalCents {
		upd["refunded_cents"] = ord.TotalCents
		upd["refunded_at"] = now
		newStatus = orders.StatusRefunded
	} else if ord.Status != orders.StatusCancelled {
		newStatus = orders.StatusPartiallyRefunded
	}
	upd["status"] = newStatus
	if err := tx.Model(&orders.Order{}).Where("id = ?", ord.ID).Updates(upd).Error; err != nil {
		return err
	}

	return tx.Create(&orders.OrderEvent{
		ID:          uuid.NewString(),
		OrderID:     ord.ID,
		ActorUserID: actor,
		Action:      "refund",
		FromStatus:  ord.Status,
		ToStatus:    newStatus,
		Note:        ptr("refund_id=" + ref.ID),
		CreatedAt:   now,
	}).Error
}

func failRefundInTx(tx *gorm.DB, ref Refund, actor, msg string, now time.Time) error {
	if ref.Status != StatusInitiated {
		return nil
	}
	msg = truncate(msg, 255)
	if err := tx.Model(&Refund{}).Where("id = ?", ref.ID).
		Updates(map[string]any{"status": StatusFailed, "error_message": msg, "updated_at": now}).Error; err != nil {
		return err
	}

	var ord orders.Order
	if err := tx.First(&ord, "id = ?", ref.OrderID).Error; err != nil {
		return err
	}
	return tx.Create(&orders.OrderEvent{
		ID:          uuid.NewString(),
		OrderID:     ord.ID,
		ActorUserID: actor,
		Action:      "refund",
		FromStatus:  ord.Status,
		ToStatus:    ord.Status,
		Note:        ptr(truncate("refund failed: "+msg, 255)),
		CreatedAt:   now,
	}).Error
}
