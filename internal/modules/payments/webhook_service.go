package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookService struct {
	svc *Service
	log logrus.FieldLogger
}

func NewWebhookService(svc *Service, log logrus.FieldLogger) *WebhookService {
	return &WebhookService{svc: svc, log: log}
}

// Handle verifies, records and applies one gateway delivery. A nil error
// means the delivery can be acknowledged; duplicates are acknowledged too.
// Apply failures roll the record back so the gateway retry is processed.
func (s *WebhookService) Handle(ctx context.Context, headers http.Header, body []byte) error {
	ps, err := s.svc.settings.Get(ctx)
	if err != nil {
		return err
	}
	ev, err := s.svc.provider.VerifyAndParseWebhook(credentialsOf(ps), headers, body)
	if err != nil {
		return err
	}

	providerName := s.svc.provider.Name()
	log := s.log.WithFields(logrus.Fields{"provider": providerName, "event_id": ev.EventID, "type": ev.Type})

	var paidOrderID string
	err = s.svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.svc.now()
		pe := ProviderEvent{
			ID:          uuid.NewString(),
			Provider:    providerName,
			EventID:     ev.EventID,
			EventType:   ev.Type,
			PayloadJSON: datatypes.JSON(body),
			ReceivedAt:  now,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pe)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Info("webhook event deduplicated")
			return nil
		}

		var applyErr error
		switch ev.Type {
		case EventPaymentCaptured:
			paidOrderID, applyErr = s.applyPaymentCaptured(tx, ev)
		case EventPaymentFailed:
			applyErr = s.applyPaymentFailed(tx, ev)
		case EventRefundProcessed:
			applyErr = s.applyRefund(tx, ev, true)
		case EventRefundFailed:
			applyErr = s.applyRefund(tx, ev, false)
		default:
			log.Debug("webhook event ignored")
		}
		if applyErr != nil {
			log.WithError(applyErr).Error("webhook event apply failed")
			return applyErr
		}

		return tx.Model(&ProviderEvent{}).Where("id = ?", pe.ID).
			Updates(map[string]any{"processed_at": now, "process_error": nil}).Error
	})
	if err != nil {
		return err
	}
	if paidOrderID != "" {
		log.WithField("order_id", paidOrderID).Info("order paid via webhook")
		s.svc.orders.NotifyPaid(ctx, paidOrderID)
	}
	return nil
}

func (s *WebhookService) applyPaymentCaptured(tx *gorm.DB, ev WebhookEvent) (string, error) {
	if ev.OrderRef == "" {
		return "", errors.New("missing order reference")
	}
	pay, err := s.svc.paymentByRef(tx, ev.OrderRef)
	if err != nil {
		return "", err
	}
	if ev.AmountCents != 0 && ev.AmountCents != pay.AmountCents {
		return "", fmt.Errorf("captured amount %d does not match payment %d", ev.AmountCents, pay.AmountCents)
	}
	ord, changed, err := s.svc.markSucceededInTx(tx, pay, ev.PaymentRef)
	if err != nil || !changed {
		return "", err
	}
	return ord.ID, nil
}

func (s *WebhookService) applyPaymentFailed(tx *gorm.DB, ev WebhookEvent) error {
	pay, err := s.svc.paymentByRef(tx, ev.OrderRef)
	if err != nil {
		return err
	}
	return markFailedInTx(tx, pay, ev.PaymentRef, ev.Reason, s.svc.now())
}

func (s *WebhookService) applyRefund(tx *gorm.DB, ev WebhookEvent, processed bool) error {
	if ev.RefundRef == "" {
		return errors.New("missing refund reference")
	}
	var ref Refund
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ref, "provider = ? AND provider_ref = ?", s.svc.provider.Name(), ev.RefundRef).Error
	if err != nil {
		// the refund call may not have recorded its reference yet; let the gateway retry
		return fmt.Errorf("refund %s: %w", ev.RefundRef, err)
	}
	if processed {
		return settleRefundInTx(tx, ref, orderActor, s.svc.now())
	}
	return failRefundInTx(tx, ref, orderActor, "refund failed at gateway", s.svc.now())
}
