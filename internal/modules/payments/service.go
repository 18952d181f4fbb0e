package payments

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
)

type Service struct {
	db       *gorm.DB
	provider Provider
	settings *settings.Repo
	site     *content.SettingsRepo
	orders   *orders.Service
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(db *gorm.DB, p Provider, ps *settings.Repo, site *content.SettingsRepo, ord *orders.Service, log logrus.FieldLogger) *Service {
	return &Service{db: db, provider: p, settings: ps, site: site, orders: ord, log: log, now: time.Now}
}

func credentialsOf(ps settings.PaymentSetting) Credentials {
	return Credentials{
		KeyID:         ps.RazorpayKeyID,
		KeySecret:     ps.RazorpayKeySecret,
		WebhookSecret: ps.RazorpayWebhookSecret,
	}
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact"`
}

// Widget is everything the browser checkout widget needs to open.
type Widget struct {
	KeyID       string  `json:"key_id"`
	OrderRef    string  `json:"order_id"`
	AmountCents int     `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
	OrderNumber string  `json:"order_number"`
}

// StartOnline opens a gateway order for an unpaid online order. An initiated
// payment that already carries a gateway reference is reused.
func (s *Service) StartOnline(ctx context.Context, orderID string) (Widget, error) {
	ps, err := s.settings.Get(ctx)
	if err != nil {
		return Widget{}, err
	}
	if !ps.OnlineReady() {
		return Widget{}, ErrGatewayDisabled
	}
	creds := credentialsOf(ps)

	storeName := "Hello Crackers"
	if site, err := s.site.Site(ctx); err == nil && site.StoreName != "" {
		storeName = site.StoreName
	}

	// Phase-1: lock order, reuse or create the initiated payment row
	var ord orders.Order
	var pay Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ord, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return orders.ErrNotFound
			}
			return err
		}
		if ord.Status != orders.StatusCreated || ord.PaymentMethod != orders.MethodOnline {
			return ErrOrderNotPayable
		}

		e := tx.Order("created_at DESC").
			First(&pay, "order_id = ? AND provider = ? AND status = ?", ord.ID, s.provider.Name(), StatusInitiated).Error
		if e == nil {
			return nil
		}
		if !errors.Is(e, gorm.ErrRecordNotFound) {
			return e
		}

		now := s.now()
		pay = Payment{
			ID:             uuid.NewString(),
			OrderID:        ord.ID,
			Provider:       s.provider.Name(),
			Status:         StatusInitiated,
			AmountCents:    ord.TotalCents,
			Currency:       ord.Currency,
			IdempotencyKey: uuid.NewString(),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return tx.Create(&pay).Error
	})
	if err != nil {
		return Widget{}, err
	}

	widget := Widget{
		KeyID:       creds.KeyID,
		AmountCents: pay.AmountCents,
		Currency:    pay.Currency,
		Name:        storeName,
		Description: "Order " + ord.Number,
		Prefill:     Prefill{Name: ord.CustomerName, Email: ord.Email, Contact: ord.Phone},
		OrderNumber: ord.Number,
	}
	if pay.ProviderRef != nil && pay.AmountCents == ord.TotalCents {
		widget.OrderRef = *pay.ProviderRef
		return widget, nil
	}

	// Phase-2: gateway call outside the transaction
	resp, perr := s.provider.CreateOrder(ctx, creds, CreateOrderRequest{
		AmountCents: ord.TotalCents,
		Currency:    ord.Currency,
		Receipt:     ord.Number,
		Notes:       map[string]string{"order_id": ord.ID},
	})

	// Phase-3: record the outcome
	updates := map[string]any{"updated_at": s.now()}
	if perr != nil {
		updates["status"] = StatusFailed
		updates["error_message"] = truncate(perr.Error(), 255)
	} else {
		updates["provider_ref"] = resp.ProviderRef
		updates["amount_cents"] = ord.TotalCents
	}
	if err := s.db.WithContext(ctx).Model(&Payment{}).Where("id = ?", pay.ID).Updates(updates).Error; err != nil {
		return Widget{}, err
	}
	if perr != nil {
		s.log.WithError(perr).WithField("order_id", ord.ID).Warn("gateway order create failed")
		return Widget{}, perr
	}

	widget.OrderRef = resp.ProviderRef
	widget.AmountCents = ord.TotalCents
	return widget, nil
}

type ConfirmInput struct {
	OrderRef   string `json:"razorpay_order_id"`
	PaymentRef string `json:"razorpay_payment_id"`
	Signature  string `json:"razorpay_signature"`
}

type ConfirmResult struct {
	OrderID     string
	OrderNumber string
	Status      string
	Idempotent  bool
}

// ConfirmOnline handles the success relay from the browser widget.
func (s *Service) ConfirmOnline(ctx context.Context, in ConfirmInput) (ConfirmResult, error) {
	ps, err := s.settings.Get(ctx)
	if err != nil {
		return ConfirmResult{}, err
	}
	if !ps.OnlineReady() {
		return ConfirmResult{}, ErrGatewayDisabled
	}
	if !s.provider.VerifyCheckout(credentialsOf(ps), in.OrderRef, in.PaymentRef, in.Signature) {
		return ConfirmResult{}, ErrBadSignature
	}

	var res ConfirmResult
	var paid bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pay, err := s.paymentByRef(tx, in.OrderRef)
		if err != nil {
			return err
		}
		ord, changed, err := s.markSucceededInTx(tx, pay, in.PaymentRef)
		if err != nil {
			return err
		}
		paid = changed
		res = ConfirmResult{OrderID: ord.ID, OrderNumber: ord.Number, Status: ord.Status, Idempotent: !changed}
		return nil
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	if paid {
		s.log.WithFields(logrus.Fields{"order_id": res.OrderID, "payment_ref": in.PaymentRef}).Info("online payment confirmed")
		s.orders.NotifyPaid(ctx, res.OrderID)
	}
	return res, nil
}

type FailInput struct {
	OrderRef   string `json:"razorpay_order_id"`
	PaymentRef string `json:"razorpay_payment_id"`
	Reason     string `json:"reason"`
}

// FailOnline records a failed attempt; the order stays payable.
func (s *Service) FailOnline(ctx context.Context, in FailInput) error {
	if in.OrderRef == "" {
		return ErrPaymentNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pay, err := s.paymentByRef(tx, in.OrderRef)
		if err != nil {
			return err
		}
		return markFailedInTx(tx, pay, in.PaymentRef, in.Reason, s.now())
	})
}

func (s *Service) paymentByRef(tx *gorm.DB, orderRef string) (Payment, error) {
	var pay Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pay, "provider = ? AND provider_ref = ?", s.provider.Name(), orderRef).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Payment{}, ErrPaymentNotFound
	}
	return pay, err
}

// markSucceededInTx settles a payment and moves a created order to paid.
// changed is false when the payment had already been settled.
func (s *Service) markSucceededInTx(tx *gorm.DB, pay Payment, paymentRef string) (orders.Order, bool, error) {
	var ord orders.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ord, "id = ?", pay.OrderID).Error; err != nil {
		return orders.Order{}, false, err
	}
	if pay.Status == StatusSucceeded {
		return ord, false, nil
	}

	now := s.now()
	upd := map[string]any{"status": StatusSucceeded, "error_message": nil, "updated_at": now}
	if paymentRef != "" {
		upd["provider_payment_id"] = paymentRef
	}
	if err := tx.Model(&Payment{}).Where("id = ?", pay.ID).Updates(upd).Error; err != nil {
		return orders.Order{}, false, err
	}

	entry := orders.FinancialEntry{
		ID:          uuid.NewString(),
		OrderID:     ord.ID,
		Event:       "payment_succeeded",
		AmountCents: pay.AmountCents,
		Currency:    pay.Currency,
		RefType:     "payment",
		RefID:       pay.ID,
		CreatedAt:   now,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return orders.Order{}, false, err
	}

	if ord.Status != orders.StatusCreated {
		// paid after a cancel: money is in the ledger and the admin refunds it
		s.log.WithFields(logrus.Fields{"order_id": ord.ID, "status": ord.Status}).Warn("payment settled on non-created order")
		return ord, false, nil
	}

	from := ord.Status
	ord.Status = orders.StatusPaid
	ord.PaidAt = &now
	ord.UpdatedAt = now
	if err := tx.Model(&orders.Order{}).Where("id = ?", ord.ID).Updates(map[string]any{
		"status":     ord.Status,
		"paid_at":    now,
		"updated_at": now,
	}).Error; err != nil {
		return orders.Order{}, false, err
	}

	ev := orders.OrderEvent{
		ID:          uuid.NewString(),
		OrderID:     ord.ID,
		ActorUserID: orders.ActorSystem,
		Action:      "payment",
		FromStatus:  from,
		ToStatus:    ord.Status,
		Note:        ptr(s.provider.Name() + " " + paymentRef),
		CreatedAt:   now,
	}
	if err := tx.Create(&ev).Error; err != nil {
		return orders.Order{}, false, err
	}
	return ord, true, nil
}

func markFailedInTx(tx *gorm.DB, pay Payment, paymentRef, reason string, now time.Time) error {
	if pay.Status != StatusInitiated {
		return nil
	}
	if reason == "" {
		reason = "payment failed"
	}
	upd := map[string]any{
		"status":        StatusFailed,
		"error_message": truncate(reason, 255),
		"updated_at":    now,
	}
	if paymentRef != "" {
		upd["provider_payment_id"] = paymentRef
	}
	return tx.Model(&Payment{}).Where("id = ?", pay.ID).Updates(upd).Error
}

// Payments lists the attempts for an order, newest first.
func (s *Service) Payments(ctx context.Context, orderID string) ([]Payment, error) {
	var out []Payment
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func ptr(s string) *string { return &s }

// truncate caps s at n bytes without splitting a rune. Invalid UTF-8 from
// the gateway is dropped so the text can be stored on any driver.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
