package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/checkout"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
)

// Listener is told about order lifecycle events after they commit.
// Implementations must not block.
type Listener interface {
	OrderCreated(ctx context.Context, o Order, items []OrderItem)
	OrderPaid(ctx context.Context, o Order)
}

type Service struct {
	db        *gorm.DB
	carts     *cart.Repo
	site      *content.SettingsRepo
	payments  *settings.Repo
	log       logrus.FieldLogger
	listeners []Listener
	now       func() time.Time
}

func NewService(db *gorm.DB, carts *cart.Repo, site *content.SettingsRepo, payments *settings.Repo, log logrus.FieldLogger) *Service {
	return &Service{db: db, carts: carts, site: site, payments: payments, log: log, now: time.Now}
}

func (s *Service) AddListener(l Listener) { s.listeners = append(s.listeners, l) }

func (s *Service) Listeners() []Listener { return s.listeners }

type CreateFromCartInput struct {
	Checkout CheckoutInput
	UserID   *string
	// Guest lines; ignored when UserID is set (the stored cart is used).
	Lines cart.Lines
}

type CreateResult struct {
	Order      Order
	Items      []OrderItem
	Idempotent bool
}

// CreateFromCart turns the shopper's cart into an order in one transaction:
// stock is locked and deducted, prices are re-read, the customer is upserted
// and a signed-in user's cart is emptied. Replaying the same idempotency key
// returns the original order.
func (s *Service) CreateFromCart(ctx context.Context, in CreateFromCartInput) (CreateResult, error) {
	ci, err := in.Checkout.Normalize()
	if err != nil {
		return CreateResult{}, err
	}

	ps, err := s.payments.Get(ctx)
	if err != nil {
		return CreateResult{}, err
	}
	if !paymentAvailable(ps, ci) {
		return CreateResult{}, ErrPaymentUnavailable
	}

	site, err := s.site.Site(ctx)
	if err != nil {
		return CreateResult{}, err
	}

	scope := "phone:" + ci.Phone
	if in.UserID != nil {
		scope = "user:" + *in.UserID
	}
	idemKey := ci.IdempotencyKey
	if idemKey == "" {
		idemKey = uuid.NewString()
	}

	var res CreateResult
	err = db.WithTxRetry(ctx, s.db, 3, func(tx *gorm.DB) error {
		res = CreateResult{}

		prior, found, err := findIdempotent(tx, scope, idemKey)
		if err != nil {
			return err
		}
		if found {
			res = prior
			return nil
		}

		lines := in.Lines.Normalize()
		if in.UserID != nil {
			stored, err := s.carts.LoadUserLinesInTx(tx, *in.UserID)
			if err != nil {
				return err
			}
			lines = stored
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}

		stock := make([]checkout.StockLine, 0, len(lines))
		for _, l := range lines {
			stock = append(stock, checkout.StockLine{Ref: l.Ref, Qty: l.Qty})
		}
		if err := checkout.DeductStockInTx(ctx, tx, stock); err != nil {
			return err
		}

		priced, err := catalog.Resolve(ctx, tx, lines.Refs())
		if err != nil {
			return err
		}

		now := s.now()
		order := Order{
			ID:            uuid.NewString(),
			UserID:        in.UserID,
			CustomerName:  ci.Name,
			Phone:         ci.Phone,
			Email:         ci.Email,
			AddressLine:   ci.AddressLine,
			City:          ci.City,
			State:         ci.State,
			Pincode:       ci.Pincode,
			Notes:         ci.Notes,
			Status:        StatusCreated,
			PaymentMethod: ci.PaymentMethod,
			ManualMode:    ci.ManualMode,
			Currency:      CurrencyINR,
			IdemScope:     scope,
			IdemKey:       idemKey,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		items := make([]OrderItem, 0, len(lines))
		for i, l := range lines {
			it := priced[l.Ref.Key()]
			mrp := it.MRPCents
			if mrp < it.PriceCents {
				mrp = it.PriceCents
			}
			items = append(items, OrderItem{
				ID:             uuid.NewString(),
				OrderID:        order.ID,
				Kind:           string(l.Ref.Kind),
				ItemID:         l.Ref.ID,
				Name:           it.Name,
				Slug:           it.Slug,
				UnitPriceCents: it.PriceCents,
				MRPCents:       mrp,
				Quantity:       l.Qty,
				LineTotalCents: it.PriceCents * l.Qty,
				Position:       i,
				CreatedAt:      now,
			})
			order.SubtotalCents += it.PriceCents * l.Qty
		}

		if order.SubtotalCents < site.MinOrderCents {
			return &MinimumOrderError{MinCents: site.MinOrderCents, SubtotalCents: order.SubtotalCents}
		}
		order.DeliveryCents = site.DeliveryCents
		order.TotalCents = order.SubtotalCents + order.DeliveryCents

		cust, err := customers.UpsertInTx(ctx, tx, customers.Contact{
			UserID:      in.UserID,
			Name:        ci.Name,
			Phone:       ci.Phone,
			Email:       ci.Email,
			AddressLine: ci.AddressLine,
			City:        ci.City,
			State:       ci.State,
			Pincode:     ci.Pincode,
		}, now)
		if err != nil {
			return err
		}
		order.CustomerID = cust.ID

		number, err := s.uniqueNumber(tx, now)
		if err != nil {
			return err
		}
		order.Number = number

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		if err := tx.Create(&OrderEvent{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			ActorUserID: actorOf(in.UserID),
			Action:      "create",
			ToStatus:    StatusCreated,
			CreatedAt:   now,
		}).Error; err != nil {
			return err
		}

		if in.UserID != nil {
			if err := s.carts.ClearUserCartInTx(tx, *in.UserID); err != nil {
				return err
			}
		}

		res = CreateResult{Order: order, Items: items}
		return nil
	})
	if err != nil && db.IsDuplicateKey(err) {
		// a concurrent submit with the same key committed first
		prior, found, ferr := findIdempotent(s.db.WithContext(ctx), scope, idemKey)
		if ferr == nil && found {
			res, err = prior, nil
		}
	}
	if err != nil {
		return CreateResult{}, err
	}

	if !res.Idempotent {
		s.log.WithFields(logrus.Fields{
			"order_number": res.Order.Number,
			"total_cents":  res.Order.TotalCents,
			"method":       res.Order.PaymentMethod,
		}).Info("order created")
		for _, l := range s.listeners {
			l.OrderCreated(ctx, res.Order, res.Items)
		}
	}
	return res, nil
}

func findIdempotent(tx *gorm.DB, scope, key string) (CreateResult, bool, error) {
	var existing Order
	e := tx.Where("idem_scope = ? AND idem_key = ?", scope, key).Limit(1).Find(&existing)
	if e.Error != nil || e.RowsAffected == 0 {
		return CreateResult{}, false, e.Error
	}
	var items []OrderItem
	if err := tx.Order("position ASC").Find(&items, "order_id = ?", existing.ID).Error; err != nil {
		return CreateResult{}, false, err
	}
	return CreateResult{Order: existing, Items: items, Idempotent: true}, true, nil
}

func (s *Service) uniqueNumber(tx *gorm.DB, at time.Time) (string, error) {
	for i := 0; i < 5; i++ {
		n := NewNumber(at)
		var cnt int64
		if err := tx.Model(&Order{}).Where("number = ?", n).Count(&cnt).Error; err != nil {
			return "", err
		}
		if cnt == 0 {
			return n, nil
		}
	}
	return "", errors.New("could not allocate order number")
}

func paymentAvailable(ps settings.PaymentSetting, in CheckoutInput) bool {
	switch in.PaymentMethod {
	case MethodOnline:
		return ps.OnlineReady()
	case MethodManual:
		switch in.ManualMode {
		case ModeUPI:
			return ps.UPIReady()
		case ModeBank:
			return ps.BankReady()
		case ModeCOD:
			return ps.CODReady()
		}
	}
	return false
}

func actorOf(userID *string) string {
	if userID != nil {
		return *userID
	}
	return ActorSystem
}

// NotifyPaid fans a paid order out to listeners.
func (s *Service) NotifyPaid(ctx context.Context, orderID string) {
	var o Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", orderID).Error; err != nil {
		s.log.WithError(err).WithField("order_id", orderID).Warn("load paid order for notify")
		return
	}
	for _, l := range s.listeners {
		l.OrderPaid(ctx, o)
	}
}
