package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/checkout"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/shipping"
)

const (
	ActionMarkPaid = "mark_paid"
	ActionConfirm  = "confirm"
	ActionPack     = "pack"
	ActionShip     = "ship"
	ActionDeliver  = "deliver"
	ActionCancel   = "cancel"
)

type AdminService struct {
	db  *gorm.DB
	svc *Service
	log logrus.FieldLogger
}

func NewAdminService(db *gorm.DB, svc *Service, log logrus.FieldLogger) *AdminService {
	return &AdminService{db: db, svc: svc, log: log}
}

type TransitionInput struct {
	OrderID     string
	ActorUserID string // admin user id
	Action      string
	Note        string

	// ship only
	Courier    string
	TrackingNo string
}

func (s *AdminService) Transition(ctx context.Context, in TransitionInput) (Order, error) {
	if in.OrderID == "" || in.ActorUserID == "" || in.Action == "" {
		return Order{}, ErrNotActionable
	}
	if in.Action == ActionShip && strings.TrimSpace(in.Courier) == "" {
		return Order{}, ErrShipmentDetails
	}

	var out Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order

		// row lock
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "id = ?", in.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		from := o.Status
		to, err := nextStatus(o, in.Action)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]any{
			"status":     to,
			"updated_at": now,
		}
		switch to {
		case StatusPaid:
			updates["paid_at"] = now
		case StatusConfirmed:
			updates["confirmed_at"] = now
		case StatusShipped:
			updates["shipped_at"] = now
		case StatusDelivered:
			updates["delivered_at"] = now
		case StatusCancelled:
			updates["cancelled_at"] = now
		}

		res := tx.Model(&Order{}).
			Where("id = ? AND status = ?", o.ID, from). // optimistic guard
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrInvalidTransition
		}

		switch in.Action {
		case ActionMarkPaid:
			if err := tx.Create(&FinancialEntry{
				ID:          uuid.NewString(),
				OrderID:     o.ID,
				Event:       "payment_succeeded",
				AmountCents: o.TotalCents,
				Currency:    o.Currency,
				RefType:     "manual",
				RefID:       o.ID,
				CreatedAt:   now,
			}).Error; err != nil {
				return err
			}
		case ActionShip:
			if _, err := shipping.CreateInTx(ctx, tx, shipping.CreateInput{
				OrderID:    o.ID,
				Courier:    in.Courier,
				TrackingNo: in.TrackingNo,
				Note:       in.Note,
			}, now); err != nil {
				return err
			}
		case ActionCancel:
			if err := restockOrderInTx(ctx, tx, o.ID); err != nil {
				return err
			}
		}

		var notePtr *string
		if n := strings.TrimSpace(in.Note); n != "" {
			notePtr = &n
		}
		if in.Action == ActionShip {
			n := strings.TrimSpace(in.Courier + " " + in.TrackingNo)
			notePtr = &n
		}

		ev := OrderEvent{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ActorUserID: in.ActorUserID,
			Action:      in.Action,
			FromStatus:  from,
			ToStatus:    to,
			Note:        notePtr,
			CreatedAt:   now,
		}
		if err := tx.Create(&ev).Error; err != nil {
			return err
		}

		return tx.First(&out, "id = ?", o.ID).Error
	})
	if err != nil {
		return Order{}, err
	}

	s.log.WithFields(logrus.Fields{
		"order_number": out.Number,
		"action":       in.Action,
		"status":       out.Status,
		"actor":        in.ActorUserID,
	}).Info("order transitioned")

	if in.Action == ActionMarkPaid && s.svc != nil {
		for _, l := range s.svc.Listeners() {
			l.OrderPaid(ctx, out)
		}
	}
	return out, nil
}

func restockOrderInTx(ctx context.Context, tx *gorm.DB, orderID string) error {
	var items []OrderItem
	if err := tx.Find(&items, "order_id = ?", orderID).Error; err != nil {
		return err
	}
	lines := make([]checkout.StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, checkout.StockLine{
			Ref: catalog.ItemRef{Kind: catalog.Kind(it.Kind), ID: it.ItemID},
			Qty: it.Quantity,
		})
	}
	return checkout.RestockInTx(ctx, tx, lines)
}

// nextStatus is the admin order state machine.
func nextStatus(o Order, action string) (string, error) {
	from := o.Status
	switch action {
	case ActionMarkPaid:
		if from == StatusCreated {
			return StatusPaid, nil
		}
	case ActionConfirm:
		if from == StatusPaid || (from == StatusCreated && o.IsCOD()) {
			return StatusConfirmed, nil
		}
	case ActionPack:
		if from == StatusConfirmed {
			return StatusPacked, nil
		}
	case ActionShip:
		if from == StatusPacked || from == StatusConfirmed {
			return StatusShipped, nil
		}
	case ActionDeliver:
		if from == StatusShipped {
			return StatusDelivered, nil
		}
	case ActionCancel:
		if from == StatusCreated || from == StatusPaid || from == StatusConfirmed {
			return StatusCancelled, nil
		}
	}
	return "", ErrInvalidTransition
}

// AllowedActions lists what an admin may do next with o.
func AllowedActions(o Order) []string {
	var out []string
	for _, a := range []string{ActionMarkPaid, ActionConfirm, ActionPack, ActionShip, ActionDeliver, ActionCancel} {
		if _, err := nextStatus(o, a); err == nil {
			out = append(out, a)
		}
	}
	return out
}
