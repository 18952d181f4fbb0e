package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
)

var ErrItemUnavailable = errors.New("item is not available")

// Store persists one shopper's lines: a signed cookie for guests or the
// carts table for signed-in users.
type Store interface {
	Load(ctx context.Context) (Lines, error)
	Save(ctx context.Context, lines Lines) error
}

type Service struct {
	db   *gorm.DB
	repo *Repo
}

func NewService(db *gorm.DB, repo *Repo) *Service {
	return &Service{db: db, repo: repo}
}

func (s *Service) Repo() *Repo { return s.repo }

type userStore struct {
	repo   *Repo
	userID string
}

func (u userStore) Load(ctx context.Context) (Lines, error) { return u.repo.LoadUserLines(ctx, u.userID) }
func (u userStore) Save(ctx context.Context, lines Lines) error {
	return u.repo.SaveUserLines(ctx, u.userID, lines)
}

// UserStore is the database-backed store for a signed-in user.
func (s *Service) UserStore(userID string) Store { return userStore{repo: s.repo, userID: userID} }

// Add puts qty units of ref into the cart. Missing or inactive items are
// rejected; stock is only enforced at checkout.
func (s *Service) Add(ctx context.Context, st Store, ref catalog.ItemRef, qty int) (View, error) {
	if !ref.Kind.Valid() || ref.ID == "" {
		return View{}, ErrInvalidItem
	}
	items, err := catalog.Resolve(ctx, s.db, []catalog.ItemRef{ref})
	if err != nil {
		return View{}, err
	}
	it, ok := items[ref.Key()]
	if !ok || !it.Active {
		return View{}, ErrItemUnavailable
	}
	return s.mutate(ctx, st, func(ls Lines) (Lines, error) { return ls.Add(ref, qty) })
}

func (s *Service) SetQty(ctx context.Context, st Store, ref catalog.ItemRef, qty int) (View, error) {
	return s.mutate(ctx, st, func(ls Lines) (Lines, error) {
		if qty > 0 && ls.Qty(ref) == 0 {
			return ls, ErrItemUnavailable
		}
		return ls.SetQty(ref, qty)
	})
}

func (s *Service) Decrement(ctx context.Context, st Store, ref catalog.ItemRef) (View, error) {
	return s.mutate(ctx, st, func(ls Lines) (Lines, error) { return ls.Decrement(ref), nil })
}

func (s *Service) Remove(ctx context.Context, st Store, ref catalog.ItemRef) (View, error) {
	return s.mutate(ctx, st, func(ls Lines) (Lines, error) { return ls.Remove(ref), nil })
}

func (s *Service) Clear(ctx context.Context, st Store) (View, error) {
	return s.mutate(ctx, st, func(Lines) (Lines, error) { return Lines{}, nil })
}

func (s *Service) Get(ctx context.Context, st Store) (View, error) {
	ls, err := st.Load(ctx)
	if err != nil {
		return View{}, err
	}
	return s.View(ctx, ls)
}

// MergeGuest folds a guest cart into the user's stored cart.
func (s *Service) MergeGuest(ctx context.Context, userID string, guest Lines) error {
	if len(guest) == 0 {
		return nil
	}
	st := s.UserStore(userID)
	ls, err := st.Load(ctx)
	if err != nil {
		return err
	}
	return st.Save(ctx, ls.Merge(guest.Normalize()))
}

func (s *Service) mutate(ctx context.Context, st Store, fn func(Lines) (Lines, error)) (View, error) {
	ls, err := st.Load(ctx)
	if err != nil {
		return View{}, err
	}
	next, err := fn(ls)
	if err != nil {
		return View{}, err
	}
	if err := st.Save(ctx, next); err != nil {
		return View{}, err
	}
	return s.View(ctx, next)
}

type ViewLine struct {
	Ref             catalog.ItemRef
	Name            string
	Slug            string
	ImageURL        string
	Qty             int
	UnitPriceCents  int
	MRPCents        int
	LineTotalCents  int
	Stock           int
	DiscountPercent int
}

type View struct {
	Lines         []ViewLine
	Count         int
	SubtotalCents int
	MRPTotalCents int
	SavingsCents  int
}

// View prices lines against the live catalog. Lines whose item vanished
// or was deactivated are dropped.
func (s *Service) View(ctx context.Context, ls Lines) (View, error) {
	v := View{Lines: make([]ViewLine, 0, len(ls))}
	if len(ls) == 0 {
		return v, nil
	}
	items, err := catalog.Resolve(ctx, s.db, ls.Refs())
	if err != nil {
		return View{}, err
	}
	for _, l := range ls {
		it, ok := items[l.Ref.Key()]
		if !ok || !it.Active || l.Qty <= 0 {
			continue
		}
		mrp := it.MRPCents
		if mrp < it.PriceCents {
			mrp = it.PriceCents
		}
		line := ViewLine{
			Ref:             l.Ref,
			Name:            it.Name,
			Slug:            it.Slug,
			ImageURL:        it.ImageURL,
			Qty:             l.Qty,
			UnitPriceCents:  it.PriceCents,
			MRPCents:        mrp,
			LineTotalCents:  it.PriceCents * l.Qty,
			Stock:           it.Stock,
			DiscountPercent: catalog.DiscountPercent(it.PriceCents, mrp),
		}
		v.Lines = append(v.Lines, line)
		v.Count += l.Qty
		v.SubtotalCents += line.LineTotalCents
		v.MRPTotalCents += mrp * l.Qty
	}
	v.SavingsCents = v.MRPTotalCents - v.SubtotalCents
	return v, nil
}
