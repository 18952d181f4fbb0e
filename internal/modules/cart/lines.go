package cart

import (
	"errors"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
)

const (
	MaxQty   = 99
	MaxLines = 50
)

var (
	ErrInvalidItem  = errors.New("invalid cart item")
	ErrTooManyLines = errors.New("cart is full")
)

type Line struct {
	Ref catalog.ItemRef `json:"ref"`
	Qty int             `json:"qty"`
}

// Lines is an ordered cart; a ref appears at most once.
type Lines []Line

func clamp(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxQty {
		return MaxQty
	}
	return q
}

func (ls Lines) index(ref catalog.ItemRef) int {
	for i, l := range ls {
		if l.Ref == ref {
			return i
		}
	}
	return -1
}

func (ls Lines) Qty(ref catalog.ItemRef) int {
	if i := ls.index(ref); i >= 0 {
		return ls[i].Qty
	}
	return 0
}

// Add increments an existing line or appends a new one.
func (ls Lines) Add(ref catalog.ItemRef, qty int) (Lines, error) {
	if !ref.Kind.Valid() || ref.ID == "" {
		return ls, ErrInvalidItem
	}
	if qty < 1 {
		qty = 1
	}
	out := ls.clone()
	if i := out.index(ref); i >= 0 {
		out[i].Qty = clamp(out[i].Qty + qty)
		return out, nil
	}
	if len(out) >= MaxLines {
		return ls, ErrTooManyLines
	}
	return append(out, Line{Ref: ref, Qty: clamp(qty)}), nil
}

// SetQty replaces a line's quantity; qty <= 0 removes it.
func (ls Lines) SetQty(ref catalog.ItemRef, qty int) (Lines, error) {
	if !ref.Kind.Valid() || ref.ID == "" {
		return ls, ErrInvalidItem
	}
	if qty <= 0 {
		return ls.Remove(ref), nil
	}
	out := ls.clone()
	if i := out.index(ref); i >= 0 {
		out[i].Qty = clamp(qty)
		return out, nil
	}
	if len(out) >= MaxLines {
		return ls, ErrTooManyLines
	}
	return append(out, Line{Ref: ref, Qty: clamp(qty)}), nil
}

// Decrement drops one unit; the last unit removes the line.
func (ls Lines) Decrement(ref catalog.ItemRef) Lines {
	i := ls.index(ref)
	if i < 0 {
		return ls
	}
	if ls[i].Qty <= 1 {
		return ls.Remove(ref)
	}
	out := ls.clone()
	out[i].Qty--
	return out
}

func (ls Lines) Remove(ref catalog.ItemRef) Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		if l.Ref != ref {
			out = append(out, l)
		}
	}
	return out
}

// Merge adds other's quantities into ls. Lines that no longer fit are dropped.
func (ls Lines) Merge(other Lines) Lines {
	out := ls.clone()
	for _, l := range other {
		if next, err := out.Add(l.Ref, l.Qty); err == nil {
			out = next
		}
	}
	return out
}

func (ls Lines) Count() int {
	n := 0
	for _, l := range ls {
		n += l.Qty
	}
	return n
}

func (ls Lines) Refs() []catalog.ItemRef {
	out := make([]catalog.ItemRef, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Ref)
	}
	return out
}

// Normalize drops invalid entries, folds duplicates and clamps quantities.
// It is applied to anything read back from a client cookie.
func (ls Lines) Normalize() Lines {
	var out Lines
	for _, l := range ls {
		if !l.Ref.Kind.Valid() || l.Ref.ID == "" || l.Qty <= 0 {
			continue
		}
		if next, err := out.Add(l.Ref, l.Qty); err == nil {
			out = next
		}
	}
	if out == nil {
		out = Lines{}
	}
	return out
}

func (ls Lines) clone() Lines {
	out := make(Lines, len(ls), len(ls)+1)
	copy(out, ls)
	return out
}
