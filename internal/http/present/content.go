package present

import (
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/feedback"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

func Notices(ns []content.Notice) []view.Notice {
	out := make([]view.Notice, 0, len(ns))
	for _, n := range ns {
		out = append(out, Notice(n))
	}
	return out
}

func Notice(n content.Notice) view.Notice {
	return view.Notice{
		ID:       n.ID,
		Message:  n.Message,
		Kind:     n.Kind,
		Active:   n.Active,
		Position: n.Position,
		StartsAt: n.StartsAt,
		EndsAt:   n.EndsAt,
	}
}

// Testimonials hides moderation status unless withStatus is set.
func Testimonials(fs []feedback.Feedback, withStatus bool) []view.Testimonial {
	out := make([]view.Testimonial, 0, len(fs))
	for _, f := range fs {
		t := view.Testimonial{
			ID:        f.ID,
			Name:      f.Name,
			City:      f.City,
			Rating:    f.Rating,
			Message:   f.Message,
			CreatedAt: f.CreatedAt,
		}
		if withStatus {
			t.Status = f.Status
		}
		out = append(out, t)
	}
	return out
}

func Customer(c customers.Customer) view.Customer {
	return view.Customer{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.AddressLine,
		City:        c.City,
		State:       c.State,
		Pincode:     c.Pincode,
		Notes:       c.Notes,
		OrdersCount: c.OrdersCount,
		LastOrderAt: c.LastOrderAt,
		CreatedAt:   c.CreatedAt,
	}
}

func Customers(cs []customers.Customer) []view.Customer {
	out := make([]view.Customer, 0, len(cs))
	for _, c := range cs {
		out = append(out, Customer(c))
	}
	return out
}

func User(u auth.User) view.User {
	return view.User{ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone, Role: u.Role, Provider: u.Provider}
}
