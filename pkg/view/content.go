package view

import "time"

type Notice struct {
	ID       string     `json:"id"`
	Message  string     `json:"message"`
	Kind     string     `json:"kind"`
	Active   bool       `json:"active"`
	Position int        `json:"position"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

type Testimonial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Customer struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Pincode     string     `json:"pincode,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	OrdersCount int        `json:"orders_count"`
	LastOrderAt *time.Time `json:"last_order_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	Provider string `json:"provider"`
}

// Flash is a one-shot toast for the next page the client renders.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashInfo    FlashKind = "info"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)
