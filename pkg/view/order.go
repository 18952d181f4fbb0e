package view

import "time"

type OrderItem struct {
	Kind      string `json:"kind"`
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	Qty       int    `json:"qty"`
	UnitPrice Money  `json:"unit_price"`
	LineTotal Money  `json:"line_total"`
}

type OrderEvent struct {
	Action      string    `json:"action"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to"`
	Label       string    `json:"label"`
	Note        string    `json:"note,omitempty"`
	ActorUserID string    `json:"actor_user_id,omitempty"`
	At          time.Time `json:"at"`
}

type Shipment struct {
	Courier    string    `json:"courier"`
	TrackingNo string    `json:"tracking_no,omitempty"`
	Note       string    `json:"note,omitempty"`
	ShippedAt  time.Time `json:"shipped_at"`
}

type OrderSummary struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	Payment     string    `json:"payment"`
	Total       Money     `json:"total"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderDetail struct {
	OrderSummary
	CustomerName string       `json:"customer_name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email,omitempty"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	Pincode      string       `json:"pincode"`
	Notes        string       `json:"notes,omitempty"`
	Subtotal     Money        `json:"subtotal"`
	Delivery     Money        `json:"delivery"`
	Refunded     Money        `json:"refunded"`
	PaidAt       *time.Time   `json:"paid_at,omitempty"`
	Items        []OrderItem  `json:"items"`
	Timeline     []OrderEvent `json:"timeline"`
	Shipments    []Shipment   `json:"shipments"`
}
