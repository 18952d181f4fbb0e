package view

import "time"

type AdminOrderListItem struct {
	OrderSummary
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
}

type AdminPayment struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	PaymentRef  string    `json:"payment_ref,omitempty"`
	Status      string    `json:"status"`
	Amount      Money     `json:"amount"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type AdminRefund struct {
	ID          string    `json:"id"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	Status      string    `json:"status"`
	Amount      Money     `json:"amount"`
	Reason      string    `json:"reason,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type LedgerEntry struct {
	Event     string    `json:"event"`
	Amount    Money     `json:"amount"`
	RefType   string    `json:"ref_type"`
	RefID     string    `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminOrderDetail struct {
	OrderDetail
	CustomerID     string         `json:"customer_id"`
	IdempotencyKey string         `json:"idempotency_key"`
	Actions        []string       `json:"actions"`
	Refundable     Money          `json:"refundable"`
	Payments       []AdminPayment `json:"payments"`
	Refunds        []AdminRefund  `json:"refunds"`
	Ledger         []LedgerEntry  `json:"ledger"`
}
