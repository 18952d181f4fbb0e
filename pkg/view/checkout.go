package view

type CartLine struct {
	Kind         string `json:"kind"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ImageURL     string `json:"image_url"`
	Qty          int    `json:"qty"`
	UnitPrice    Money  `json:"unit_price"`
	MRP          Money  `json:"mrp"`
	LineTotal    Money  `json:"line_total"`
	Discount     int    `json:"discount_percent"`
	ExceedsStock bool   `json:"exceeds_stock"`
	StockLeft    int    `json:"stock_left"`
}

type Cart struct {
	Lines    []CartLine `json:"lines"`
	Count    int        `json:"count"`
	Subtotal Money      `json:"subtotal"`
	MRPTotal Money      `json:"mrp_total"`
	Savings  Money      `json:"savings"`
	Delivery Money      `json:"delivery"`
	Total    Money      `json:"total"`
	MinOrder Money      `json:"min_order"`
	// BelowMinimum is true when checkout would be rejected for value.
	BelowMinimum bool `json:"below_minimum"`
}

type CheckoutResult struct {
	OrderID      string `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	Status       string `json:"status"`
	Total        Money  `json:"total"`
	Payment      string `json:"payment"`
	Idempotent   bool   `json:"idempotent"`
	Widget       any    `json:"razorpay,omitempty"`
	PaymentError string `json:"payment_error,omitempty"`
	Instructions any    `json:"instructions,omitempty"`
}
