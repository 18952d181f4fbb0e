package orders

import (
	"strings"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/validate"
)

type CheckoutInput struct {
	Name           string `json:"name" binding:"required,min=2,max=120"`
	Phone          string `json:"phone" binding:"required,in_mobile"`
	Email          string `json:"email" binding:"omitempty,email,max=255"`
	AddressLine    string `json:"address" binding:"required,min=5,max=500"`
	City           string `json:"city" binding:"required,max=100"`
	State          string `json:"state" binding:"required,max=100"`
	Pincode        string `json:"pincode" binding:"required,in_pincode"`
	PaymentMethod  string `json:"payment_method" binding:"required,oneof=online manual"`
	ManualMode     string `json:"manual_mode" binding:"omitempty,oneof=upi bank cod"`
	Notes          string `json:"notes" binding:"max=1000"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=64"`
}

// NormalizePhone strips separators and the +91 / 0 prefixes from an Indian
// mobile number.
func NormalizePhone(s string) string { return validate.NormalizePhone(s) }

// Normalize trims every field and validates the result.
func (in CheckoutInput) Normalize() (CheckoutInput, error) {
	out := CheckoutInput{
		Name:           strings.TrimSpace(in.Name),
		Phone:          NormalizePhone(in.Phone),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		AddressLine:    strings.TrimSpace(in.AddressLine),
		City:           strings.TrimSpace(in.City),
		State:          strings.TrimSpace(in.State),
		Pincode:        strings.TrimSpace(in.Pincode),
		PaymentMethod:  strings.ToLower(strings.TrimSpace(in.PaymentMethod)),
		ManualMode:     strings.ToLower(strings.TrimSpace(in.ManualMode)),
		Notes:          strings.TrimSpace(in.Notes),
		IdempotencyKey: strings.TrimSpace(in.IdempotencyKey),
	}
	if out.PaymentMethod == MethodOnline {
		out.ManualMode = ""
	}

	fields := validate.Struct(out)
	if out.PaymentMethod == MethodManual && out.ManualMode == "" {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["manual_mode"] = "Choose UPI, bank transfer or cash on delivery."
	}
	if len(fields) > 0 {
		return out, &ValidationError{Fields: fields}
	}
	return out, nil
}
