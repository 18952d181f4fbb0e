package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+91 98765 43210": "9876543210",
		"098765-43210":    "9876543210",
		"9876543210":      "9876543210",
		"12345":           "12345",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestIndianRules(t *testing.T) {
	assert.True(t, IsMobile("+91 98765 43210"))
	assert.False(t, IsMobile("5876543210"))
	assert.False(t, IsMobile("98765"))

	assert.True(t, IsPincode("626123"))
	assert.False(t, IsPincode("026123"))
	assert.False(t, IsPincode("62612"))
}

type address struct {
	Phone   string `json:"phone" binding:"required,in_mobile"`
	Pincode string `json:"pincode" binding:"required,in_pincode"`
	City    string `json:"city" binding:"max=5"`
}

func TestStructMessages(t *testing.T) {
	assert.Nil(t, Struct(address{Phone: "9876543210", Pincode: "600004", City: "Salem"}))

	fields := Struct(address{Phone: "123", Pincode: "0000", City: "Chennai"})
	assert.Equal(t, map[string]string{
		"phone":   "Enter a valid 10-digit mobile number.",
		"pincode": "Enter a valid 6-digit pincode.",
		"city":    "Must be at most 5 characters.",
	}, fields)
}

func TestVar(t *testing.T) {
	assert.Equal(t, "", Var("secret1", "required,min=6,max=72"))
	assert.Equal(t, "Must be at least 6 characters.", Var("abc", "required,min=6,max=72"))
	assert.Equal(t, "This field is required.", Var("", "required"))
}
