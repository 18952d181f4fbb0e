package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
)

type item struct {
	Name string `json:"name" binding:"required"`
	Qty  int    `json:"qty" binding:"min=1"`
}

type payload struct {
	Email  string `json:"email" binding:"required,email"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Mode   string `json:"mode" binding:"omitempty,oneof=upi bank cod"`
	Items  []item `json:"items" binding:"dive"`
}

func bind(t *testing.T, body string) (payload, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var p payload
	err := BindJSON(c, &p)
	return p, err
}

func TestBindJSONValid(t *testing.T) {
	p, err := bind(t, `{"email":"a@b.in","rating":4,"mode":"cod","items":[{"name":"Sparkler","qty":2}]}`)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Rating)
	assert.Len(t, p.Items, 1)
}

func TestBindJSONFieldErrors(t *testing.T) {
	_, err := bind(t, `{"email":"nope","rating":9,"mode":"cheque","items":[{"name":"","qty":0}]}`)
	require.Error(t, err)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Invalid, ae.Kind)
	assert.Equal(t, "Enter a valid email address.", ae.Fields["email"])
	assert.Equal(t, "Must be at most 5.", ae.Fields["rating"])
	assert.Equal(t, "Must be one of: upi, bank, cod.", ae.Fields["mode"])
	assert.Equal(t, "This field is required.", ae.Fields["items[0].name"])
	assert.Contains(t, ae.Fields, "items[0].qty")
}

func TestBindJSONEmptyBodyStillValidates(t *testing.T) {
	_, err := bind(t, ``)
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "email")
}

func TestBindJSONMalformed(t *testing.T) {
	_, err := bind(t, `{"email":`)
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Request body is invalid.", ae.Fields["_"])
}

type contact struct {
	Phone   string `json:"phone" binding:"required,in_mobile"`
	Pincode string `json:"pincode" binding:"required,in_pincode"`
}

func TestBindJSONIndianRules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := func(body string) error {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var in contact
		return BindJSON(c, &in)
	}

	require.NoError(t, run(`{"phone":"+91 98765 43210","pincode":"626123"}`))

	err := run(`{"phone":"12345","pincode":"012345"}`)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Enter a valid 10-digit mobile number.", ae.Fields["phone"])
	assert.Equal(t, "Enter a valid 6-digit pincode.", ae.Fields["pincode"])
}
