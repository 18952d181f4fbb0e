// Package flash carries one-shot notices ("Order placed", "Signed out")
// across requests in a signed cookie.
package flash

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/signed"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

const DefaultName = "hc_flash"

type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
}

func NewCodec(secret []byte, cookieName string, secure bool) *Codec {
	if cookieName == "" {
		cookieName = DefaultName
	}
	return &Codec{Secret: secret, CookieName: cookieName, Secure: secure}
}

func (c *Codec) Encode(f view.Flash) (string, error) { return signed.EncodeJSON(c.Secret, f) }

func (c *Codec) Decode(v string) (*view.Flash, error) {
	var f view.Flash
	if err := signed.DecodeJSON(c.Secret, v, &f); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Message) == "" {
		return nil, signed.ErrInvalid
	}
	return &f, nil
}

// CookieMaxAge is short: the notice is read by the next page load.
func (c *Codec) CookieMaxAge() int { return int((2 * time.Minute).Seconds()) }

func (c *Codec) Set(ctx *gin.Context, kind view.FlashKind, msg string) {
	val, err := c.Encode(view.Flash{Kind: kind, Message: msg})
	if err != nil {
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, val, c.CookieMaxAge(), "/", "", c.Secure, true)
}

// Pop returns the pending notice, if any, and clears it. A tampered cookie
// is cleared and ignored.
func (c *Codec) Pop(ctx *gin.Context) *view.Flash {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return nil
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.Secure, true)
	f, err := c.Decode(v)
	if err != nil {
		return nil
	}
	return f
}
