// Package dismiss remembers which notices a visitor closed, in a signed
// long-lived cookie.
package dismiss

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/signed"
)

const (
	DefaultName = "hc_dismissed"
	MaxIDs      = 50
)

type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

func New(secret []byte, name string, secure bool) *Codec {
	if name == "" {
		name = DefaultName
	}
	return &Codec{Secret: secret, CookieName: name, Secure: secure, MaxAge: 365 * 24 * time.Hour}
}

// Read returns the dismissed notice ids. Missing or tampered cookies read
// as none.
func (c *Codec) Read(ctx *gin.Context) []string {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return nil
	}
	var ids []string
	if err := signed.DecodeJSON(c.Secret, v, &ids); err != nil {
		return nil
	}
	return ids
}

// Add records id and rewrites the cookie. Only the newest MaxIDs survive.
func (c *Codec) Add(ctx *gin.Context, id string) ([]string, error) {
	ids := appendID(c.Read(ctx), id)
	val, err := signed.EncodeJSON(c.Secret, ids)
	if err != nil {
		return nil, err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, val, int(c.MaxAge.Seconds()), "/", "", c.Secure, true)
	return ids, nil
}

func appendID(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	out = append(out, id)
	if len(out) > MaxIDs {
		out = out[len(out)-MaxIDs:]
	}
	return out
}
