// Package cartcookie keeps a guest's cart lines in a signed cookie.
package cartcookie

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/signed"
)

const DefaultName = "hc_cart"

// MaxCookieBytes bounds name=value. Browsers drop cookies past 4096 bytes
// including attributes, which would silently empty the cart.
const MaxCookieBytes = 3900

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
	return &Codec{Secret: secret, CookieName: name, Secure: secure, MaxAge: 30 * 24 * time.Hour}
}

// line is encoded as a [kind, id, qty] array to keep the cookie small.
type line struct {
	K string
	I string
	Q int
}

func (l line) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{l.K, l.I, l.Q})
}

func (l *line) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return errors.New("cartcookie: malformed line")
	}
	if err := json.Unmarshal(raw[0], &l.K); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &l.I); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &l.Q)
}

func (c *Codec) Encode(ls cart.Lines) (string, error) {
	out := make([]line, 0, len(ls))
	for _, l := range ls {
		out = append(out, line{K: string(l.Ref.Kind), I: l.Ref.ID, Q: l.Qty})
	}
	return signed.EncodeJSON(c.Secret, out)
}

func (c *Codec) Decode(v string) (cart.Lines, error) {
	var in []line
	if err := signed.DecodeJSON(c.Secret, v, &in); err != nil {
		return nil, err
	}
	ls := make(cart.Lines, 0, len(in))
	for _, l := range in {
		ls = append(ls, cart.Line{Ref: catalog.ItemRef{Kind: catalog.Kind(l.K), ID: l.I}, Qty: l.Q})
	}
	return ls.Normalize(), nil
}

// Read returns the guest lines; a tampered cookie is cleared and read as empty.
func (c *Codec) Read(ctx *gin.Context) cart.Lines {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return cart.Lines{}
	}
	ls, err := c.Decode(v)
	if err != nil {
		c.Clear(ctx)
		return cart.Lines{}
	}
	return ls
}

// Write stores ls, or clears the cookie when ls is empty. A cart too large
// for one cookie is rejected with cart.ErrTooManyLines and the previous
// cookie is left in place.
func (c *Codec) Write(ctx *gin.Context, ls cart.Lines) error {
	if len(ls) == 0 {
		c.Clear(ctx)
		return nil
	}
	val, err := c.Encode(ls)
	if err != nil {
		return err
	}
	if len(c.CookieName)+1+len(val) > MaxCookieBytes {
		return cart.ErrTooManyLines
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, val, int(c.MaxAge.Seconds()), "/", "", c.Secure, true)
	return nil
}

func (c *Codec) Clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.Secure, true)
}

// Store adapts the cookie of one request to cart.Store.
func (c *Codec) Store(ctx *gin.Context) cart.Store { return &store{codec: c, gc: ctx} }

type store struct {
	codec  *Codec
	gc     *gin.Context
	cached cart.Lines
	loaded bool
}

func (s *store) Load(context.Context) (cart.Lines, error) {
	if !s.loaded {
		s.cached = s.codec.Read(s.gc)
		s.loaded = true
	}
	return append(cart.Lines{}, s.cached...), nil
}

func (s *store) Save(_ context.Context, ls cart.Lines) error {
	if err := s.codec.Write(s.gc, ls); err != nil {
		return err
	}
	s.cached = append(cart.Lines{}, ls...)
	s.loaded = true
	return nil
}
