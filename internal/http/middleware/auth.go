package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
)

const (
	SessionCookie = "hc_session"

	ctxKeyUser         = "auth_user"
	ctxKeySessionToken = "auth_session_token"
)

// Authenticate resolves the caller from a bearer token or the session
// cookie. Anonymous requests pass through; a stale cookie is cleared.
func Authenticate(svc *auth.Service, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if h := c.GetHeader("Authorization"); h != "" {
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok {
				Fail(c, apperr.UnauthorizedErr("Malformed Authorization header."))
				return
			}
			u, err := svc.BearerUser(ctx, strings.TrimSpace(raw))
			if err != nil {
				Fail(c, apperr.UnauthorizedErr("Invalid or expired token."))
				return
			}
			c.Set(ctxKeyUser, u)
			c.Next()
			return
		}

		if raw, err := c.Cookie(SessionCookie); err == nil && raw != "" {
			u, err := svc.SessionUser(ctx, raw)
			if err == nil {
				c.Set(ctxKeyUser, u)
				c.Set(ctxKeySessionToken, raw)
			} else {
				ClearSessionCookie(c, secureCookie)
			}
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (auth.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return auth.User{}, false
	}
	u, ok := v.(auth.User)
	return u, ok
}

// CurrentUserID is nil for anonymous callers.
func CurrentUserID(c *gin.Context) *string {
	if u, ok := CurrentUser(c); ok {
		id := u.ID
		return &id
	}
	return nil
}

// SessionToken is the raw cookie token of a cookie-authenticated request.
func SessionToken(c *gin.Context) string { return c.GetString(ctxKeySessionToken) }

func SetSessionCookie(c *gin.Context, raw string, maxAge int, secure bool) {
	c.SetSameSite(sameSite)
	c.SetCookie(SessionCookie, raw, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(sameSite)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			Fail(c, apperr.UnauthorizedErr("Please sign in to continue."))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			Fail(c, apperr.UnauthorizedErr("Please sign in to continue."))
			return
		}
		if !u.IsAdmin() {
			Fail(c, apperr.ForbiddenErr("Admin access required."))
			return
		}
		c.Next()
	}
}
