package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/cartcookie"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/middleware"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type AuthHandler struct {
	Auth         *auth.Service
	Cart         *cart.Service
	CartCK       *cartcookie.Codec
	Flash        *flash.Codec
	SecureCookie bool
	Log          logrus.FieldLogger
}

func NewAuthHandler(svc *auth.Service, carts *cart.Service, ck *cartcookie.Codec, fl *flash.Codec, secure bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Auth: svc, Cart: carts, CartCK: ck, Flash: fl, SecureCookie: secure, Log: log}
}

type sessionResponse struct {
	User      view.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var in auth.SignupInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Auth.Signup(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.startSession(c, u, http.StatusCreated, "Welcome to Hello Crackers, "+u.Name+"!")
}

type loginInput struct {
	Email    string `json:"email" binding:"omitempty,max=255"`
	Password string `json:"password" binding:"omitempty,max=128"`
	IDToken  string `json:"id_token" binding:"omitempty,max=4096"`
}

// POST /api/auth/login takes either email+password or a Firebase id_token.
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()

	var (
		u   auth.User
		err error
	)
	switch {
	case strings.TrimSpace(in.IDToken) != "":
		u, err = h.Auth.FirebaseLogin(ctx, in.IDToken)
		if err != nil && !errors.Is(err, auth.ErrFirebaseDisabled) {
			h.Log.WithError(err).Warn("firebase_login_rejected")
			err = apperr.UnauthorizedErr("Sign-in failed. Please try again.")
		}
	case in.Email != "" && in.Password != "":
		u, err = h.Auth.Login(ctx, in.Email, in.Password)
	default:
		err = apperr.InvalidErr("Enter your email and password.", map[string]string{
			"email": "This field is required.", "password": "This field is required.",
		})
	}
	if err != nil {
		fail(c, err)
		return
	}
	h.startSession(c, u, http.StatusOK, "Welcome back, "+u.Name+"!")
}

// startSession merges the guest cart, sets the session cookie and issues a
// bearer token for API clients.
func (h *AuthHandler) startSession(c *gin.Context, u auth.User, status int, greeting string) {
	ctx := c.Request.Context()

	if guest := h.CartCK.Read(c); len(guest) > 0 {
		if err := h.Cart.MergeGuest(ctx, u.ID, guest); err != nil {
			fail(c, err)
			return
		}
		h.CartCK.Clear(c)
	}

	raw, sess, err := h.Auth.CreateSession(ctx, u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.SetSessionCookie(c, raw, int(time.Until(sess.ExpiresAt).Seconds()), h.SecureCookie)

	token, exp, err := h.Auth.Tokens().Issue(u)
	if err != nil {
		fail(c, err)
		return
	}

	h.Log.WithFields(logrus.Fields{"user_id": u.ID, "provider": u.Provider}).Info("user_signed_in")
	render.WithFlash(c, h.Flash, view.FlashSuccess, greeting, status, sessionResponse{
		User: present.User(u), Token: token, ExpiresAt: exp,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw := middleware.SessionToken(c); raw != "" {
		if err := h.Auth.DeleteSession(c.Request.Context(), raw); err != nil {
			fail(c, err)
			return
		}
	}
	middleware.ClearSessionCookie(c, h.SecureCookie)
	render.WithFlash(c, h.Flash, view.FlashInfo, "You have been signed out.", http.StatusOK, gin.H{"ok": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		render.OK(c, gin.H{"user": nil})
		return
	}
	render.OK(c, gin.H{"user": present.User(u)})
}
