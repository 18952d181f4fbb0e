package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/validate"
)

// maxPasswordBytes is the bcrypt input limit. The max=72 tag counts runes, so
// multi-byte passwords are checked again in bytes.
const maxPasswordBytes = 72

const passwordRules = "required,min=6,max=72"

type Service struct {
	db       *gorm.DB
	tokens   *Tokens
	verifier Verifier // nil disables Firebase sign-in
	ttl      time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
	cost     int
}

func NewService(gdb *gorm.DB, tokens *Tokens, verifier Verifier, sessionTTL time.Duration, log logrus.FieldLogger) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	return &Service{db: gdb, tokens: tokens, verifier: verifier, ttl: sessionTTL, log: log, now: time.Now, cost: bcrypt.DefaultCost}
}

func (s *Service) Tokens() *Tokens { return s.tokens }

func (s *Service) SessionTTL() time.Duration { return s.ttl }

type SignupInput struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Name     string `json:"name" binding:"required,max=120"`
	Phone    string `json:"phone" binding:"omitempty,in_mobile"`
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (in SignupInput) validate() error {
	fields := validate.Struct(in)
	if _, bad := fields["password"]; !bad && len(in.Password) > maxPasswordBytes {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["password"] = "Must be at most 72 bytes."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkPassword(field, pw string) error {
	msg := validate.Var(pw, passwordRules)
	if msg == "" && len(pw) > maxPasswordBytes {
		msg = "Must be at most 72 bytes."
	}
	if msg != "" {
		return &ValidationError{Fields: map[string]string{field: msg}}
	}
	return nil
}

// Signup creates a local customer account.
func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Phone = strings.TrimSpace(in.Phone); in.Phone != "" {
		in.Phone = validate.NormalizePhone(in.Phone)
	}
	if err := in.validate(); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         RoleCustomer,
		Provider:     ProviderLocal,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user signed up")
	return u, nil
}

// Login checks a local password.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// keep timing close to the found case
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZzGkUMnuT2UuI3Ah6D7Zri"), []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// FirebaseLogin maps a verified Firebase identity onto a local user by email,
// provisioning a customer on first sight.
func (s *Service) FirebaseLogin(ctx context.Context, idToken string) (User, error) {
	if s.verifier == nil {
		return User{}, ErrFirebaseDisabled
	}
	id, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return User{}, err
	}
	email := normalizeEmail(id.Email)

	var u User
	err = s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	switch {
	case err == nil:
		if u.FirebaseUID == "" {
			if err := s.db.WithContext(ctx).Model(&u).Update("firebase_uid", id.UID).Error; err != nil {
				return User{}, err
			}
		}
		return u, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return User{}, err
	}

	u = User{
		ID:          uuid.NewString(),
		Email:       email,
		Name:        id.Name,
		Role:        RoleCustomer,
		Provider:    ProviderFirebase,
		FirebaseUID: id.UID,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if db.IsDuplicateKey(err) {
			// lost a race with a parallel first login
			var existing User
			err := s.db.WithContext(ctx).First(&existing, "email = ?", email).Error
			return existing, err
		}
		return User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user provisioned from firebase")
	return u, nil
}

func hashToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}

// CreateSession starts a browser session and returns the raw cookie token.
func (s *Service) CreateSession(ctx context.Context, userID string) (string, Session, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", Session{}, err
	}
	raw := base64.RawURLEncoding.EncodeToString(b)
	now := s.now()
	sess := Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		TokenHash:  hashToken(raw),
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return "", Session{}, err
	}
	return raw, sess, nil
}

// SessionUser resolves a cookie token to its user and bumps last_seen_at.
func (s *Service) SessionUser(ctx context.Context, raw string) (User, error) {
	if raw == "" {
		return User{}, ErrSessionNotFound
	}
	now := s.now()
	var sess Session
	err := s.db.WithContext(ctx).First(&sess, "token_hash = ? AND expires_at > ?", hashToken(raw), now).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrSessionNotFound
	}
	if err != nil {
		return User{}, err
	}

	u, err := s.User(ctx, sess.UserID)
	if err != nil {
		return User{}, err
	}
	if now.Sub(sess.LastSeenAt) > time.Minute {
		_ = s.db.WithContext(ctx).Model(&Session{}).Where("id = ?", sess.ID).Update("last_seen_at", now).Error
	}
	return u, nil
}

func (s *Service) DeleteSession(ctx context.Context, raw string) error {
	return s.db.WithContext(ctx).Where("token_hash = ?", hashToken(raw)).Delete(&Session{}).Error
}

// PurgeExpiredSessions removes dead sessions and reports how many went.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&Session{})
	return res.RowsAffected, res.Error
}

// BearerUser resolves an API token.
func (s *Service) BearerUser(ctx context.Context, raw string) (User, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return User{}, err
	}
	u, err := s.User(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidToken
	}
	return u, err
}

func (s *Service) User(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// ChangePassword replaces a local password and drops the user's other sessions.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next, keepToken string) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash != "" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return &ValidationError{Fields: map[string]string{"current_password": "Current password is incorrect."}}
	}
	if err := checkPassword("new_password", next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		q := tx.Where("user_id = ?", userID)
		if keepToken != "" {
			q = q.Where("token_hash <> ?", hashToken(keepToken))
		}
		return q.Delete(&Session{}).Error
	})
}

// EnsureAdmin creates an admin account or promotes and re-keys an existing one.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (User, bool, error) {
	in := SignupInput{Email: normalizeEmail(email), Password: password, Name: name}
	if in.Name == "" {
		in.Name = "Admin"
	}
	if err := in.validate(); err != nil {
		return User{}, false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, false, err
	}

	var u User
	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e := tx.First(&u, "email = ?", in.Email).Error
		if errors.Is(e, gorm.ErrRecordNotFound) {
			created = true
			u = User{
				ID:           uuid.NewString(),
				Email:        in.Email,
				PasswordHash: string(hash),
				Name:         in.Name,
				Role:         RoleAdmin,
				Provider:     ProviderLocal,
			}
			return tx.Create(&u).Error
		}
		if e != nil {
			return e
		}
		u.Role = RoleAdmin
		u.PasswordHash = string(hash)
		return tx.Model(&User{}).Where("id = ?", u.ID).
			Updates(map[string]any{"role": RoleAdmin, "password_hash": u.PasswordHash}).Error
	})
	return u, created, err
}
