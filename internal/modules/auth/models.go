package auth

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Email        string `gorm:"size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string `gorm:"size:100" json:"-"`
	Name         string `gorm:"size:120" json:"name"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:16;not null" json:"role"`
	Provider     string `gorm:"size:16;not null" json:"provider"`
	FirebaseUID  string `gorm:"size:128;index:ix_users_firebase_uid" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Session is a browser login. The cookie carries the raw token; only its
// SHA-256 is stored.
type Session struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"size:36;not null;index:ix_sessions_user_id"`
	TokenHash  []byte    `gorm:"size:32;not null;uniqueIndex:ux_sessions_token_hash"`
	ExpiresAt  time.Time `gorm:"not null;index:ix_sessions_expires_at"`
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func (Session) TableName() string { return "sessions" }

func Models() []any { return []any{&User{}, &Session{}} }
