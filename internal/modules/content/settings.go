package content

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiteSetting is one editable storefront value.
type SiteSetting struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:64"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (SiteSetting) TableName() string { return "site_settings" }

const (
	KeyStoreName      = "store_name"
	KeyHeroTitle      = "hero_title"
	KeyHeroSubtitle   = "hero_subtitle"
	KeyBannerImageURL = "banner_image_url"
	KeyBannerImageKey = "banner_image_key"
	KeyContactPhone   = "contact_phone"
	KeyContactEmail   = "contact_email"
	KeyWhatsApp       = "whatsapp"
	KeyAddress        = "address"
	KeyStoreLat       = "store_lat"
	KeyStoreLng       = "store_lng"
	KeyMapToken       = "map_token"
	KeyMinOrderCents  = "min_order_cents"
	KeyDeliveryCents  = "delivery_cents"
	KeyAnnouncement   = "announcement"
)

// editable keys; anything else sent by the admin is ignored
var knownKeys = map[string]bool{
	KeyStoreName: true, KeyHeroTitle: true, KeyHeroSubtitle: true,
	KeyBannerImageURL: true, KeyContactPhone: true, KeyContactEmail: true,
	KeyWhatsApp: true, KeyAddress: true, KeyStoreLat: true, KeyStoreLng: true,
	KeyMapToken: true, KeyMinOrderCents: true, KeyDeliveryCents: true,
	KeyAnnouncement: true,
}

var defaults = map[string]string{
	KeyStoreName:     "Hello Crackers",
	KeyHeroTitle:     "Sivakasi crackers at factory prices",
	KeyMinOrderCents: "300000",
	KeyDeliveryCents: "0",
}

// Site is the typed view of all settings.
type Site struct {
	StoreName      string
	HeroTitle      string
	HeroSubtitle   string
	BannerImageURL string
	BannerImageKey string
	ContactPhone   string
	ContactEmail   string
	WhatsApp       string
	Address        string
	StoreLat       float64
	StoreLng       float64
	MapToken       string
	MinOrderCents  int
	DeliveryCents  int
	Announcement   string
}

// Public returns the subset safe to expose to storefront visitors.
func (s Site) Public() map[string]any {
	return map[string]any{
		"store_name":       s.StoreName,
		"hero_title":       s.HeroTitle,
		"hero_subtitle":    s.HeroSubtitle,
		"banner_image_url": s.BannerImageURL,
		"contact_phone":    s.ContactPhone,
		"contact_email":    s.ContactEmail,
		"whatsapp":         s.WhatsApp,
		"address":          s.Address,
		"min_order_cents":  s.MinOrderCents,
		"delivery_cents":   s.DeliveryCents,
		"announcement":     s.Announcement,
	}
}

type StoreLocation struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Title    string  `json:"title"`
	Address  string  `json:"address"`
	MapToken string  `json:"map_token"`
}

func (s Site) Location() StoreLocation {
	return StoreLocation{Lat: s.StoreLat, Lng: s.StoreLng, Title: s.StoreName, Address: s.Address, MapToken: s.MapToken}
}

type SettingsRepo struct{ db *gorm.DB }

func NewSettingsRepo(db *gorm.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) All(ctx context.Context) (map[string]string, error) {
	var rows []SiteSetting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(defaults)+len(rows))
	for k, v := range defaults {
		out[k] = v
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (r *SettingsRepo) Site(ctx context.Context) (Site, error) {
	m, err := r.All(ctx)
	if err != nil {
		return Site{}, err
	}
	return siteFrom(m), nil
}

// Put upserts the known keys in values and returns the keys written.
func (r *SettingsRepo) Put(ctx context.Context, values map[string]string) ([]string, error) {
	now := time.Now()
	rows := make([]SiteSetting, 0, len(values))
	var keys []string
	for k, v := range values {
		if !knownKeys[k] {
			continue
		}
		rows = append(rows, SiteSetting{Key: k, Value: strings.TrimSpace(v), UpdatedAt: now})
		keys = append(keys, k)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return keys, r.upsert(ctx, rows)
}

// SetBanner stores a new banner image and returns the previous storage key.
func (r *SettingsRepo) SetBanner(ctx context.Context, key, url string) (string, error) {
	m, err := r.All(ctx)
	if err != nil {
		return "", err
	}
	now := time.Now()
	err = r.upsert(ctx, []SiteSetting{
		{Key: KeyBannerImageKey, Value: key, UpdatedAt: now},
		{Key: KeyBannerImageURL, Value: url, UpdatedAt: now},
	})
	return m[KeyBannerImageKey], err
}

func (r *SettingsRepo) upsert(ctx context.Context, rows []SiteSetting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}

func siteFrom(m map[string]string) Site {
	return Site{
		StoreName:      m[KeyStoreName],
		HeroTitle:      m[KeyHeroTitle],
		HeroSubtitle:   m[KeyHeroSubtitle],
		BannerImageURL: m[KeyBannerImageURL],
		BannerImageKey: m[KeyBannerImageKey],
		ContactPhone:   m[KeyContactPhone],
		ContactEmail:   m[KeyContactEmail],
		WhatsApp:       m[KeyWhatsApp],
		Address:        m[KeyAddress],
		StoreLat:       parseFloat(m[KeyStoreLat]),
		StoreLng:       parseFloat(m[KeyStoreLng]),
		MapToken:       m[KeyMapToken],
		MinOrderCents:  parseInt(m[KeyMinOrderCents]),
		DeliveryCents:  parseInt(m[KeyDeliveryCents]),
		Announcement:   m[KeyAnnouncement],
	}
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
