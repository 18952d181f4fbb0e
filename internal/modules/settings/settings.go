// Package settings holds the payment configuration edited from the admin
// console. There is exactly one row.
package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const singletonID = 1

type PaymentSetting struct {
	ID int `gorm:"primaryKey;autoIncrement:false"`

	RazorpayEnabled       bool   `gorm:"not null"`
	RazorpayKeyID         string `gorm:"size:64"`
	RazorpayKeySecret     string `gorm:"size:128"`
	RazorpayWebhookSecret string `gorm:"size:128"`

	ManualEnabled   bool   `gorm:"not null"`
	UPIID           string `gorm:"size:100"`
	UPIName         string `gorm:"size:100"`
	BankAccountName string `gorm:"size:120"`
	BankAccountNo   string `gorm:"size:40"`
	BankIFSC        string `gorm:"size:20"`
	BankName        string `gorm:"size:120"`
	CODEnabled      bool   `gorm:"not null"`

	UpdatedAt time.Time
}

func (PaymentSetting) TableName() string { return "payment_settings" }

func Models() []any { return []any{&PaymentSetting{}} }

func (p PaymentSetting) OnlineReady() bool {
	return p.RazorpayEnabled && p.RazorpayKeyID != "" && p.RazorpayKeySecret != ""
}

func (p PaymentSetting) UPIReady() bool  { return p.ManualEnabled && p.UPIID != "" }
func (p PaymentSetting) BankReady() bool { return p.ManualEnabled && p.BankAccountNo != "" && p.BankIFSC != "" }
func (p PaymentSetting) CODReady() bool  { return p.ManualEnabled && p.CODEnabled }

// Masked is the admin view with secrets replaced.
type Masked struct {
	RazorpayEnabled       bool   `json:"razorpay_enabled"`
	RazorpayKeyID         string `json:"razorpay_key_id"`
	RazorpayKeySecret     string `json:"razorpay_key_secret"`
	RazorpayWebhookSecret string `json:"razorpay_webhook_secret"`
	ManualEnabled         bool   `json:"manual_enabled"`
	UPIID                 string `json:"upi_id"`
	UPIName               string `json:"upi_name"`
	BankAccountName       string `json:"bank_account_name"`
	BankAccountNo         string `json:"bank_account_no"`
	BankIFSC              string `json:"bank_ifsc"`
	BankName              string `json:"bank_name"`
	CODEnabled            bool   `json:"cod_enabled"`
}

const maskPrefix = "••••"

// Mask keeps the last four characters of a secret.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return maskPrefix
	}
	return maskPrefix + s[len(s)-4:]
}

func isMasked(s string) bool { return strings.HasPrefix(s, maskPrefix) }

func (p PaymentSetting) Masked() Masked {
	return Masked{
		RazorpayEnabled:       p.RazorpayEnabled,
		RazorpayKeyID:         p.RazorpayKeyID,
		RazorpayKeySecret:     Mask(p.RazorpayKeySecret),
		RazorpayWebhookSecret: Mask(p.RazorpayWebhookSecret),
		ManualEnabled:         p.ManualEnabled,
		UPIID:                 p.UPIID,
		UPIName:               p.UPIName,
		BankAccountName:       p.BankAccountName,
		BankAccountNo:         p.BankAccountNo,
		BankIFSC:              p.BankIFSC,
		BankName:              p.BankName,
		CODEnabled:            p.CODEnabled,
	}
}

type UpdateInput struct {
	RazorpayEnabled       bool   `json:"razorpay_enabled"`
	RazorpayKeyID         string `json:"razorpay_key_id" binding:"max=64"`
	RazorpayKeySecret     string `json:"razorpay_key_secret" binding:"max=128"`
	RazorpayWebhookSecret string `json:"razorpay_webhook_secret" binding:"max=128"`
	ManualEnabled         bool   `json:"manual_enabled"`
	UPIID                 string `json:"upi_id" binding:"max=100"`
	UPIName               string `json:"upi_name" binding:"max=100"`
	BankAccountName       string `json:"bank_account_name" binding:"max=120"`
	BankAccountNo         string `json:"bank_account_no" binding:"max=40"`
	BankIFSC              string `json:"bank_ifsc" binding:"max=20"`
	BankName              string `json:"bank_name" binding:"max=120"`
	CODEnabled            bool   `json:"cod_enabled"`
}

var ErrIncomplete = errors.New("razorpay key id and secret are required to enable online payments")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// Get returns the stored settings, or the zero value (everything disabled).
func (r *Repo) Get(ctx context.Context) (PaymentSetting, error) {
	return r.GetInTx(r.db.WithContext(ctx))
}

func (r *Repo) GetInTx(tx *gorm.DB) (PaymentSetting, error) {
	var p PaymentSetting
	err := tx.Where("id = ?", singletonID).Limit(1).Find(&p).Error
	p.ID = singletonID
	return p, err
}

// Update applies in. Blank or still-masked secrets keep their stored value.
func (r *Repo) Update(ctx context.Context, in UpdateInput) (PaymentSetting, error) {
	cur, err := r.Get(ctx)
	if err != nil {
		return PaymentSetting{}, err
	}

	next := PaymentSetting{
		ID:                    singletonID,
		RazorpayEnabled:       in.RazorpayEnabled,
		RazorpayKeyID:         strings.TrimSpace(in.RazorpayKeyID),
		RazorpayKeySecret:     keepSecret(cur.RazorpayKeySecret, in.RazorpayKeySecret),
		RazorpayWebhookSecret: keepSecret(cur.RazorpayWebhookSecret, in.RazorpayWebhookSecret),
		ManualEnabled:         in.ManualEnabled,
		UPIID:                 strings.TrimSpace(in.UPIID),
		UPIName:               strings.TrimSpace(in.UPIName),
		BankAccountName:       strings.TrimSpace(in.BankAccountName),
		BankAccountNo:         strings.TrimSpace(in.BankAccountNo),
		BankIFSC:              strings.ToUpper(strings.TrimSpace(in.BankIFSC)),
		BankName:              strings.TrimSpace(in.BankName),
		CODEnabled:            in.CODEnabled,
		UpdatedAt:             time.Now(),
	}
	if next.RazorpayEnabled && (next.RazorpayKeyID == "" || next.RazorpayKeySecret == "") {
		return PaymentSetting{}, ErrIncomplete
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&next).Error
	return next, err
}

func keepSecret(cur, in string) string {
	in = strings.TrimSpace(in)
	if in == "" || isMasked(in) {
		return cur
	}
	return in
}

// Instructions is what a shopper sees when paying manually.
type Instructions struct {
	UPI  *UPIDetails  `json:"upi,omitempty"`
	Bank *BankDetails `json:"bank,omitempty"`
	COD  bool         `json:"cod"`
}

type UPIDetails struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BankDetails struct {
	AccountName string `json:"account_name"`
	AccountNo   string `json:"account_no"`
	IFSC        string `json:"ifsc"`
	BankName    string `json:"bank_name"`
}

func (p PaymentSetting) Instructions() Instructions {
	var out Instructions
	if p.UPIReady() {
		out.UPI = &UPIDetails{ID: p.UPIID, Name: p.UPIName}
	}
	if p.BankReady() {
		out.Bank = &BankDetails{AccountName: p.BankAccountName, AccountNo: p.BankAccountNo, IFSC: p.BankIFSC, BankName: p.BankName}
	}
	out.COD = p.CODReady()
	return out
}
