package model

import (
	"strings"
	"time"
)

type PromoCode struct {
	Code            string     `json:"code" db:"code"`
	DiscountPercent float64    `json:"discount_percent" db:"discount_percent"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the code has a past expiry. A nil expiry never expires.
func (p *PromoCode) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// NormalizePromoCode trims and upper-cases a user supplied code.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type UpdatePromoParams struct {
	DiscountPercent *float64
	IsActive        *bool
	ExpiresAt       *time.Time
	ClearExpiry     bool
}

// PromoValidation 優惠碼驗證結果
type PromoValidation struct {
	Valid           bool    `json:"valid"`
	Message         string  `json:"message"`
	DiscountPercent float64 `json:"discount_percent"`
}

const (
	PromoMessageValid    = "Code applied"
	PromoMessageInvalid  = "Invalid code"
	PromoMessageInactive = "Code inactive"
	PromoMessageExpired  = "Code expired"
)
