package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ProductCount     = "COUNT"
	ProductTime      = "TIME"
	ProductMonthly   = "MONTHLY"
	ProductSingleUse = "SINGLE"

	PassActive   = "ACTIVE"
	PassExpired  = "EXPIRED"
	PassDepleted = "DEPLETED"
)

// Product is the definition a pass was sold from.
type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;uniqueIndex" json:"name"`
	Type       string    `gorm:"size:16" json:"type"`
	Category   string    `gorm:"size:64" json:"category"`
	TotalCount int       `gorm:"column:total_count" json:"totalCount"`
	ValidDays  int       `gorm:"column:valid_days" json:"validDays"`
	CreatedAt  time.Time `json:"created_at"`
}

// MemberProduct is a pass owned by a member. RemainingCount is the
// authoritative balance; the session ordinal shown to users is always derived
// from TotalCount and RemainingCount.
type MemberProduct struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	MemberID       uint            `gorm:"index;column:member_id" json:"memberId"`
	ProductID      uint            `gorm:"index;column:product_id" json:"productId"`
	TotalCount     int             `gorm:"column:total_count" json:"totalCount"`
	RemainingCount int             `gorm:"column:remaining_count" json:"remainingCount"`
	ExpiryDate     *datatypes.Date `gorm:"column:expiry_date" json:"expiryDate,omitempty"`
	Status         string          `gorm:"size:16;default:ACTIVE" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Member  Member  `gorm:"foreignKey:MemberID;references:ID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID;references:ID" json:"product"`
}

// CountBased reports whether confirmations decrement RemainingCount.
func (p MemberProduct) CountBased() bool {
	return p.Product.Type == ProductCount || p.Product.Type == ProductSingleUse
}

// ExpiredOn reports whether the pass is past its expiry on the given local date.
func (p MemberProduct) ExpiredOn(day time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	exp := time.Time(*p.ExpiryDate)
	y, m, d := exp.Date()
	dy, dm, dd := day.Date()
	expDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	onDay := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return onDay.After(expDay)
}

// Ordinal is the 1-based index of the most recently consumed unit.
func (p MemberProduct) Ordinal() int {
	return p.TotalCount - p.RemainingCount
}
