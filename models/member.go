package models

import "time"

type Member struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:255" json:"fullName"`
	Phone     string    `gorm:"size:50;index" json:"phone"`
	Email     string    `gorm:"size:150" json:"email,omitempty"`
	Branch    string    `gorm:"size:32" json:"branch,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Coach is referenced by lesson and personal-training bookings. Color drives
// the calendar's per-coach grouping.
type Coach struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex" json:"name"`
	Color     string    `gorm:"size:16" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
