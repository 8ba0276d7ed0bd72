package models

import (
	"time"
)

// Facility is a bookable resource. The core only reads facilities; they are
// owned by facility management and seeded from the directory file.
type Facility struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;uniqueIndex:idx_facility_branch_name" json:"name"`
	Branch       string    `gorm:"size:32;index;uniqueIndex:idx_facility_branch_name" json:"branch"`
	ResourceType string    `gorm:"column:resource_type;size:64;index" json:"resourceType"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
