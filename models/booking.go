package models

import (
	"time"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"

	PurposeLesson           = "LESSON"
	PurposeRental           = "RENTAL"
	PurposePersonalTraining = "PERSONAL_TRAINING"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `gorm:"index:idx_booking_order,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// SequenceNo is the display number, re-derived by the reordering service.
	SequenceNo int `gorm:"column:sequence_no;index" json:"sequenceNo"`

	FacilityID uint      `gorm:"column:facility_id;index" json:"facilityId"`
	Branch     string    `gorm:"column:branch;size:32;index" json:"branch"`
	StartAt    time.Time `gorm:"column:start_at;index;index:idx_booking_order,priority:1" json:"start"`
	EndAt      time.Time `gorm:"column:end_at;index" json:"end"`

	Purpose        string  `gorm:"column:purpose;size:32" json:"purpose"`
	LessonCategory *string `gorm:"column:lesson_category;size:64" json:"lessonCategory"`
	Participants   int     `gorm:"column:participants;default:1" json:"participants"`
	Status         string  `gorm:"column:status;size:16;index" json:"status"`
	PaymentMethod  string  `gorm:"column:payment_method;size:32" json:"paymentMethod,omitempty"`
	Memo           string  `gorm:"column:memo;type:text" json:"memo,omitempty"`

	CoachID         *uint  `gorm:"column:coach_id;index" json:"coachId,omitempty"`
	MemberProductID *uint  `gorm:"column:member_product_id;index" json:"memberProductId,omitempty"`
	MemberID        *uint  `gorm:"column:member_id;index" json:"memberId,omitempty"`
	NonMemberName   string `gorm:"column:non_member_name;size:120" json:"nonMemberName,omitempty"`
	NonMemberPhone  string `gorm:"column:non_member_phone;size:50" json:"nonMemberPhone,omitempty"`

	SessionOrdinal *int       `gorm:"column:session_ordinal" json:"sessionOrdinal,omitempty"`
	ConfirmedAt    *time.Time `gorm:"column:confirmed_at" json:"confirmedAt,omitempty"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`

	// DisplayStatus is computed at read time, never stored.
	DisplayStatus string `gorm:"-" json:"displayStatus,omitempty"`

	Facility Facility `gorm:"foreignKey:FacilityID;references:ID" json:"facility,omitempty"`
	Coach    *Coach   `gorm:"foreignKey:CoachID;references:ID" json:"coach,omitempty"`
}

// StatusAt is the status shown to users at instant now: a confirmed booking
// whose end has passed reads as completed. Pending bookings are never relabelled.
func (b Booking) StatusAt(now time.Time) string {
	if b.Status == StatusConfirmed && !b.EndAt.After(now) {
		return StatusCompleted
	}
	return b.Status
}

// CanTransition is the booking state machine.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
