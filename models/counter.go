package models

const BookingSequence = "booking_sequence"

// Counter is a named number handed out under a row lock.
type Counter struct {
	Name  string `gorm:"primaryKey;size:64" json:"name"`
	Value int    `gorm:"column:value" json:"value"`
}
