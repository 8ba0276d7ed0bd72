package services

import (
	"facility-booking-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockCounter locks the named counter row for the rest of tx, creating it
// from the current MAX(sequence_no) the first time.
func lockCounter(tx *gorm.DB, name string) (models.Counter, error) {
	var c models.Counter
	locked := func() error {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).Limit(1).Find(&c).Error
	}
	if err := locked(); err != nil {
		return c, classify(err, nil, "lock counter")
	}
	if c.Name != "" {
		return c, nil
	}

	seed := models.Counter{Name: name}
	if err := tx.Model(&models.Booking{}).Select("COALESCE(MAX(sequence_no), 0)").Scan(&seed.Value).Error; err != nil {
		return c, classify(err, nil, "seed counter")
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return c, classify(err, nil, "create counter")
	}
	if err := locked(); err != nil {
		return c, classify(err, nil, "lock counter")
	}
	return c, nil
}

// nextSequenceNo hands out the next booking sequence number. Concurrent
// creates queue on the counter row, so no two get the same number.
func nextSequenceNo(tx *gorm.DB) (int, error) {
	c, err := lockCounter(tx, models.BookingSequence)
	if err != nil {
		return 0, err
	}
	c.Value++
	if err := tx.Model(&models.Counter{}).Where("name = ?", c.Name).UpdateColumn("value", c.Value).Error; err != nil {
		return 0, classify(err, nil, "advance counter")
	}
	return c.Value, nil
}
