package services

import (
	"context"
	"sync"
	"time"

	"facility-booking-backend/logger"
	"facility-booking-backend/metrics"
	"facility-booking-backend/models"

	"gorm.io/gorm"
)

// ReorderService keeps the public sequence numbers in start-time order.
type ReorderService struct {
	DB      *gorm.DB
	Log     logger.Logger
	Metrics *metrics.Metrics

	mu sync.Mutex
}

func NewReorderService(db *gorm.DB, log logger.Logger, m *metrics.Metrics) *ReorderService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ReorderService{DB: db, Log: log, Metrics: m}
}

// Reorder renumbers every booking 1..N by (start, created, id) and moves the
// sequence counter to N. Only sequence_no is written, and only where it differs, so a second run with no
// writes in between changes nothing. It returns the number of rows renumbered.
func (s *ReorderService) Reorder(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	changed := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter, err := lockCounter(tx, models.BookingSequence)
		if err != nil {
			return err
		}

		var rows []struct {
			ID         uint
			SequenceNo int
		}
		if err := tx.Model(&models.Booking{}).
			Select("id, sequence_no").
			Order("start_at ASC, created_at ASC, id ASC").
			Scan(&rows).Error; err != nil {
			return classify(err, nil, "load booking order")
		}

		for i, r := range rows {
			want := i + 1
			if r.SequenceNo == want {
				continue
			}
			if err := tx.Model(&models.Booking{}).Where("id = ?", r.ID).
				UpdateColumn("sequence_no", want).Error; err != nil {
				return classify(err, nil, "renumber booking")
			}
			changed++
		}

		if counter.Value != len(rows) {
			if err := tx.Model(&models.Counter{}).Where("name = ?", counter.Name).
				UpdateColumn("value", len(rows)).Error; err != nil {
				return classify(err, nil, "reset counter")
			}
		}
		return nil
	})
	if s.Metrics != nil {
		s.Metrics.ReorderDuration.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.Log.Debug("bookings renumbered", "changed", changed)
	}
	return changed, nil
}
