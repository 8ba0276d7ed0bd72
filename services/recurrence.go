package services

import (
	"context"
	"fmt"
	"time"

	"facility-booking-backend/apperror"
	"facility-booking-backend/models"
)

const (
	CadenceDaily   = "DAILY"
	CadenceWeekly  = "WEEKLY"
	CadenceMonthly = "MONTHLY"

	maxOccurrences = 366
)

// RecurrenceSpec asks for Count bookings in total, the template included.
type RecurrenceSpec struct {
	Cadence string `json:"cadence"`
	Count   int    `json:"count"`
}

func (r RecurrenceSpec) Validate() error {
	switch normalizeCode(r.Cadence) {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
	default:
		return apperror.Validation("error.invalidCadence", fmt.Sprintf("unknown cadence %q", r.Cadence))
	}
	if r.Count < 1 || r.Count > maxOccurrences {
		return apperror.Validation("error.invalidCount", fmt.Sprintf("count must be between 1 and %d", maxOccurrences))
	}
	return nil
}

// ExpandResult is the tally of one expansion. Created holds the new bookings
// only; the template is never part of it.
type ExpandResult struct {
	Created      []models.Booking    `json:"created"`
	CreatedCount int                 `json:"createdCount"`
	FailedCount  int                 `json:"failedCount"`
	Failures     []OccurrenceFailure `json:"failures,omitempty"`
	Cancelled    bool                `json:"cancelled,omitempty"`
}

type OccurrenceFailure struct {
	Occurrence int           `json:"occurrence"`
	Start      time.Time     `json:"start"`
	Kind       apperror.Kind `json:"kind"`
	Message    string        `json:"message"`
}

// Expand creates spec.Count-1 further bookings from template, one cadence step
// apart, each through Create. Failed occurrences are tallied and skipped.
// Cancelling ctx stops the loop; bookings already created stay.
func (s *BookingService) Expand(ctx context.Context, template models.Booking, spec RecurrenceSpec) (ExpandResult, error) {
	if err := spec.Validate(); err != nil {
		return ExpandResult{}, err
	}
	cadence := normalizeCode(spec.Cadence)

	res := ExpandResult{Created: []models.Booking{}}
	base := inputFrom(template)
	duration := template.EndAt.Sub(template.StartAt)

	for k := 1; k < spec.Count; k++ {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		in := base
		in.StartAt = occurrenceStart(template.StartAt, cadence, k, s.Loc)
		in.EndAt = in.StartAt.Add(duration)

		b, err := s.Create(ctx, CreateBookingRequest{BookingInput: in})
		if err != nil {
			res.FailedCount++
			f := OccurrenceFailure{Occurrence: k, Start: in.StartAt, Kind: apperror.KindOf(err), Message: err.Error()}
			if ae, ok := apperror.As(err); ok {
				f.Message = ae.Message
			}
			res.Failures = append(res.Failures, f)
			s.Log.Warn("recurrence occurrence failed", "templateId", template.ID, "occurrence", k, "error", err)
			continue
		}
		res.Created = append(res.Created, b)
		res.CreatedCount++
	}

	s.Log.Info("recurrence expanded", "templateId", template.ID, "cadence", cadence,
		"created", res.CreatedCount, "failed", res.FailedCount, "cancelled", res.Cancelled)
	return res, nil
}

// ExpandFrom loads the template by id and expands it.
func (s *BookingService) ExpandFrom(ctx context.Context, templateID uint, spec RecurrenceSpec) (ExpandResult, error) {
	if err := spec.Validate(); err != nil {
		return ExpandResult{}, err
	}
	template, err := s.Get(ctx, templateID)
	if err != nil {
		return ExpandResult{}, err
	}
	return s.Expand(ctx, template, spec)
}

// occurrenceStart is the k-th start after start, keeping the wall-clock time in loc.
func occurrenceStart(start time.Time, cadence string, k int, loc *time.Location) time.Time {
	t := start.In(loc)
	switch cadence {
	case CadenceDaily:
		return t.AddDate(0, 0, k)
	case CadenceWeekly:
		return t.AddDate(0, 0, 7*k)
	default:
		return addMonthsClamped(t, k)
	}
}

// addMonthsClamped adds months, clamping the day to the target month's last
// day (Jan 31 + 1 month = Feb 28 or 29).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
