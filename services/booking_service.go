// services/booking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"facility-booking-backend/apperror"
	"facility-booking-backend/events"
	"facility-booking-backend/logger"
	"facility-booking-backend/metrics"
	"facility-booking-backend/models"
	"facility-booking-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copyMemoPrefix = "[Copied]"

var errBookingNotFound = apperror.NotFound("error.bookingNotFound", "booking not found")

// BookingInput carries every client-editable booking field.
type BookingInput struct {
	FacilityID      uint
	Branch          string // optional; must match the facility's branch when given
	StartAt         time.Time
	EndAt           time.Time
	Purpose         string
	LessonCategory  string
	Participants    *int
	PaymentMethod   string
	Memo            string
	CoachID         *uint
	MemberProductID *uint
	MemberID        *uint
	NonMemberName   string
	NonMemberPhone  string
}

// CreateBookingRequest has no status on purpose: new bookings are always PENDING.
type CreateBookingRequest struct {
	BookingInput
}

// UpdateBookingRequest keeps the stored status unless Status is set.
type UpdateBookingRequest struct {
	BookingInput
	Status *string
}

// BulkResult is the tally of a batch operation.
type BulkResult struct {
	UpdatedCount int           `json:"updatedCount"`
	FailedCount  int           `json:"failedCount"`
	Failures     []BulkFailure `json:"failures,omitempty"`
}

type BulkFailure struct {
	ID      uint          `json:"id"`
	Kind    apperror.Kind `json:"kind"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message"`
}

// BookingService owns the booking lifecycle.
type BookingService struct {
	DB         *gorm.DB
	Facilities *FacilityService
	Passes     *PassService
	Loc        *time.Location
	Now        func() time.Time
	Events     events.Publisher
	Log        logger.Logger
	Metrics    *metrics.Metrics

	bookingLocks  *keyedMutex
	facilityLocks *keyedMutex
}

func NewBookingService(
	db *gorm.DB,
	facilities *FacilityService,
	passes *PassService,
	loc *time.Location,
	pub events.Publisher,
	log logger.Logger,
	m *metrics.Metrics,
) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BookingService{
		DB:            db,
		Facilities:    facilities,
		Passes:        passes,
		Loc:           loc,
		Now:           time.Now,
		Events:        pub,
		Log:           log,
		Metrics:       m,
		bookingLocks:  newKeyedMutex(),
		facilityLocks: newKeyedMutex(),
	}
}

// Get loads one booking with its facility and coach.
func (s *BookingService) Get(ctx context.Context, id uint) (models.Booking, error) {
	var b models.Booking
	if err := s.DB.WithContext(ctx).Preload("Facility").Preload("Coach").First(&b, id).Error; err != nil {
		return b, classify(err, errBookingNotFound, "load booking")
	}
	b.DisplayStatus = b.StatusAt(s.Now())
	return b, nil
}

// Create validates the request and persists a PENDING booking. Pass balance
// is checked here but only debited on confirmation.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (models.Booking, error) {
	unlock := s.facilityLocks.Lock(req.FacilityID)
	defer unlock()

	var id uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.build(tx, req.BookingInput)
		if err != nil {
			return err
		}
		if b.MemberProductID != nil {
			if _, err := s.Passes.checkUsable(tx, *b.MemberProductID, b.MemberID, s.localDay(b.StartAt)); err != nil {
				return err
			}
		}
		if err := s.checkOverlap(tx, b.FacilityID, b.StartAt, b.EndAt, 0); err != nil {
			return err
		}

		seq, err := nextSequenceNo(tx)
		if err != nil {
			return err
		}
		b.SequenceNo = seq
		b.Status = models.StatusPending

		if err := tx.Omit(clause.Associations).Create(&b).Error; err != nil {
			return classify(err, nil, "create booking")
		}
		id = b.ID
		return nil
	})
	if err != nil {
		s.recordError("create", err)
		return models.Booking{}, err
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if s.Metrics != nil {
		s.Metrics.BookingsCreated.WithLabelValues(b.Purpose).Inc()
	}
	s.publish(ctx, events.BookingCreated, bookingPayload(b))
	s.Log.Info("booking created", "bookingId", b.ID, "facilityId", b.FacilityID, "branch", b.Branch, "start", b.StartAt)
	return b, nil
}

// Update re-validates the whole booking. Branch is always re-derived from the
// facility; status only changes when the request names a new one, and then
// through the state machine.
func (s *BookingService) Update(ctx context.Context, id uint, req UpdateBookingRequest) (models.Booking, error) {
	target := ""
	if req.Status != nil {
		target = normalizeCode(*req.Status)
		if !knownStatus(target) {
			return models.Booking{}, apperror.Validation("error.invalidStatus", fmt.Sprintf("unknown status %q", *req.Status))
		}
	}

	unlock := s.bookingLocks.Lock(id)
	defer unlock()
	unlockFacility := s.facilityLocks.Lock(req.FacilityID)
	defer unlockFacility()

	var consumed *Consumption
	var cur models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cur, id).Error; err != nil {
			return classify(err, errBookingNotFound, "lock booking")
		}

		next, err := s.build(tx, req.BookingInput)
		if err != nil {
			return err
		}

		passChanged := !sameRef(cur.MemberProductID, next.MemberProductID)
		ownerChanged := next.MemberProductID != nil && !sameRef(cur.MemberID, next.MemberID)
		if passChanged || ownerChanged {
			if cur.Status != models.StatusPending {
				return apperror.InvalidState("error.passLocked", "the pass of a "+strings.ToLower(cur.Status)+" booking cannot change")
			}
			if next.MemberProductID != nil {
				if _, err := s.Passes.checkUsable(tx, *next.MemberProductID, next.MemberID, s.localDay(next.StartAt)); err != nil {
					return err
				}
			}
		}

		final := cur.Status
		if target != "" {
			final = target
		}
		if final == models.StatusPending || final == models.StatusConfirmed {
			if err := s.checkOverlap(tx, next.FacilityID, next.StartAt, next.EndAt, cur.ID); err != nil {
				return err
			}
		}

		next.ID = cur.ID
		next.CreatedAt = cur.CreatedAt
		next.SequenceNo = cur.SequenceNo
		next.Status = cur.Status
		next.SessionOrdinal = cur.SessionOrdinal
		next.ConfirmedAt = cur.ConfirmedAt
		next.CompletedAt = cur.CompletedAt
		if err := tx.Omit(clause.Associations).Save(&next).Error; err != nil {
			return classify(err, nil, "update booking")
		}

		if target != "" && target != cur.Status {
			c, err := s.apply(tx, &next, target)
			if err != nil {
				return err
			}
			consumed = c
		}
		return nil
	})
	if err != nil {
		s.afterFailedTransition(ctx, cur, err)
		s.recordError("update", err)
		return models.Booking{}, err
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	s.publish(ctx, events.BookingUpdated, bookingPayload(b))
	if target != "" && target != cur.Status {
		s.afterTransition(ctx, b, consumed)
	}
	return b, nil
}

// Confirm moves a PENDING booking to CONFIRMED and debits its pass in the
// same transaction.
func (s *BookingService) Confirm(ctx context.Context, id uint) (models.Booking, error) {
	return s.transition(ctx, id, models.StatusConfirmed)
}

// Complete marks a CONFIRMED booking as finished.
func (s *BookingService) Complete(ctx context.Context, id uint) (models.Booking, error) {
	return s.transition(ctx, id, models.StatusCompleted)
}

// Cancel keeps the row but ends the lifecycle. Consumed units are not refunded.
func (s *BookingService) Cancel(ctx context.Context, id uint) (models.Booking, error) {
	return s.transition(ctx, id, models.StatusCancelled)
}

// BulkConfirm confirms each id on its own; one failure never rolls back
// another.
func (s *BookingService) BulkConfirm(ctx context.Context, ids []uint) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, apperror.Validation("error.idsRequired", "at least one booking id is required")
	}

	res := BulkResult{}
	for _, id := range ids {
		if _, err := s.Confirm(ctx, id); err != nil {
			res.FailedCount++
			f := BulkFailure{ID: id, Kind: apperror.KindOf(err), Message: err.Error()}
			if ae, ok := apperror.As(err); ok {
				f.Code = ae.Code
				f.Message = ae.Message
			}
			res.Failures = append(res.Failures, f)
			continue
		}
		res.UpdatedCount++
	}

	s.Log.Info("bulk confirm finished", "requested", len(ids), "updated", res.UpdatedCount, "failed", res.FailedCount)
	return res, nil
}

// Delete removes the booking row. Pass units it consumed stay consumed.
func (s *BookingService) Delete(ctx context.Context, id uint) error {
	unlock := s.bookingLocks.Lock(id)
	defer unlock()

	var b models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			return classify(err, errBookingNotFound, "lock booking")
		}
		if err := tx.Delete(&models.Booking{}, id).Error; err != nil {
			return classify(err, nil, "delete booking")
		}
		return nil
	})
	if err != nil {
		s.recordError("delete", err)
		return err
	}

	s.publish(ctx, events.BookingDeleted, bookingPayload(b))
	s.Log.Info("booking deleted", "bookingId", id, "status", b.Status)
	return nil
}

// Copy creates a new PENDING booking on targetDate with the source's
// time of day, duration and everything else except status.
func (s *BookingService) Copy(ctx context.Context, sourceID uint, targetDate time.Time) (models.Booking, error) {
	if targetDate.IsZero() {
		return models.Booking{}, apperror.Validation("error.targetDateRequired", "targetDate is required")
	}
	src, err := s.Get(ctx, sourceID)
	if err != nil {
		return models.Booking{}, err
	}

	in := inputFrom(src)
	in.StartAt = utils.AtDate(targetDate, src.StartAt, s.Loc)
	in.EndAt = in.StartAt.Add(src.EndAt.Sub(src.StartAt))
	in.Memo = copyMemo(src.Memo)

	b, err := s.Create(ctx, CreateBookingRequest{BookingInput: in})
	if err != nil {
		return models.Booking{}, err
	}
	s.Log.Info("booking copied", "sourceId", sourceID, "bookingId", b.ID)
	return b, nil
}

func (s *BookingService) transition(ctx context.Context, id uint, to string) (models.Booking, error) {
	unlock := s.bookingLocks.Lock(id)
	defer unlock()

	var consumed *Consumption
	var cur models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cur, id).Error; err != nil {
			return classify(err, errBookingNotFound, "lock booking")
		}
		next := cur
		c, err := s.apply(tx, &next, to)
		consumed = c
		return err
	})
	if err != nil {
		s.afterFailedTransition(ctx, cur, err)
		s.recordError(strings.ToLower(to), err)
		return models.Booking{}, err
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	s.afterTransition(ctx, b, consumed)
	return b, nil
}

// apply runs one state-machine step on b inside tx.
func (s *BookingService) apply(tx *gorm.DB, b *models.Booking, to string) (*Consumption, error) {
	if !models.CanTransition(b.Status, to) {
		return nil, apperror.InvalidState("error.invalidTransition",
			fmt.Sprintf("booking cannot move from %s to %s", b.Status, to)).
			WithDetails(map[string]any{"from": b.Status, "to": to})
	}

	now := s.Now().UTC()
	updates := map[string]any{"status": to}
	var consumed *Consumption

	switch to {
	case models.StatusConfirmed:
		if b.MemberProductID != nil {
			c, err := s.Passes.consume(tx, *b.MemberProductID, b.ID, b.MemberID, s.localDay(b.StartAt))
			if err != nil {
				return nil, err
			}
			consumed = &c
			b.SessionOrdinal = &c.Ordinal
			updates["session_ordinal"] = c.Ordinal
		}
		b.ConfirmedAt = &now
		updates["confirmed_at"] = now
	case models.StatusCompleted:
		b.CompletedAt = &now
		updates["completed_at"] = now
	}

	if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
		return nil, classify(err, nil, "update booking status")
	}
	b.Status = to
	return consumed, nil
}

func (s *BookingService) afterTransition(ctx context.Context, b models.Booking, consumed *Consumption) {
	if s.Metrics != nil {
		s.Metrics.Transitions.WithLabelValues(b.Status).Inc()
		if consumed != nil && consumed.Decremented {
			s.Metrics.PassUnits.Inc()
		}
	}

	key := events.BookingUpdated
	switch b.Status {
	case models.StatusConfirmed:
		key = events.BookingConfirmed
	case models.StatusCompleted:
		key = events.BookingCompleted
	case models.StatusCancelled:
		key = events.BookingCancelled
	}
	s.publish(ctx, key, bookingPayload(b))

	if consumed != nil {
		s.publish(ctx, events.PassConsumed, map[string]any{
			"bookingId":      b.ID,
			"passId":         consumed.PassID,
			"ordinal":        consumed.Ordinal,
			"remainingCount": consumed.RemainingCount,
		})
		s.Log.Info("pass consumed", "bookingId", b.ID, "passId", consumed.PassID,
			"ordinal", consumed.Ordinal, "remaining", consumed.RemainingCount)
	}
	s.Log.Info("booking status changed", "bookingId", b.ID, "status", b.Status)
}

// afterFailedTransition records pass expiry seen by a rolled back confirmation.
func (s *BookingService) afterFailedTransition(ctx context.Context, cur models.Booking, err error) {
	if cur.MemberProductID == nil || !errors.Is(err, errPassExpired) {
		return
	}
	if mErr := s.Passes.markExpired(ctx, *cur.MemberProductID); mErr != nil {
		s.Log.Warn("mark pass expired failed", "passId", *cur.MemberProductID, "error", mErr)
	}
}

// build validates in and returns the booking it describes. Pass balance and
// overlap are left to the caller.
func (s *BookingService) build(tx *gorm.DB, in BookingInput) (models.Booking, error) {
	if in.StartAt.IsZero() || in.EndAt.IsZero() {
		return models.Booking{}, apperror.Validation("error.timeRequired", "start and end are required")
	}
	if !in.StartAt.Before(in.EndAt) {
		return models.Booking{}, apperror.Validation("error.invalidTimeRange", "end must be after start").
			WithDetails(map[string]any{"start": in.StartAt, "end": in.EndAt})
	}

	purpose := normalizeCode(in.Purpose)
	switch purpose {
	case models.PurposeLesson, models.PurposeRental, models.PurposePersonalTraining:
	default:
		return models.Booking{}, apperror.Validation("error.invalidPurpose", fmt.Sprintf("unknown purpose %q", in.Purpose))
	}

	var lessonCategory *string
	category := strings.TrimSpace(in.LessonCategory)
	if purpose == models.PurposeLesson {
		if category == "" {
			return models.Booking{}, apperror.Validation("error.lessonCategoryRequired", "lessonCategory is required for lessons")
		}
		lessonCategory = &category
	} else if category != "" {
		return models.Booking{}, apperror.Validation("error.lessonCategoryNotAllowed", "lessonCategory is only allowed for lessons")
	}

	participants := 1
	if in.Participants != nil {
		if *in.Participants < 1 {
			return models.Booking{}, apperror.Validation("error.invalidParticipants", "participants must be at least 1")
		}
		participants = *in.Participants
	}

	memberID := nonZero(in.MemberID)
	name := strings.TrimSpace(in.NonMemberName)
	phone := strings.TrimSpace(in.NonMemberPhone)
	nonMember := name != "" || phone != ""
	switch {
	case memberID != nil && nonMember:
		return models.Booking{}, apperror.Validation("error.identityConflict", "give either memberId or non-member name and phone, not both")
	case memberID == nil && !nonMember:
		return models.Booking{}, apperror.Validation("error.identityRequired", "memberId or non-member name and phone is required")
	case nonMember && (name == "" || phone == ""):
		return models.Booking{}, apperror.Validation("error.nonMemberIncomplete", "non-member bookings need both name and phone")
	}

	passID := nonZero(in.MemberProductID)
	if passID != nil && memberID == nil {
		return models.Booking{}, apperror.Validation("error.passRequiresMember", "memberProductId requires a member booking")
	}

	facility, err := s.Facilities.lookup(tx, in.FacilityID)
	if err != nil {
		return models.Booking{}, err
	}
	if declared := normalizeCode(in.Branch); declared != "" && declared != facility.Branch {
		s.Log.Warn("branch mismatch rejected", "facilityId", facility.ID, "facilityBranch", facility.Branch, "declared", declared)
		return models.Booking{}, apperror.Validation("error.branchMismatch", "facility does not belong to the requested branch").
			WithDetails(map[string]any{"facilityId": facility.ID, "facilityBranch": facility.Branch, "branch": declared})
	}

	if memberID != nil {
		if err := tx.First(&models.Member{}, *memberID).Error; err != nil {
			return models.Booking{}, classify(err, apperror.NotFound("error.memberNotFound", "member not found"), "load member")
		}
	}
	coachID := nonZero(in.CoachID)
	if coachID != nil {
		if err := tx.First(&models.Coach{}, *coachID).Error; err != nil {
			return models.Booking{}, classify(err, apperror.NotFound("error.coachNotFound", "coach not found"), "load coach")
		}
	}

	return models.Booking{
		FacilityID:      facility.ID,
		Branch:          facility.Branch,
		StartAt:         in.StartAt.UTC(),
		EndAt:           in.EndAt.UTC(),
		Purpose:         purpose,
		LessonCategory:  lessonCategory,
		Participants:    participants,
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		Memo:            strings.TrimSpace(in.Memo),
		CoachID:         coachID,
		MemberProductID: passID,
		MemberID:        memberID,
		NonMemberName:   name,
		NonMemberPhone:  phone,
	}, nil
}

// checkOverlap rejects a window that intersects a live booking on the facility.
func (s *BookingService) checkOverlap(tx *gorm.DB, facilityID uint, start, end time.Time, excludeID uint) error {
	q := tx.Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("facility_id = ? AND status IN ?", facilityID, []string{models.StatusPending, models.StatusConfirmed}).
		Where("start_at < ? AND end_at > ?", end.UTC(), start.UTC())
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var clash models.Booking
	err := q.Take(&clash).Error
	if err == nil {
		return apperror.Conflict("error.slotOverlap", "facility is already booked for that time").
			WithDetails(map[string]any{"conflictingBookingId": clash.ID, "start": clash.StartAt, "end": clash.EndAt})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return classify(err, nil, "check overlap")
	}
	return nil
}

func (s *BookingService) localDay(t time.Time) time.Time {
	return t.In(s.Loc)
}

func (s *BookingService) publish(ctx context.Context, key string, payload any) {
	if err := s.Events.PublishJSON(ctx, key, payload); err != nil {
		s.Log.Warn("event publish failed", "key", key, "error", err)
	}
}

func (s *BookingService) recordError(op string, err error) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.ErrorsCount.WithLabelValues(op, string(apperror.KindOf(err))).Inc()
}

func bookingPayload(b models.Booking) map[string]any {
	return map[string]any{
		"bookingId":  b.ID,
		"facilityId": b.FacilityID,
		"branch":     b.Branch,
		"status":     b.Status,
		"start":      b.StartAt,
		"end":        b.EndAt,
	}
}

// inputFrom turns a stored booking back into an input, e.g. for copies.
func inputFrom(b models.Booking) BookingInput {
	participants := b.Participants
	in := BookingInput{
		FacilityID:      b.FacilityID,
		StartAt:         b.StartAt,
		EndAt:           b.EndAt,
		Purpose:         b.Purpose,
		Participants:    &participants,
		PaymentMethod:   b.PaymentMethod,
		Memo:            b.Memo,
		CoachID:         b.CoachID,
		MemberProductID: b.MemberProductID,
		MemberID:        b.MemberID,
		NonMemberName:   b.NonMemberName,
		NonMemberPhone:  b.NonMemberPhone,
	}
	if b.LessonCategory != nil {
		in.LessonCategory = *b.LessonCategory
	}
	return in
}

func copyMemo(memo string) string {
	memo = strings.TrimSpace(memo)
	if memo == "" {
		return copyMemoPrefix
	}
	return copyMemoPrefix + " " + memo
}

func knownStatus(s string) bool {
	switch s {
	case models.StatusPending, models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

func nonZero(p *uint) *uint {
	if p == nil || *p == 0 {
		return nil
	}
	v := *p
	return &v
}

func sameRef(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
