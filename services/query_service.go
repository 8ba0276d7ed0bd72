package services

import (
	"context"
	"time"

	"facility-booking-backend/apperror"
	"facility-booking-backend/logger"
	"facility-booking-backend/models"

	"gorm.io/gorm"
)

// BookingFilter selects bookings whose start falls in [Start, End).
type BookingFilter struct {
	Start        time.Time
	End          time.Time
	Branch       string
	FacilityID   uint
	FacilityType string
}

// QueryService is the calendar read model.
type QueryService struct {
	DB      *gorm.DB
	Reorder *ReorderService
	Loc     *time.Location
	Now     func() time.Time
	Log     logger.Logger
}

func NewQueryService(db *gorm.DB, reorder *ReorderService, loc *time.Location, log logger.Logger) *QueryService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &QueryService{DB: db, Reorder: reorder, Loc: loc, Now: time.Now, Log: log}
}

// List renumbers first on a best-effort basis, then queries. A failed
// renumber is logged and the read goes ahead.
func (s *QueryService) List(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	if s.Reorder != nil {
		if _, err := s.Reorder.Reorder(ctx); err != nil {
			s.Log.Warn("reorder before read failed", "error", err)
		}
	}
	return s.Query(ctx, f)
}

// Query returns matching bookings ordered by start. No match is an empty
// slice, never an error.
func (s *QueryService) Query(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	if f.Start.IsZero() || f.End.IsZero() {
		return nil, apperror.Validation("error.rangeRequired", "start and end are required")
	}
	if !f.Start.Before(f.End) {
		return nil, apperror.Validation("error.invalidRange", "end must be after start")
	}

	q := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Preload("Facility").
		Preload("Coach").
		Where("bookings.start_at >= ? AND bookings.start_at < ?", f.Start.UTC(), f.End.UTC())
	if b := normalizeCode(f.Branch); b != "" {
		q = q.Where("bookings.branch = ?", b)
	}
	if f.FacilityID != 0 {
		q = q.Where("bookings.facility_id = ?", f.FacilityID)
	}
	if t := normalizeCode(f.FacilityType); t != "" {
		q = q.Joins("JOIN facilities ON facilities.id = bookings.facility_id").
			Where("facilities.resource_type = ?", t)
	}

	out := []models.Booking{}
	if err := q.Order("bookings.start_at ASC, bookings.id ASC").Find(&out).Error; err != nil {
		return nil, classify(err, nil, "query bookings")
	}

	now := s.Now()
	for i := range out {
		out[i].DisplayStatus = out[i].StatusAt(now)
	}
	return out, nil
}

type DayGroup struct {
	Date     string           `json:"date"`
	Bookings []models.Booking `json:"bookings"`
}

// GroupByDay buckets bookings by their local start date, keeping input order.
func GroupByDay(bookings []models.Booking, loc *time.Location) []DayGroup {
	groups := []DayGroup{}
	index := map[string]int{}
	for _, b := range bookings {
		day := b.StartAt.In(loc).Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day})
		}
		groups[i].Bookings = append(groups[i].Bookings, b)
	}
	return groups
}

type CoachGroup struct {
	CoachID   *uint            `json:"coachId"`
	CoachName string           `json:"coachName,omitempty"`
	Color     string           `json:"color,omitempty"`
	Bookings  []models.Booking `json:"bookings"`
}

// GroupByCoach buckets bookings by coach in order of first appearance.
// Bookings without a coach come last.
func GroupByCoach(bookings []models.Booking) []CoachGroup {
	groups := []CoachGroup{}
	index := map[uint]int{}
	var none []models.Booking
	for _, b := range bookings {
		if b.CoachID == nil {
			none = append(none, b)
			continue
		}
		i, ok := index[*b.CoachID]
		if !ok {
			i = len(groups)
			index[*b.CoachID] = i
			id := *b.CoachID
			g := CoachGroup{CoachID: &id}
			if b.Coach != nil {
				g.CoachName = b.Coach.Name
				g.Color = b.Coach.Color
			}
			groups = append(groups, g)
		}
		groups[i].Bookings = append(groups[i].Bookings, b)
	}
	if len(none) > 0 {
		groups = append(groups, CoachGroup{Bookings: none})
	}
	return groups
}
