package services

import (
	"fmt"
	"testing"
	"time"

	"facility-booking-backend/config"
	"facility-booking-backend/events"
	"facility-booking-backend/logger"
	"facility-booking-backend/metrics"
	"facility-booking-backend/models"
	"facility-booking-backend/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var kst = time.FixedZone("KST", 9*60*60)

// fixedNow sits before every booking the tests create unless a test moves it.
var fixedNow = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db         *gorm.DB
	facilities *FacilityService
	passes     *PassService
	bookings   *BookingService
	reorder    *ReorderService
	query      *QueryService
	recorder   *events.Recorder
	productSeq int

	sahaCage    models.Facility
	sahaRoom    models.Facility
	yeonsanCage models.Facility
	member      models.Member
	otherMember models.Member
	coach       models.Coach
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	rec := &events.Recorder{}

	f := &fixture{db: db, recorder: rec}
	f.facilities = NewFacilityService(db)
	f.passes = NewPassService(db, kst)
	f.passes.Now = func() time.Time { return fixedNow }
	f.bookings = NewBookingService(db, f.facilities, f.passes, kst, rec, log, m)
	f.bookings.Now = func() time.Time { return fixedNow }
	f.reorder = NewReorderService(db, log, m)
	f.query = NewQueryService(db, f.reorder, kst, log)
	f.query.Now = func() time.Time { return fixedNow }

	mustCreate(t, db, &models.Branch{Code: "SAHA", Name: "Saha"})
	mustCreate(t, db, &models.Branch{Code: "YEONSAN", Name: "Yeonsan"})
	f.sahaCage = models.Facility{Name: "Cage 1", Branch: "SAHA", ResourceType: "BASEBALL_CAGE"}
	f.sahaRoom = models.Facility{Name: "Training Room", Branch: "SAHA", ResourceType: "TRAINING_ROOM"}
	f.yeonsanCage = models.Facility{Name: "Cage 1", Branch: "YEONSAN", ResourceType: "BASEBALL_CAGE"}
	mustCreate(t, db, &f.sahaCage)
	mustCreate(t, db, &f.sahaRoom)
	mustCreate(t, db, &f.yeonsanCage)

	f.member = models.Member{FullName: "Kim Member", Phone: "010-1000-0001"}
	f.otherMember = models.Member{FullName: "Park Member", Phone: "010-1000-0002"}
	mustCreate(t, db, &f.member)
	mustCreate(t, db, &f.otherMember)
	f.coach = models.Coach{Name: "Coach Lee", Color: "#3366ff"}
	mustCreate(t, db, &f.coach)
	return f
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

// newPass gives owner a pass of the given product type.
func (f *fixture) newPass(t *testing.T, owner models.Member, productType string, total, remaining int, expiry time.Time) models.MemberProduct {
	t.Helper()
	f.productSeq++
	product := models.Product{Name: fmt.Sprintf("%s-%d", productType, f.productSeq), Type: productType, Category: "LESSON", TotalCount: total}
	mustCreate(t, f.db, &product)

	d := datatypes.Date(expiry)
	pass := models.MemberProduct{
		MemberID:       owner.ID,
		ProductID:      product.ID,
		TotalCount:     total,
		RemainingCount: remaining,
		ExpiryDate:     &d,
		Status:         models.PassActive,
	}
	if remaining <= 0 && (productType == models.ProductCount || productType == models.ProductSingleUse) {
		pass.Status = models.PassDepleted
	}
	mustCreate(t, f.db, &pass)
	return pass
}

func (f *fixture) reloadPass(t *testing.T, id uint) models.MemberProduct {
	t.Helper()
	var p models.MemberProduct
	if err := f.db.First(&p, id).Error; err != nil {
		t.Fatalf("reload pass %d: %v", id, err)
	}
	return p
}

// at returns a KST wall-clock instant.
func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, kst)
}

func (f *fixture) rental(facility models.Facility, start time.Time, d time.Duration) CreateBookingRequest {
	return CreateBookingRequest{BookingInput: BookingInput{
		FacilityID:     facility.ID,
		Branch:         facility.Branch,
		StartAt:        start,
		EndAt:          start.Add(d),
		Purpose:        models.PurposeRental,
		NonMemberName:  "Walk In",
		NonMemberPhone: "010-9999-0000",
	}}
}

func (f *fixture) lesson(facility models.Facility, start time.Time, d time.Duration, pass *models.MemberProduct) CreateBookingRequest {
	memberID := f.member.ID
	coachID := f.coach.ID
	in := BookingInput{
		FacilityID:     facility.ID,
		StartAt:        start,
		EndAt:          start.Add(d),
		Purpose:        models.PurposeLesson,
		LessonCategory: "BATTING",
		MemberID:       &memberID,
		CoachID:        &coachID,
	}
	if pass != nil {
		id := pass.ID
		in.MemberProductID = &id
	}
	return CreateBookingRequest{BookingInput: in}
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
func strPtr(v string) *string {
	return &v
}
