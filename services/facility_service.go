package services

import (
	"context"
	"strings"

	"facility-booking-backend/apperror"
	"facility-booking-backend/models"

	"gorm.io/gorm"
)

var errFacilityNotFound = apperror.NotFound("error.facilityNotFound", "facility not found")

// FacilityService is the read-only facility directory.
type FacilityService struct {
	DB *gorm.DB
}

func NewFacilityService(db *gorm.DB) *FacilityService {
	return &FacilityService{DB: db}
}

func (s *FacilityService) Get(ctx context.Context, id uint) (models.Facility, error) {
	return s.lookup(s.DB.WithContext(ctx), id)
}

// lookup reads a facility on the given handle so callers inside a
// transaction stay on their own connection.
func (s *FacilityService) lookup(db *gorm.DB, id uint) (models.Facility, error) {
	var f models.Facility
	if id == 0 {
		return f, apperror.Validation("error.facilityRequired", "facilityId is required")
	}
	if err := db.First(&f, id).Error; err != nil {
		return f, classify(err, errFacilityNotFound, "load facility")
	}
	return f, nil
}

// List filters by branch and resource type; empty filters match everything.
func (s *FacilityService) List(ctx context.Context, branch, resourceType string) ([]models.Facility, error) {
	q := s.DB.WithContext(ctx).Model(&models.Facility{})
	if b := normalizeCode(branch); b != "" {
		q = q.Where("branch = ?", b)
	}
	if t := normalizeCode(resourceType); t != "" {
		q = q.Where("resource_type = ?", t)
	}

	facilities := []models.Facility{}
	if err := q.Order("branch ASC, name ASC").Find(&facilities).Error; err != nil {
		return nil, classify(err, nil, "list facilities")
	}
	return facilities, nil
}

func (s *FacilityService) ListBranches(ctx context.Context) ([]models.Branch, error) {
	branches := []models.Branch{}
	if err := s.DB.WithContext(ctx).Order("code ASC").Find(&branches).Error; err != nil {
		return nil, classify(err, nil, "list branches")
	}
	return branches, nil
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
