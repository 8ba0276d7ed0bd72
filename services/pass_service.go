package services

import (
	"context"
	"errors"
	"time"

	"facility-booking-backend/apperror"
	"facility-booking-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errPassNotFound = apperror.NotFound("error.passNotFound", "member product not found")
	errPassExpired  = apperror.InvalidState("error.passExpired", "member product has expired")
	errPassInactive = apperror.InvalidState("error.passInactive", "member product is not active")
	errPassEmpty    = apperror.InsufficientBalance("error.passDepleted", "member product has no remaining sessions")
	errPassOwner    = apperror.Validation("error.passOwnerMismatch", "member product does not belong to the booking member")
)

// PassService is the pass ledger. RemainingCount is only ever changed here:
// decremented by consume and topped up by Extend.
type PassService struct {
	DB  *gorm.DB
	Loc *time.Location
	Now func() time.Time
}

func NewPassService(db *gorm.DB, loc *time.Location) *PassService {
	if loc == nil {
		loc = time.UTC
	}
	return &PassService{DB: db, Loc: loc, Now: time.Now}
}

// Consumption is the outcome of one confirmation against a pass.
type Consumption struct {
	PassID         uint `json:"passId"`
	Ordinal        int  `json:"ordinal"`
	RemainingCount int  `json:"remainingCount"`
	Decremented    bool `json:"decremented"`
}

func (s *PassService) ListByMember(ctx context.Context, memberID uint) ([]models.MemberProduct, error) {
	passes := []models.MemberProduct{}
	if memberID == 0 {
		return passes, apperror.Validation("error.memberIdRequired", "memberId is required")
	}
	if err := s.DB.WithContext(ctx).
		Preload("Product").
		Where("member_id = ?", memberID).
		Order("id ASC").
		Find(&passes).Error; err != nil {
		return nil, classify(err, nil, "list member products")
	}
	return passes, nil
}

func (s *PassService) Get(ctx context.Context, id uint) (models.MemberProduct, error) {
	var p models.MemberProduct
	if err := s.DB.WithContext(ctx).Preload("Product").First(&p, id).Error; err != nil {
		return p, classify(err, errPassNotFound, "load member product")
	}
	return p, nil
}

// Extend tops a pass up. addCount raises both total and remaining; extendDays
// pushes the expiry date (counted from today when the pass has none or has
// already lapsed). A pass that becomes usable again is reactivated.
func (s *PassService) Extend(ctx context.Context, id uint, addCount, extendDays int) (models.MemberProduct, error) {
	if addCount < 0 || extendDays < 0 {
		return models.MemberProduct{}, apperror.Validation("error.invalidExtension", "addCount and extendDays must not be negative")
	}
	if addCount == 0 && extendDays == 0 {
		return models.MemberProduct{}, apperror.Validation("error.invalidExtension", "nothing to extend")
	}

	var pass models.MemberProduct
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.lockPass(tx, id)
		if err != nil {
			return err
		}

		today := s.today()
		p.TotalCount += addCount
		p.RemainingCount += addCount
		if extendDays > 0 {
			base := today
			if p.ExpiryDate != nil && !p.ExpiredOn(today) {
				base = time.Time(*p.ExpiryDate)
			}
			d := datatypes.Date(base.AddDate(0, 0, extendDays))
			p.ExpiryDate = &d
		}

		switch {
		case p.ExpiredOn(today):
			p.Status = models.PassExpired
		case p.CountBased() && p.RemainingCount <= 0:
			p.Status = models.PassDepleted
		default:
			p.Status = models.PassActive
		}

		if err := tx.Model(&models.MemberProduct{}).Where("id = ?", p.ID).Updates(map[string]any{
			"total_count":     p.TotalCount,
			"remaining_count": p.RemainingCount,
			"expiry_date":     p.ExpiryDate,
			"status":          p.Status,
		}).Error; err != nil {
			return classify(err, nil, "extend member product")
		}
		pass = p
		return nil
	})
	if err != nil {
		return models.MemberProduct{}, err
	}
	return pass, nil
}

// checkUsable validates a pass reference at booking time.
func (s *PassService) checkUsable(tx *gorm.DB, passID uint, memberID *uint, day time.Time) (models.MemberProduct, error) {
	var p models.MemberProduct
	if err := tx.Preload("Product").First(&p, passID).Error; err != nil {
		return p, classify(err, errPassNotFound, "load member product")
	}
	if memberID == nil || p.MemberID != *memberID {
		return p, errPassOwner.WithDetails(map[string]any{"memberProductId": passID})
	}
	if p.Status != models.PassActive || p.ExpiredOn(day) {
		if p.Status == models.PassDepleted {
			return p, errPassEmpty
		}
		return p, apperror.Validation("error.passInactive", "member product is not active").
			WithDetails(map[string]any{"memberProductId": passID, "status": p.Status})
	}
	if p.CountBased() && p.RemainingCount <= 0 {
		return p, errPassEmpty
	}
	return p, nil
}

// consume debits one unit for bookingID. It must run inside the transaction
// that moves the booking to CONFIRMED so the two commit together.
func (s *PassService) consume(tx *gorm.DB, passID, bookingID uint, memberID *uint, day time.Time) (Consumption, error) {
	p, err := s.lockPass(tx, passID)
	if err != nil {
		return Consumption{}, err
	}
	if memberID == nil || p.MemberID != *memberID {
		return Consumption{}, errPassOwner.WithDetails(map[string]any{"memberProductId": passID})
	}

	if p.ExpiredOn(day) || p.Status == models.PassExpired {
		return Consumption{}, errPassExpired
	}

	if p.CountBased() {
		if p.RemainingCount <= 0 {
			return Consumption{}, errPassEmpty
		}
		if p.Status != models.PassActive {
			return Consumption{}, errPassInactive
		}
		p.RemainingCount--
		if p.RemainingCount == 0 {
			p.Status = models.PassDepleted
		}
		if err := tx.Model(&models.MemberProduct{}).Where("id = ?", p.ID).Updates(map[string]any{
			"remaining_count": p.RemainingCount,
			"status":          p.Status,
		}).Error; err != nil {
			return Consumption{}, classify(err, nil, "debit member product")
		}
		return Consumption{
			PassID:         p.ID,
			Ordinal:        p.Ordinal(),
			RemainingCount: p.RemainingCount,
			Decremented:    true,
		}, nil
	}

	if p.Status != models.PassActive {
		return Consumption{}, errPassInactive
	}
	var used int64
	if err := tx.Model(&models.Booking{}).
		Where("member_product_id = ? AND id <> ? AND status IN ?", p.ID, bookingID,
			[]string{models.StatusConfirmed, models.StatusCompleted}).
		Count(&used).Error; err != nil {
		return Consumption{}, classify(err, nil, "count pass sessions")
	}
	return Consumption{PassID: p.ID, Ordinal: int(used) + 1, RemainingCount: p.RemainingCount}, nil
}

// markExpired persists EXPIRED outside the failed confirmation's transaction.
func (s *PassService) markExpired(ctx context.Context, passID uint) error {
	return s.DB.WithContext(ctx).Model(&models.MemberProduct{}).
		Where("id = ? AND status = ?", passID, models.PassActive).
		Update("status", models.PassExpired).Error
}

func (s *PassService) lockPass(tx *gorm.DB, id uint) (models.MemberProduct, error) {
	var p models.MemberProduct
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return p, classify(err, errPassNotFound, "lock member product")
	}
	if err := tx.First(&p.Product, p.ProductID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return p, classify(err, nil, "load product")
	}
	return p, nil
}

func (s *PassService) today() time.Time {
	now := s.Now().In(s.Loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
