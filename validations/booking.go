package validations

// BookingRequest is the shared body of create and update.
// Start and end accept RFC3339 or a zone-less "2006-01-02T15:04" in the
// business time zone.
type BookingRequest struct {
	FacilityID      uint   `json:"facilityId" binding:"required"`
	Branch          string `json:"branch" binding:"omitempty,max=32"`
	Start           string `json:"start" binding:"required"`
	End             string `json:"end" binding:"required"`
	Purpose         string `json:"purpose" binding:"required,purpose"`
	LessonCategory  string `json:"lessonCategory" binding:"max=64"`
	Participants    *int   `json:"participants" binding:"omitempty,min=1"`
	PaymentMethod   string `json:"paymentMethod" binding:"max=32"`
	Memo            string `json:"memo" binding:"max=2000"`
	CoachID         *uint  `json:"coachId"`
	MemberProductID *uint  `json:"memberProductId"`
	MemberID        *uint  `json:"memberId"`
	NonMemberName   string `json:"nonMemberName" binding:"max=120"`
	NonMemberPhone  string `json:"nonMemberPhone" binding:"max=50"`
}

// CreateBookingRequest has no status field: new bookings always start PENDING.
type CreateBookingRequest struct {
	BookingRequest
	Recurrence *RecurrenceRequest `json:"recurrence"`
}

type UpdateBookingRequest struct {
	BookingRequest
	Status *string `json:"status" binding:"omitempty,status"`
}

type RecurrenceRequest struct {
	Cadence string `json:"cadence" binding:"required,cadence"`
	Count   int    `json:"count" binding:"required,min=1,max=366"`
}

type CopyBookingRequest struct {
	TargetDate string `json:"targetDate" binding:"required"`
}

type BulkConfirmRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1,dive,gt=0"`
}

type ListBookingsQuery struct {
	Start        string `form:"start" binding:"required"`
	End          string `form:"end" binding:"required"`
	Branch       string `form:"branch"`
	FacilityID   uint   `form:"facilityId"`
	FacilityType string `form:"facilityType"`
	GroupBy      string `form:"groupBy" binding:"omitempty,oneof=day coach"`
}
