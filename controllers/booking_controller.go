// controllers/booking_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"facility-booking-backend/models"
	"facility-booking-backend/services"
	"facility-booking-backend/utils"
	"facility-booking-backend/validations"
)

type BookingController struct {
	BookingSvc *services.BookingService
	QuerySvc   *services.QueryService
	ReorderSvc *services.ReorderService
	Loc        *time.Location
}

func NewBookingController(
	bookings *services.BookingService,
	query *services.QueryService,
	reorder *services.ReorderService,
	loc *time.Location,
) *BookingController {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingController{BookingSvc: bookings, QuerySvc: query, ReorderSvc: reorder, Loc: loc}
}

// ---------------------------
// GET /api/bookings
// ---------------------------
func (bc *BookingController) GetBookings(c *gin.Context) {
	var q validations.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	start, err := parseBound("start", q.Start, bc.Loc)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	end, err := parseBound("end", q.End, bc.Loc)
	if err != nil {
		utils.JSONError(c, err)
		return
	}

	bookings, err := bc.QuerySvc.List(c.Request.Context(), services.BookingFilter{
		Start:        start,
		End:          end,
		Branch:       q.Branch,
		FacilityID:   q.FacilityID,
		FacilityType: q.FacilityType,
	})
	if err != nil {
		utils.JSONError(c, err)
		return
	}

	switch q.GroupBy {
	case "day":
		utils.JSONSuccess(c, http.StatusOK, services.GroupByDay(bookings, bc.Loc))
	case "coach":
		utils.JSONSuccess(c, http.StatusOK, services.GroupByCoach(bookings))
	default:
		utils.JSONSuccess(c, http.StatusOK, bookings)
	}
}

// ---------------------------
// POST /api/bookings
// ---------------------------
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req validations.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	in, err := toInput(req.BookingRequest, bc.Loc)
	if err != nil {
		utils.JSONError(c, err)
		return
	}

	ctx := c.Request.Context()
	booking, err := bc.BookingSvc.Create(ctx, services.CreateBookingRequest{BookingInput: in})
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	if req.Recurrence == nil {
		utils.JSONSuccess(c, http.StatusCreated, booking)
		return
	}

	res, err := bc.BookingSvc.Expand(ctx, booking, services.RecurrenceSpec{
		Cadence: req.Recurrence.Cadence,
		Count:   req.Recurrence.Count,
	})
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"booking": booking, "recurrence": res})
}

// ---------------------------
// GET /api/bookings/:id
// ---------------------------
func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.Get(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// ---------------------------
// PUT /api/bookings/:id
// ---------------------------
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req validations.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	in, err := toInput(req.BookingRequest, bc.Loc)
	if err != nil {
		utils.JSONError(c, err)
		return
	}

	booking, err := bc.BookingSvc.Update(c.Request.Context(), id, services.UpdateBookingRequest{BookingInput: in, Status: req.Status})
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// ---------------------------
// DELETE /api/bookings/:id
// ---------------------------
func (bc *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := bc.BookingSvc.Delete(c.Request.Context(), id); err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// ---------------------------
// POST /api/bookings/:id/{confirm,complete,cancel}
// ---------------------------
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	bc.transition(c, bc.BookingSvc.Confirm)
}

func (bc *BookingController) CompleteBooking(c *gin.Context) {
	bc.transition(c, bc.BookingSvc.Complete)
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	bc.transition(c, bc.BookingSvc.Cancel)
}

func (bc *BookingController) transition(c *gin.Context, fn func(context.Context, uint) (models.Booking, error)) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	booking, err := fn(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// ---------------------------
// POST /api/bookings/:id/copy
// ---------------------------
func (bc *BookingController) CopyBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req validations.CopyBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	target, err := parseBound("targetDate", req.TargetDate, bc.Loc)
	if err != nil {
		utils.JSONError(c, err)
		return
	}

	booking, err := bc.BookingSvc.Copy(c.Request.Context(), id, target)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// ---------------------------
// POST /api/bookings/:id/repeat
// ---------------------------
func (bc *BookingController) RepeatBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req validations.RecurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}

	res, err := bc.BookingSvc.ExpandFrom(c.Request.Context(), id, services.RecurrenceSpec{Cadence: req.Cadence, Count: req.Count})
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, res)
}

// ---------------------------
// POST /api/bookings/bulk-confirm
// ---------------------------
func (bc *BookingController) BulkConfirm(c *gin.Context) {
	var req validations.BulkConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	res, err := bc.BookingSvc.BulkConfirm(c.Request.Context(), req.IDs)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// ---------------------------
// POST /api/bookings/reorder
// ---------------------------
func (bc *BookingController) Reorder(c *gin.Context) {
	changed, err := bc.ReorderSvc.Reorder(c.Request.Context())
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"changed": changed})
}
