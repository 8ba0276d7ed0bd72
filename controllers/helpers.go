package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"facility-booking-backend/apperror"
	"facility-booking-backend/services"
	"facility-booking-backend/utils"
	"facility-booking-backend/validations"
)

var errInvalidID = apperror.Validation("error.invalidId", "id must be a positive integer")

// paramID reads :id, writing the error response itself when it is unusable.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, errInvalidID)
		return 0, false
	}
	return uint(id), true
}

// bindError turns a gin binding failure into a validation error listing the
// offending fields.
func bindError(err error) error {
	invalid := apperror.Validation("error.invalidPayload", "invalid request payload")
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return invalid.WithDetails(fields)
	}
	return invalid.WithDetails(err.Error())
}

func parseTime(field, raw string, loc *time.Location) (time.Time, error) {
	t, err := utils.ParseInstant(raw, loc)
	if err != nil {
		return time.Time{}, apperror.Validation("error.invalidTime", err.Error()).WithDetails(map[string]string{"field": field})
	}
	return t, nil
}

// parseBound accepts a full timestamp or a bare date (local midnight).
func parseBound(field, raw string, loc *time.Location) (time.Time, error) {
	if t, err := utils.ParseInstant(raw, loc); err == nil {
		return t, nil
	}
	t, err := utils.ParseDate(raw, loc)
	if err != nil {
		return time.Time{}, apperror.Validation("error.invalidTime", err.Error()).WithDetails(map[string]string{"field": field})
	}
	return t, nil
}

func toInput(req validations.BookingRequest, loc *time.Location) (services.BookingInput, error) {
	start, err := parseTime("start", req.Start, loc)
	if err != nil {
		return services.BookingInput{}, err
	}
	end, err := parseTime("end", req.End, loc)
	if err != nil {
		return services.BookingInput{}, err
	}
	return services.BookingInput{
		FacilityID:      req.FacilityID,
		Branch:          req.Branch,
		StartAt:         start,
		EndAt:           end,
		Purpose:         req.Purpose,
		LessonCategory:  req.LessonCategory,
		Participants:    req.Participants,
		PaymentMethod:   req.PaymentMethod,
		Memo:            req.Memo,
		CoachID:         req.CoachID,
		MemberProductID: req.MemberProductID,
		MemberID:        req.MemberID,
		NonMemberName:   req.NonMemberName,
		NonMemberPhone:  req.NonMemberPhone,
	}, nil
}
