package controllers

import (
	"errors"
	"testing"
	"time"

	"facility-booking-backend/apperror"
	"facility-booking-backend/validations"
)

var kst = time.FixedZone("KST", 9*60*60)

func TestParseBound(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, kst)},
		{"2024-06-01T10:30", time.Date(2024, 6, 1, 10, 30, 0, 0, kst)},
		{"2024-06-01T01:30:00Z", time.Date(2024, 6, 1, 10, 30, 0, 0, kst)},
	}
	for _, tc := range cases {
		got, err := parseBound("start", tc.raw, kst)
		if err != nil {
			t.Fatalf("parseBound(%q): %v", tc.raw, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parseBound(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}

	_, err := parseBound("start", "next week", kst)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("kind = %s, want ValidationError", apperror.KindOf(err))
	}
}

func TestToInput(t *testing.T) {
	in, err := toInput(validations.BookingRequest{
		FacilityID: 3,
		Start:      "2024-06-01T10:00",
		End:        "2024-06-01T11:00",
		Purpose:    "RENTAL",
	}, kst)
	if err != nil {
		t.Fatalf("toInput: %v", err)
	}
	if in.FacilityID != 3 || in.EndAt.Sub(in.StartAt) != time.Hour {
		t.Fatalf("input = %+v", in)
	}

	_, err = toInput(validations.BookingRequest{Start: "2024-06-01T10:00", End: "soon"}, kst)
	ae, ok := apperror.As(err)
	if !ok || ae.Code != "error.invalidTime" {
		t.Fatalf("err = %v, want error.invalidTime", err)
	}
}

func TestBindErrorIsValidation(t *testing.T) {
	err := bindError(errors.New("unexpected EOF"))
	ae, ok := apperror.As(err)
	if !ok || ae.Kind != apperror.KindValidation || ae.Code != "error.invalidPayload" {
		t.Fatalf("bindError = %v, want ValidationError error.invalidPayload", err)
	}
}
