package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusAt_OnlyConfirmedBookingsReadAsCompleted(t *testing.T) {
	end := time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)
	after := end.Add(time.Minute)

	confirmed := Booking{Status: StatusConfirmed, EndAt: end}
	if got := confirmed.StatusAt(after); got != StatusCompleted {
		t.Fatalf("confirmed elapsed StatusAt = %q, want %q", got, StatusCompleted)
	}
	if got := confirmed.StatusAt(end.Add(-time.Minute)); got != StatusConfirmed {
		t.Fatalf("confirmed running StatusAt = %q, want %q", got, StatusConfirmed)
	}

	pending := Booking{Status: StatusPending, EndAt: end}
	if got := pending.StatusAt(after); got != StatusPending {
		t.Fatalf("pending elapsed StatusAt = %q, want %q", got, StatusPending)
	}
}

func TestMemberProduct_ExpiredOn(t *testing.T) {
	exp := datatypes.Date(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	p := MemberProduct{ExpiryDate: &exp}

	if p.ExpiredOn(time.Date(2024, 6, 30, 22, 0, 0, 0, time.UTC)) {
		t.Fatalf("pass should still be valid on its expiry date")
	}
	if !p.ExpiredOn(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("pass should be expired the day after expiry")
	}
	if (MemberProduct{}).ExpiredOn(time.Now()) {
		t.Fatalf("pass without expiry never expires")
	}
}

func TestMemberProduct_OrdinalAndCountBased(t *testing.T) {
	p := MemberProduct{TotalCount: 10, RemainingCount: 8, Product: Product{Type: ProductCount}}
	if got := p.Ordinal(); got != 2 {
		t.Fatalf("Ordinal = %d, want 2", got)
	}
	if !p.CountBased() {
		t.Fatalf("COUNT product should be count based")
	}
	p.Product.Type = ProductSingleUse
	if !p.CountBased() {
		t.Fatalf("SINGLE product should be count based")
	}
	p.Product.Type = ProductMonthly
	if p.CountBased() {
		t.Fatalf("MONTHLY product should not be count based")
	}
}
