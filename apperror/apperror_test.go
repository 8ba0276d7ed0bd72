package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf_UnwrapsWrappedErrors(t *testing.T) {
	base := NotFound("error.bookingNotFound", "booking not found")
	wrapped := fmt.Errorf("confirm booking 7: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf = %q, want %q", got, KindNotFound)
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf(plain) = %q, want %q", got, KindInternal)
	}
}

func TestIs_MatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Validation("error.invalidTimeRange", "end must be after start"))

	if !errors.Is(err, &Error{Kind: KindValidation}) {
		t.Fatalf("errors.Is by kind should match")
	}
	if !errors.Is(err, &Error{Kind: KindValidation, Code: "error.invalidTimeRange"}) {
		t.Fatalf("errors.Is by kind+code should match")
	}
	if errors.Is(err, &Error{Kind: KindValidation, Code: "error.other"}) {
		t.Fatalf("errors.Is with different code should not match")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:          http.StatusBadRequest,
		KindNotFound:            http.StatusNotFound,
		KindInvalidState:        http.StatusConflict,
		KindConflict:            http.StatusConflict,
		KindInsufficientBalance: http.StatusUnprocessableEntity,
		KindAuthorization:       http.StatusForbidden,
		KindInternal:            http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	sentinel := Validation("error.x", "x")
	withDetails := sentinel.WithDetails(map[string]any{"field": "start"})

	if sentinel.Details != nil {
		t.Fatalf("sentinel.Details = %v, want nil", sentinel.Details)
	}
	if withDetails.Details == nil {
		t.Fatalf("WithDetails lost details")
	}
}
