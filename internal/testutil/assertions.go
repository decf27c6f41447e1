package testutil

import (
	"errors"
	"testing"

	apperrors "expensetrack/internal/errors"

	"github.com/shopspring/decimal"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimal fails the test unless got equals the decimal string want.
func AssertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got.String())
	}
}

// AssertNullDecimal is AssertDecimal for nullable columns. An empty want
// expects NULL.
func AssertNullDecimal(t *testing.T, name string, got decimal.NullDecimal, want string) {
	t.Helper()

	if want == "" {
		if got.Valid {
			t.Errorf("%s: expected NULL, got %s", name, got.Decimal.String())
		}
		return
	}
	if !got.Valid {
		t.Errorf("%s: expected %s, got NULL", name, want)
		return
	}
	AssertDecimal(t, name, got.Decimal, want)
}
