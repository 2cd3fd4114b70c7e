package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsFromDecimal(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1000.00", 100000, true},
		{"333.33", 33333, true},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-1", 0, false},
		{"-0.01", 0, false},
		{"1.005", 0, false}, // three decimal places
		{"0.001", 0, false},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tc.in, err)
		}
		got, err := CentsFromDecimal(d)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%q expected ErrValidation, got %v", tc.in, err)
			}
		}
	}
}

func TestDecimalFromCentsRoundTrip(t *testing.T) {
	for _, cents := range []int64{1, 100, 33333, 66667, 100000} {
		d := DecimalFromCents(cents)
		back, err := CentsFromDecimal(d)
		if err != nil {
			t.Fatalf("cents %d: %v", cents, err)
		}
		if back != cents {
			t.Fatalf("cents %d round-tripped to %d", cents, back)
		}
	}
}

func TestBalanceArithmeticIsExact(t *testing.T) {
	// 1000.00 - 333.33 must be exactly 666.67, no float drift.
	balance := DecimalFromCents(100000 - 33333)
	if balance.String() != "666.67" {
		t.Fatalf("expected 666.67, got %s", balance.String())
	}
}
