package quote

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func d(t *testing.T, raw string) *uint256.Int {
	t.Helper()
	v, err := uint256.FromDecimal(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return v
}

func TestAmountOut(t *testing.T) {
	cases := []struct {
		amountIn   string
		reserveIn  string
		reserveOut string
		feeBps     uint16
		want       string
	}{
		{"2", "100", "100", 30, "1"},
		{"1000000000000000000", "5000000000000000000", "10000000000000000000", 30, "1662497915624478906"},
		{"1000000000000000000", "10000000000000000000", "5000000000000000000", 30, "453305446940074565"},
		// zero fee degenerates to the plain constant product
		{"100", "1000", "1000", 0, "90"},
	}

	for _, tc := range cases {
		got, err := AmountOut(d(t, tc.amountIn), d(t, tc.reserveIn), d(t, tc.reserveOut), tc.feeBps)
		if err != nil {
			t.Fatalf("amountOut(%s): %v", tc.amountIn, err)
		}
		if !got.Eq(d(t, tc.want)) {
			t.Fatalf("amountOut(%s) = %s, want %s", tc.amountIn, got.Dec(), tc.want)
		}
	}
}

func TestAmountIn(t *testing.T) {
	got, err := AmountIn(d(t, "1"), d(t, "100"), d(t, "100"), 30)
	if err != nil {
		t.Fatalf("amountIn: %v", err)
	}
	if !got.Eq(d(t, "2")) {
		t.Fatalf("amountIn(1,100,100) = %s, want 2", got.Dec())
	}
}

func TestAmountInCoversAmountOut(t *testing.T) {
	reserveIn := d(t, "5000000000000000000")
	reserveOut := d(t, "10000000000000000000")
	out := d(t, "1662497915624478906")

	in, err := AmountIn(out, reserveIn, reserveOut, 30)
	if err != nil {
		t.Fatalf("amountIn: %v", err)
	}
	if in.Gt(d(t, "1000000000000000000")) {
		t.Fatalf("quoted input %s exceeds the known sufficient input", in.Dec())
	}

	roundTrip, err := AmountOut(in, reserveIn, reserveOut, 30)
	if err != nil {
		t.Fatalf("amountOut: %v", err)
	}
	if roundTrip.Lt(out) {
		t.Fatalf("input %s buys only %s, want at least %s", in.Dec(), roundTrip.Dec(), out.Dec())
	}
}

func TestQuoteErrors(t *testing.T) {
	one := uint256.NewInt(1)
	hundred := uint256.NewInt(100)
	zero := new(uint256.Int)

	if _, err := AmountOut(zero, hundred, hundred, 30); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("zero in: %v", err)
	}
	if _, err := AmountOut(one, zero, hundred, 30); !errors.Is(err, ErrEmptyReserves) {
		t.Fatalf("empty reserve: %v", err)
	}
	if _, err := AmountOut(one, hundred, hundred, FeeDenominator); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("fee too high: %v", err)
	}
	if _, err := AmountIn(zero, hundred, hundred, 30); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("zero out: %v", err)
	}
	if _, err := AmountIn(hundred, hundred, hundred, 30); !errors.Is(err, ErrExcessiveOutput) {
		t.Fatalf("output at reserve: %v", err)
	}
	if _, err := AmountIn(one, zero, hundred, 30); !errors.Is(err, ErrEmptyReserves) {
		t.Fatalf("empty reserve: %v", err)
	}
}
