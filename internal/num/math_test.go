package num

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestSqrt(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1"},
		{"2", "1"},
		{"3", "1"},
		{"4", "2"},
		{"15", "3"},
		{"16", "4"},
		{"1000000", "1000"},
		{"999999", "999"},
		// sqrt(1e18 * 4e18) = 2e18
		{"4000000000000000000000000000000000000", "2000000000000000000"},
	}

	for _, tc := range cases {
		in := mustInt(t, tc.in)
		want := mustInt(t, tc.want)
		got := Sqrt(in)
		if !got.Eq(want) {
			t.Fatalf("sqrt(%s) = %s, want %s", tc.in, got.Dec(), tc.want)
		}
	}
}

func TestSqrtIsFloor(t *testing.T) {
	for _, raw := range []string{"5", "99", "10001", "123456789123456789"} {
		y := mustInt(t, raw)
		z := Sqrt(y)
		square := new(uint256.Int).Mul(z, z)
		if square.Gt(y) {
			t.Fatalf("sqrt(%s) = %s overshoots", raw, z.Dec())
		}
		next := new(uint256.Int).AddUint64(z, 1)
		square.Mul(next, next)
		if !square.Gt(y) {
			t.Fatalf("sqrt(%s) = %s undershoots", raw, z.Dec())
		}
	}
}

func TestMin(t *testing.T) {
	a := uint256.NewInt(7)
	b := uint256.NewInt(9)
	if got := Min(a, b); !got.Eq(a) {
		t.Fatalf("min(7,9) = %s", got.Dec())
	}
	if got := Min(b, a); !got.Eq(a) {
		t.Fatalf("min(9,7) = %s", got.Dec())
	}
	// result must be a copy
	got := Min(a, b)
	got.AddUint64(got, 1)
	if !a.Eq(uint256.NewInt(7)) {
		t.Fatalf("min mutated its argument")
	}
}

func TestUQDiv(t *testing.T) {
	// encode(10)/5 = 2 in UQ112.112
	got := UQDiv(EncodeUQ112(uint256.NewInt(10)), uint256.NewInt(5))
	want := new(uint256.Int).Mul(uint256.NewInt(2), Q112)
	if !got.Eq(want) {
		t.Fatalf("uqdiv = %s, want %s", got.Dec(), want.Dec())
	}

	// truncating: encode(1)/3 < Q112/2
	got = UQDiv(EncodeUQ112(uint256.NewInt(1)), uint256.NewInt(3))
	if !got.Lt(Q112) || got.IsZero() {
		t.Fatalf("uqdiv fraction out of range: %s", got.Dec())
	}
}

func TestMaxReserve(t *testing.T) {
	want := new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 112), 1)
	if !MaxReserve.Eq(want) {
		t.Fatalf("MaxReserve = %s", MaxReserve.Dec())
	}
}

func TestMulChecked(t *testing.T) {
	if _, ok := MulChecked(uint256.NewInt(1<<32), uint256.NewInt(1<<32)); !ok {
		t.Fatalf("small product reported overflow")
	}
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	if _, ok := MulChecked(huge, huge); ok {
		t.Fatalf("2^400 did not report overflow")
	}
}

func mustInt(t *testing.T, raw string) *uint256.Int {
	t.Helper()
	v, err := uint256.FromDecimal(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return v
}
