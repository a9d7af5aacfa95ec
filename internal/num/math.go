package num

import "github.com/holiman/uint256"

// MaxReserve is the largest balance a pair tracks per asset (2^112 - 1).
var MaxReserve = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 112), 1)

// Sqrt returns floor(sqrt(y)) using the Babylonian method.
func Sqrt(y *uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	if y.GtUint64(3) {
		z.Set(y)
		x := new(uint256.Int).Rsh(y, 1)
		x.AddUint64(x, 1)
		t := new(uint256.Int)
		for x.Lt(z) {
			z.Set(x)
			t.Div(y, x)
			t.Add(t, x)
			x.Rsh(t, 1)
		}
	} else if !y.IsZero() {
		z.SetUint64(1)
	}
	return z
}

// Min returns the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int).Set(x)
	}
	return new(uint256.Int).Set(y)
}

// MulChecked returns x*y, reporting whether the product overflowed 256 bits.
func MulChecked(x, y *uint256.Int) (*uint256.Int, bool) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	return z, !overflow
}
