package num

import "github.com/holiman/uint256"

// Q112 is the UQ112.112 fixed-point scaling factor (2^112).
var Q112 = new(uint256.Int).Lsh(uint256.NewInt(1), 112)

// EncodeUQ112 encodes y as a UQ112.112 fixed-point number.
func EncodeUQ112(y *uint256.Int) *uint256.Int {
	return new(uint256.Int).Lsh(y, 112)
}

// UQDiv divides a UQ112.112 numerator by a plain integer, truncating.
func UQDiv(x, y *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(x, y)
}
