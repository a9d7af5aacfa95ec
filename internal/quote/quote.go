// Package quote prices hypothetical trades against pair reserves without
// touching pool state. It mirrors the engine's fee-adjusted constant-product
// math from the router's point of view.
package quote

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrZeroAmount      = errors.New("zero amount")
	ErrEmptyReserves   = errors.New("empty reserves")
	ErrExcessiveOutput = errors.New("output exceeds reserve")
	ErrFeeTooHigh      = errors.New("fee at or above denominator")
)

// FeeDenominator scales basis-point fees.
const FeeDenominator = 10000

// AmountOut returns the maximum output for a given input, net of the
// input-side fee in basis points.
//
//	out = in*(10000-fee)*reserveOut / (reserveIn*10000 + in*(10000-fee))
func AmountOut(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint16) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, ErrZeroAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrEmptyReserves
	}
	if uint64(feeBps) >= FeeDenominator {
		return nil, ErrFeeTooHigh
	}

	inWithFee := new(uint256.Int).Mul(amountIn, uint256.NewInt(FeeDenominator-uint64(feeBps)))
	numerator := new(uint256.Int).Mul(inWithFee, reserveOut)
	denominator := new(uint256.Int).Mul(reserveIn, uint256.NewInt(FeeDenominator))
	denominator.Add(denominator, inWithFee)
	return numerator.Div(numerator, denominator), nil
}

// AmountIn returns the minimum input required for a given output, gross of
// the input-side fee in basis points. Rounds up so the quoted input always
// satisfies the invariant.
func AmountIn(amountOut, reserveIn, reserveOut *uint256.Int, feeBps uint16) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return nil, ErrZeroAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrEmptyReserves
	}
	if !amountOut.Lt(reserveOut) {
		return nil, ErrExcessiveOutput
	}
	if uint64(feeBps) >= FeeDenominator {
		return nil, ErrFeeTooHigh
	}

	numerator := new(uint256.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, uint256.NewInt(FeeDenominator))
	denominator := new(uint256.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, uint256.NewInt(FeeDenominator-uint64(feeBps)))
	in := numerator.Div(numerator, denominator)
	return in.AddUint64(in, 1), nil
}
