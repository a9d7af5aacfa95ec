package pair

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cheapswap/internal/num"
)

// mintProtocolFee mints shares to the protocol fee recipient worth 1/6 of
// the invariant-root growth since the last checkpoint. Returns whether the
// fee is active so callers know to refresh kLast.
func (p *Pair) mintProtocolFee(reserve0, reserve1 *uint256.Int) bool {
	var feeTaker common.Address
	if p.cfg.Registry != nil {
		feeTaker = p.cfg.Registry.FeeTaker()
	}
	feeOn := p.cfg.ProtocolMintFee && feeTaker != (common.Address{})
	if !feeOn {
		if !p.kLast.IsZero() {
			p.kLast.Clear()
		}
		return false
	}
	if p.kLast.IsZero() {
		return true
	}

	rootK := num.Sqrt(new(uint256.Int).Mul(reserve0, reserve1))
	rootKLast := num.Sqrt(p.kLast)
	if rootK.Gt(rootKLast) {
		numerator := new(uint256.Int).Sub(rootK, rootKLast)
		numerator.Mul(numerator, p.shares.TotalSupply())
		denominator := new(uint256.Int).Mul(rootK, uint256.NewInt(5))
		denominator.Add(denominator, rootKLast)
		liquidity := numerator.Div(numerator, denominator)
		if !liquidity.IsZero() {
			p.shares.Mint(feeTaker, liquidity)
		}
	}
	return true
}

// SetUserTokenFees sets the custom per-asset input fees in basis points.
// Only the fee administrator may call it.
func (p *Pair) SetUserTokenFees(caller common.Address, fee0Bps, fee1Bps uint16) error {
	if p.token0 == nil {
		return fmt.Errorf("pair %s not initialized: %w", p.address.Hex(), ErrForbidden)
	}
	if caller != p.feeOwner {
		return fmt.Errorf("set fees by %s: %w", caller.Hex(), ErrInvalidFeeConfiguration)
	}
	if fee0Bps > MaxUserTokenFeeBps || fee1Bps > MaxUserTokenFeeBps {
		return fmt.Errorf("fees %d/%d above %d bps: %w", fee0Bps, fee1Bps, MaxUserTokenFeeBps, ErrInvalidFeeConfiguration)
	}
	p.userFee0Bps = fee0Bps
	p.userFee1Bps = fee1Bps
	return nil
}

// SetFeeOwner hands the fee administrator role to a new identity.
func (p *Pair) SetFeeOwner(caller, newOwner common.Address) error {
	if caller != p.feeOwner {
		return fmt.Errorf("set fee owner by %s: %w", caller.Hex(), ErrForbidden)
	}
	p.feeOwner = newOwner
	return nil
}

// ClaimProtocolFees transfers the accrued protocol fees to the recipient
// and zeroes the counters. Only the registry's current fee taker may claim.
func (p *Pair) ClaimProtocolFees(caller, to common.Address) (*uint256.Int, *uint256.Int, error) {
	if err := p.enter(); err != nil {
		return nil, nil, err
	}
	defer p.exit()

	if p.cfg.Registry == nil || caller != p.cfg.Registry.FeeTaker() {
		return nil, nil, ErrInvalidFeeTaker
	}

	rev := p.snapshot()
	amount0 := new(uint256.Int).Set(p.accrued0)
	amount1 := new(uint256.Int).Set(p.accrued1)
	if !amount0.IsZero() {
		if err := p.token0.Transfer(p.address, to, amount0); err != nil {
			p.revertTo(rev)
			return nil, nil, fmt.Errorf("claim %s: %w", p.token0.Address().Hex(), err)
		}
	}
	if !amount1.IsZero() {
		if err := p.token1.Transfer(p.address, to, amount1); err != nil {
			p.revertTo(rev)
			return nil, nil, fmt.Errorf("claim %s: %w", p.token1.Address().Hex(), err)
		}
	}
	p.accrued0.Clear()
	p.accrued1.Clear()
	return amount0, amount1, nil
}

// AccruedProtocolFees returns the claimable protocol fee balances.
func (p *Pair) AccruedProtocolFees() (*uint256.Int, *uint256.Int) {
	return new(uint256.Int).Set(p.accrued0), new(uint256.Int).Set(p.accrued1)
}

// UserTokenFees returns the custom per-asset fee basis points.
func (p *Pair) UserTokenFees() (uint16, uint16) {
	return p.userFee0Bps, p.userFee1Bps
}

// FeeOwner returns the current fee administrator.
func (p *Pair) FeeOwner() common.Address {
	return p.feeOwner
}
