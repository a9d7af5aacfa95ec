package pair

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cheapswap/internal/ledger"
	"cheapswap/internal/model"
)

// Address returns the pair's identity.
func (p *Pair) Address() common.Address {
	return p.address
}

// Tokens returns the canonically ordered asset addresses.
func (p *Pair) Tokens() (common.Address, common.Address) {
	return p.token0.Address(), p.token1.Address()
}

// Reserves returns the tracked reserves and the timestamp of the last sync.
func (p *Pair) Reserves() (*uint256.Int, *uint256.Int, uint32) {
	return new(uint256.Int).Set(p.reserve0), new(uint256.Int).Set(p.reserve1), p.blockTimestampLast
}

// PriceCumulatives returns the time-weighted price accumulators.
func (p *Pair) PriceCumulatives() (*uint256.Int, *uint256.Int) {
	return new(uint256.Int).Set(p.price0Cumulative), new(uint256.Int).Set(p.price1Cumulative)
}

// Shares exposes the liquidity-share ledger.
func (p *Pair) Shares() *ledger.Ledger {
	return p.shares
}

// Info returns a metadata snapshot for storage.
func (p *Pair) Info() model.PairInfo {
	token0, token1 := p.Tokens()
	return model.PairInfo{
		Address:     p.address.Hex(),
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		FeeOwner:    p.feeOwner.Hex(),
		UserFee0Bps: p.userFee0Bps,
		UserFee1Bps: p.userFee1Bps,
		Reserve0:    p.reserve0.Dec(),
		Reserve1:    p.reserve1.Dec(),
		TotalShares: p.shares.TotalSupply().Dec(),
	}
}
