package sim

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cheapswap/internal/ledger"
	"cheapswap/internal/pair"
)

// Repayer is a borrower callee that repays a flashloan plus fee out of its
// own balances. Scenarios register one to exercise loan flows.
type Repayer struct {
	address common.Address
	pool    common.Address
	token0  *ledger.Ledger
	token1  *ledger.Ledger
}

// NewRepayer builds a repaying borrower for one pool. token0/token1 must be
// in the pool's canonical order.
func NewRepayer(address, pool common.Address, token0, token1 *ledger.Ledger) *Repayer {
	return &Repayer{address: address, pool: pool, token0: token0, token1: token1}
}

// Address returns the borrower's identity.
func (r *Repayer) Address() common.Address {
	return r.address
}

// CheapswapCall repays each borrowed side with the loan fee on top.
func (r *Repayer) CheapswapCall(initiator common.Address, amount0Out, amount1Out *uint256.Int, data []byte) error {
	if err := r.repay(r.token0, amount0Out); err != nil {
		return err
	}
	return r.repay(r.token1, amount1Out)
}

func (r *Repayer) repay(token *ledger.Ledger, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	owed := new(uint256.Int).Mul(amount, uint256.NewInt(pair.LoanFeeBps))
	owed.Div(owed, uint256.NewInt(pair.FeeDenominator))
	owed.Add(owed, amount)
	if err := token.Transfer(r.address, r.pool, owed); err != nil {
		return fmt.Errorf("repay %s: %w", token.Meta().Symbol, err)
	}
	return nil
}
