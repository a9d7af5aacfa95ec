package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cheapswap/internal/model"
)

// ErrInsufficientBalance is returned when a transfer or burn exceeds the
// holder's balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// TransferHook observes balance movements in commit order. Mints pass the
// zero address as from, burns pass it as to.
type TransferHook func(from, to common.Address, amount *uint256.Int)

// Ledger is a fungible balance ledger. It backs both the in-process asset
// collaborators and each pair's liquidity-share supply.
//
// Invariant: the sum of all balances equals the total supply; Mint and Burn
// are the only operations that change the total supply.
type Ledger struct {
	address  common.Address
	meta     model.TokenMeta
	total    *uint256.Int
	balances map[common.Address]*uint256.Int
	onMove   TransferHook
}

// New creates an empty ledger identified by address.
func New(address common.Address, name, symbol string, decimals uint8) *Ledger {
	return &Ledger{
		address: address,
		meta: model.TokenMeta{
			Address:  address.Hex(),
			Decimals: decimals,
			Symbol:   symbol,
			Name:     name,
		},
		total:    new(uint256.Int),
		balances: make(map[common.Address]*uint256.Int),
	}
}

// SetTransferHook installs the movement observer. A nil hook disables
// observation.
func (l *Ledger) SetTransferHook(hook TransferHook) {
	l.onMove = hook
}

// Address returns the ledger's identity.
func (l *Ledger) Address() common.Address {
	return l.address
}

// Meta returns the ledger's token metadata.
func (l *Ledger) Meta() model.TokenMeta {
	return l.meta
}

// TotalSupply returns the outstanding supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(l.total)
}

// BalanceOf returns holder's balance.
func (l *Ledger) BalanceOf(holder common.Address) *uint256.Int {
	if bal, ok := l.balances[holder]; ok {
		return new(uint256.Int).Set(bal)
	}
	return new(uint256.Int)
}

// Mint credits amount to recipient and grows the total supply.
func (l *Ledger) Mint(to common.Address, amount *uint256.Int) {
	l.total.Add(l.total, amount)
	l.credit(to, amount)
	l.notify(common.Address{}, to, amount)
}

// Burn debits amount from holder and shrinks the total supply.
func (l *Ledger) Burn(from common.Address, amount *uint256.Int) error {
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.total.Sub(l.total, amount)
	l.notify(from, common.Address{}, amount)
	return nil
}

// Transfer moves amount between holders without changing the total supply.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int) error {
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	l.notify(from, to, amount)
	return nil
}

func (l *Ledger) credit(to common.Address, amount *uint256.Int) {
	bal, ok := l.balances[to]
	if !ok {
		bal = new(uint256.Int)
		l.balances[to] = bal
	}
	bal.Add(bal, amount)
}

func (l *Ledger) debit(from common.Address, amount *uint256.Int) error {
	bal, ok := l.balances[from]
	if !ok || bal.Lt(amount) {
		return fmt.Errorf("%s debit %s from %s: %w", l.meta.Symbol, amount.Dec(), from.Hex(), ErrInsufficientBalance)
	}
	bal.Sub(bal, amount)
	return nil
}

func (l *Ledger) notify(from, to common.Address, amount *uint256.Int) {
	if l.onMove != nil {
		l.onMove(from, to, new(uint256.Int).Set(amount))
	}
}
