package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Snapshot is a point-in-time copy of a ledger's balances and supply.
type Snapshot struct {
	total    *uint256.Int
	balances map[common.Address]*uint256.Int
}

// Snapshot captures the ledger state for a later Restore.
func (l *Ledger) Snapshot() *Snapshot {
	balances := make(map[common.Address]*uint256.Int, len(l.balances))
	for holder, bal := range l.balances {
		balances[holder] = new(uint256.Int).Set(bal)
	}
	return &Snapshot{
		total:    new(uint256.Int).Set(l.total),
		balances: balances,
	}
}

// Restore rewinds the ledger to a previously captured snapshot.
func (l *Ledger) Restore(s *Snapshot) {
	l.total.Set(s.total)
	l.balances = make(map[common.Address]*uint256.Int, len(s.balances))
	for holder, bal := range s.balances {
		l.balances[holder] = new(uint256.Int).Set(bal)
	}
}
