package pair

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Asset is one side of the pair. The engine trusts an asset's arithmetic
// but never its declared transfer amounts: deposits and repayments are
// always derived from balance deltas.
type Asset interface {
	Address() common.Address
	BalanceOf(holder common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
}

// Registry supplies the protocol fee recipient and is the only identity
// allowed to initialize a pair.
type Registry interface {
	Address() common.Address
	FeeTaker() common.Address
}

// Callee receives control after the optimistic transfer of a swap with
// callback data or a flashloan. It must source any required repayment
// before returning; its error is honored but its success is not trusted,
// only post-callback balances are.
type Callee interface {
	CheapswapCall(initiator common.Address, amount0Out, amount1Out *uint256.Int, data []byte) error
}

// CalleeResolver maps a recipient address to its callback collaborator.
type CalleeResolver interface {
	Callee(addr common.Address) (Callee, bool)
}

// Recorder receives typed events in commit order. Events for a failed
// operation are discarded along with the rest of its effects.
type Recorder interface {
	Record(emitter common.Address, eventName string, payload interface{})
}

// Snapshotter captures and restores collaborator state around the
// optimistic-transfer window, so a failed verification discards the whole
// attempted operation.
type Snapshotter interface {
	Snapshot() int
	RevertToSnapshot(id int)
}
