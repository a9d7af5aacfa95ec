package sim

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"cheapswap/internal/factory"
	"cheapswap/internal/ledger"
	"cheapswap/internal/pair"
	"cheapswap/internal/storage"
)

// WorldConfig sets up an in-memory exchange.
type WorldConfig struct {
	FactoryAddress common.Address
	FeeTaker       common.Address
	// Now drives pair timestamps and event records. Nil means wall time.
	Now              func() uint64
	ProtocolMintFee  bool
	SingleAssetLoans bool
}

// World holds every collaborator of an in-memory exchange: the asset
// ledgers, the factory with its pairs, registered callees, and the event
// journal. It implements the pair engine's CalleeResolver and Snapshotter.
type World struct {
	journal *storage.Journal
	factory *factory.Factory

	tokens  map[common.Address]*ledger.Ledger
	callees map[common.Address]pair.Callee
	tracked []*ledger.Ledger

	snapshots []worldSnapshot
}

type worldSnapshot struct {
	ledgers    []*ledger.Snapshot
	journalLen int
}

// NewWorld builds an empty exchange world.
func NewWorld(cfg WorldConfig) *World {
	w := &World{
		journal: storage.NewJournal(cfg.Now),
		tokens:  make(map[common.Address]*ledger.Ledger),
		callees: make(map[common.Address]pair.Callee),
	}
	w.factory = factory.New(cfg.FactoryAddress, cfg.FeeTaker, pair.Config{
		Recorder:         w.journal,
		Callees:          w,
		State:            w,
		Now:              cfg.Now,
		ProtocolMintFee:  cfg.ProtocolMintFee,
		SingleAssetLoans: cfg.SingleAssetLoans,
	})
	return w
}

// Journal exposes the event journal.
func (w *World) Journal() *storage.Journal {
	return w.journal
}

// Factory exposes the pool registry.
func (w *World) Factory() *factory.Factory {
	return w.factory
}

// CreateToken registers a fungible asset ledger.
func (w *World) CreateToken(address common.Address, name, symbol string, decimals uint8) (*ledger.Ledger, error) {
	if _, ok := w.tokens[address]; ok {
		return nil, fmt.Errorf("token %s already exists", address.Hex())
	}
	token := ledger.New(address, name, symbol, decimals)
	w.tokens[address] = token
	w.tracked = append(w.tracked, token)
	return token, nil
}

// Token looks up an asset ledger by address.
func (w *World) Token(address common.Address) (*ledger.Ledger, bool) {
	token, ok := w.tokens[address]
	return token, ok
}

// CreatePair creates the pool for two registered assets and tracks its
// share ledger for snapshotting.
func (w *World) CreatePair(tokenA, tokenB common.Address, feeOwner common.Address) (*pair.Pair, error) {
	a, ok := w.tokens[tokenA]
	if !ok {
		return nil, fmt.Errorf("unknown token %s", tokenA.Hex())
	}
	b, ok := w.tokens[tokenB]
	if !ok {
		return nil, fmt.Errorf("unknown token %s", tokenB.Hex())
	}
	p, err := w.factory.CreatePair(a, b, feeOwner)
	if err != nil {
		return nil, err
	}
	w.tracked = append(w.tracked, p.Shares())
	return p, nil
}

// Pair looks up a pool by its address.
func (w *World) Pair(address common.Address) (*pair.Pair, bool) {
	for i := 0; i < w.factory.AllPairsLength(); i++ {
		p, _ := w.factory.AllPairs(i)
		if p.Address() == address {
			return p, true
		}
	}
	return nil, false
}

// RegisterCallee binds a callback collaborator to an address.
func (w *World) RegisterCallee(address common.Address, callee pair.Callee) {
	w.callees[address] = callee
}

// Callee implements pair.CalleeResolver.
func (w *World) Callee(address common.Address) (pair.Callee, bool) {
	c, ok := w.callees[address]
	return c, ok
}

// Snapshot implements pair.Snapshotter over every tracked ledger and the
// journal.
func (w *World) Snapshot() int {
	snap := worldSnapshot{
		ledgers:    make([]*ledger.Snapshot, len(w.tracked)),
		journalLen: w.journal.Len(),
	}
	for i, l := range w.tracked {
		snap.ledgers[i] = l.Snapshot()
	}
	w.snapshots = append(w.snapshots, snap)
	return len(w.snapshots) - 1
}

// RevertToSnapshot implements pair.Snapshotter.
func (w *World) RevertToSnapshot(id int) {
	if id < 0 || id >= len(w.snapshots) {
		return
	}
	snap := w.snapshots[id]
	for i, ledgerSnap := range snap.ledgers {
		w.tracked[i].Restore(ledgerSnap)
	}
	w.journal.TruncateTo(snap.journalLen)
	w.snapshots = w.snapshots[:id]
}
