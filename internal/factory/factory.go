package factory

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"cheapswap/internal/model"
	"cheapswap/internal/pair"
)

var (
	ErrIdenticalAssets = errors.New("identical assets")
	ErrPairExists      = errors.New("pair exists")
	ErrInvalidFeeTaker = errors.New("caller is not the fee taker")
)

// Factory deploys and indexes one pair per unique unordered asset pair and
// administers the protocol fee recipient. It is the registry collaborator
// of every pair it creates.
type Factory struct {
	address  common.Address
	feeTaker common.Address
	pairCfg  pair.Config

	pairs map[common.Address]map[common.Address]*pair.Pair
	all   []*pair.Pair
}

// New creates a factory. pairCfg is the collaborator wiring handed to each
// created pair; its Registry field is overwritten with the factory itself.
func New(address, feeTaker common.Address, pairCfg pair.Config) *Factory {
	f := &Factory{
		address:  address,
		feeTaker: feeTaker,
		pairCfg:  pairCfg,
		pairs:    make(map[common.Address]map[common.Address]*pair.Pair),
	}
	f.pairCfg.Registry = f
	return f
}

// Address returns the factory's identity.
func (f *Factory) Address() common.Address {
	return f.address
}

// FeeTaker returns the current protocol fee recipient.
func (f *Factory) FeeTaker() common.Address {
	return f.feeTaker
}

// SetFeeTaker hands the fee recipient role to a new identity. Only the
// current fee taker may call it.
func (f *Factory) SetFeeTaker(caller, newTaker common.Address) error {
	if caller != f.feeTaker {
		return fmt.Errorf("set fee taker by %s: %w", caller.Hex(), ErrInvalidFeeTaker)
	}
	f.feeTaker = newTaker
	return nil
}

// CreatePair deploys and initializes the pool for an asset pair. Creation
// is permissionless; the pair and its registry entry are created together.
func (f *Factory) CreatePair(tokenA, tokenB pair.Asset, feeOwner common.Address) (*pair.Pair, error) {
	addrA, addrB := tokenA.Address(), tokenB.Address()
	if addrA == addrB {
		return nil, fmt.Errorf("create pair %s/%s: %w", addrA.Hex(), addrB.Hex(), ErrIdenticalAssets)
	}
	token0, token1 := tokenA, tokenB
	if bytes.Compare(addrB.Bytes(), addrA.Bytes()) < 0 {
		token0, token1 = tokenB, tokenA
	}
	if _, ok := f.lookup(token0.Address(), token1.Address()); ok {
		return nil, fmt.Errorf("create pair %s/%s: %w", addrA.Hex(), addrB.Hex(), ErrPairExists)
	}

	p := pair.New(PairAddress(f.address, token0.Address(), token1.Address()), f.pairCfg)
	if err := p.Initialize(f.address, token0, token1, feeOwner); err != nil {
		return nil, fmt.Errorf("initialize pair: %w", err)
	}

	f.record(token0.Address(), token1.Address(), p)
	f.record(token1.Address(), token0.Address(), p)
	f.all = append(f.all, p)

	if f.pairCfg.Recorder != nil {
		f.pairCfg.Recorder.Record(f.address, model.EventPairCreated, model.PairCreatedEventData{
			Token0: token0.Address().Hex(),
			Token1: token1.Address().Hex(),
			Pair:   p.Address().Hex(),
			Index:  uint64(len(f.all) - 1),
		})
	}
	return p, nil
}

// GetPair looks up the pool for an asset pair in either ordering.
func (f *Factory) GetPair(a, b common.Address) (*pair.Pair, bool) {
	return f.lookup(a, b)
}

// AllPairs returns the pool at the given creation index.
func (f *Factory) AllPairs(index int) (*pair.Pair, bool) {
	if index < 0 || index >= len(f.all) {
		return nil, false
	}
	return f.all[index], true
}

// AllPairsLength returns the number of pools created.
func (f *Factory) AllPairsLength() int {
	return len(f.all)
}

func (f *Factory) lookup(a, b common.Address) (*pair.Pair, bool) {
	inner, ok := f.pairs[a]
	if !ok {
		return nil, false
	}
	p, ok := inner[b]
	return p, ok
}

func (f *Factory) record(a, b common.Address, p *pair.Pair) {
	inner, ok := f.pairs[a]
	if !ok {
		inner = make(map[common.Address]*pair.Pair)
		f.pairs[a] = inner
	}
	inner[b] = p
}

// PairAddress derives the deterministic pool address for a canonical token
// pair, CREATE2-style: keccak256(0xff ++ factory ++ keccak256(t0 ++ t1)).
func PairAddress(factory, token0, token1 common.Address) common.Address {
	salt := crypto.Keccak256(token0.Bytes(), token1.Bytes())
	preimage := make([]byte, 0, 1+common.AddressLength+len(salt))
	preimage = append(preimage, 0xff)
	preimage = append(preimage, factory.Bytes()...)
	preimage = append(preimage, salt...)
	return common.BytesToAddress(crypto.Keccak256(preimage)[12:])
}
