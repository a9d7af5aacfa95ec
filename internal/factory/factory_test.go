package factory

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"cheapswap/internal/ledger"
	"cheapswap/internal/pair"
)

var (
	factoryAddr = common.HexToAddress("0x0000000000000000000000000000000000001000")
	feeTaker    = common.HexToAddress("0x0000000000000000000000000000000000001001")
	feeOwner    = common.HexToAddress("0x0000000000000000000000000000000000001002")
	tokenAAddr  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	tokenBAddr  = common.HexToAddress("0x0000000000000000000000000000000000000002")
	tokenCAddr  = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

func newTestFactory() (*Factory, *ledger.Ledger, *ledger.Ledger) {
	tokenA := ledger.New(tokenAAddr, "Token A", "TKA", 18)
	tokenB := ledger.New(tokenBAddr, "Token B", "TKB", 18)
	f := New(factoryAddr, feeTaker, pair.Config{})
	return f, tokenA, tokenB
}

func TestCreatePair(t *testing.T) {
	f, tokenA, tokenB := newTestFactory()

	p, err := f.CreatePair(tokenA, tokenB, feeOwner)
	if err != nil {
		t.Fatalf("create pair: %v", err)
	}

	token0, token1 := p.Tokens()
	if token0 != tokenAAddr || token1 != tokenBAddr {
		t.Fatalf("tokens = %s/%s", token0.Hex(), token1.Hex())
	}
	if got := p.FeeOwner(); got != feeOwner {
		t.Fatalf("fee owner = %s", got.Hex())
	}
	if f.AllPairsLength() != 1 {
		t.Fatalf("length = %d", f.AllPairsLength())
	}
	if got, ok := f.AllPairs(0); !ok || got != p {
		t.Fatalf("allPairs(0) = %v, %v", got, ok)
	}
	if _, ok := f.AllPairs(1); ok {
		t.Fatalf("allPairs(1) should be empty")
	}
}

func TestCreatePairCanonicalOrder(t *testing.T) {
	f, tokenA, tokenB := newTestFactory()

	// reversed argument order still yields the canonical token order
	p, err := f.CreatePair(tokenB, tokenA, feeOwner)
	if err != nil {
		t.Fatalf("create pair: %v", err)
	}
	token0, token1 := p.Tokens()
	if token0 != tokenAAddr || token1 != tokenBAddr {
		t.Fatalf("tokens = %s/%s", token0.Hex(), token1.Hex())
	}
}

func TestCreatePairRejectsDuplicates(t *testing.T) {
	f, tokenA, tokenB := newTestFactory()

	if _, err := f.CreatePair(tokenA, tokenA, feeOwner); !errors.Is(err, ErrIdenticalAssets) {
		t.Fatalf("identical assets: %v", err)
	}
	if _, err := f.CreatePair(tokenA, tokenB, feeOwner); err != nil {
		t.Fatalf("create pair: %v", err)
	}
	if _, err := f.CreatePair(tokenA, tokenB, feeOwner); !errors.Is(err, ErrPairExists) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := f.CreatePair(tokenB, tokenA, feeOwner); !errors.Is(err, ErrPairExists) {
		t.Fatalf("reversed duplicate: %v", err)
	}
}

func TestGetPairBothOrderings(t *testing.T) {
	f, tokenA, tokenB := newTestFactory()
	p, err := f.CreatePair(tokenA, tokenB, feeOwner)
	if err != nil {
		t.Fatalf("create pair: %v", err)
	}

	if got, ok := f.GetPair(tokenAAddr, tokenBAddr); !ok || got != p {
		t.Fatalf("forward lookup failed")
	}
	if got, ok := f.GetPair(tokenBAddr, tokenAAddr); !ok || got != p {
		t.Fatalf("reverse lookup failed")
	}
	if _, ok := f.GetPair(tokenAAddr, tokenCAddr); ok {
		t.Fatalf("unknown pair found")
	}
}

func TestSetFeeTaker(t *testing.T) {
	f, _, _ := newTestFactory()

	stranger := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	if err := f.SetFeeTaker(stranger, stranger); !errors.Is(err, ErrInvalidFeeTaker) {
		t.Fatalf("unauthorized: %v", err)
	}
	if err := f.SetFeeTaker(feeTaker, stranger); err != nil {
		t.Fatalf("handover: %v", err)
	}
	if got := f.FeeTaker(); got != stranger {
		t.Fatalf("fee taker = %s", got.Hex())
	}
	// old taker lost the role
	if err := f.SetFeeTaker(feeTaker, feeTaker); !errors.Is(err, ErrInvalidFeeTaker) {
		t.Fatalf("old taker still authorized: %v", err)
	}
}

func TestPairAddressDeterministic(t *testing.T) {
	a := PairAddress(factoryAddr, tokenAAddr, tokenBAddr)
	b := PairAddress(factoryAddr, tokenAAddr, tokenBAddr)
	if a != b {
		t.Fatalf("address not deterministic: %s vs %s", a.Hex(), b.Hex())
	}
	if a == (common.Address{}) {
		t.Fatalf("zero pair address")
	}

	// sensitive to every input
	if PairAddress(factoryAddr, tokenBAddr, tokenAAddr) == a {
		t.Fatalf("token order ignored")
	}
	if PairAddress(feeTaker, tokenAAddr, tokenBAddr) == a {
		t.Fatalf("factory identity ignored")
	}

	p, err := New(factoryAddr, feeTaker, pair.Config{}).CreatePair(
		ledger.New(tokenAAddr, "Token A", "TKA", 18),
		ledger.New(tokenBAddr, "Token B", "TKB", 18),
		feeOwner,
	)
	if err != nil {
		t.Fatalf("create pair: %v", err)
	}
	if p.Address() != a {
		t.Fatalf("pair address = %s, want %s", p.Address().Hex(), a.Hex())
	}
}
