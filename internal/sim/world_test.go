package sim

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cheapswap/internal/factory"
)

const (
	hexToken0  = "0x0000000000000000000000000000000000000001"
	hexToken1  = "0x0000000000000000000000000000000000000002"
	hexLP      = "0x0000000000000000000000000000000000000400"
	hexRepayer = "0x0000000000000000000000000000000000000600"
)

var (
	worldFactoryAddr = common.HexToAddress("0x0000000000000000000000000000000000001000")
	worldFeeTaker    = common.HexToAddress("0x0000000000000000000000000000000000001001")
)

func newTestWorld() *World {
	return NewWorld(WorldConfig{
		FactoryAddress: worldFactoryAddr,
		FeeTaker:       worldFeeTaker,
		Now:            func() uint64 { return 1_700_000_000 },
	})
}

func apply(t *testing.T, w *World, ops []Op) {
	t.Helper()
	for i, op := range ops {
		if err := w.Apply(op); err != nil {
			t.Fatalf("op %d (%s): %v", i, op.Op, err)
		}
	}
}

func pairHex() string {
	return factory.PairAddress(worldFactoryAddr,
		common.HexToAddress(hexToken0), common.HexToAddress(hexToken1)).Hex()
}

func seedPool(t *testing.T, w *World) {
	t.Helper()
	apply(t, w, []Op{
		{Op: OpCreateToken, Token: hexToken0, Name: "Token A", Symbol: "TKA", Decimals: 18},
		{Op: OpCreateToken, Token: hexToken1, Name: "Token B", Symbol: "TKB", Decimals: 18},
		{Op: OpMintToken, Token: hexToken0, To: hexLP, Amount: "10000000000000000000"},
		{Op: OpMintToken, Token: hexToken1, To: hexLP, Amount: "20000000000000000000"},
		{Op: OpCreatePair, TokenA: hexToken0, TokenB: hexToken1, FeeOwner: hexLP},
		{Op: OpTransfer, Token: hexToken0, From: hexLP, To: pairHex(), Amount: "5000000000000000000"},
		{Op: OpTransfer, Token: hexToken1, From: hexLP, To: pairHex(), Amount: "10000000000000000000"},
		{Op: OpMint, Pair: pairHex(), Caller: hexLP, To: hexLP},
	})
}

func TestApplyMintAndSwap(t *testing.T) {
	w := newTestWorld()
	seedPool(t, w)

	apply(t, w, []Op{
		{Op: OpTransfer, Token: hexToken0, From: hexLP, To: pairHex(), Amount: "1000000000000000000"},
		{Op: OpSwap, Pair: pairHex(), Caller: hexLP, To: hexLP, Amount1Out: "1000000000000000000"},
	})

	p, ok := w.Pair(common.HexToAddress(pairHex()))
	if !ok {
		t.Fatalf("pair not found")
	}
	r0, r1, _ := p.Reserves()
	if r0.Dec() != "6000000000000000000" || r1.Dec() != "9000000000000000000" {
		t.Fatalf("reserves = %s/%s", r0.Dec(), r1.Dec())
	}

	token1, _ := w.Token(common.HexToAddress(hexToken1))
	got := token1.BalanceOf(common.HexToAddress(hexLP))
	if got.Dec() != "11000000000000000000" {
		t.Fatalf("lp token1 = %s", got.Dec())
	}

	// PairCreated, two share Transfers, Sync+Mint, then Sync+Swap
	names := make([]string, 0, w.Journal().Len())
	for _, e := range w.Journal().Events() {
		names = append(names, e.EventName)
	}
	want := "PairCreated,Transfer,Transfer,Sync,Mint,Sync,Swap"
	if strings.Join(names, ",") != want {
		t.Fatalf("events = %v", names)
	}
}

func TestApplyFlashloan(t *testing.T) {
	w := newTestWorld()
	seedPool(t, w)

	apply(t, w, []Op{
		{Op: OpCreateRepayer, Repayer: hexRepayer, Pair: pairHex()},
		{Op: OpMintToken, Token: hexToken0, To: hexRepayer, Amount: "1000000000000000000"},
		{Op: OpFlashloan, Pair: pairHex(), Caller: hexLP, To: hexRepayer, Amount0Out: "1000000000000000000"},
	})

	p, _ := w.Pair(common.HexToAddress(pairHex()))
	accrued0, accrued1 := p.AccruedProtocolFees()
	if accrued0.Dec() != "500000000000000" || !accrued1.IsZero() {
		t.Fatalf("accrued = %s/%s", accrued0.Dec(), accrued1.Dec())
	}
}

func TestApplyFailedOpLeavesNoTrace(t *testing.T) {
	w := newTestWorld()
	seedPool(t, w)
	journalLen := w.Journal().Len()

	// output above the reserve
	err := w.Apply(Op{Op: OpSwap, Pair: pairHex(), Caller: hexLP, To: hexLP, Amount1Out: "100000000000000000000"})
	if err == nil {
		t.Fatalf("oversized swap succeeded")
	}
	if w.Journal().Len() != journalLen {
		t.Fatalf("failed op left events: %d -> %d", journalLen, w.Journal().Len())
	}

	p, _ := w.Pair(common.HexToAddress(pairHex()))
	r0, _, _ := p.Reserves()
	if r0.Dec() != "5000000000000000000" {
		t.Fatalf("reserve0 = %s", r0.Dec())
	}
}

func TestApplyRejectsUnknownInputs(t *testing.T) {
	w := newTestWorld()

	if err := w.Apply(Op{Op: "teleport"}); err == nil {
		t.Fatalf("unknown op accepted")
	}
	if err := w.Apply(Op{Op: OpMintToken, Token: hexToken0, To: hexLP, Amount: "1"}); err == nil {
		t.Fatalf("mint on unknown token accepted")
	}
	if err := w.Apply(Op{Op: OpCreateToken, Token: "not-an-address"}); err == nil {
		t.Fatalf("bad address accepted")
	}

	apply(t, w, []Op{{Op: OpCreateToken, Token: hexToken0, Name: "Token A", Symbol: "TKA", Decimals: 18}})
	if err := w.Apply(Op{Op: OpCreateToken, Token: hexToken0}); err == nil {
		t.Fatalf("duplicate token accepted")
	}
	if err := w.Apply(Op{Op: OpMintToken, Token: hexToken0, To: hexLP, Amount: "12x"}); err == nil {
		t.Fatalf("bad amount accepted")
	}
}

func TestWorldSnapshotRevert(t *testing.T) {
	w := newTestWorld()
	seedPool(t, w)

	lpAddr := common.HexToAddress(hexLP)
	token0, _ := w.Token(common.HexToAddress(hexToken0))
	before := token0.BalanceOf(lpAddr)
	journalLen := w.Journal().Len()

	id := w.Snapshot()
	apply(t, w, []Op{
		{Op: OpTransfer, Token: hexToken0, From: hexLP, To: pairHex(), Amount: "1000000000000000000"},
	})
	w.RevertToSnapshot(id)

	if got := token0.BalanceOf(lpAddr); !got.Eq(before) {
		t.Fatalf("lp balance = %s, want %s", got.Dec(), before.Dec())
	}
	if w.Journal().Len() != journalLen {
		t.Fatalf("journal len = %d, want %d", w.Journal().Len(), journalLen)
	}

	p, _ := w.Pair(common.HexToAddress(pairHex()))
	r0, _, _ := p.Reserves()
	if !r0.Eq(uint256.NewInt(0).SetUint64(5_000_000_000_000_000_000)) {
		t.Fatalf("reserve0 = %s", r0.Dec())
	}
}
