package pair

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cheapswap/internal/ledger"
	"cheapswap/internal/model"
	"cheapswap/internal/num"
)

const (
	// MinimumLiquidity is permanently locked to the zero address on first
	// mint so total shares can never return to zero.
	MinimumLiquidity = 1000
	// BaseSwapFeeBps is the protocol-wide input-side trading fee.
	BaseSwapFeeBps = 10
	// MaxUserTokenFeeBps bounds the per-token custom fee.
	MaxUserTokenFeeBps = 90
	// LoanFeeBps is the flashloan repayment fee.
	LoanFeeBps = 10
	// FeeDenominator scales all basis-point fees.
	FeeDenominator = 10000
	// MinLoanAmount is the smallest flashloan per asset; smaller loans
	// would round the fee to zero.
	MinLoanAmount = 1000
)

// Config wires a pair to its collaborators.
type Config struct {
	Registry Registry
	Recorder Recorder
	Callees  CalleeResolver
	State    Snapshotter
	// Now returns the current time in unix seconds. Defaults to wall time.
	Now func() uint64
	// ProtocolMintFee enables mint-time protocol fee accrual (1/6 of
	// invariant-root growth, checkpointed via kLast).
	ProtocolMintFee bool
	// SingleAssetLoans restricts flashloans to one asset per call.
	SingleAssetLoans bool
}

// Pair is a two-asset constant-product pool. All state-mutating entry
// points are guarded by a single-holder lock; any nested call during an
// external callback fails with ErrReentrant.
type Pair struct {
	address common.Address
	cfg     Config

	token0 Asset
	token1 Asset
	shares *ledger.Ledger

	reserve0           *uint256.Int
	reserve1           *uint256.Int
	blockTimestampLast uint32
	price0Cumulative   *uint256.Int
	price1Cumulative   *uint256.Int
	kLast              *uint256.Int

	feeOwner    common.Address
	userFee0Bps uint16
	userFee1Bps uint16
	accrued0    *uint256.Int
	accrued1    *uint256.Int

	locked atomic.Bool
}

// New creates an uninitialized pair at the given address.
func New(address common.Address, cfg Config) *Pair {
	if cfg.Now == nil {
		cfg.Now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Pair{
		address:          address,
		cfg:              cfg,
		reserve0:         new(uint256.Int),
		reserve1:         new(uint256.Int),
		price0Cumulative: new(uint256.Int),
		price1Cumulative: new(uint256.Int),
		kLast:            new(uint256.Int),
		accrued0:         new(uint256.Int),
		accrued1:         new(uint256.Int),
	}
}

// Initialize sets the canonical asset order and the fee administrator.
// Only the registry may call it, exactly once.
func (p *Pair) Initialize(caller common.Address, token0, token1 Asset, feeOwner common.Address) error {
	if p.cfg.Registry == nil || caller != p.cfg.Registry.Address() {
		return fmt.Errorf("initialize by %s: %w", caller.Hex(), ErrForbidden)
	}
	if p.token0 != nil {
		return ErrAlreadyInitialized
	}
	p.token0 = token0
	p.token1 = token1
	p.feeOwner = feeOwner
	p.shares = ledger.New(p.address, "Cheapswap Liquidity", "CS-LP", 18)
	p.shares.SetTransferHook(func(from, to common.Address, amount *uint256.Int) {
		p.emit(model.EventTransfer, model.TransferEventData{
			From:   from.Hex(),
			To:     to.Hex(),
			Amount: amount.Dec(),
		})
	})
	return nil
}

// Mint issues liquidity shares against assets deposited since the last
// sync. The liquidity-constrained side determines issuance; any excess of
// the other asset is a donation to existing holders.
func (p *Pair) Mint(caller, to common.Address) (*uint256.Int, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.exit()

	rev := p.snapshot()
	liquidity, err := p.mintLocked(caller, to)
	if err != nil {
		p.revertTo(rev)
		return nil, err
	}
	return liquidity, nil
}

func (p *Pair) mintLocked(caller, to common.Address) (*uint256.Int, error) {
	reserve0 := new(uint256.Int).Set(p.reserve0)
	reserve1 := new(uint256.Int).Set(p.reserve1)
	balance0 := p.tradableBalance(p.token0, p.accrued0)
	balance1 := p.tradableBalance(p.token1, p.accrued1)
	amount0 := new(uint256.Int).Sub(balance0, reserve0)
	amount1 := new(uint256.Int).Sub(balance1, reserve1)

	feeOn := p.mintProtocolFee(reserve0, reserve1)

	total := p.shares.TotalSupply()
	liquidity := new(uint256.Int)
	if total.IsZero() {
		root := num.Sqrt(new(uint256.Int).Mul(amount0, amount1))
		if !root.GtUint64(MinimumLiquidity) {
			return nil, ErrInsufficientInitialLiquidity
		}
		liquidity.SubUint64(root, MinimumLiquidity)
		p.shares.Mint(common.Address{}, uint256.NewInt(MinimumLiquidity))
	} else {
		side0 := new(uint256.Int).Mul(amount0, total)
		side0.Div(side0, reserve0)
		side1 := new(uint256.Int).Mul(amount1, total)
		side1.Div(side1, reserve1)
		liquidity = num.Min(side0, side1)
	}
	if liquidity.IsZero() {
		return nil, ErrInsufficientLiquidityMinted
	}
	p.shares.Mint(to, liquidity)

	if err := p.update(balance0, balance1, reserve0, reserve1); err != nil {
		return nil, err
	}
	if feeOn {
		p.kLast.Mul(p.reserve0, p.reserve1)
	}
	p.emit(model.EventMint, model.MintEventData{
		Sender:  caller.Hex(),
		Amount0: amount0.Dec(),
		Amount1: amount1.Dec(),
	})
	return liquidity, nil
}

// Burn redeems the share balance held by the pair itself (send-then-call)
// for a proportional amount of both assets.
func (p *Pair) Burn(caller, to common.Address) (*uint256.Int, *uint256.Int, error) {
	if err := p.enter(); err != nil {
		return nil, nil, err
	}
	defer p.exit()

	rev := p.snapshot()
	amount0, amount1, err := p.burnLocked(caller, to)
	if err != nil {
		p.revertTo(rev)
		return nil, nil, err
	}
	return amount0, amount1, nil
}

func (p *Pair) burnLocked(caller, to common.Address) (*uint256.Int, *uint256.Int, error) {
	reserve0 := new(uint256.Int).Set(p.reserve0)
	reserve1 := new(uint256.Int).Set(p.reserve1)
	balance0 := p.tradableBalance(p.token0, p.accrued0)
	balance1 := p.tradableBalance(p.token1, p.accrued1)
	liquidity := p.shares.BalanceOf(p.address)

	feeOn := p.mintProtocolFee(reserve0, reserve1)

	// Pro-rata against balances, not reserves, so donations are
	// distributed too. Floor division favors remaining holders.
	total := p.shares.TotalSupply()
	amount0 := new(uint256.Int).Mul(liquidity, balance0)
	amount0.Div(amount0, total)
	amount1 := new(uint256.Int).Mul(liquidity, balance1)
	amount1.Div(amount1, total)
	if amount0.IsZero() || amount1.IsZero() {
		return nil, nil, ErrInsufficientLiquidityBurned
	}

	if err := p.shares.Burn(p.address, liquidity); err != nil {
		return nil, nil, fmt.Errorf("burn shares: %w", err)
	}
	if err := p.token0.Transfer(p.address, to, amount0); err != nil {
		return nil, nil, fmt.Errorf("transfer %s out: %w", p.token0.Address().Hex(), err)
	}
	if err := p.token1.Transfer(p.address, to, amount1); err != nil {
		return nil, nil, fmt.Errorf("transfer %s out: %w", p.token1.Address().Hex(), err)
	}

	balance0 = p.tradableBalance(p.token0, p.accrued0)
	balance1 = p.tradableBalance(p.token1, p.accrued1)
	if err := p.update(balance0, balance1, reserve0, reserve1); err != nil {
		return nil, nil, err
	}
	if feeOn {
		p.kLast.Mul(p.reserve0, p.reserve1)
	}
	p.emit(model.EventBurn, model.BurnEventData{
		Sender:  caller.Hex(),
		Amount0: amount0.Dec(),
		Amount1: amount1.Dec(),
		To:      to.Hex(),
	})
	return amount0, amount1, nil
}

// Swap transfers the requested outputs optimistically, hands control to the
// recipient's callee when data is non-empty, then verifies the fee-adjusted
// constant product did not decrease.
func (p *Pair) Swap(caller common.Address, amount0Out, amount1Out *uint256.Int, to common.Address, data []byte) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	rev := p.snapshot()
	if err := p.swapLocked(caller, amount0Out, amount1Out, to, data); err != nil {
		p.revertTo(rev)
		return err
	}
	return nil
}

func (p *Pair) swapLocked(caller common.Address, amount0Out, amount1Out *uint256.Int, to common.Address, data []byte) error {
	if amount0Out.IsZero() && amount1Out.IsZero() {
		return ErrInsufficientLiquidity
	}
	reserve0 := new(uint256.Int).Set(p.reserve0)
	reserve1 := new(uint256.Int).Set(p.reserve1)
	if !amount0Out.Lt(reserve0) || !amount1Out.Lt(reserve1) {
		return ErrInsufficientLiquidity
	}
	if to == p.token0.Address() || to == p.token1.Address() {
		return ErrInvalidRecipient
	}

	if err := p.payOut(to, amount0Out, amount1Out); err != nil {
		return err
	}
	if len(data) > 0 {
		callee, ok := p.resolveCallee(to)
		if !ok {
			return fmt.Errorf("swap callback to %s: %w", to.Hex(), ErrNoCallee)
		}
		if err := callee.CheapswapCall(caller, amount0Out, amount1Out, data); err != nil {
			return fmt.Errorf("swap callback: %w", err)
		}
	}

	balance0 := p.tradableBalance(p.token0, p.accrued0)
	balance1 := p.tradableBalance(p.token1, p.accrued1)
	amount0In := inputAmount(balance0, reserve0, amount0Out)
	amount1In := inputAmount(balance1, reserve1, amount1Out)
	if amount0In.IsZero() && amount1In.IsZero() {
		return ErrInsufficientInputAmount
	}

	adjusted0 := adjustedBalance(balance0, amount0In, BaseSwapFeeBps+uint64(p.userFee0Bps))
	adjusted1 := adjustedBalance(balance1, amount1In, BaseSwapFeeBps+uint64(p.userFee1Bps))
	kBefore := new(uint256.Int).Mul(reserve0, reserve1)
	kBefore.Mul(kBefore, uint256.NewInt(FeeDenominator*FeeDenominator))
	if new(uint256.Int).Mul(adjusted0, adjusted1).Lt(kBefore) {
		return ErrK
	}

	if err := p.update(balance0, balance1, reserve0, reserve1); err != nil {
		return err
	}
	p.emit(model.EventSwap, model.SwapEventData{
		Sender:     caller.Hex(),
		Amount0In:  amount0In.Dec(),
		Amount1In:  amount1In.Dec(),
		Amount0Out: amount0Out.Dec(),
		Amount1Out: amount1Out.Dec(),
		To:         to.Hex(),
	})
	return nil
}

// Flashloan lends reserves uncollateralized for the duration of the
// borrower callback. Each side must be repaid with a 0.1% fee; half of the
// fee accrues to the protocol, half stays as reserve growth.
func (p *Pair) Flashloan(caller common.Address, amount0Out, amount1Out *uint256.Int, to common.Address, data []byte) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	rev := p.snapshot()
	if err := p.flashloanLocked(caller, amount0Out, amount1Out, to, data); err != nil {
		p.revertTo(rev)
		return err
	}
	return nil
}

func (p *Pair) flashloanLocked(caller common.Address, amount0Out, amount1Out *uint256.Int, to common.Address, data []byte) error {
	if amount0Out.IsZero() && amount1Out.IsZero() {
		return ErrInsufficientLoanAmount
	}
	if p.cfg.SingleAssetLoans && !amount0Out.IsZero() && !amount1Out.IsZero() {
		return ErrInstantaneousInvalidAmount
	}
	reserve0 := new(uint256.Int).Set(p.reserve0)
	reserve1 := new(uint256.Int).Set(p.reserve1)
	if err := validLoanAmount(amount0Out, reserve0); err != nil {
		return err
	}
	if err := validLoanAmount(amount1Out, reserve1); err != nil {
		return err
	}

	if err := p.payOut(to, amount0Out, amount1Out); err != nil {
		return err
	}
	callee, ok := p.resolveCallee(to)
	if !ok {
		return fmt.Errorf("flashloan to %s: %w", to.Hex(), ErrNoCallee)
	}
	if err := callee.CheapswapCall(caller, amount0Out, amount1Out, data); err != nil {
		return fmt.Errorf("flashloan callback: %w", err)
	}

	fee0 := loanFee(amount0Out)
	fee1 := loanFee(amount1Out)
	if err := checkRepayment(p.tradableBalance(p.token0, p.accrued0), reserve0, fee0); err != nil {
		return err
	}
	if err := checkRepayment(p.tradableBalance(p.token1, p.accrued1), reserve1, fee1); err != nil {
		return err
	}

	newAccrued0 := new(uint256.Int).Add(p.accrued0, new(uint256.Int).Rsh(fee0, 1))
	newAccrued1 := new(uint256.Int).Add(p.accrued1, new(uint256.Int).Rsh(fee1, 1))
	balance0 := p.tradableBalance(p.token0, newAccrued0)
	balance1 := p.tradableBalance(p.token1, newAccrued1)
	if err := p.update(balance0, balance1, reserve0, reserve1); err != nil {
		return err
	}
	p.accrued0.Set(newAccrued0)
	p.accrued1.Set(newAccrued1)
	p.emit(model.EventFlashloan, model.FlashloanEventData{
		Sender:  caller.Hex(),
		Amount0: amount0Out.Dec(),
		Amount1: amount1Out.Dec(),
		Fee0:    fee0.Dec(),
		Fee1:    fee1.Dec(),
		To:      to.Hex(),
	})
	return nil
}

// Skim transfers any balance beyond tracked reserves and accrued protocol
// fees to the recipient.
func (p *Pair) Skim(caller, to common.Address) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	rev := p.snapshot()
	if err := p.skimLocked(to); err != nil {
		p.revertTo(rev)
		return err
	}
	return nil
}

func (p *Pair) skimLocked(to common.Address) error {
	excess0 := p.tradableBalance(p.token0, p.accrued0)
	excess1 := p.tradableBalance(p.token1, p.accrued1)
	excess0.Sub(excess0, p.reserve0)
	excess1.Sub(excess1, p.reserve1)
	if !excess0.IsZero() {
		if err := p.token0.Transfer(p.address, to, excess0); err != nil {
			return fmt.Errorf("skim %s: %w", p.token0.Address().Hex(), err)
		}
	}
	if !excess1.IsZero() {
		if err := p.token1.Transfer(p.address, to, excess1); err != nil {
			return fmt.Errorf("skim %s: %w", p.token1.Address().Hex(), err)
		}
	}
	return nil
}

// Sync force-reconciles tracked reserves to actual balances.
func (p *Pair) Sync(caller common.Address) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	return p.update(
		p.tradableBalance(p.token0, p.accrued0),
		p.tradableBalance(p.token1, p.accrued1),
		p.reserve0, p.reserve1,
	)
}

// update commits reserves, advances the price accumulators at most once per
// timestamp, and reports the new reserves.
func (p *Pair) update(balance0, balance1, reserve0, reserve1 *uint256.Int) error {
	if balance0.Gt(num.MaxReserve) || balance1.Gt(num.MaxReserve) {
		return ErrReserveOverflow
	}
	ts := uint32(p.cfg.Now())
	elapsed := ts - p.blockTimestampLast // overflow is desired
	if elapsed > 0 && !reserve0.IsZero() && !reserve1.IsZero() {
		e := uint256.NewInt(uint64(elapsed))
		p.price0Cumulative.Add(p.price0Cumulative,
			new(uint256.Int).Mul(num.UQDiv(num.EncodeUQ112(reserve1), reserve0), e))
		p.price1Cumulative.Add(p.price1Cumulative,
			new(uint256.Int).Mul(num.UQDiv(num.EncodeUQ112(reserve0), reserve1), e))
	}
	p.reserve0.Set(balance0)
	p.reserve1.Set(balance1)
	p.blockTimestampLast = ts
	p.emit(model.EventSync, model.SyncEventData{
		Reserve0: p.reserve0.Dec(),
		Reserve1: p.reserve1.Dec(),
	})
	return nil
}

func (p *Pair) payOut(to common.Address, amount0Out, amount1Out *uint256.Int) error {
	if !amount0Out.IsZero() {
		if err := p.token0.Transfer(p.address, to, amount0Out); err != nil {
			return fmt.Errorf("transfer %s out: %w", p.token0.Address().Hex(), err)
		}
	}
	if !amount1Out.IsZero() {
		if err := p.token1.Transfer(p.address, to, amount1Out); err != nil {
			return fmt.Errorf("transfer %s out: %w", p.token1.Address().Hex(), err)
		}
	}
	return nil
}

// tradableBalance is the live asset balance net of accrued protocol fees,
// which are never tradable liquidity.
func (p *Pair) tradableBalance(t Asset, accrued *uint256.Int) *uint256.Int {
	bal := t.BalanceOf(p.address)
	bal.Sub(bal, accrued)
	return bal
}

func (p *Pair) resolveCallee(to common.Address) (Callee, bool) {
	if p.cfg.Callees == nil {
		return nil, false
	}
	return p.cfg.Callees.Callee(to)
}

func (p *Pair) enter() error {
	if p.token0 == nil {
		return fmt.Errorf("pair %s not initialized: %w", p.address.Hex(), ErrForbidden)
	}
	if !p.locked.CompareAndSwap(false, true) {
		return ErrReentrant
	}
	return nil
}

func (p *Pair) exit() {
	p.locked.Store(false)
}

func (p *Pair) snapshot() int {
	if p.cfg.State == nil {
		return -1
	}
	return p.cfg.State.Snapshot()
}

func (p *Pair) revertTo(id int) {
	if p.cfg.State != nil && id >= 0 {
		p.cfg.State.RevertToSnapshot(id)
	}
}

func (p *Pair) emit(name string, payload interface{}) {
	if p.cfg.Recorder != nil {
		p.cfg.Recorder.Record(p.address, name, payload)
	}
}

func inputAmount(balance, reserve, amountOut *uint256.Int) *uint256.Int {
	floor := new(uint256.Int).Sub(reserve, amountOut)
	if balance.Gt(floor) {
		return floor.Sub(balance, floor)
	}
	return new(uint256.Int)
}

func adjustedBalance(balance, amountIn *uint256.Int, feeBps uint64) *uint256.Int {
	adj := new(uint256.Int).Mul(balance, uint256.NewInt(FeeDenominator))
	return adj.Sub(adj, new(uint256.Int).Mul(amountIn, uint256.NewInt(feeBps)))
}

func loanFee(amount *uint256.Int) *uint256.Int {
	fee := new(uint256.Int).Mul(amount, uint256.NewInt(LoanFeeBps))
	return fee.Div(fee, uint256.NewInt(FeeDenominator))
}

func validLoanAmount(amount, reserve *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if amount.LtUint64(MinLoanAmount) {
		return ErrInsufficientOutputAmount
	}
	if amount.Gt(reserve) {
		return ErrInsufficientLiquidity
	}
	return nil
}

func checkRepayment(balance, reserve, fee *uint256.Int) error {
	owed := new(uint256.Int).Add(reserve, fee)
	if balance.Lt(owed) {
		return ErrInsufficientLoan
	}
	return nil
}
