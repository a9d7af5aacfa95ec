package pair

import "errors"

// Failure tags surfaced by the pair engine. Every entry point is
// all-or-nothing: any of these means no state change was committed. Callers
// branch with errors.Is.
var (
	// ErrK reports a constant-product invariant decrease net of fees.
	ErrK = errors.New("K")

	ErrAlreadyInitialized           = errors.New("already initialized")
	ErrForbidden                    = errors.New("caller not authorized")
	ErrReentrant                    = errors.New("reentrant call")
	ErrReserveOverflow              = errors.New("balance exceeds reserve width")
	ErrInvalidRecipient             = errors.New("recipient is a pair asset")
	ErrInsufficientLiquidity        = errors.New("insufficient liquidity")
	ErrInsufficientInitialLiquidity = errors.New("insufficient initial liquidity")
	ErrInsufficientLiquidityMinted  = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidityBurned  = errors.New("insufficient liquidity burned")
	ErrInsufficientInputAmount      = errors.New("insufficient input amount")

	// ErrInsufficientOutputAmount (IOA) rejects loan amounts below the
	// per-asset minimum.
	ErrInsufficientOutputAmount = errors.New("IOA: loan below minimum amount")
	// ErrInsufficientLoan (IL) reports a repayment short of amount plus fee.
	ErrInsufficientLoan = errors.New("IL: loan repayment short")
	// ErrInstantaneousInvalidAmount (IIA) rejects dual-asset loans on pairs
	// configured for single-asset loans.
	ErrInstantaneousInvalidAmount = errors.New("IIA: dual-asset loan not allowed")
	ErrInsufficientLoanAmount     = errors.New("zero loan amount")

	ErrInvalidFeeConfiguration = errors.New("invalid fee configuration")
	ErrInvalidFeeTaker         = errors.New("caller is not the fee taker")
	ErrNoCallee                = errors.New("no callee registered at recipient")
)
