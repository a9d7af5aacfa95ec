package stats

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"cheapswap/internal/model"
)

// Accumulator holds aggregate values for one pair window.
type Accumulator struct {
	PairAddress string
	WindowStart uint64
	WindowEnd   uint64
	SwapCount   uint64
	Volume0     *uint256.Int
	Volume1     *uint256.Int
	Fee0        *uint256.Int
	Fee1        *uint256.Int
	LoanCount   uint64
	LoanFee0    *uint256.Int
	LoanFee1    *uint256.Int
}

func NewAccumulator(pairAddress string, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PairAddress: pairAddress,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Volume0:     new(uint256.Int),
		Volume1:     new(uint256.Int),
		Fee0:        new(uint256.Int),
		Fee1:        new(uint256.Int),
		LoanFee0:    new(uint256.Int),
		LoanFee1:    new(uint256.Int),
	}
}

// AddEvent folds one event record into the window. Events other than swaps
// and flashloans are ignored.
func (a *Accumulator) AddEvent(record model.EventRecord, feeBps uint16) error {
	switch record.EventName {
	case model.EventSwap:
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		return a.applySwap(swap, feeBps)
	case model.EventFlashloan:
		var loan model.FlashloanEventData
		if err := json.Unmarshal(record.Decoded, &loan); err != nil {
			return fmt.Errorf("decode flashloan: %w", err)
		}
		return a.applyFlashloan(loan)
	default:
		return nil
	}
}

func (a *Accumulator) applySwap(swap model.SwapEventData, feeBps uint16) error {
	amount0In, err := parseAmount(swap.Amount0In)
	if err != nil {
		return err
	}
	amount1In, err := parseAmount(swap.Amount1In)
	if err != nil {
		return err
	}

	a.Volume0.Add(a.Volume0, amount0In)
	a.Volume1.Add(a.Volume1, amount1In)
	a.Fee0.Add(a.Fee0, feeFromAmount(amount0In, feeBps))
	a.Fee1.Add(a.Fee1, feeFromAmount(amount1In, feeBps))
	a.SwapCount++
	return nil
}

func (a *Accumulator) applyFlashloan(loan model.FlashloanEventData) error {
	fee0, err := parseAmount(loan.Fee0)
	if err != nil {
		return err
	}
	fee1, err := parseAmount(loan.Fee1)
	if err != nil {
		return err
	}

	a.LoanFee0.Add(a.LoanFee0, fee0)
	a.LoanFee1.Add(a.LoanFee1, fee1)
	a.LoanCount++
	return nil
}

// Metrics converts the accumulator into its storage representation.
func (a *Accumulator) Metrics(windowSizeSecs int64) model.PairWindowMetrics {
	return model.PairWindowMetrics{
		PairAddress:    a.PairAddress,
		WindowSizeSecs: windowSizeSecs,
		WindowStart:    a.WindowStart,
		WindowEnd:      a.WindowEnd,
		SwapCount:      a.SwapCount,
		Volume0:        a.Volume0.Dec(),
		Volume1:        a.Volume1.Dec(),
		Fee0:           a.Fee0.Dec(),
		Fee1:           a.Fee1.Dec(),
		LoanCount:      a.LoanCount,
		LoanFee0:       a.LoanFee0.Dec(),
		LoanFee1:       a.LoanFee1.Dec(),
	}
}

func parseAmount(value string) (*uint256.Int, error) {
	if value == "" {
		return new(uint256.Int), nil
	}
	parsed, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return parsed, nil
}

func feeFromAmount(amountIn *uint256.Int, feeBps uint16) *uint256.Int {
	if amountIn.IsZero() || feeBps == 0 {
		return new(uint256.Int)
	}
	fee := new(uint256.Int).Mul(amountIn, uint256.NewInt(uint64(feeBps)))
	return fee.Div(fee, uint256.NewInt(10_000))
}
