package model

// PairWindowMetrics stores aggregated swap metrics for a pair window.
type PairWindowMetrics struct {
	PairAddress    string
	WindowSizeSecs int64
	WindowStart    uint64
	WindowEnd      uint64
	SwapCount      uint64
	Volume0        string
	Volume1        string
	Fee0           string
	Fee1           string
	LoanCount      uint64
	LoanFee0       string
	LoanFee1       string
}
