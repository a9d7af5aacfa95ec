package model

// PairInfo is a pair metadata snapshot for storage.
type PairInfo struct {
	Address     string `json:"address"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	FeeOwner    string `json:"fee_owner"`
	UserFee0Bps uint16 `json:"user_fee0_bps"`
	UserFee1Bps uint16 `json:"user_fee1_bps"`
	Reserve0    string `json:"reserve0"`
	Reserve1    string `json:"reserve1"`
	TotalShares string `json:"total_shares"`
}
