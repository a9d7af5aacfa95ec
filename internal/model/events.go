package model

// Event names as they appear in event records. Field order inside the
// payload structs matches the indexer contract and must not change.
const (
	EventTransfer    = "Transfer"
	EventMint        = "Mint"
	EventBurn        = "Burn"
	EventSwap        = "Swap"
	EventSync        = "Sync"
	EventFlashloan   = "Flashloan"
	EventPairCreated = "PairCreated"
)

// TransferEventData is a share-ledger movement. Mints use the zero address
// as sender, burns use it as recipient.
type TransferEventData struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// MintEventData is the liquidity deposit event payload.
type MintEventData struct {
	Sender  string `json:"sender"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// BurnEventData is the liquidity withdrawal event payload.
type BurnEventData struct {
	Sender  string `json:"sender"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
	To      string `json:"to"`
}

// SwapEventData is the trade event payload.
type SwapEventData struct {
	Sender     string `json:"sender"`
	Amount0In  string `json:"amount0_in"`
	Amount1In  string `json:"amount1_in"`
	Amount0Out string `json:"amount0_out"`
	Amount1Out string `json:"amount1_out"`
	To         string `json:"to"`
}

// SyncEventData reports reserves after every reserve update.
type SyncEventData struct {
	Reserve0 string `json:"reserve0"`
	Reserve1 string `json:"reserve1"`
}

// FlashloanEventData is the uncollateralized loan event payload.
type FlashloanEventData struct {
	Sender  string `json:"sender"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
	Fee0    string `json:"fee0"`
	Fee1    string `json:"fee1"`
	To      string `json:"to"`
}

// PairCreatedEventData is emitted by the registry on pair creation.
type PairCreatedEventData struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
	Pair   string `json:"pair"`
	Index  uint64 `json:"index"`
}
