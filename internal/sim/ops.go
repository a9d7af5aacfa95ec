package sim

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cheapswap/internal/ledger"
	"cheapswap/internal/pair"
)

// Op is one line of a scenario file. The Op field selects the operation;
// the remaining fields are read as that operation requires.
type Op struct {
	Op string `json:"op"`

	// create-token
	Token    string `json:"token,omitempty"`
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals uint8  `json:"decimals,omitempty"`

	// create-pair / create-repayer
	TokenA   string `json:"token_a,omitempty"`
	TokenB   string `json:"token_b,omitempty"`
	FeeOwner string `json:"fee_owner,omitempty"`
	Repayer  string `json:"repayer,omitempty"`

	// balance movements and pool calls
	Pair       string `json:"pair,omitempty"`
	Caller     string `json:"caller,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Amount     string `json:"amount,omitempty"`
	Amount0Out string `json:"amount0_out,omitempty"`
	Amount1Out string `json:"amount1_out,omitempty"`
	Data       string `json:"data,omitempty"`

	// set-fees
	Fee0Bps uint16 `json:"fee0_bps,omitempty"`
	Fee1Bps uint16 `json:"fee1_bps,omitempty"`
}

// Supported op names.
const (
	OpCreateToken   = "create-token"
	OpMintToken     = "mint-token"
	OpTransfer      = "transfer"
	OpCreatePair    = "create-pair"
	OpCreateRepayer = "create-repayer"
	OpMint          = "mint"
	OpBurn          = "burn"
	OpSwap          = "swap"
	OpFlashloan     = "flashloan"
	OpSkim          = "skim"
	OpSync          = "sync"
	OpSetFees       = "set-fees"
	OpClaimFees     = "claim-fees"
)

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, value)
	}
	return common.HexToAddress(value), nil
}

func parseAmount(field, value string) (*uint256.Int, error) {
	if value == "" {
		return new(uint256.Int), nil
	}
	amount, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid amount %q: %w", field, value, err)
	}
	return amount, nil
}

func parseData(value string) ([]byte, error) {
	trimmed := strings.TrimPrefix(value, "0x")
	if trimmed == "" {
		return nil, nil
	}
	data, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("data: invalid hex %q: %w", value, err)
	}
	return data, nil
}

// Apply executes one operation against the world.
func (w *World) Apply(op Op) error {
	switch op.Op {
	case OpCreateToken:
		address, err := parseAddress("token", op.Token)
		if err != nil {
			return err
		}
		_, err = w.CreateToken(address, op.Name, op.Symbol, op.Decimals)
		return err

	case OpMintToken:
		token, to, err := w.tokenAndAddress(op.Token, op.To)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		token.Mint(to, amount)
		return nil

	case OpTransfer:
		token, to, err := w.tokenAndAddress(op.Token, op.To)
		if err != nil {
			return err
		}
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		return token.Transfer(from, to, amount)

	case OpCreatePair:
		tokenA, err := parseAddress("token_a", op.TokenA)
		if err != nil {
			return err
		}
		tokenB, err := parseAddress("token_b", op.TokenB)
		if err != nil {
			return err
		}
		feeOwner, err := parseAddress("fee_owner", op.FeeOwner)
		if err != nil {
			return err
		}
		_, err = w.CreatePair(tokenA, tokenB, feeOwner)
		return err

	case OpCreateRepayer:
		repayer, err := parseAddress("repayer", op.Repayer)
		if err != nil {
			return err
		}
		p, err := w.pairByHex(op.Pair)
		if err != nil {
			return err
		}
		addr0, addr1 := p.Tokens()
		token0, _ := w.Token(addr0)
		token1, _ := w.Token(addr1)
		w.RegisterCallee(repayer, NewRepayer(repayer, p.Address(), token0, token1))
		return nil

	case OpMint:
		p, caller, to, err := w.pairCall(op)
		if err != nil {
			return err
		}
		_, err = p.Mint(caller, to)
		return err

	case OpBurn:
		p, caller, to, err := w.pairCall(op)
		if err != nil {
			return err
		}
		_, _, err = p.Burn(caller, to)
		return err

	case OpSwap, OpFlashloan:
		p, caller, to, err := w.pairCall(op)
		if err != nil {
			return err
		}
		amount0Out, err := parseAmount("amount0_out", op.Amount0Out)
		if err != nil {
			return err
		}
		amount1Out, err := parseAmount("amount1_out", op.Amount1Out)
		if err != nil {
			return err
		}
		data, err := parseData(op.Data)
		if err != nil {
			return err
		}
		if op.Op == OpFlashloan {
			return p.Flashloan(caller, amount0Out, amount1Out, to, data)
		}
		return p.Swap(caller, amount0Out, amount1Out, to, data)

	case OpSkim:
		p, caller, to, err := w.pairCall(op)
		if err != nil {
			return err
		}
		return p.Skim(caller, to)

	case OpSync:
		p, err := w.pairByHex(op.Pair)
		if err != nil {
			return err
		}
		caller, err := parseAddress("caller", op.Caller)
		if err != nil {
			return err
		}
		return p.Sync(caller)

	case OpSetFees:
		p, err := w.pairByHex(op.Pair)
		if err != nil {
			return err
		}
		caller, err := parseAddress("caller", op.Caller)
		if err != nil {
			return err
		}
		return p.SetUserTokenFees(caller, op.Fee0Bps, op.Fee1Bps)

	case OpClaimFees:
		p, caller, to, err := w.pairCall(op)
		if err != nil {
			return err
		}
		_, _, err = p.ClaimProtocolFees(caller, to)
		return err

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func (w *World) tokenAndAddress(tokenHex, toHex string) (*ledger.Ledger, common.Address, error) {
	address, err := parseAddress("token", tokenHex)
	if err != nil {
		return nil, common.Address{}, err
	}
	token, ok := w.Token(address)
	if !ok {
		return nil, common.Address{}, fmt.Errorf("unknown token %s", address.Hex())
	}
	to, err := parseAddress("to", toHex)
	if err != nil {
		return nil, common.Address{}, err
	}
	return token, to, nil
}

func (w *World) pairByHex(pairHex string) (*pair.Pair, error) {
	address, err := parseAddress("pair", pairHex)
	if err != nil {
		return nil, err
	}
	p, ok := w.Pair(address)
	if !ok {
		return nil, fmt.Errorf("unknown pair %s", address.Hex())
	}
	return p, nil
}

func (w *World) pairCall(op Op) (*pair.Pair, common.Address, common.Address, error) {
	p, err := w.pairByHex(op.Pair)
	if err != nil {
		return nil, common.Address{}, common.Address{}, err
	}
	caller, err := parseAddress("caller", op.Caller)
	if err != nil {
		return nil, common.Address{}, common.Address{}, err
	}
	to, err := parseAddress("to", op.To)
	if err != nil {
		return nil, common.Address{}, common.Address{}, err
	}
	return p, caller, to, nil
}
