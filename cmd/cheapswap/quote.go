package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"cheapswap/internal/quote"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	amountIn, _ := cmd.Flags().GetString("amount-in")
	amountOut, _ := cmd.Flags().GetString("amount-out")
	reserveInStr, _ := cmd.Flags().GetString("reserve-in")
	reserveOutStr, _ := cmd.Flags().GetString("reserve-out")
	feeBps, _ := cmd.Flags().GetUint16("fee-bps")

	if (amountIn == "") == (amountOut == "") {
		return fmt.Errorf("exactly one of --amount-in or --amount-out is required")
	}

	reserveIn, err := uint256.FromDecimal(reserveInStr)
	if err != nil {
		return fmt.Errorf("invalid reserve-in: %w", err)
	}
	reserveOut, err := uint256.FromDecimal(reserveOutStr)
	if err != nil {
		return fmt.Errorf("invalid reserve-out: %w", err)
	}

	if amountIn != "" {
		in, err := uint256.FromDecimal(amountIn)
		if err != nil {
			return fmt.Errorf("invalid amount-in: %w", err)
		}
		out, err := quote.AmountOut(in, reserveIn, reserveOut, feeBps)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Dec())
		return nil
	}

	out, err := uint256.FromDecimal(amountOut)
	if err != nil {
		return fmt.Errorf("invalid amount-out: %w", err)
	}
	in, err := quote.AmountIn(out, reserveIn, reserveOut, feeBps)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), in.Dec())
	return nil
}
