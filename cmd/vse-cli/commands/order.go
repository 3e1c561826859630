package commands

import (
	"fmt"
	"os"
	"strings"
	"vse-client/internal/components/serviceutil"
	"vse-client/internal/scrapers/vse"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(orderCmd)
}

// parseOrder reads the `<type> <security-id> <shares>` arguments of the order command.
func parseOrder(args []string) (vse.Order, error) {
	if len(args) != 3 {
		return vse.Order{}, fmt.Errorf("expected 3 arguments, got %d", len(args))
	}
	orderType, ok := vse.ParseOrderType(args[0])
	if !ok {
		return vse.Order{}, fmt.Errorf("unknown order type %q, expected one of sell, buy, short, cover", args[0])
	}
	id := strings.TrimSpace(args[1])
	if id == "" {
		return vse.Order{}, fmt.Errorf("empty security id")
	}
	shares, err := decimal.NewFromString(args[2])
	if err != nil {
		return vse.Order{}, fmt.Errorf("parse shares %q: %w", args[2], err)
	}
	if !shares.IsPositive() {
		return vse.Order{}, fmt.Errorf("shares must be positive, got %s", shares)
	}
	return vse.Order{ID: id, Shares: shares, Type: orderType}, nil
}

var orderCmd = &cobra.Command{
	Use:   "order <sell|buy|short|cover> <security-id> <shares> [--game <game>]",
	Short: "Submits an order, the security id is the one given by search, not the ticker.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		order, err := parseOrder(args)
		if err != nil {
			serviceutil.Fatal("invalid order", err)
		}
		game := requireGame()
		result, err := withSession(cmd.Context(), defaultSessionSource, func(cred vse.Credential) (vse.OrderResult, error) {
			return client.SubmitOrder(cmd.Context(), cred, game, order)
		})
		if err != nil {
			serviceutil.Fatal("failed to submit order", err)
		}
		renderOrder(os.Stdout, order, result)
		if !result.Succeeded() {
			os.Exit(1)
		}
	},
}
