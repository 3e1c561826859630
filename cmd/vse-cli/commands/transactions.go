package commands

import (
	"os"
	"vse-client/internal/components/serviceutil"
	"vse-client/internal/scrapers/vse"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(transactionsCmd)
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions [--game <game>]",
	Short: "Lists the transaction history of a game, most recent first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		game := requireGame()
		transactions, err := withSession(cmd.Context(), defaultSessionSource, func(cred vse.Credential) ([]vse.Transaction, error) {
			return client.Transactions(cmd.Context(), cred, game)
		})
		if err != nil {
			serviceutil.Fatal("failed to get transactions", err)
		}
		renderTransactions(os.Stdout, transactions)
	},
}
