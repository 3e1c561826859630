package commands

import (
	"os"
	"vse-client/internal/components/serviceutil"
	"vse-client/internal/scrapers/vse"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(portfolioCmd)
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio [--game <game>]",
	Short: "Shows the account totals of a game.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		game := requireGame()
		portfolio, err := withSession(cmd.Context(), defaultSessionSource, func(cred vse.Credential) (vse.Portfolio, error) {
			return client.Portfolio(cmd.Context(), cred, game)
		})
		if err != nil {
			serviceutil.Fatal("failed to get portfolio", err)
		}
		renderPortfolio(os.Stdout, portfolio)
	},
}
