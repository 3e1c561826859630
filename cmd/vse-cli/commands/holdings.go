package commands

import (
	"os"
	"vse-client/internal/components/serviceutil"
	"vse-client/internal/scrapers/vse"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(holdingsCmd)
}

var holdingsCmd = &cobra.Command{
	Use:   "holdings [--game <game>]",
	Short: "Lists the positions held in a game.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		game := requireGame()
		holdings, err := withSession(cmd.Context(), defaultSessionSource, func(cred vse.Credential) (map[string]vse.Stock, error) {
			return client.Holdings(cmd.Context(), cred, game)
		})
		if err != nil {
			serviceutil.Fatal("failed to get holdings", err)
		}
		renderHoldings(os.Stdout, holdings)
	},
}
