package commands

import (
	"errors"
	"log/slog"
	"os"
	"vse-client/internal/components/serviceutil"
	"vse-client/internal/scrapers/vse"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <ticker> [--game <game>]",
	Short: "Looks up the full precision price and the security id of a ticker.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		game := requireGame()

		ticker := args[0]
		result, err := withSession(cmd.Context(), defaultSessionSource, func(cred vse.Credential) (vse.SearchResult, error) {
			return client.Search(cmd.Context(), cred, game, ticker)
		})
		var searchErr *vse.SearchError
		if errors.As(err, &searchErr) {
			slog.Debug("search response", "status", searchErr.Status, "body", searchErr.Body)
		}
		if err != nil {
			serviceutil.Fatal("failed to search", err)
		}
		renderSearch(os.Stdout, ticker, result)
	},
}
