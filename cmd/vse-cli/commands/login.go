package commands

import (
	"fmt"
	"vse-client/internal/components/serviceutil"
	"vse-client/internal/scrapers/vse"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs in with the configured account and caches the session.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, result, err := login(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}
		fmt.Println(result)
		if result != vse.AUTH_AUTHENTICATED {
			serviceutil.Fatal("login was not accepted", fmt.Errorf("%s for %s", result, cfg.Username))
		}
	},
}
