package commands

import (
	"context"
	"fmt"
	"os"
	"time"
	"vse-client/internal/components/telemetry"
	"vse-client/internal/scrapers/vse"
	"vse-client/pkg/configutil"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl           string  `json:"base_url"`
	SecureBaseUrl     string  `json:"secure_base_url"`
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	Game              string  `json:"game"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	Debug             bool    `json:"debug"`
}

func (c Config) clientOptions() vse.ClientOptions {
	return vse.ClientOptions{
		BaseUrl:           c.BaseUrl,
		SecureBaseUrl:     c.SecureBaseUrl,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		CloudflareBypass:  c.CloudflareBypass,
	}
}

var (
	configName  *string
	sessionPath *string
	gameFlag    *string
	debugFlag   *bool
	dumpDir     *string
)

var (
	cfg    Config
	client *vse.Client
)

func init() {
	flags := rootCmd.PersistentFlags()
	configName = flags.String("config", "vse.json5", "The config file, searched for from the current directory upwards.")
	sessionPath = flags.String("session", ".vse-session.json", "Where the login session is cached between commands.")
	gameFlag = flags.String("game", "", "The game to act on, overrides the configured game.")
	debugFlag = flags.Bool("debug", false, "Enables debug logging.")
	dumpDir = flags.String("dump", "", "A directory to write every http exchange to, it is cleared first.")
}

var rootCmd = &cobra.Command{
	Use:   "vse-cli",
	Short: "vse-cli is a CLI for the virtual stock exchange game.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = configutil.ReadRecursively[Config](*configName)
		if err != nil {
			return fmt.Errorf("read config %s: %w", *configName, err)
		}
		if *gameFlag != "" {
			cfg.Game = *gameFlag
		}
		telemetry.InitSlog(*debugFlag || cfg.Debug)

		opts := cfg.clientOptions()
		if *dumpDir != "" {
			output, err := telemetry.NewFilesystemOutput(*dumpDir)
			if err != nil {
				return fmt.Errorf("create dump directory: %w", err)
			}
			opts.Dump = output
		}

		client, err = vse.NewClient(opts, telemetry.SlogAPI{})
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func requireGame() string {
	if cfg.Game == "" {
		fmt.Fprintln(os.Stderr, "You should specify a game either in the config or with --game.")
		os.Exit(1)
	}
	return cfg.Game
}
