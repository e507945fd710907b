/*
main.go - Application entry point

PURPOSE:
  Command-line entry for the deal pricing engine. The root command only
  loads configuration and the logger; subcommands do the work.

COMMANDS:
  serve   Run the HTTP API (see serve.go)
  quote   Price a room document from files, no server or database (see quote.go)

CONFIGURATION:
  --config points at a YAML file. Without it ./config.yaml and
  ./config/config.yaml are tried, then defaults apply. Environment
  variables override both: PORT, HOST, DB_PATH, LOG_LEVEL, LOG_FORMAT,
  DEFAULT_COMMISSION_MULTIPLIER, or any key under the DEAL_ENGINE_ prefix.

EXAMPLES:
  # Run with file database
  ./server serve --db ./data/deals.db

  # Run with in-memory database
  ./server serve --db ":memory:"

  # Quote the first candidate deal of a room document
  ./server quote room.json --hotel hotel.json --units 2

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/warp/deal-engine/commission"
	"github.com/warp/deal-engine/config"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/generic"
	"github.com/warp/deal-engine/obs"
	"github.com/warp/deal-engine/pricing"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "deal-engine",
	Short: "Hotel deal pricing and nightly allocation engine",
	Long: `Prices hotel offers and monthly deals: resolves the commission rate,
computes whole-stay totals and splits them into nightly rows that add up
to the cent.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// persistentPreRun loads configuration and the logger before every command.
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger = obs.NewLogger(cfg.Logging)
	return nil
}

// newEngine builds the pricing engine from the pricing settings.
func newEngine(pc config.PricingConfig) *pricing.Engine {
	resolver := commission.NewResolver(commission.Config{DefaultMultiplier: pc.DefaultCommissionMultiplier})
	if notice := resolver.DefaultNotice(); notice != "" {
		logger.Warn().
			Float64("multiplier", pc.DefaultCommissionMultiplier).
			Str("default_rate", resolver.Default().String()).
			Str("source", string(resolver.DefaultSource())).
			Msg("default commission: " + notice)
	}

	normalizer := deals.NewNormalizer()
	if !pc.LunarLabels {
		normalizer.Lunar = generic.NoLunar{}
	}

	return pricing.NewEngine(resolver, normalizer).WithPreviewConcurrency(pc.PreviewConcurrency)
}
