// Package root contains the root command for the application
package root

import (
	"github.com/spf13/cobra"

	"cardrec/internal/catalog"
	"cardrec/internal/config"
	"cardrec/internal/engine"
	"cardrec/internal/ledger"
	"cardrec/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	CardsFile     string
	MerchantsFile string
	LogLevel      string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cfg is the loaded application configuration, available after
	// PersistentPreRun.
	Cfg *config.Config

	// SharedFlags holds flag values common to all commands
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "cardrec",
		Short: "Recommend the best credit card for a purchase.",
		Long: `cardrec ranks a set of candidate credit cards for a single purchase,
taking each card's per-category reward schedule, monthly caps and partner
restrictions into account.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to cardrec!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.WithError(err).Fatal("Failed to load configuration")
			}
			Cfg = cfg

			if SharedFlags.LogLevel != "" {
				Cfg.Log.Level = SharedFlags.LogLevel
			}
			if SharedFlags.CardsFile != "" {
				Cfg.Catalog.CardsFile = SharedFlags.CardsFile
			}
			if SharedFlags.MerchantsFile != "" {
				Cfg.Catalog.MerchantsFile = SharedFlags.MerchantsFile
			}

			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(Cfg))
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.CardsFile, "cards", "", "Card catalog YAML file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.MerchantsFile, "merchants", "", "Merchant-category table YAML file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// LoadCatalog loads and validates the configured catalog files.
func LoadCatalog() (*catalog.Catalog, error) {
	store := catalog.NewStore(Cfg.Catalog.CardsFile, Cfg.Catalog.MerchantsFile, Log)
	return store.Load()
}

// NewRanker builds the rule-based recommender over the loaded catalog.
func NewRanker(cat *catalog.Catalog) *engine.Ranker {
	resolver := engine.NewResolver(cat.Mappings(), Log)
	evaluator := engine.NewEvaluator(Log)
	return engine.NewRanker(cat.CardMap(), resolver, evaluator, Log)
}

// NewLedgerStore builds the configured ledger backend.
func NewLedgerStore() ledger.Store {
	if Cfg.Ledger.Backend == "redis" {
		Log.WithField("addr", Cfg.Ledger.RedisAddr).Debug("Using redis ledger store")
		return ledger.NewRedisStore(Cfg.Ledger.RedisAddr)
	}
	return ledger.NewMemoryStore()
}
