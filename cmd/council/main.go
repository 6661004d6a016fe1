package main

import (
	"fmt"
	"os"

	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/config"
	"github.com/matst80/council-finder/pkg/logging"
	"github.com/matst80/council-finder/pkg/source"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	dataDir     string
	catalogFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "council",
	Short: "Browse local council members by municipality and prefecture",
	Long: `council reads the per-municipality member files and lets you search,
filter and sort them from the terminal, print the municipality overview,
write the statistics report and validate the data files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

type app struct {
	cfg      config.Config
	catalog  *catalog.Catalog
	source   *source.DiskSource
	loader   *store.Loader
	collator sorting.Collator
}

// newApp resolves the config with the command line overrides applied.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if catalogFile != "" {
		cfg.CatalogFile = catalogFile
	}
	c, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	collator, err := cfg.Collator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	src := source.NewDiskSource(cfg.DataDir)
	return &app{
		cfg:     cfg,
		catalog: c,
		source:  src,
		loader: store.NewLoader(c, src, store.LoaderOptions{
			Policy:      policy,
			Concurrency: cfg.LoadConcurrency,
			Logger:      logger,
		}),
		collator: collator,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "Config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "Municipality catalog file (overrides config)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(announceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
