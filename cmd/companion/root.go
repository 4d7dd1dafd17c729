package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/app"
	"github.com/cooking-companion/server/internal/config"
	"github.com/cooking-companion/server/internal/logging"
)

// cli carries what the persistent pre-run loads for every subcommand.
type cli struct {
	configPath string
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "companion",
		Short:         "Greek cooking companion: recipes, taste profile, shelf and appliances",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file (default $COMPANION_CONFIG)")
	flags.StringVar(&c.dataDir, "data-dir", "", "data directory (overrides config and DATA_DIR)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(c),
		newReindexCmd(c),
		newValidateCmd(c),
	)
	return root
}

func (c *cli) load() error {
	// .env is optional
	_ = godotenv.Load()

	path := c.configPath
	if path == "" {
		path = os.Getenv("COMPANION_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}
