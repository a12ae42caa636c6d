package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagemill/extractor/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pagemill",
	Short: "Hybrid PDF text extraction and splitting",
	Long: `Pagemill extracts text from PDFs page by page, using embedded text where a
page has enough of it and falling back to OCR where it does not, and splits
PDFs into standalone chunks of a fixed page count.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration from the --config flag, environment
// overrides, and defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Observability.LogLevel = "debug"
		cfg.Observability.LogFormat = "console"
	}
	return cfg, nil
}
