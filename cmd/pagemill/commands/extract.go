package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagemill/extractor/pkg/extractor"
)

var (
	extractNoOCR     bool
	extractLanguages string
	extractOutput    string
	extractJSON      bool
	extractTimeout   time.Duration
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract text from a PDF",
	Long: `Extract text from a PDF. Pages with enough embedded text are read directly;
the rest are rasterized and run through OCR unless --no-ocr is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractNoOCR, "no-ocr", false, "skip OCR, use embedded text only")
	extractCmd.Flags().StringVarP(&extractLanguages, "languages", "l", "", "OCR language hint, e.g. eng+jpn")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "write text to file instead of stdout")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "emit the full report as JSON")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 10*time.Minute, "overall extraction timeout")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := extractor.NewClientWithConfig(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := client.Extract(ctx, data, extractor.Options{
		UseRecognition: !extractNoOCR,
		LanguageHint:   extractLanguages,
	})
	if err != nil {
		return err
	}

	var out []byte
	if extractJSON {
		out, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		out = []byte(report.Text)
	}

	if extractOutput != "" {
		if err := os.WriteFile(extractOutput, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d pages, %d recognized, %d failed)\n",
			extractOutput, report.Stats.TotalPages, report.Stats.RecognizedPages, report.Stats.FailedPages)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
