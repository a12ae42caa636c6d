package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagemill/extractor/pkg/extractor"
)

var (
	splitPagesPer int
	splitOutDir   string
	splitBaseName string
)

var splitCmd = &cobra.Command{
	Use:   "split <pdf>",
	Short: "Split a PDF into fixed-size chunks",
	Long: `Split a PDF into standalone PDFs of a fixed page count. Chunks are written
as {base}_1.pdf, {base}_2.pdf, ... and together cover every page exactly once.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().IntVarP(&splitPagesPer, "pages", "p", 1, "pages per chunk")
	splitCmd.Flags().StringVarP(&splitOutDir, "out", "o", ".", "output directory")
	splitCmd.Flags().StringVarP(&splitBaseName, "base", "b", "", "base name for chunks (default: input filename)")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	base := splitBaseName
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
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

	set, err := client.Partition(ctx, data, splitPagesPer, base)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(splitOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, part := range set.Partitions {
		path := filepath.Join(splitOutDir, part.Filename)
		if err := os.WriteFile(path, part.Data, 0o644); err != nil {
			return fmt.Errorf("write chunk %d: %w", part.Index, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (pages %d-%d, %d bytes)\n",
			path, part.FromPage, part.ToPage, part.ByteSize)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Split %d pages into %d chunks\n", set.TotalPages, len(set.Partitions))
	return nil
}
