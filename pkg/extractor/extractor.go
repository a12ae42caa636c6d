// Package extractor is the public entry point for the hybrid PDF
// text-extraction engine.
package extractor

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pagemill/extractor/internal/config"
	"github.com/pagemill/extractor/internal/domain"
	"github.com/pagemill/extractor/internal/extract"
	"github.com/pagemill/extractor/internal/observability"
	"github.com/pagemill/extractor/internal/ocr"
	"github.com/pagemill/extractor/internal/partition"
	"github.com/pagemill/extractor/internal/pdf"
)

// Re-export report types for the public API
type (
	ExtractionReport = domain.ExtractionReport
	PageReport       = domain.PageReport
	Partition        = domain.Partition
	PartitionSet     = domain.PartitionSet
	ExtractionMethod = domain.ExtractionMethod
)

// Provenance tag constants
const (
	MethodEmbedded     = domain.MethodEmbedded
	MethodRecognized   = domain.MethodRecognized
	MethodEmbeddedOnly = domain.MethodEmbeddedOnly
)

// Options controls a single extraction call.
type Options = extract.Options

// Client is the main entry point for the extraction library. It owns the
// recognition worker pool; construct one at startup and Close it at shutdown.
type Client struct {
	cfg         *config.Config
	service     *extract.Service
	partitioner *partition.Partitioner
	pool        *ocr.Pool
	logger      zerolog.Logger
}

// NewClient creates a client from defaults, an optional YAML file named by
// EXTRACTOR_CONFIG, and environment overrides.
func NewClient() (*Client, error) {
	// Ignore error if .env doesn't exist
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("EXTRACTOR_CONFIG"))
	if err != nil {
		return nil, domain.ConfigError("failed to load configuration", err)
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client from an explicit configuration.
func NewClientWithConfig(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("invalid configuration", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "pagemill",
	})

	engine := ocr.NewTesseractEngine(int(cfg.Recognition.DPI))
	pool := ocr.NewPool(engine, cfg.PoolWorkers(), cfg.Recognition.PoolTimeout, logger)

	parser := pdf.NewParser(logger)
	rasterizer := pdf.NewRasterizer(pdf.RasterConfig{
		DPI:              cfg.Recognition.DPI,
		MaxDimension:     cfg.Recognition.MaxImageDimension,
		ResizedDimension: cfg.Recognition.ResizedDimension,
	}, logger)
	classifier := extract.NewClassifier(cfg.Extraction.MinChars)

	service := extract.NewService(parser, rasterizer, pool, classifier, cfg.Recognition.Languages, logger)

	return &Client{
		cfg:         cfg,
		service:     service,
		partitioner: partition.NewPartitioner(logger),
		pool:        pool,
		logger:      logger,
	}, nil
}

// Extract runs hybrid text extraction over a PDF byte stream. It returns a
// complete report or a document-level error; single-page recognition failures
// appear inside the report.
func (c *Client) Extract(ctx context.Context, data []byte, opts Options) (*ExtractionReport, error) {
	logger := c.logger.With().Str("job_id", uuid.NewString()).Logger()
	logger.Debug().Int("bytes", len(data)).Msg("extraction requested")

	report, err := c.service.Extract(ctx, data, opts)
	if err != nil {
		logger.Error().Err(err).Msg("extraction failed")
		return nil, err
	}
	return report, nil
}

// Partition splits a PDF into standalone chunks of pagesPerChunk pages each,
// named "{baseName}_{i}.pdf".
func (c *Client) Partition(ctx context.Context, data []byte, pagesPerChunk int, baseName string) (*PartitionSet, error) {
	logger := c.logger.With().Str("job_id", uuid.NewString()).Logger()
	logger.Debug().Int("bytes", len(data)).Int("pages_per_chunk", pagesPerChunk).Msg("partition requested")

	set, err := c.partitioner.Partition(ctx, data, pagesPerChunk, baseName)
	if err != nil {
		logger.Error().Err(err).Msg("partition failed")
		return nil, err
	}
	return set, nil
}

// Close shuts down the recognition worker pool. The client must not be used
// after Close.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}
