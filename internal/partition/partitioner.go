// Package partition splits a PDF into contiguous page-range chunks, each
// re-serialized as a standalone valid document.
package partition

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pagemill/extractor/internal/domain"
	"github.com/pagemill/extractor/internal/pdf"
)

// Partitioner slices page sequences into fixed-size chunks.
type Partitioner struct {
	conf   *model.Configuration
	logger zerolog.Logger
}

func NewPartitioner(logger zerolog.Logger) *Partitioner {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Partitioner{conf: conf, logger: logger}
}

type pageRange struct {
	from, to int
}

// planRanges computes the contiguous chunk ranges covering 1..total. The last
// chunk may be shorter. total and per must both be >= 1.
func planRanges(total, per int) []pageRange {
	ranges := make([]pageRange, 0, (total+per-1)/per)
	for from := 1; from <= total; from += per {
		to := from + per - 1
		if to > total {
			to = total
		}
		ranges = append(ranges, pageRange{from: from, to: to})
	}
	return ranges
}

// Partition splits data into ceil(total/pagesPerChunk) standalone PDFs named
// "{base}_{i}.pdf" with i starting at 1. A trailing ".pdf" on baseName is
// stripped before naming.
func (p *Partitioner) Partition(ctx context.Context, data []byte, pagesPerChunk int, baseName string) (*domain.PartitionSet, error) {
	if pagesPerChunk < 1 {
		return nil, domain.InvalidChunkSizeError(fmt.Sprintf("pages per chunk must be >= 1, got %d", pagesPerChunk))
	}
	if err := pdf.ValidateBytes(data); err != nil {
		return nil, err
	}

	if err := api.Validate(bytes.NewReader(data), p.conf); err != nil {
		return nil, domain.MalformedError("PDF failed structural validation", err)
	}
	total, err := api.PageCount(bytes.NewReader(data), p.conf)
	if err != nil {
		return nil, domain.MalformedError("failed to count pages", err)
	}
	if total == 0 {
		return nil, domain.EmptyDocumentError("PDF has no pages")
	}

	base := strings.TrimSuffix(baseName, ".pdf")
	if base == "" {
		base = "document"
	}

	ranges := planRanges(total, pagesPerChunk)
	partitions := make([]domain.Partition, len(ranges))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, r := range ranges {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			sel := []string{fmt.Sprintf("%d-%d", r.from, r.to)}
			if err := api.Trim(bytes.NewReader(data), &buf, sel, p.conf); err != nil {
				return domain.IOError(fmt.Sprintf("failed to write chunk %d (pages %d-%d)", i+1, r.from, r.to), err)
			}
			partitions[i] = domain.Partition{
				Index:    i + 1,
				FromPage: r.from,
				ToPage:   r.to,
				Filename: fmt.Sprintf("%s_%d.pdf", base, i+1),
				Data:     buf.Bytes(),
				ByteSize: buf.Len(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("base_name", base).
		Int("total_pages", total).
		Int("chunks", len(partitions)).
		Msg("document partitioned")

	return &domain.PartitionSet{
		BaseName:   base,
		TotalPages: total,
		Partitions: partitions,
	}, nil
}
