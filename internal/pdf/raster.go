package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"

	"github.com/pagemill/extractor/internal/domain"
)

// RasterConfig controls page rendering for recognition.
type RasterConfig struct {
	// DPI is the render resolution.
	DPI float64
	// MaxDimension is the long-edge size above which the raster is
	// downscaled. Bounds worst-case memory and recognition time per page
	// regardless of source resolution.
	MaxDimension int
	// ResizedDimension is the long-edge target when downscaling.
	ResizedDimension int
}

// Rasterizer renders document pages to grayscale in-memory images.
type Rasterizer struct {
	cfg    RasterConfig
	logger zerolog.Logger
}

// NewRasterizer creates a rasterizer with the given render settings.
func NewRasterizer(cfg RasterConfig, logger zerolog.Logger) *Rasterizer {
	return &Rasterizer{
		cfg:    cfg,
		logger: logger.With().Str("component", "rasterizer").Logger(),
	}
}

// RasterizePages renders only the requested page numbers. The contiguous
// min..max range is walked in one pass over a single open document, and
// images are attributed back to the individual requested pages. A render
// failure on one page is recorded in that page's entry and does not fail the
// batch; the result always has one entry per requested page.
func (r *Rasterizer) RasterizePages(ctx context.Context, data []byte, pages []int) ([]domain.RasterPage, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.MalformedError("failed to open document for rasterization", err)
	}
	defer doc.Close()

	wanted := make(map[int]bool, len(pages))
	minPage, maxPage := pages[0], pages[0]
	for _, p := range pages {
		wanted[p] = true
		if p < minPage {
			minPage = p
		}
		if p > maxPage {
			maxPage = p
		}
	}

	results := make([]domain.RasterPage, 0, len(pages))
	for pageNum := minPage; pageNum <= maxPage; pageNum++ {
		if !wanted[pageNum] {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if pageNum < 1 || pageNum > doc.NumPage() {
			results = append(results, domain.RasterPage{
				PageNumber: pageNum,
				Err:        fmt.Errorf("page %d out of range (document has %d pages)", pageNum, doc.NumPage()),
			})
			continue
		}

		img, err := doc.ImageDPI(pageNum-1, r.cfg.DPI)
		if err != nil {
			r.logger.Warn().Int("page", pageNum).Err(err).Msg("page rasterization failed")
			results = append(results, domain.RasterPage{PageNumber: pageNum, Err: err})
			continue
		}

		encoded, w, h, err := r.prepareForRecognition(img)
		if err != nil {
			r.logger.Warn().Int("page", pageNum).Err(err).Msg("raster post-processing failed")
			results = append(results, domain.RasterPage{PageNumber: pageNum, Err: err})
			continue
		}

		results = append(results, domain.RasterPage{
			PageNumber: pageNum,
			Image: domain.PageImage{
				PageNumber: pageNum,
				PNG:        encoded,
				Width:      w,
				Height:     h,
			},
		})
	}

	return results, nil
}

// prepareForRecognition converts a raster to single-channel grayscale,
// downscales oversized pages, and PNG-encodes the result. Recognition
// engines are faster and more accurate on grayscale input.
func (r *Rasterizer) prepareForRecognition(img image.Image) ([]byte, int, int, error) {
	gray := toGray(img)

	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if longEdge := max(width, height); r.cfg.MaxDimension > 0 && longEdge > r.cfg.MaxDimension {
		gray = downscale(gray, r.cfg.ResizedDimension)
		bounds = gray.Bounds()
		width, height = bounds.Dx(), bounds.Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, 0, 0, fmt.Errorf("encode raster: %w", err)
	}
	return buf.Bytes(), width, height, nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// downscale resizes so the long edge equals target, preserving aspect ratio.
func downscale(src *image.Gray, target int) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var newW, newH int
	if width >= height {
		newW = target
		newH = height * target / width
	} else {
		newH = target
		newW = width * target / height
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewGray(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}
