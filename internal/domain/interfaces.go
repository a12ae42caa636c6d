package domain

import "context"

// Parser decodes raw bytes into an ordered page sequence with embedded text
// eagerly extracted for every page.
type Parser interface {
	// Parse fails with a malformed or empty-document error for unusable
	// input. A single page's text-extraction failure does not fail the
	// parse; the page is returned with TextExtracted=false.
	Parse(ctx context.Context, data []byte) (*Document, error)
}

// Rasterizer renders a subset of a document's pages to in-memory images.
type Rasterizer interface {
	// RasterizePages renders only the requested page numbers. A failure on
	// one page is reported in that page's RasterPage entry; it does not fail
	// the batch. The result always contains one entry per requested page.
	RasterizePages(ctx context.Context, data []byte, pages []int) ([]RasterPage, error)
}

// RasterPage is the per-page outcome of a rasterization batch.
type RasterPage struct {
	PageNumber int
	Image      PageImage
	Err        error
}

// Recognizer runs recognition tasks and returns exactly one result per
// submitted task, keyed by page number.
type Recognizer interface {
	Recognize(ctx context.Context, tasks []RecognitionTask) map[int]RecognitionResult
}
