// Package pdf implements the document model: parsing a raw byte stream into
// pages with embedded text, and rasterizing page subsets for recognition.
package pdf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"github.com/pagemill/extractor/internal/domain"
)

// Parser decodes PDF bytes into the domain document model using MuPDF.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a new parser instance.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger.With().Str("component", "parser").Logger()}
}

// Parse validates the byte stream, opens it as a document, and eagerly
// extracts embedded text for every page. Classification needs embedded text
// for all pages before any recognition work is scheduled, so there is no lazy
// per-page path.
//
// A single page's text-extraction failure is recoverable: the page is kept
// with TextExtracted=false and routes to recognition downstream. Unparseable
// input and zero-page documents are document-level failures.
func (p *Parser) Parse(ctx context.Context, data []byte) (*domain.Document, error) {
	if err := ValidateBytes(data); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.MalformedError("failed to open document", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.EmptyDocumentError("document has no pages")
	}

	pages := make([]domain.Page, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := doc.Text(i)
		if err != nil {
			p.logger.Warn().
				Int("page", i+1).
				Int("total", pageCount).
				Err(err).
				Msg("embedded text extraction failed, page will need recognition")
			pages = append(pages, domain.Page{Number: i + 1})
			continue
		}

		pages = append(pages, domain.Page{
			Number:        i + 1,
			EmbeddedText:  text,
			TextExtracted: true,
		})
	}

	return &domain.Document{
		Fingerprint: Fingerprint(data),
		Pages:       pages,
	}, nil
}

// Fingerprint returns the lowercase hex SHA-256 of the data. It is the
// document's content-addressed identity in extraction reports.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
