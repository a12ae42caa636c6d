// Package ocr plugs recognition engines into the extraction pipeline and
// runs their work through a bounded, caller-owned worker pool. The Engine
// contract is intentionally small so providers can be backed by native
// libraries, local binaries, or stubs in tests without leaking
// provider-specific concerns into callers.
package ocr

import (
	"context"

	"github.com/pagemill/extractor/internal/domain"
)

// Engine is the recognition provider contract: one page image in, text out.
// Implementations must be safe for concurrent use by multiple workers.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img domain.PageImage, languages []string) (string, error)
}
