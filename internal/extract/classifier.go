package extract

import (
	"unicode"

	"github.com/pagemill/extractor/internal/domain"
)

// DefaultMinChars is the stock richness threshold: pages whose embedded text
// has fewer meaningful characters than this are routed to recognition.
const DefaultMinChars = 50

// Classifier decides, per page, whether embedded text is sufficient or the
// page must be rasterized and recognized. Pure and total: every page maps to
// exactly one of the two outcomes.
type Classifier struct {
	minChars int
}

// NewClassifier creates a classifier with the given threshold. A threshold
// of zero or less falls back to DefaultMinChars.
func NewClassifier(minChars int) *Classifier {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Classifier{minChars: minChars}
}

// Classify counts the non-whitespace characters of the page's embedded text
// (zero when extraction failed) against the threshold. A page below the
// threshold is NeedsRecognition regardless of whether recognition is
// actually requested by the caller.
func (c *Classifier) Classify(page domain.Page) domain.Classification {
	if !page.TextExtracted {
		return domain.NeedsRecognition
	}
	if meaningfulChars(page.EmbeddedText) >= c.minChars {
		return domain.TextRich
	}
	return domain.NeedsRecognition
}

// ClassifyAll maps every page of the document to its classification.
func (c *Classifier) ClassifyAll(doc *domain.Document) map[int]domain.Classification {
	out := make(map[int]domain.Classification, len(doc.Pages))
	for _, page := range doc.Pages {
		out[page.Number] = c.Classify(page)
	}
	return out
}

// meaningfulChars counts runes that are not whitespace.
func meaningfulChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
