package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pagemill/extractor/internal/domain"
)

// NoTextSentinel is returned as the report text when no page contributed any
// extractable content, so callers can tell "ran and found nothing" apart from
// an unset field.
const NoTextSentinel = "[No text could be extracted from this PDF]"

const noTextDetected = "[No text detected]"

// Merge assembles the document-level report from per-page classifications and
// recognition results. Pages are visited in ascending page order regardless of
// the order recognition results arrived in, so the concatenated text is stable
// across runs. Pages whose final text is empty or an inline error marker are
// skipped in the concatenation but still appear in the per-page metadata.
// A leading "[" is what identifies a marker, so a page whose genuine content
// opens with a bracket is withheld from the concatenated text as well.
func Merge(doc *domain.Document, classes map[int]domain.Classification, results map[int]domain.RecognitionResult, useRecognition bool) *domain.ExtractionReport {
	report := &domain.ExtractionReport{
		Fingerprint: doc.Fingerprint,
		Pages:       make([]domain.PageReport, 0, len(doc.Pages)),
		Stats:       domain.ReportStats{TotalPages: len(doc.Pages)},
	}

	var parts []string
	for _, page := range doc.Pages {
		text, meta := resolvePage(page, classes[page.Number], results, useRecognition)

		switch meta.Method {
		case domain.MethodRecognized:
			report.Stats.RecognizedPages++
		default:
			report.Stats.EmbeddedPages++
		}
		if meta.Error != "" {
			report.Stats.FailedPages++
		}

		if text != "" && !strings.HasPrefix(text, "[") {
			parts = append(parts, fmt.Sprintf("Page %d [%s]:\n%s\n", page.Number, meta.Method, text))
			meta.CharCount = utf8.RuneCountInString(text)
		}
		report.Pages = append(report.Pages, meta)
	}

	report.Text = strings.Join(parts, "\n")
	if strings.TrimSpace(report.Text) == "" {
		report.Text = NoTextSentinel
	}
	return report
}

func resolvePage(page domain.Page, class domain.Classification, results map[int]domain.RecognitionResult, useRecognition bool) (string, domain.PageReport) {
	meta := domain.PageReport{PageNumber: page.Number}

	if class == domain.TextRich {
		meta.Method = domain.MethodEmbedded
		return CleanLines(page.EmbeddedText), meta
	}

	if !useRecognition {
		meta.Method = domain.MethodEmbeddedOnly
		text := CleanLines(page.EmbeddedText)
		if text == "" {
			return noTextDetected, meta
		}
		return text, meta
	}

	meta.Method = domain.MethodRecognized
	res, ok := results[page.Number]
	if !ok {
		// The pool contract guarantees one result per submitted page; a
		// missing entry means the page was never submitted.
		meta.Error = "no recognition result"
		return fmt.Sprintf("[Recognition error: %s]", meta.Error), meta
	}
	if !res.OK() {
		meta.Error = res.Err
		return fmt.Sprintf("[Recognition error: %s]", res.Err), meta
	}
	return Normalize(res.Text), meta
}
