package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pagemill/extractor/internal/domain"
	"github.com/pagemill/extractor/internal/ocr"
)

// Options controls a single extraction call.
type Options struct {
	// UseRecognition enables the OCR fallback for pages with too little
	// embedded text. When false those pages are reported as-is.
	UseRecognition bool
	// LanguageHint is a Tesseract language string such as "eng" or
	// "eng+jpn". Empty falls back to the service default.
	LanguageHint string
}

// Service orchestrates the hybrid extraction pipeline: parse, classify,
// recognize the pages that need it, merge.
type Service struct {
	parser       domain.Parser
	rasterizer   domain.Rasterizer
	recognizer   domain.Recognizer
	classifier   *Classifier
	defaultLangs string
	logger       zerolog.Logger
}

// NewService creates an extraction service. defaultLangs is the language hint
// applied when the caller does not supply one.
func NewService(parser domain.Parser, rasterizer domain.Rasterizer, recognizer domain.Recognizer, classifier *Classifier, defaultLangs string, logger zerolog.Logger) *Service {
	if defaultLangs == "" {
		defaultLangs = "eng"
	}
	return &Service{
		parser:       parser,
		rasterizer:   rasterizer,
		recognizer:   recognizer,
		classifier:   classifier,
		defaultLangs: defaultLangs,
		logger:       logger,
	}
}

// Extract runs the full pipeline over a PDF byte stream. It returns either a
// complete report or a document-level error; per-page recognition failures
// are embedded in the report, never returned as errors.
func (s *Service) Extract(ctx context.Context, data []byte, opts Options) (*domain.ExtractionReport, error) {
	doc, err := s.parser.Parse(ctx, data)
	if err != nil {
		return nil, err
	}

	classes := s.classifier.ClassifyAll(doc)

	var needy []int
	for _, page := range doc.Pages {
		if classes[page.Number] == domain.NeedsRecognition {
			needy = append(needy, page.Number)
		}
	}

	s.logger.Info().
		Str("fingerprint", doc.Fingerprint).
		Int("total_pages", len(doc.Pages)).
		Int("needs_recognition", len(needy)).
		Bool("use_recognition", opts.UseRecognition).
		Msg("document classified")

	var results map[int]domain.RecognitionResult
	if opts.UseRecognition && len(needy) > 0 {
		results = s.recognizePages(ctx, data, needy, opts.LanguageHint)
	}

	report := Merge(doc, classes, results, opts.UseRecognition)

	s.logger.Info().
		Str("fingerprint", report.Fingerprint).
		Int("embedded_pages", report.Stats.EmbeddedPages).
		Int("recognized_pages", report.Stats.RecognizedPages).
		Int("failed_pages", report.Stats.FailedPages).
		Msg("extraction complete")

	return report, nil
}

// recognizePages rasterizes the requested pages and runs them through the
// recognizer. The returned map always holds one entry per requested page:
// rasterization failures become error results instead of dropped pages.
func (s *Service) recognizePages(ctx context.Context, data []byte, pages []int, languageHint string) map[int]domain.RecognitionResult {
	if languageHint == "" {
		languageHint = s.defaultLangs
	}
	languages := ocr.SplitLanguageHint(languageHint)

	results := make(map[int]domain.RecognitionResult, len(pages))

	rastered, err := s.rasterizer.RasterizePages(ctx, data, pages)
	if err != nil {
		s.logger.Error().Err(err).Ints("pages", pages).Msg("rasterization failed")
		for _, n := range pages {
			results[n] = domain.RecognitionResult{PageNumber: n, Err: fmt.Sprintf("rasterize: %v", err)}
		}
		return results
	}

	tasks := make([]domain.RecognitionTask, 0, len(rastered))
	for _, rp := range rastered {
		if rp.Err != nil {
			s.logger.Warn().Err(rp.Err).Int("page", rp.PageNumber).Msg("page rasterization failed")
			results[rp.PageNumber] = domain.RecognitionResult{PageNumber: rp.PageNumber, Err: fmt.Sprintf("rasterize: %v", rp.Err)}
			continue
		}
		tasks = append(tasks, domain.RecognitionTask{
			PageNumber: rp.PageNumber,
			Image:      rp.Image,
			Languages:  languages,
		})
	}

	for n, res := range s.recognizer.Recognize(ctx, tasks) {
		results[n] = res
	}

	// Anything the rasterizer silently skipped still needs an entry.
	for _, n := range pages {
		if _, ok := results[n]; !ok {
			results[n] = domain.RecognitionResult{PageNumber: n, Err: "page not rasterized"}
		}
	}
	return results
}
