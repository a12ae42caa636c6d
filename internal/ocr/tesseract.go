package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/pagemill/extractor/internal/domain"
)

// TesseractEngine implements Engine using the gosseract client. A fresh
// client is created per call; gosseract clients are not safe to share across
// goroutines.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	dpi           int
}

// NewTesseractEngine constructs a Tesseract-backed recognition engine. dpi is
// passed through to the engine as the effective input resolution; zero means
// unknown.
func NewTesseractEngine(dpi int) *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient, dpi: dpi}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs OCR over a single prepared page image.
func (e *TesseractEngine) Recognize(ctx context.Context, img domain.PageImage, languages []string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(img.PNG); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if e.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SplitLanguageHint converts a combined hint such as "eng+jpn" into the
// language list the engine expects.
func SplitLanguageHint(hint string) []string {
	if strings.TrimSpace(hint) == "" {
		return nil
	}
	parts := strings.Split(hint, "+")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			langs = append(langs, p)
		}
	}
	return langs
}
