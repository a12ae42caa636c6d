package extract

import (
	"strings"
	"testing"

	"github.com/pagemill/extractor/internal/domain"
)

func sampleDoc() *domain.Document {
	return &domain.Document{
		Fingerprint: "abc123",
		Pages: []domain.Page{
			{Number: 1, EmbeddedText: strings.Repeat("embedded text ", 20), TextExtracted: true},
			{Number: 2, EmbeddedText: "ten chars!", TextExtracted: true},
			{Number: 3, EmbeddedText: "", TextExtracted: true},
		},
	}
}

func sampleClasses() map[int]domain.Classification {
	return map[int]domain.Classification{
		1: domain.TextRich,
		2: domain.NeedsRecognition,
		3: domain.NeedsRecognition,
	}
}

func TestMerge_HybridDocument(t *testing.T) {
	doc := sampleDoc()
	results := map[int]domain.RecognitionResult{
		2: {PageNumber: 2, Text: "recognized page two"},
		3: {PageNumber: 3, Text: "recognized page three"},
	}

	report := Merge(doc, sampleClasses(), results, true)

	if report.Fingerprint != "abc123" {
		t.Errorf("Fingerprint = %q, want abc123", report.Fingerprint)
	}
	if len(report.Pages) != 3 {
		t.Fatalf("Pages = %d entries, want 3", len(report.Pages))
	}

	wantMethods := []domain.ExtractionMethod{
		domain.MethodEmbedded,
		domain.MethodRecognized,
		domain.MethodRecognized,
	}
	for i, want := range wantMethods {
		if report.Pages[i].Method != want {
			t.Errorf("page %d method = %q, want %q", i+1, report.Pages[i].Method, want)
		}
	}

	if report.Stats.EmbeddedPages != 1 || report.Stats.RecognizedPages != 2 || report.Stats.FailedPages != 0 {
		t.Errorf("Stats = %+v, want 1 embedded, 2 recognized, 0 failed", report.Stats)
	}

	p1 := strings.Index(report.Text, "Page 1 [embedded]")
	p2 := strings.Index(report.Text, "Page 2 [recognized]")
	p3 := strings.Index(report.Text, "Page 3 [recognized]")
	if p1 < 0 || p2 < 0 || p3 < 0 {
		t.Fatalf("missing page markers in text:\n%s", report.Text)
	}
	if !(p1 < p2 && p2 < p3) {
		t.Errorf("page markers out of order: %d, %d, %d", p1, p2, p3)
	}
}

func TestMerge_OrderStableAcrossCompletionOrder(t *testing.T) {
	doc := sampleDoc()
	classes := sampleClasses()

	// Same results assembled in different orders must merge identically.
	a := map[int]domain.RecognitionResult{
		2: {PageNumber: 2, Text: "two"},
		3: {PageNumber: 3, Text: "three"},
	}
	b := map[int]domain.RecognitionResult{
		3: {PageNumber: 3, Text: "three"},
		2: {PageNumber: 2, Text: "two"},
	}

	first := Merge(doc, classes, a, true)
	second := Merge(doc, classes, b, true)
	if first.Text != second.Text {
		t.Errorf("merge output depends on result order:\n%q\nvs\n%q", first.Text, second.Text)
	}
}

func TestMerge_RecognitionNotRequested(t *testing.T) {
	doc := sampleDoc()
	report := Merge(doc, sampleClasses(), nil, false)

	if report.Pages[1].Method != domain.MethodEmbeddedOnly {
		t.Errorf("page 2 method = %q, want %q", report.Pages[1].Method, domain.MethodEmbeddedOnly)
	}
	if report.Pages[2].Method != domain.MethodEmbeddedOnly {
		t.Errorf("page 3 method = %q, want %q", report.Pages[2].Method, domain.MethodEmbeddedOnly)
	}
	if report.Stats.RecognizedPages != 0 {
		t.Errorf("RecognizedPages = %d, want 0", report.Stats.RecognizedPages)
	}
	if report.Stats.EmbeddedPages != 3 {
		t.Errorf("EmbeddedPages = %d, want 3", report.Stats.EmbeddedPages)
	}

	// Page 2 kept its thin embedded text; page 3 has none at all and must
	// not contribute a block.
	if !strings.Contains(report.Text, "Page 2 [embedded_only]") {
		t.Errorf("page 2 block missing:\n%s", report.Text)
	}
	if strings.Contains(report.Text, "Page 3") {
		t.Errorf("empty page 3 should be excluded from text:\n%s", report.Text)
	}
}

func TestMerge_EngineFaultIsolated(t *testing.T) {
	doc := sampleDoc()
	results := map[int]domain.RecognitionResult{
		2: {PageNumber: 2, Text: "recognized page two"},
		3: {PageNumber: 3, Err: "engine crashed"},
	}

	report := Merge(doc, sampleClasses(), results, true)

	if len(report.Pages) != 3 {
		t.Fatalf("Pages = %d entries, want 3", len(report.Pages))
	}
	if report.Pages[2].Error != "engine crashed" {
		t.Errorf("page 3 error = %q, want engine crash message", report.Pages[2].Error)
	}
	if report.Stats.FailedPages != 1 {
		t.Errorf("FailedPages = %d, want 1", report.Stats.FailedPages)
	}
	if !strings.Contains(report.Text, "Page 2 [recognized]") {
		t.Errorf("healthy page 2 missing from text:\n%s", report.Text)
	}
	if strings.Contains(report.Text, "engine crashed") {
		t.Errorf("error marker leaked into concatenated text:\n%s", report.Text)
	}
}

func TestMerge_NoExtractableText(t *testing.T) {
	doc := &domain.Document{
		Fingerprint: "deadbeef",
		Pages: []domain.Page{
			{Number: 1, EmbeddedText: "", TextExtracted: true},
		},
	}
	classes := map[int]domain.Classification{1: domain.NeedsRecognition}
	results := map[int]domain.RecognitionResult{
		1: {PageNumber: 1, Err: "no text detected"},
	}

	report := Merge(doc, classes, results, true)
	if report.Text != NoTextSentinel {
		t.Errorf("Text = %q, want sentinel %q", report.Text, NoTextSentinel)
	}
}

func TestMerge_RecognizedTextNormalized(t *testing.T) {
	doc := &domain.Document{
		Fingerprint: "f",
		Pages:       []domain.Page{{Number: 1, EmbeddedText: "", TextExtracted: true}},
	}
	classes := map[int]domain.Classification{1: domain.NeedsRecognition}
	results := map[int]domain.RecognitionResult{
		1: {PageNumber: 1, Text: "日 本 語   テスト\n\n"},
	}

	report := Merge(doc, classes, results, true)
	if !strings.Contains(report.Text, "日本語テスト") {
		t.Errorf("recognized text not normalized:\n%s", report.Text)
	}
}
