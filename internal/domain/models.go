package domain

// Extraction method provenance tags. Every page in a finished report carries
// exactly one of these.
type ExtractionMethod string

const (
	// MethodEmbedded means the page's selectable text met the richness
	// threshold and was used directly.
	MethodEmbedded ExtractionMethod = "embedded"
	// MethodRecognized means the page was rasterized and run through the
	// recognition engine.
	MethodRecognized ExtractionMethod = "recognized"
	// MethodEmbeddedOnly means the page fell below the threshold but
	// recognition was not requested, so whatever embedded text exists was
	// used as-is.
	MethodEmbeddedOnly ExtractionMethod = "embedded_only"
)

// Classification is the per-page routing decision.
type Classification string

const (
	TextRich         Classification = "text_rich"
	NeedsRecognition Classification = "needs_recognition"
)

// Page is a single page of a parsed document. Numbers are 1-indexed,
// contiguous, and strictly increasing within a Document.
type Page struct {
	Number int
	// EmbeddedText is the selectable text extracted from the page. It may
	// legitimately be empty for image-only pages.
	EmbeddedText string
	// TextExtracted is false when embedded-text extraction failed for this
	// page (e.g. a corrupt page object). Such a page is treated as having no
	// embedded text and always routes to recognition.
	TextExtracted bool
}

// Document is an immutable, request-scoped view of a parsed byte stream.
type Document struct {
	// Fingerprint is the lowercase hex SHA-256 of the original bytes and is
	// the document's stable identity in reports.
	Fingerprint string
	Pages       []Page
}

// TotalPages returns the page count.
func (d *Document) TotalPages() int {
	return len(d.Pages)
}

// PageImage is a rasterized page held in memory, ready for recognition.
type PageImage struct {
	PageNumber int
	// PNG holds the encoded grayscale raster.
	PNG    []byte
	Width  int
	Height int
}

// RecognitionTask is one unit of work for the recognition pool. Tasks are
// created only for pages classified NeedsRecognition and are consumed exactly
// once; there is no automatic retry.
type RecognitionTask struct {
	PageNumber int
	Image      PageImage
	// Languages are engine language hints, e.g. ["eng", "jpn"].
	Languages []string
}

// RecognitionResult is the outcome of one task. Err is empty on success;
// otherwise it carries the engine failure message and Text is empty.
type RecognitionResult struct {
	PageNumber int
	Text       string
	Err        string
}

// OK reports whether recognition succeeded for this page.
func (r RecognitionResult) OK() bool {
	return r.Err == ""
}

// PageReport is the per-page metadata attached to an ExtractionReport.
type PageReport struct {
	PageNumber int              `json:"page_number"`
	Method     ExtractionMethod `json:"method"`
	CharCount  int              `json:"char_count"`
	// Error carries the inline recognition error marker for pages whose
	// recognition faulted. Empty otherwise.
	Error string `json:"error,omitempty"`
}

// ReportStats summarizes how a document's pages were handled.
type ReportStats struct {
	TotalPages      int `json:"total_pages"`
	EmbeddedPages   int `json:"embedded_pages"`
	RecognizedPages int `json:"recognized_pages"`
	FailedPages     int `json:"failed_pages"`
}

// ExtractionReport is the final, immutable result of a hybrid extraction run.
type ExtractionReport struct {
	Fingerprint string       `json:"fingerprint"`
	Text        string       `json:"text"`
	Pages       []PageReport `json:"pages"`
	Stats       ReportStats  `json:"stats"`
}

// Partition is one standalone sub-document produced by splitting. Ownership
// of Data passes to the caller.
type Partition struct {
	Index    int    `json:"index"`
	FromPage int    `json:"from_page"`
	ToPage   int    `json:"to_page"`
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
	ByteSize int    `json:"byte_size"`
}

// PageCount returns the number of pages covered by the partition.
func (p Partition) PageCount() int {
	return p.ToPage - p.FromPage + 1
}

// PartitionSet is the complete result of splitting a document. Partitions are
// ordered by index and together cover 1..TotalPages exactly once.
type PartitionSet struct {
	BaseName   string      `json:"base_name"`
	TotalPages int         `json:"total_pages"`
	Partitions []Partition `json:"partitions"`
}
