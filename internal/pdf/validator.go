package pdf

import (
	"bytes"
	"fmt"

	"github.com/pagemill/extractor/internal/domain"
)

// pdfMagic is the header every well-formed PDF starts with.
var pdfMagic = []byte("%PDF-")

// minPDFSize is smaller than any parseable document; it exists to reject
// obviously truncated input before handing bytes to the parser library.
const minPDFSize = 16

// ValidateBytes performs cheap structural checks on a candidate byte stream
// before it is opened as a document.
func ValidateBytes(data []byte) error {
	if len(data) == 0 {
		return domain.MalformedError("input is empty", nil)
	}
	if len(data) < minPDFSize {
		return domain.MalformedError(fmt.Sprintf("input too short to be a document (%d bytes)", len(data)), nil)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return domain.MalformedError("input does not start with a PDF header", nil)
	}
	return nil
}
