package document

import (
	"fmt"
	"strings"
)

// Document is an opened source document. Implementations own the underlying
// bytes; callers never mutate the document through this interface.
type Document interface {
	// Name is the original filename, used in generated question context.
	Name() string

	// PageCount returns the number of pages.
	PageCount() int

	// PageText extracts the text content of a single page (1-based).
	PageText(page int) (string, error)

	// Outline returns the document's bookmark tree, or (nil, nil) when
	// the document has no table of contents. A non-nil error means an
	// outline exists but could not be read. Nodes whose destination
	// could not be resolved carry Page == 0.
	Outline() ([]OutlineNode, error)

	// ExtractPages copies the inclusive 1-based page range into a new
	// standalone document and returns its serialized bytes. The caller
	// must guarantee 1 <= start <= end <= PageCount().
	ExtractPages(start, end int) ([]byte, error)
}

// OutlineNode is one entry of a document's bookmark tree.
type OutlineNode struct {
	Title string
	Page  int // 1-based resolved page, 0 when the destination is unresolvable
	Items []OutlineNode
}

// RangeText extracts and joins the text of an inclusive page range.
// A page whose extraction fails is replaced inline with a placeholder
// marker so the rest of the range still comes through.
func RangeText(doc Document, start, end int) string {
	var sb strings.Builder
	for p := start; p <= end; p++ {
		if p > start {
			sb.WriteString("\n")
		}
		text, err := doc.PageText(p)
		if err != nil {
			sb.WriteString(fmt.Sprintf("[page %d: text unavailable]", p))
			continue
		}
		sb.WriteString(strings.TrimSpace(text))
	}
	return sb.String()
}
