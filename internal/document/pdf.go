package document

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF is a Document backed by an in-memory PDF file. Text extraction goes
// through ledongthuc/pdf; outline resolution and page copying go through
// pdfcpu, which handles named and explicit destinations internally.
type PDF struct {
	name   string
	data   []byte
	reader *pdflib.Reader
	conf   *model.Configuration

	outlineOnce sync.Once
	outline     []OutlineNode
	outlineErr  error
}

// OpenPDF parses raw PDF bytes. The bytes are retained for the lifetime of
// the document.
func OpenPDF(name string, data []byte) (*PDF, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDF{
		name:   name,
		data:   data,
		reader: reader,
		conf:   conf,
	}, nil
}

func (d *PDF) Name() string { return d.name }

func (d *PDF) PageCount() int { return d.reader.NumPage() }

// PageText joins a page's text fragments with spaces. The underlying reader
// panics on malformed content streams, so the panic is converted to an error
// and left to the caller's degradation policy.
func (d *PDF) PageText(page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", page, r)
		}
	}()
	if page < 1 || page > d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range (1-%d)", page, d.reader.NumPage())
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", page)
	}
	content := p.Content()
	fragments := make([]string, 0, len(content.Text))
	for _, t := range content.Text {
		fragments = append(fragments, t.S)
	}
	return strings.Join(fragments, " "), nil
}

// Outline reads the bookmark tree once and caches the result. pdfcpu
// returns (nil, nil) for a document without an outline; a walk error means
// an outline exists but one of its items did not dereference.
func (d *PDF) Outline() ([]OutlineNode, error) {
	d.outlineOnce.Do(func() {
		bms, err := api.Bookmarks(bytes.NewReader(d.data), d.conf)
		if err != nil {
			d.outlineErr = fmt.Errorf("read outline: %w", err)
			return
		}
		d.outline = outlineNodes(bms)
	})
	return d.outline, d.outlineErr
}

func outlineNodes(bms []pdfcpulib.Bookmark) []OutlineNode {
	if len(bms) == 0 {
		return nil
	}
	nodes := make([]OutlineNode, 0, len(bms))
	for _, bm := range bms {
		nodes = append(nodes, OutlineNode{
			Title: strings.TrimSpace(bm.Title),
			Page:  bm.PageFrom,
			Items: outlineNodes(bm.Kids),
		})
	}
	return nodes
}

func (d *PDF) ExtractPages(start, end int) ([]byte, error) {
	var buf bytes.Buffer
	sel := []string{fmt.Sprintf("%d-%d", start, end)}
	if err := api.Trim(bytes.NewReader(d.data), &buf, sel, d.conf); err != nil {
		return nil, fmt.Errorf("extract pages %d-%d: %w", start, end, err)
	}
	return buf.Bytes(), nil
}
