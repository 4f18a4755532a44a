package document

import (
	"fmt"
	"testing"
)

type stubDoc struct {
	pages    int
	failPage int
}

func (d *stubDoc) Name() string   { return "stub.pdf" }
func (d *stubDoc) PageCount() int { return d.pages }
func (d *stubDoc) PageText(page int) (string, error) {
	if page == d.failPage {
		return "", fmt.Errorf("corrupt content stream")
	}
	return fmt.Sprintf("  page %d body  ", page), nil
}
func (d *stubDoc) Outline() ([]OutlineNode, error)             { return nil, nil }
func (d *stubDoc) ExtractPages(start, end int) ([]byte, error) { return nil, nil }

func TestRangeText_JoinsTrimmedPages(t *testing.T) {
	doc := &stubDoc{pages: 5}
	got := RangeText(doc, 2, 4)
	want := "page 2 body\npage 3 body\npage 4 body"
	if got != want {
		t.Errorf("RangeText = %q, want %q", got, want)
	}
}

func TestRangeText_FailedPageGetsPlaceholder(t *testing.T) {
	doc := &stubDoc{pages: 5, failPage: 3}
	got := RangeText(doc, 2, 4)
	want := "page 2 body\n[page 3: text unavailable]\npage 4 body"
	if got != want {
		t.Errorf("RangeText = %q, want %q", got, want)
	}
}

func TestRangeText_SinglePage(t *testing.T) {
	doc := &stubDoc{pages: 5}
	if got := RangeText(doc, 3, 3); got != "page 3 body" {
		t.Errorf("RangeText = %q", got)
	}
}
