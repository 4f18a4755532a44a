package outline

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hitrax/qagen/internal/document"
)

// ErrUnusable means the document carries an outline that yields no usable
// section boundaries: either the outline could not be read at all, or not a
// single entry resolved to a page. Callers must surface this instead of
// silently producing zero chunks; it is distinct from the no-outline case.
var ErrUnusable = errors.New("outline present but unusable")

// Bookmark is a flattened, resolved table-of-contents entry.
type Bookmark struct {
	Title string
	Page  int // 1-based
}

// Resolve flattens a document's bookmark tree into section boundaries.
// It returns (nil, nil) when the document has no outline, and ErrUnusable
// when the outline cannot be read. Entries whose
// destination did not resolve are skipped individually; the walk never
// aborts on a single bad node. The result is sorted by page ascending and
// deduplicated by page, keeping the first occurrence after the stable sort.
func Resolve(doc document.Document, log *slog.Logger) ([]Bookmark, error) {
	nodes, err := doc.Outline()
	if err != nil {
		if log != nil {
			log.Warn("outline unreadable", "error", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnusable, err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	var bookmarks []Bookmark
	walk(nodes, log, &bookmarks)
	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("%w: no bookmark resolved to a page", ErrUnusable)
	}

	sort.SliceStable(bookmarks, func(i, j int) bool { return bookmarks[i].Page < bookmarks[j].Page })

	deduped := bookmarks[:0]
	seen := make(map[int]bool, len(bookmarks))
	for _, bm := range bookmarks {
		if seen[bm.Page] {
			continue
		}
		seen[bm.Page] = true
		deduped = append(deduped, bm)
	}
	return deduped, nil
}

func walk(nodes []document.OutlineNode, log *slog.Logger, out *[]Bookmark) {
	for _, node := range nodes {
		if node.Page >= 1 {
			*out = append(*out, Bookmark{Title: node.Title, Page: node.Page})
		} else if log != nil {
			log.Warn("skipping bookmark with unresolvable destination", "title", node.Title)
		}
		// A parent with a broken destination can still have good children.
		walk(node.Items, log, out)
	}
}
