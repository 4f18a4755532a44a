package splitter

import (
	"github.com/hitrax/qagen/internal/outline"
)

// DefaultMaxPages bounds the span of an auto-split chunk.
const DefaultMaxPages = 4

// Chunk is a contiguous page range treated as one unit for Q&A generation.
type Chunk struct {
	ID           int    `json:"id"`
	StartPage    int    `json:"start_page"`
	EndPage      int    `json:"end_page"`
	ContextTitle string `json:"context_title,omitempty"`
}

// Split converts resolved section boundaries into bounded page-range chunks.
// Bookmark i's section spans [page_i, page_{i+1}-1]; the last section runs to
// totalPages. Empty sections (a bookmark immediately followed by another on
// the same or an earlier page boundary) are dropped. Each section is then
// partitioned greedily into sub-ranges of at most maxPages pages, every
// sub-range inheriting the section title. IDs are assigned 1..n in page
// order; the returned slice is meant to replace an existing chunk set
// wholesale.
func Split(bookmarks []outline.Bookmark, totalPages, maxPages int) []Chunk {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var chunks []Chunk
	for i, bm := range bookmarks {
		start := bm.Page
		end := totalPages
		if i < len(bookmarks)-1 {
			end = bookmarks[i+1].Page - 1
		}
		if start > end {
			continue
		}
		for sub := start; sub <= end; sub += maxPages {
			subEnd := sub + maxPages - 1
			if subEnd > end {
				subEnd = end
			}
			chunks = append(chunks, Chunk{
				ID:           len(chunks) + 1,
				StartPage:    sub,
				EndPage:      subEnd,
				ContextTitle: bm.Title,
			})
		}
	}
	return chunks
}
