package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hitrax/qagen/internal/splitter"
)

// ExportFilename is the download name the original tool used for its
// newline-delimited export. Kept verbatim for compatibility even though the
// content is JSONL, not a single JSON document.
const ExportFilename = "qa_dataset.json"

type exportMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type exportLine struct {
	Messages []exportMessage `json:"messages"`
}

// Export serializes all cached pairs as one JSON object per line, in chunk
// list order and per-chunk insertion order.
func Export(chunks []splitter.Chunk, store *Store) ([]byte, error) {
	var buf bytes.Buffer
	for _, chunk := range chunks {
		pairs, ok := store.Get(chunk.ID)
		if !ok {
			continue
		}
		for _, pair := range pairs {
			line := exportLine{
				Messages: []exportMessage{
					{Role: "user", Content: pair.InputText},
					{Role: "model", Content: pair.OutputText},
				},
			}
			b, err := json.Marshal(line)
			if err != nil {
				return nil, fmt.Errorf("marshal pair for chunk %d: %w", chunk.ID, err)
			}
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.Write(b)
		}
	}
	return buf.Bytes(), nil
}
