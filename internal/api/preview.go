package api

import (
	"bytes"
	"fmt"
	"html"
	"net/http"

	"github.com/yuin/goldmark"
)

// handlePreview renders the cached pairs as a simple HTML page. Answers
// frequently come back with Markdown in them, so they go through goldmark;
// questions are plain text and only get escaped.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	chunks := s.sess.Chunks()

	var body bytes.Buffer
	body.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>QA dataset preview</title></head><body>\n")
	body.WriteString("<h1>QA dataset preview</h1>\n")

	total := 0
	for _, chunk := range chunks {
		pairs, ok := s.sess.Store().Get(chunk.ID)
		if !ok || len(pairs) == 0 {
			continue
		}
		title := chunk.ContextTitle
		if title == "" {
			title = fmt.Sprintf("Pages %d-%d", chunk.StartPage, chunk.EndPage)
		}
		fmt.Fprintf(&body, "<h2>Chunk %d: %s</h2>\n", chunk.ID, html.EscapeString(title))
		for _, pair := range pairs {
			total++
			fmt.Fprintf(&body, "<p><strong>%s</strong></p>\n", html.EscapeString(pair.InputText))
			var answer bytes.Buffer
			if err := goldmark.Convert([]byte(pair.OutputText), &answer); err != nil {
				fmt.Fprintf(&body, "<p>%s</p>\n", html.EscapeString(pair.OutputText))
			} else {
				body.Write(answer.Bytes())
			}
		}
	}

	if total == 0 {
		body.WriteString("<p>No generated pairs yet.</p>\n")
	}
	body.WriteString("</body></html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body.Bytes())
}
