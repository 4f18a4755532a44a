package generate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hitrax/qagen/internal/dataset"
)

// Normalize turns raw model pairs into export-ready QA pairs. Pairs with an
// empty question or answer are dropped; the rest keep their order. Each
// question is trimmed, gets a trailing question mark if missing, and is
// prefixed with a clause naming the source section (or the document when the
// chunk has no section title), with the question's first character lowered so
// the clause reads as one sentence.
func Normalize(raw []RawPair, contextTitle, documentName string) []dataset.QAPair {
	var clause string
	if contextTitle != "" {
		clause = `In the section "` + contextTitle + `" of the document "` + documentName + `", `
	} else {
		clause = `In the document "` + documentName + `", `
	}

	pairs := make([]dataset.QAPair, 0, len(raw))
	for _, rp := range raw {
		if rp.Question == "" || rp.Answer == "" {
			continue
		}
		q := strings.TrimSpace(rp.Question)
		if !strings.HasSuffix(q, "?") {
			q += "?"
		}
		pairs = append(pairs, dataset.QAPair{
			InputText:  clause + lowerFirst(q),
			OutputText: strings.TrimSpace(rp.Answer),
		})
	}
	return pairs
}

// lowerFirst lowers only the first character. Single-rune case mapping is a
// known-narrow heuristic for some scripts; kept to match the original
// dataset's shape.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
