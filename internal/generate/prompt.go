package generate

import (
	"strings"
)

// InstructionPrompt is the fixed preamble sent with every generation request.
// The response format itself is enforced by the structured-output schema, so
// the rules here only steer content.
const InstructionPrompt = `You are building a question/answer fine-tuning dataset from a document excerpt.

Generate question/answer pairs from the text and/or attached pages below.

Rules:
- Extract facts from the text and any attached page content.
- Summarize table rows by their key attributes instead of quoting them cell by cell.
- Keep each question specific enough that its answer can be retrieved directly from the excerpt.
- Do not ask about metadata such as page numbers, headers, or footers.
- If the content is unsuitable for question generation, return an empty array.

Return a JSON array of objects with "question" and "answer" string fields.`

// BuildPrompt appends the literal chunk text to the instruction preamble.
func BuildPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString(InstructionPrompt)
	if strings.TrimSpace(text) != "" {
		sb.WriteString("\n\n---\n")
		sb.WriteString(text)
	}
	return sb.String()
}
