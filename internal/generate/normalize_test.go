package generate

import (
	"testing"
)

func TestNormalize_ContextClauseWithSection(t *testing.T) {
	raw := []RawPair{{Question: "what is x", Answer: " y "}}
	pairs := Normalize(raw, "Intro", "doc.pdf")
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	wantInput := `In the section "Intro" of the document "doc.pdf", what is x?`
	if pairs[0].InputText != wantInput {
		t.Errorf("input_text = %q, want %q", pairs[0].InputText, wantInput)
	}
	if pairs[0].OutputText != "y" {
		t.Errorf("output_text = %q, want %q", pairs[0].OutputText, "y")
	}
}

func TestNormalize_ContextClauseWithoutSection(t *testing.T) {
	raw := []RawPair{{Question: "Does it work", Answer: "Yes"}}
	pairs := Normalize(raw, "", "manual.pdf")
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	wantInput := `In the document "manual.pdf", does it work?`
	if pairs[0].InputText != wantInput {
		t.Errorf("input_text = %q, want %q", pairs[0].InputText, wantInput)
	}
}

func TestNormalize_KeepsExistingQuestionMark(t *testing.T) {
	raw := []RawPair{{Question: "Why?", Answer: "Because"}}
	pairs := Normalize(raw, "", "d.pdf")
	wantInput := `In the document "d.pdf", why?`
	if pairs[0].InputText != wantInput {
		t.Errorf("input_text = %q, want %q", pairs[0].InputText, wantInput)
	}
}

func TestNormalize_DropsIncompletePairsKeepingOrder(t *testing.T) {
	raw := []RawPair{
		{Question: "First", Answer: "1"},
		{Question: "", Answer: "orphan answer"},
		{Question: "orphan question", Answer: ""},
		{Question: "Second", Answer: "2"},
	}
	pairs := Normalize(raw, "", "d.pdf")
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %v", len(pairs), pairs)
	}
	if pairs[0].OutputText != "1" || pairs[1].OutputText != "2" {
		t.Errorf("order not preserved: %v", pairs)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if pairs := Normalize(nil, "S", "d.pdf"); len(pairs) != 0 {
		t.Errorf("expected no pairs, got %v", pairs)
	}
}

func TestLowerFirst(t *testing.T) {
	tests := []struct{ in, want string }{
		{"What", "what"},
		{"already", "already"},
		{"Éclair", "éclair"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := lowerFirst(tt.in); got != tt.want {
			t.Errorf("lowerFirst(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
