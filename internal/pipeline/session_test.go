package pipeline

import (
	"errors"
	"testing"

	"github.com/hitrax/qagen/internal/dataset"
	"github.com/hitrax/qagen/internal/document"
	"github.com/hitrax/qagen/internal/outline"
)

func TestSession_AutoSplitReplacesChunksAtomically(t *testing.T) {
	sess := NewSession(nil)
	sess.LoadDocument(&fakeDoc{
		pages: 20,
		outline: []document.OutlineNode{
			{Title: "One", Page: 1},
			{Title: "Two", Page: 5},
			{Title: "Two again", Page: 5},
			{Title: "Three", Page: 12},
		},
	})

	// Seed a manual chunk and a cached result; the split must wipe both.
	if _, err := sess.AddChunk(2, 3, "manual"); err != nil {
		t.Fatalf("add chunk: %v", err)
	}
	sess.Store().Put(1, []dataset.QAPair{{InputText: "Q?", OutputText: "A"}})

	chunks, err := sess.AutoSplit(4)
	if err != nil {
		t.Fatalf("auto-split failed: %v", err)
	}

	// Sections [1-4], [5-11], [12-20] with duplicate page 5 removed.
	wantRanges := [][2]int{{1, 4}, {5, 8}, {9, 11}, {12, 15}, {16, 19}, {20, 20}}
	if len(chunks) != len(wantRanges) {
		t.Fatalf("expected %d chunks, got %d: %v", len(wantRanges), len(chunks), chunks)
	}
	for i, w := range wantRanges {
		if chunks[i].ID != i+1 {
			t.Errorf("chunk %d: expected id %d, got %d", i, i+1, chunks[i].ID)
		}
		if chunks[i].StartPage != w[0] || chunks[i].EndPage != w[1] {
			t.Errorf("chunk %d: expected %v, got %d-%d", i, w, chunks[i].StartPage, chunks[i].EndPage)
		}
	}
	if sess.Store().Len() != 0 {
		t.Error("auto-split must reset the QA cache")
	}

	// Manual ids continue after the new set.
	added, err := sess.AddChunk(1, 2, "")
	if err != nil {
		t.Fatalf("add chunk: %v", err)
	}
	if added.ID != len(wantRanges)+1 {
		t.Errorf("expected next id %d, got %d", len(wantRanges)+1, added.ID)
	}
}

func TestSession_AutoSplitNoOutline(t *testing.T) {
	sess := NewSession(nil)
	sess.LoadDocument(&fakeDoc{pages: 10})
	_, err := sess.AutoSplit(4)
	if !errors.Is(err, ErrNoOutline) {
		t.Fatalf("expected ErrNoOutline, got %v", err)
	}
	if len(sess.Chunks()) != 0 {
		t.Error("chunk list should be empty")
	}
}

func TestSession_AutoSplitUnusableOutline(t *testing.T) {
	sess := NewSession(nil)
	sess.LoadDocument(&fakeDoc{
		pages: 10,
		outline: []document.OutlineNode{
			{Title: "Broken", Page: 0},
		},
	})
	if _, err := sess.AddChunk(1, 2, ""); err != nil {
		t.Fatalf("add chunk: %v", err)
	}

	_, err := sess.AutoSplit(4)
	if !errors.Is(err, outline.ErrUnusable) {
		t.Fatalf("expected ErrUnusable, got %v", err)
	}
	if len(sess.Chunks()) != 0 {
		t.Error("an unusable outline must clear the chunk list")
	}
}

func TestSession_AutoSplitUnreadableOutline(t *testing.T) {
	sess := NewSession(nil)
	sess.LoadDocument(&fakeDoc{pages: 10, outlineErr: errors.New("dereference outline item")})
	if _, err := sess.AddChunk(1, 2, ""); err != nil {
		t.Fatalf("add chunk: %v", err)
	}

	_, err := sess.AutoSplit(4)
	if errors.Is(err, ErrNoOutline) {
		t.Fatalf("an unreadable outline must not pass for a missing one: %v", err)
	}
	if !errors.Is(err, outline.ErrUnusable) {
		t.Fatalf("expected ErrUnusable, got %v", err)
	}
	if len(sess.Chunks()) != 0 {
		t.Error("an unreadable outline must clear the chunk list")
	}
}

func TestSession_AddChunkValidation(t *testing.T) {
	sess := NewSession(nil)
	sess.LoadDocument(&fakeDoc{pages: 10})

	tests := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"valid", 1, 10, false},
		{"single page", 5, 5, false},
		{"zero start", 0, 3, true},
		{"inverted", 6, 4, true},
		{"past end", 8, 11, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sess.AddChunk(tt.start, tt.end, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("AddChunk(%d, %d) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
			}
		})
	}
}

func TestSession_DeleteChunkEvictsCache(t *testing.T) {
	sess := NewSession(nil)
	sess.LoadDocument(&fakeDoc{pages: 10})
	chunk, err := sess.AddChunk(1, 4, "")
	if err != nil {
		t.Fatalf("add chunk: %v", err)
	}
	sess.Store().Put(chunk.ID, []dataset.QAPair{{InputText: "Q?", OutputText: "A"}})

	if !sess.DeleteChunk(chunk.ID) {
		t.Fatal("delete reported failure")
	}
	if len(sess.Chunks()) != 0 {
		t.Error("chunk should be gone")
	}
	if _, ok := sess.Store().Get(chunk.ID); ok {
		t.Error("cached pairs should be evicted with the chunk")
	}
	if sess.DeleteChunk(chunk.ID) {
		t.Error("second delete should report failure")
	}
}

func TestSession_LoadDocumentResetsState(t *testing.T) {
	sess := NewSession(nil)
	sess.LoadDocument(&fakeDoc{pages: 10})
	if _, err := sess.AddChunk(1, 2, ""); err != nil {
		t.Fatalf("add chunk: %v", err)
	}
	sess.Store().Put(1, []dataset.QAPair{{InputText: "Q?", OutputText: "A"}})

	sess.LoadDocument(&fakeDoc{pages: 5})
	if len(sess.Chunks()) != 0 || sess.Store().Len() != 0 {
		t.Error("loading a document must reset chunks and cache")
	}
	added, err := sess.AddChunk(1, 1, "")
	if err != nil {
		t.Fatalf("add chunk: %v", err)
	}
	if added.ID != 1 {
		t.Errorf("id counter should restart at 1, got %d", added.ID)
	}
}
