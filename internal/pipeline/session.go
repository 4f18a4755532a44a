package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitrax/qagen/internal/dataset"
	"github.com/hitrax/qagen/internal/document"
	"github.com/hitrax/qagen/internal/outline"
	"github.com/hitrax/qagen/internal/splitter"
)

var (
	ErrNoDocument = errors.New("no document loaded")
	ErrNoOutline  = errors.New("document has no table of contents")
	ErrBusy       = errors.New("a generation run is already in progress")
)

// Session is the single-user in-memory state of one document workflow: the
// open document, its chunk list, and the QA cache. One writer at a time; the
// busy flag keeps single-chunk generation and batch runs mutually exclusive.
type Session struct {
	mu     sync.Mutex
	log    *slog.Logger
	doc    document.Document
	chunks []splitter.Chunk
	nextID int
	store  *dataset.Store
	busy   bool
	run    RunState
}

// RunState reports the progress of the current or last batch run.
type RunState struct {
	Running   bool   `json:"running"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Error     string `json:"error,omitempty"`
}

func NewSession(log *slog.Logger) *Session {
	return &Session{log: log, nextID: 1, store: dataset.NewStore()}
}

// LoadDocument replaces the session's document and resets all derived state.
func (s *Session) LoadDocument(doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.chunks = nil
	s.nextID = 1
	s.store.Reset()
	s.run = RunState{}
}

func (s *Session) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *Session) Store() *dataset.Store { return s.store }

// Chunks returns a copy of the current chunk list.
func (s *Session) Chunks() []splitter.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]splitter.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Chunk looks up a chunk by id.
func (s *Session) Chunk(id int) (splitter.Chunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chunks {
		if c.ID == id {
			return c, true
		}
	}
	return splitter.Chunk{}, false
}

// AutoSplit derives the chunk list from the document outline, replacing any
// existing chunks wholesale. Both failure modes (no outline, outline present
// but unusable) leave the chunk list empty; they are distinct errors so the
// caller can phrase them differently.
func (s *Session) AutoSplit(maxPages int) ([]splitter.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	if s.busy {
		return nil, ErrBusy
	}

	bookmarks, err := outline.Resolve(s.doc, s.log)
	if err != nil {
		s.replaceChunksLocked(nil)
		return nil, fmt.Errorf("auto-split failed: %w", err)
	}
	if bookmarks == nil {
		s.replaceChunksLocked(nil)
		return nil, ErrNoOutline
	}

	chunks := splitter.Split(bookmarks, s.doc.PageCount(), maxPages)
	s.replaceChunksLocked(chunks)
	return s.chunks, nil
}

func (s *Session) replaceChunksLocked(chunks []splitter.Chunk) {
	s.chunks = chunks
	s.nextID = len(chunks) + 1
	s.store.Reset()
}

// AddChunk appends a manual chunk. Manual chunks may overlap or leave gaps.
func (s *Session) AddChunk(start, end int, title string) (splitter.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return splitter.Chunk{}, ErrNoDocument
	}
	if start < 1 || end < start || end > s.doc.PageCount() {
		return splitter.Chunk{}, fmt.Errorf("invalid page range %d-%d (document has %d pages)", start, end, s.doc.PageCount())
	}
	chunk := splitter.Chunk{ID: s.nextID, StartPage: start, EndPage: end, ContextTitle: title}
	s.nextID++
	s.chunks = append(s.chunks, chunk)
	return chunk, nil
}

// DeleteChunk removes a chunk and evicts its cached pairs.
func (s *Session) DeleteChunk(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.chunks {
		if c.ID == id {
			s.chunks = append(s.chunks[:i], s.chunks[i+1:]...)
			s.store.Delete(id)
			return true
		}
	}
	return false
}

// StorePairs caches a chunk's generated pairs. The write is dropped when
// the chunk was deleted while generation was in flight, so the cache never
// holds an entry for an id that left the chunk list.
func (s *Session) StorePairs(id int, pairs []dataset.QAPair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chunks {
		if c.ID == id {
			s.store.Put(id, pairs)
			return true
		}
	}
	return false
}

// acquire marks the session busy for a generation run.
func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

func (s *Session) setRun(run RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
}

func (s *Session) updateRun(fn func(*RunState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.run)
}

// Run returns a snapshot of the batch run state.
func (s *Session) Run() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}
