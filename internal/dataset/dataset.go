package dataset

import (
	"sync"
)

// QAPair is the export-ready shape of a generated question/answer unit.
// InputText carries the context clause naming the source section or document
// and always ends with a question mark; OutputText is trimmed and non-empty.
type QAPair struct {
	InputText  string `json:"input_text"`
	OutputText string `json:"output_text"`
}

// Store maps chunk ids to their generated pairs. Insertion order within a
// chunk is preserved; the export order across chunks follows the chunk list,
// not the store. Single writer (the orchestrator or the one-chunk generation
// path), but reads can come from request handlers, hence the lock.
type Store struct {
	mu    sync.Mutex
	pairs map[int][]QAPair
}

func NewStore() *Store {
	return &Store{pairs: make(map[int][]QAPair)}
}

// Put replaces the pairs cached for a chunk.
func (s *Store) Put(chunkID int, pairs []QAPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[chunkID] = pairs
}

// Get returns the pairs cached for a chunk and whether an entry exists.
func (s *Store) Get(chunkID int) ([]QAPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairs, ok := s.pairs[chunkID]
	return pairs, ok
}

// Delete evicts a chunk's cached pairs.
func (s *Store) Delete(chunkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, chunkID)
}

// Len returns the number of chunks with cached pairs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairs)
}

// PairCount returns the total number of cached pairs across all chunks.
func (s *Store) PairCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.pairs {
		n += len(p)
	}
	return n
}

// Reset drops all cached pairs.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs = make(map[int][]QAPair)
}
