package fingerprint

import (
	"image"
	"sort"
	"sync"

	"github.com/rivo/duplo"
)

// SimilarityThreshold is the duplo score below which two images are
// considered near-identical.
const SimilarityThreshold = -60.0

// Match describes a stored image that is visually close to a query.
type Match struct {
	ID    string
	Score float64
}

// Store indexes perceptual fingerprints of previously seen images so
// new uploads can be checked for near-duplicates. Safe for concurrent
// use.
type Store struct {
	mu    sync.Mutex
	store *duplo.Store
}

// NewStore creates an empty fingerprint index.
func NewStore() *Store {
	return &Store{store: duplo.New()}
}

// Add indexes an image under the given id.
func (s *Store) Add(id string, img image.Image) {
	hash, _ := duplo.CreateHash(img)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Add(id, hash)
}

// Query returns the closest stored match below the similarity
// threshold, if any.
func (s *Store) Query(img image.Image) (Match, bool) {
	hash, _ := duplo.CreateHash(img)

	s.mu.Lock()
	matches := s.store.Query(hash)
	s.mu.Unlock()

	if len(matches) == 0 {
		return Match{}, false
	}
	sort.Sort(matches)

	best := matches[0]
	if best.Score >= SimilarityThreshold {
		return Match{}, false
	}
	id, _ := best.ID.(string)
	return Match{ID: id, Score: best.Score}, true
}

// Size reports how many fingerprints are indexed.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Size()
}

// CompareImages computes the duplo similarity score between two images
// directly, without touching the index.
func CompareImages(a, b image.Image) float64 {
	hashA, _ := duplo.CreateHash(a)
	hashB, _ := duplo.CreateHash(b)

	store := duplo.New()
	store.Add("a", hashA)
	matches := store.Query(hashB)
	if len(matches) == 0 {
		return 0
	}
	return matches[0].Score
}
