// ABOUTME: In-memory vector store with cosine similarity search
// ABOUTME: Degraded fallback arena keyed by owner, expired only on caller request
package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/citeseek/citeseek/internal/models"
)

// cosineEpsilon avoids division by zero for degenerate all-zero vectors
const cosineEpsilon = 1e-10

type memoryEntry struct {
	vector  []float32
	payload models.RecordPayload
	seq     int64
}

type ownerArena struct {
	entries map[string]memoryEntry
	touched time.Time
}

// MemoryStore holds vectors per owner in process memory. It exists as a
// degraded fallback when the external vector database is unreachable;
// callers use it through the failover wrapper without a contract change.
type MemoryStore struct {
	mu     sync.RWMutex
	arenas map[string]*ownerArena
	seq    int64
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		arenas: make(map[string]*ownerArena),
		now:    time.Now,
	}
}

// Upsert writes records into each record's owner arena. Overwrite by
// point id keeps the original insertion sequence so ranking ties stay
// stable across re-upserts.
func (m *MemoryStore) Upsert(_ context.Context, records []models.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range records {
		owner := models.OwnerScope{UserID: rec.Payload.UserID, SessionID: rec.Payload.SessionID}
		arena := m.arenas[owner.Key()]
		if arena == nil {
			arena = &ownerArena{entries: make(map[string]memoryEntry)}
			m.arenas[owner.Key()] = arena
		}
		arena.touched = m.now()

		seq := m.seq
		if existing, ok := arena.entries[rec.PointID]; ok {
			seq = existing.seq
		} else {
			m.seq++
		}
		arena.entries[rec.PointID] = memoryEntry{
			vector:  rec.Vector,
			payload: rec.Payload,
			seq:     seq,
		}
	}
	return nil
}

// Search ranks the owner's records by cosine similarity, descending,
// breaking ties by insertion order
func (m *MemoryStore) Search(_ context.Context, vector []float32, k int, owner models.OwnerScope) ([]models.RAGResult, error) {
	m.mu.RLock()
	arena := m.arenas[owner.Key()]
	if arena == nil {
		m.mu.RUnlock()
		return nil, nil
	}

	type scored struct {
		entry memoryEntry
		score float64
	}
	candidates := make([]scored, 0, len(arena.entries))
	for _, e := range arena.entries {
		candidates = append(candidates, scored{entry: e, score: CosineSimilarity(vector, e.vector)})
	}
	m.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.seq < candidates[j].entry.seq
	})

	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]models.RAGResult, len(candidates))
	for i, c := range candidates {
		results[i] = resultFromPayload(c.entry.payload, c.score)
	}
	return results, nil
}

// DeleteDocument removes all of a document's records from the owner arena
func (m *MemoryStore) DeleteDocument(_ context.Context, documentID string, owner models.OwnerScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	arena := m.arenas[owner.Key()]
	if arena == nil {
		return nil
	}
	for id, e := range arena.entries {
		if e.payload.DocumentID == documentID {
			delete(arena.entries, id)
		}
	}
	return nil
}

// ExpireBefore drops owner arenas not touched since the cutoff. The host
// application decides when to call this; the store never self-schedules.
func (m *MemoryStore) ExpireBefore(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, arena := range m.arenas {
		if arena.touched.Before(cutoff) {
			delete(m.arenas, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of records stored for an owner
func (m *MemoryStore) Len(owner models.OwnerScope) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if arena := m.arenas[owner.Key()]; arena != nil {
		return len(arena.entries)
	}
	return 0
}

// CosineSimilarity computes dot(a,b) / (||a||*||b|| + epsilon).
// Accumulation runs in float64 to limit drift on long vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}
