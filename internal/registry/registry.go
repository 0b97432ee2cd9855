// ABOUTME: Document registry backed by Charm KV for cloud-synced metadata
// ABOUTME: Tracks which documents were ingested, for whom, and with how many chunks
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/kv"

	"github.com/citeseek/citeseek/internal/models"
)

const docPrefix = "doc:"

// KV is the key-value surface the registry needs. Satisfied by the
// charm store and by in-memory fakes in tests.
type KV interface {
	Set(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
}

// Config holds the charm connection settings
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// DefaultConfig reads CHARM_HOST with a local fallback
func DefaultConfig() Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "localhost"
	}
	return Config{Host: host, DBName: "citeseek", AutoSync: true}
}

// Registry records ingested document metadata in a KV store
type Registry struct {
	kv       KV
	autoSync bool
	mu       sync.Mutex
}

// Open connects to the charm KV database named in cfg
func Open(cfg Config) (*Registry, error) {
	os.Setenv("CHARM_HOST", cfg.Host)
	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return &Registry{kv: db, autoSync: cfg.AutoSync}, nil
}

// NewWithKV wraps an existing KV store. Used in tests and when the
// caller manages the charm connection itself.
func NewWithKV(store KV) *Registry {
	return &Registry{kv: store}
}

// Put records a document
func (r *Registry) Put(doc models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document has no id")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.kv.Set([]byte(docKey(doc.ID)), data); err != nil {
		return fmt.Errorf("set document %s: %w", doc.ID, err)
	}
	r.syncIfEnabled()
	return nil
}

// Get loads one document record
func (r *Registry) Get(documentID string) (models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.kv.Get([]byte(docKey(documentID)))
	if err != nil {
		return models.Document{}, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if data == nil {
		return models.Document{}, fmt.Errorf("document not found: %s", documentID)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("unmarshal document %s: %w", documentID, err)
	}
	return doc, nil
}

// List returns the documents visible to owner. A zero owner lists
// everything.
func (r *Registry) List(owner models.OwnerScope) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, err := r.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	var docs []models.Document
	for _, key := range keys {
		if !strings.HasPrefix(string(key), docPrefix) {
			continue
		}
		data, err := r.kv.Get(key)
		if err != nil || data == nil {
			continue
		}
		var doc models.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		if !owner.IsZero() && doc.Owner.Key() != owner.Key() {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes a document record
func (r *Registry) Delete(documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Delete([]byte(docKey(documentID))); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	r.syncIfEnabled()
	return nil
}

func (r *Registry) syncIfEnabled() {
	if r.autoSync {
		_ = r.kv.Sync()
	}
}

func docKey(documentID string) string {
	return docPrefix + documentID
}
