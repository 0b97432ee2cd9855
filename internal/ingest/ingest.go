// ABOUTME: Ingestion pipeline from raw files to embedded chunks in the vector store
// ABOUTME: Extracts, chunks, embeds and upserts, then records the document in the registry
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/chunker"
	"github.com/citeseek/citeseek/internal/models"
	"github.com/citeseek/citeseek/internal/vectorstore"
)

// Extractor converts raw document bytes into plain text
type Extractor interface {
	Extract(content []byte, ext string) (string, error)
}

// Embedder converts texts into vectors
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Recorder tracks ingested document metadata
type Recorder interface {
	Put(doc models.Document) error
	Delete(documentID string) error
}

// Ingestor runs the extract-chunk-embed-store pipeline
type Ingestor struct {
	extractor   Extractor
	chunker     *chunker.Chunker
	embedder    Embedder
	store       vectorstore.Store
	registry    Recorder
	concurrency int
	logger      *logrus.Logger
	now         func() time.Time
}

// New builds an ingestor. registry may be nil when no metadata
// tracking is wanted. concurrency bounds parallel file ingestion.
func New(extractor Extractor, ch *chunker.Chunker, embedder Embedder, store vectorstore.Store, registry Recorder, concurrency int, logger *logrus.Logger) *Ingestor {
	if concurrency < 1 {
		concurrency = 2
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Ingestor{
		extractor:   extractor,
		chunker:     ch,
		embedder:    embedder,
		store:       store,
		registry:    registry,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// IngestFile reads one document from disk and indexes it for owner
func (ing *Ingestor) IngestFile(ctx context.Context, path string, owner models.OwnerScope) (models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ing.IngestBytes(ctx, filepath.Base(path), content, "", owner)
}

// IngestBytes indexes an in-memory document. sourceURL is optional and
// recorded for web-sourced content.
func (ing *Ingestor) IngestBytes(ctx context.Context, fileName string, content []byte, sourceURL string, owner models.OwnerScope) (models.Document, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	text, err := ing.extractor.Extract(content, ext)
	if err != nil {
		return models.Document{}, fmt.Errorf("extract %s: %w", fileName, err)
	}
	if strings.TrimSpace(text) == "" {
		return models.Document{}, fmt.Errorf("no text content in %s", fileName)
	}

	documentID := uuid.NewString()
	chunks := ing.chunker.Chunk(documentID, text)
	if len(chunks) == 0 {
		return models.Document{}, fmt.Errorf("chunking produced nothing for %s", fileName)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ing.embedder.Embed(ctx, texts)
	if err != nil {
		return models.Document{}, fmt.Errorf("embed %s: %w", fileName, err)
	}

	uploadedAt := ing.now().UTC()
	records := make([]models.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = models.VectorRecord{
			PointID: uuid.NewString(),
			Vector:  vectors[i],
			Payload: models.RecordPayload{
				Content:    c.Content,
				DocumentID: documentID,
				ChunkID:    c.ID,
				ChunkIndex: c.ChunkIndex,
				StartChar:  c.StartChar,
				EndChar:    c.EndChar,
				FileName:   fileName,
				FileType:   strings.TrimPrefix(ext, "."),
				FileSize:   int64(len(content)),
				SourceURL:  sourceURL,
				UserID:     owner.UserID,
				SessionID:  owner.SessionID,
				UploadedAt: uploadedAt,
			},
		}
	}

	if err := ing.store.Upsert(ctx, records); err != nil {
		return models.Document{}, fmt.Errorf("store %s: %w", fileName, err)
	}

	doc := models.Document{
		ID:         documentID,
		FileName:   fileName,
		FileType:   strings.TrimPrefix(ext, "."),
		FileSize:   int64(len(content)),
		SourceURL:  sourceURL,
		Owner:      owner,
		ChunkCount: len(chunks),
		UploadedAt: uploadedAt,
	}
	if ing.registry != nil {
		if err := ing.registry.Put(doc); err != nil {
			ing.logger.WithFields(logrus.Fields{
				"operation":   "ingest",
				"document_id": documentID,
				"error":       err.Error(),
			}).Warn("document indexed but registry write failed")
		}
	}

	ing.logger.WithFields(logrus.Fields{
		"operation":   "ingest",
		"document_id": documentID,
		"file_name":   fileName,
		"chunks":      len(chunks),
	}).Info("document ingested")
	return doc, nil
}

// IngestDir walks root and ingests every regular file, at most
// concurrency files at a time. Per-file failures are logged and
// skipped so one bad file does not abort the batch.
func (ing *Ingestor) IngestDir(ctx context.Context, root string, owner models.OwnerScope) ([]models.Document, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	docs := make([]models.Document, 0, len(paths))
	var mu sync.Mutex
	sem := make(chan struct{}, ing.concurrency)
	var wg sync.WaitGroup

	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc, err := ing.IngestFile(ctx, path, owner)
			if err != nil {
				ing.logger.WithFields(logrus.Fields{
					"operation": "ingest_dir",
					"path":      path,
					"error":     err.Error(),
				}).Warn("skipping file")
				return
			}
			mu.Lock()
			docs = append(docs, doc)
			mu.Unlock()
		}(path)
	}
	wg.Wait()
	return docs, nil
}

// DeleteDocument removes a document's vectors and its registry record
func (ing *Ingestor) DeleteDocument(ctx context.Context, documentID string, owner models.OwnerScope) error {
	if err := ing.store.DeleteDocument(ctx, documentID, owner); err != nil {
		return fmt.Errorf("delete vectors for %s: %w", documentID, err)
	}
	if ing.registry != nil {
		if err := ing.registry.Delete(documentID); err != nil {
			return fmt.Errorf("delete registry record %s: %w", documentID, err)
		}
	}
	return nil
}
