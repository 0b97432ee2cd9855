// ABOUTME: Qdrant-backed vector store speaking the HTTP JSON API
// ABOUTME: Collection uses cosine distance with a fixed vector dimension
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/models"
)

// QdrantConfig holds connection settings for the Qdrant service
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// Validate checks the config for required fields
func (c *QdrantConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("qdrant URL is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("qdrant collection name is required")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", c.Dimension)
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// QdrantStore implements Store against a Qdrant collection
type QdrantStore struct {
	config     *QdrantConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewQdrantStore creates a Qdrant-backed store
func NewQdrantStore(config *QdrantConfig, logger *logrus.Logger) (*QdrantStore, error) {
	if config == nil {
		return nil, fmt.Errorf("qdrant config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid qdrant config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &QdrantStore{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

func (q *QdrantStore) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	url := q.config.URL + path

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.config.APIKey != "" {
		req.Header.Set("api-key", q.config.APIKey)
	}

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// EnsureCollection creates the collection if it does not exist, with
// cosine distance and the configured fixed dimension
func (q *QdrantStore) EnsureCollection(ctx context.Context) error {
	path := "/collections/" + q.config.Collection
	if _, err := q.doRequest(ctx, http.MethodGet, path, nil); err == nil {
		return nil
	}

	reqBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     q.config.Dimension,
			"distance": "Cosine",
		},
	}
	if _, err := q.doRequest(ctx, http.MethodPut, path, reqBody); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.WithField("collection", q.config.Collection).Info("created qdrant collection")
	return nil
}

// qdrantPoint is the wire format for one stored point. The payload is a
// flat key/value map as required by strict backends.
type qdrantPoint struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

// Upsert writes records as points. A dimension mismatch is rejected
// locally before anything reaches the database.
func (q *QdrantStore) Upsert(ctx context.Context, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]qdrantPoint, len(records))
	for i, rec := range records {
		if len(rec.Vector) != q.config.Dimension {
			return fmt.Errorf("record %s has dimension %d, collection expects %d",
				rec.PointID, len(rec.Vector), q.config.Dimension)
		}
		points[i] = qdrantPoint{
			ID:      rec.PointID,
			Vector:  rec.Vector,
			Payload: flattenPayload(rec.Payload),
		}
	}

	path := fmt.Sprintf("/collections/%s/points", q.config.Collection)
	if _, err := q.doRequest(ctx, http.MethodPut, path, map[string]interface{}{"points": points}); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"collection": q.config.Collection,
		"count":      len(points),
	}).Debug("points upserted")
	return nil
}

// Search runs a filtered nearest-neighbor query scoped to the owner
func (q *QdrantStore) Search(ctx context.Context, vector []float32, k int, owner models.OwnerScope) ([]models.RAGResult, error) {
	reqBody := map[string]interface{}{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	if filter := ownerFilter(owner); filter != nil {
		reqBody["filter"] = filter
	}

	path := fmt.Sprintf("/collections/%s/points/search", q.config.Collection)
	respBody, err := q.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var response struct {
		Result []struct {
			ID      string                 `json:"id"`
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]models.RAGResult, 0, len(response.Result))
	for _, point := range response.Result {
		results = append(results, resultFromPayload(unflattenPayload(point.Payload), point.Score))
	}
	return results, nil
}

// DeleteDocument removes all points of a document within the owner scope
func (q *QdrantStore) DeleteDocument(ctx context.Context, documentID string, owner models.OwnerScope) error {
	must := []map[string]interface{}{
		{"key": "document_id", "match": map[string]interface{}{"value": documentID}},
	}
	if filter := ownerFilter(owner); filter != nil {
		must = append(must, filter["must"].([]map[string]interface{})...)
	}

	path := fmt.Sprintf("/collections/%s/points/delete", q.config.Collection)
	reqBody := map[string]interface{}{
		"filter": map[string]interface{}{"must": must},
	}
	if _, err := q.doRequest(ctx, http.MethodPost, path, reqBody); err != nil {
		return fmt.Errorf("failed to delete document points: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"collection": q.config.Collection,
		"document":   documentID,
	}).Debug("document points deleted")
	return nil
}

// Count returns the number of stored points for the owner
func (q *QdrantStore) Count(ctx context.Context, owner models.OwnerScope) (int64, error) {
	reqBody := map[string]interface{}{"exact": true}
	if filter := ownerFilter(owner); filter != nil {
		reqBody["filter"] = filter
	}

	path := fmt.Sprintf("/collections/%s/points/count", q.config.Collection)
	respBody, err := q.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}

	var response struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}
	return response.Result.Count, nil
}

// ownerFilter builds an equality filter on user_id or session_id.
// Returns nil when no owner is set (test/admin scans).
func ownerFilter(owner models.OwnerScope) map[string]interface{} {
	var key, value string
	switch {
	case owner.UserID != "":
		key, value = "user_id", owner.UserID
	case owner.SessionID != "":
		key, value = "session_id", owner.SessionID
	default:
		return nil
	}
	return map[string]interface{}{
		"must": []map[string]interface{}{
			{"key": key, "match": map[string]interface{}{"value": value}},
		},
	}
}

func flattenPayload(p models.RecordPayload) map[string]interface{} {
	payload := map[string]interface{}{
		"content":     p.Content,
		"document_id": p.DocumentID,
		"chunk_id":    p.ChunkID,
		"chunk_index": p.ChunkIndex,
		"start_char":  p.StartChar,
		"end_char":    p.EndChar,
		"file_name":   p.FileName,
		"file_type":   p.FileType,
		"file_size":   p.FileSize,
		"uploaded_at": p.UploadedAt.Format(time.RFC3339),
	}
	if p.SourceURL != "" {
		payload["source_url"] = p.SourceURL
	}
	if p.UserID != "" {
		payload["user_id"] = p.UserID
	}
	if p.SessionID != "" {
		payload["session_id"] = p.SessionID
	}
	return payload
}

func unflattenPayload(payload map[string]interface{}) models.RecordPayload {
	p := models.RecordPayload{}
	if payload == nil {
		return p
	}
	p.Content, _ = payload["content"].(string)
	p.DocumentID, _ = payload["document_id"].(string)
	p.ChunkID, _ = payload["chunk_id"].(string)
	p.FileName, _ = payload["file_name"].(string)
	p.FileType, _ = payload["file_type"].(string)
	p.SourceURL, _ = payload["source_url"].(string)
	p.UserID, _ = payload["user_id"].(string)
	p.SessionID, _ = payload["session_id"].(string)
	if v, ok := payload["chunk_index"].(float64); ok {
		p.ChunkIndex = int(v)
	}
	if v, ok := payload["start_char"].(float64); ok {
		p.StartChar = int(v)
	}
	if v, ok := payload["end_char"].(float64); ok {
		p.EndChar = int(v)
	}
	if v, ok := payload["file_size"].(float64); ok {
		p.FileSize = int64(v)
	}
	if v, ok := payload["uploaded_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.UploadedAt = t
		}
	}
	return p
}
