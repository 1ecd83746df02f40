package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// QdrantConfig configures the Qdrant-backed VectorStore implementation.
// Collections are created on first write when AutoCreateCollection is set;
// otherwise they must already exist.
type QdrantConfig struct {
	Host    string        `json:"host"`
	Port    int           `json:"port"`
	BaseURL string        `json:"base_url,omitempty"`
	APIKey  string        `json:"api_key,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`

	AutoCreateCollection bool   `json:"auto_create_collection,omitempty"`
	Distance             string `json:"distance,omitempty"`    // Cosine (default), Dot, Euclid
	VectorSize           int    `json:"vector_size,omitempty"` // 0 infers from the first chunk written
	Wait                 *bool  `json:"wait,omitempty"`        // wait for operation completion, default true

	PayloadTextField     string `json:"payload_text_field"`     // default "text"
	PayloadMetadataField string `json:"payload_metadata_field"` // default "metadata"
	PayloadDocIDField    string `json:"payload_doc_id_field"`   // default "doc_id"
	PayloadChunkIxField  string `json:"payload_chunk_ix_field"` // default "chunk_ix"
}

// QdrantStore implements VectorStore against Qdrant's REST API. Unlike the
// single-collection client the teacher shipped, every method here takes the
// collection name as an argument, matching the contract's per-call
// collection addressing.
type QdrantStore struct {
	cfg QdrantConfig

	baseURL string
	client  *http.Client
	logger  *zap.Logger

	ensured map[string]bool
}

// NewQdrantStore creates a Qdrant-backed VectorStore.
func NewQdrantStore(cfg QdrantConfig, logger *zap.Logger) *QdrantStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6333
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Distance == "" {
		cfg.Distance = "Cosine"
	}
	if cfg.PayloadTextField == "" {
		cfg.PayloadTextField = "text"
	}
	if cfg.PayloadMetadataField == "" {
		cfg.PayloadMetadataField = "metadata"
	}
	if cfg.PayloadDocIDField == "" {
		cfg.PayloadDocIDField = "doc_id"
	}
	if cfg.PayloadChunkIxField == "" {
		cfg.PayloadChunkIxField = "chunk_ix"
	}
	if cfg.Wait == nil {
		wait := true
		cfg.Wait = &wait
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	}

	return &QdrantStore{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(zap.String("component", "qdrant_store")),
		ensured: make(map[string]bool),
	}
}

var qdrantNamespace = uuid.MustParse("d9bde6d4-4f3a-4e6b-8f7a-5d8d2f3b4c1a")

func qdrantPointID(id string) string {
	// Stable UUID derived from the chunk ID (Qdrant point IDs must be UUIDs
	// or unsigned integers; chunk IDs here are arbitrary strings).
	return uuid.NewSHA1(qdrantNamespace, []byte(id)).String()
}

func (s *QdrantStore) ensureCollection(ctx context.Context, collection string, vectorSize int) error {
	if !s.cfg.AutoCreateCollection || s.ensured[collection] {
		return nil
	}
	if vectorSize <= 0 {
		return fmt.Errorf("qdrant vector size must be > 0")
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": s.cfg.Distance,
		},
	}

	endpoint := fmt.Sprintf("%s/collections/%s", s.baseURL, url.PathEscape(collection))
	reqBody, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	s.applyHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Qdrant returns 409 if the collection already exists.
	if resp.StatusCode != http.StatusConflict && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant create collection failed: status=%d body=%s", resp.StatusCode, string(raw))
	}

	s.ensured[collection] = true
	return nil
}

func (s *QdrantStore) applyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(s.cfg.APIKey) != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}
}

func (s *QdrantStore) doJSON(ctx context.Context, method, path string, in any, out any) error {
	endpoint := s.baseURL + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	s.applyHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant request failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// AddChunks implements VectorStore.
func (s *QdrantStore) AddChunks(ctx context.Context, collection string, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("qdrant collection is required")
	}

	vectorSize := s.cfg.VectorSize
	for i, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("chunk[%d] has empty id", i)
		}
		if len(chunk.Vector) == 0 {
			return fmt.Errorf("chunk[%d] has no vector", i)
		}
		if vectorSize == 0 {
			vectorSize = len(chunk.Vector)
		}
		if len(chunk.Vector) != vectorSize {
			return fmt.Errorf("chunk[%d] vector dimension mismatch: got=%d want=%d", i, len(chunk.Vector), vectorSize)
		}
	}

	if err := s.ensureCollection(ctx, collection, vectorSize); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float64      `json:"vector"`
		Payload map[string]any `json:"payload,omitempty"`
	}

	points := make([]point, 0, len(chunks))
	for _, chunk := range chunks {
		payload := map[string]any{
			s.cfg.PayloadDocIDField:    chunk.DocID,
			s.cfg.PayloadChunkIxField:  chunk.ChunkIx,
			s.cfg.PayloadTextField:     chunk.Text,
			s.cfg.PayloadMetadataField: chunk.Metadata,
			"_id":                      chunk.ID,
		}
		points = append(points, point{
			ID:      qdrantPointID(chunk.ID),
			Vector:  chunk.Vector,
			Payload: payload,
		})
	}

	req := struct {
		Points []point `json:"points"`
	}{Points: points}

	path := fmt.Sprintf("/collections/%s/points", url.PathEscape(collection))
	if s.cfg.Wait == nil || *s.cfg.Wait {
		path += "?wait=true"
	}

	var resp any
	if err := s.doJSON(ctx, http.MethodPut, path, req, &resp); err != nil {
		return err
	}

	s.logger.Debug("qdrant upsert completed", zap.String("collection", collection), zap.Int("count", len(chunks)))
	return nil
}

// Query implements VectorStore.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float64, k int, filter map[string]any) ([]types.Chunk, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	if k <= 0 {
		return []types.Chunk{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"with_vector":  false,
	}
	if qf := qdrantFilter(filter); qf != nil {
		req["filter"] = qf
	}

	type qdrantResult struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	}
	var resp struct {
		Result []qdrantResult `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(collection))
	if err := s.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	out := make([]types.Chunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := types.Chunk{Score: r.Score}
		if r.Payload != nil {
			if v, ok := r.Payload[s.cfg.PayloadDocIDField].(string); ok {
				chunk.DocID = v
			}
			if v, ok := r.Payload[s.cfg.PayloadTextField].(string); ok {
				chunk.Text = v
			}
			if v, ok := r.Payload[s.cfg.PayloadChunkIxField].(float64); ok {
				chunk.ChunkIx = int(v)
			}
			if m, ok := r.Payload[s.cfg.PayloadMetadataField].(map[string]any); ok {
				chunk.Metadata = m
			}
		}
		out = append(out, chunk)
	}
	return out, nil
}

// DeleteByFilter implements VectorStore.
func (s *QdrantStore) DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("qdrant collection is required")
	}

	qf := qdrantFilter(filter)
	if qf == nil {
		return fmt.Errorf("delete by empty filter is refused: would drop the entire collection")
	}

	req := struct {
		Filter any `json:"filter"`
	}{Filter: qf}

	path := fmt.Sprintf("/collections/%s/points/delete", url.PathEscape(collection))
	if s.cfg.Wait == nil || *s.cfg.Wait {
		path += "?wait=true"
	}

	var resp any
	return s.doJSON(ctx, http.MethodPost, path, req, &resp)
}

// qdrantFilter translates an exact-match metadata filter into Qdrant's
// filter DSL. Returns nil for an empty filter.
func qdrantFilter(filter map[string]any) any {
	if len(filter) == 0 {
		return nil
	}

	type condition struct {
		Key   string         `json:"key"`
		Match map[string]any `json:"match"`
	}

	must := make([]condition, 0, len(filter))
	for k, v := range filter {
		must = append(must, condition{
			Key:   "metadata." + k,
			Match: map[string]any{"value": v},
		})
	}

	return map[string]any{"must": must}
}
