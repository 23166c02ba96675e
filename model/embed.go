package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// OllamaEmbedder creates embeddings through an Ollama /api/embeddings
// endpoint. Vectors are normalized so cosine distance behaves.
type OllamaEmbedder struct {
	apiURL string
	model  string
	client *http.Client
}

var _ Embedder = (*OllamaEmbedder)(nil)

func NewOllamaEmbedder(apiURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		apiURL: apiURL,
		model:  model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := ollamaEmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	norm := normalize64(ollamaResp.Embedding)

	embedding := make([]float32, len(norm))
	for i, v := range norm {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// EmbedBatch embeds texts one by one; the result keeps input order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d of %d: %w", i+1, len(texts), err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func normalize64(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i, x := range vec {
		vec[i] = x / norm
	}
	return vec
}
