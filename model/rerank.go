package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPReranker scores (query, passage) pairs through a cross-encoder rerank
// endpoint (jina-compatible request shape).
type HTTPReranker struct {
	apiURL string
	model  string
	client *http.Client
}

var _ Reranker = (*HTTPReranker)(nil)

func NewHTTPReranker(apiURL, model string) *HTTPReranker {
	return &HTTPReranker{
		apiURL: apiURL,
		model:  model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Score returns one relevance score per passage, in passage input order.
func (r *HTTPReranker) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	reqBody := rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: passages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reranker API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var rerankResp rerankResponse
	if err := json.Unmarshal(respBody, &rerankResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if rerankResp.Error != nil {
		return nil, fmt.Errorf("reranker error: %s", rerankResp.Error.Message)
	}

	scores := make([]float64, len(passages))
	for _, res := range rerankResp.Results {
		if res.Index < 0 || res.Index >= len(scores) {
			return nil, fmt.Errorf("reranker returned out-of-range index %d for %d documents", res.Index, len(passages))
		}
		scores[res.Index] = res.RelevanceScore
	}
	return scores, nil
}
