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

// classifierPrefixLen bounds how much of a document the classifier sees.
// Classification is coarse document typing, not comprehension.
const classifierPrefixLen = 512

// HTTPClassifier labels documents through a text-classification endpoint
// returning ranked [{label, score}] candidates.
type HTTPClassifier struct {
	apiURL string
	model  string
	client *http.Client
}

var _ Classifier = (*HTTPClassifier)(nil)

func NewHTTPClassifier(apiURL, model string) *HTTPClassifier {
	return &HTTPClassifier{
		apiURL: apiURL,
		model:  model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type classifyRequest struct {
	Model  string `json:"model"`
	Inputs string `json:"inputs"`
	TopK   int    `json:"top_k"`
}

type classifyCandidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify labels a bounded prefix of text. The caller gets the top
// candidate; failure propagates, downstream filtering depends on the label.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	runes := []rune(text)
	if len(runes) > classifierPrefixLen {
		runes = runes[:classifierPrefixLen]
	}

	reqBody := classifyRequest{
		Model:  c.model,
		Inputs: string(runes),
		TopK:   1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("classifier API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var candidates []classifyCandidate
	if err := json.Unmarshal(respBody, &candidates); err != nil {
		return "", 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(candidates) == 0 {
		return "", 0, fmt.Errorf("classifier returned no candidates")
	}

	return candidates[0].Label, candidates[0].Score, nil
}
