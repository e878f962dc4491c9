package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HuggingFace scores text through the hosted inference API for a binary
// sentiment model. The two class probabilities are collapsed onto [-1, 1] as
// P(positive) - P(negative); confidence is the winning probability.
type HuggingFace struct {
	Token   string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewHuggingFace(token, model string) *HuggingFace {
	if model == "" {
		model = "distilbert-base-uncased-finetuned-sst-2-english"
	}
	return &HuggingFace{
		Token:   token,
		Model:   model,
		BaseURL: "https://api-inference.huggingface.co",
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) Analyze(ctx context.Context, text string) (Result, error) {
	if h.Token == "" {
		return Result{}, errors.New("huggingface token not configured")
	}
	body, _ := json.Marshal(map[string]any{"inputs": text})
	url := fmt.Sprintf("%s/models/%s", h.BaseURL, h.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+h.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("huggingface request failed: status %d", resp.StatusCode)
	}

	var decoded [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, err
	}
	if len(decoded) == 0 || len(decoded[0]) == 0 {
		return Result{}, errors.New("huggingface returned no scores")
	}

	positive, negative := 0.5, 0.5
	for _, class := range decoded[0] {
		switch class.Label {
		case "POSITIVE":
			positive = class.Score
		case "NEGATIVE":
			negative = class.Score
		}
	}

	score := positive - negative
	confidence := positive
	if negative > positive {
		confidence = negative
	}
	return normalize(Result{
		Provider:   h.Name(),
		Score:      score,
		Magnitude:  confidence,
		Confidence: confidence,
	}), nil
}
