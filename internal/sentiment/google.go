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

// GoogleNL scores text with the Google Cloud Natural Language API. Its
// native score is already on [-1, 1]; magnitude is unbounded, so confidence
// is magnitude capped at 1.
type GoogleNL struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewGoogleNL(apiKey string) *GoogleNL {
	return &GoogleNL{
		APIKey:  apiKey,
		BaseURL: "https://language.googleapis.com",
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *GoogleNL) Name() string { return "google" }

func (g *GoogleNL) Analyze(ctx context.Context, text string) (Result, error) {
	if g.APIKey == "" {
		return Result{}, errors.New("google nl api key not configured")
	}
	payload := map[string]any{
		"document": map[string]any{
			"type":    "PLAIN_TEXT",
			"content": text,
		},
		"encodingType": "UTF8",
	}
	body, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/v1/documents:analyzeSentiment?key=%s", g.BaseURL, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("google nl request failed: status %d", resp.StatusCode)
	}

	var decoded struct {
		DocumentSentiment struct {
			Score     float64 `json:"score"`
			Magnitude float64 `json:"magnitude"`
		} `json:"documentSentiment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, err
	}

	score := decoded.DocumentSentiment.Score
	magnitude := decoded.DocumentSentiment.Magnitude
	return normalize(Result{
		Provider:   g.Name(),
		Score:      score,
		Magnitude:  magnitude,
		Confidence: magnitude,
	}), nil
}
