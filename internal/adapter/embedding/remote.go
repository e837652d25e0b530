package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RemoteProvider delegates embedding to an external semantic endpoint
// (e.g. a locally hosted SBERT server). Expected response: {"embedding": [...]}.
//
// Embedding failure must never abort an analysis, only degrade it, so every
// failure path — missing configuration, transport error, non-200 status,
// malformed body, wrong dimension — returns the zero vector.
type RemoteProvider struct {
	endpoint   string
	token      string // Bearer token (empty = no auth)
	dim        int
	httpClient *http.Client
}

// NewRemoteProvider creates a remote embedder for the given endpoint.
func NewRemoteProvider(endpoint, token string, dim int) *RemoteProvider {
	return &RemoteProvider{
		endpoint:   endpoint,
		token:      token,
		dim:        dim,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ProviderID identifies this provider configuration.
func (p *RemoteProvider) ProviderID() string {
	return fmt.Sprintf("remote-%d", p.dim)
}

// Dimension returns the fixed vector length.
func (p *RemoteProvider) Dimension() int {
	return p.dim
}

// Embed calls the remote endpoint and returns its vector, or the zero vector
// on any failure.
func (p *RemoteProvider) Embed(ctx context.Context, text string) []float32 {
	zero := make([]float32, p.dim)
	if p.endpoint == "" || text == "" {
		return zero
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return zero
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		slog.Warn("remote embed: create request failed", "error", err)
		return zero
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Warn("remote embed: request failed", "error", err)
		return zero
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("remote embed: non-200 response", "status", resp.StatusCode, "body", string(body))
		return zero
	}

	var out struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Warn("remote embed: decode failed", "error", err)
		return zero
	}
	if len(out.Embedding) != p.dim {
		slog.Warn("remote embed: dimension mismatch", "got", len(out.Embedding), "want", p.dim)
		return zero
	}
	return out.Embedding
}
