package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
)

const githubPageSize = 10

// GitHubProvider fetches candidate repositories from the GitHub search API.
// Repository name plus description stand in for the project text.
type GitHubProvider struct {
	baseURL    string // e.g. https://api.github.com
	token      string // optional, raises rate limits
	httpClient *http.Client
}

// NewGitHubProvider creates a GitHub source provider.
func NewGitHubProvider(baseURL, token string) *GitHubProvider {
	return &GitHubProvider{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SourceType returns the catalog this provider feeds.
func (p *GitHubProvider) SourceType() domain.SourceType {
	return domain.SourceCodeRepository
}

// Fetch searches repositories matching the query, most-starred first.
// The year range is applied server-side via a created: qualifier.
// Any failure yields an empty result, never an error.
func (p *GitHubProvider) Fetch(ctx context.Context, query string, opts port.SyncOptions) []domain.ExternalDocument {
	if query == "" {
		return nil
	}

	q := query
	switch {
	case opts.YearFrom != nil && opts.YearTo != nil:
		q += fmt.Sprintf(" created:%d-01-01..%d-12-31", *opts.YearFrom, *opts.YearTo)
	case opts.YearFrom != nil:
		q += fmt.Sprintf(" created:>=%d-01-01", *opts.YearFrom)
	case opts.YearTo != nil:
		q += fmt.Sprintf(" created:<=%d-12-31", *opts.YearTo)
	}

	reqURL := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		p.baseURL, url.QueryEscape(q), githubPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		slog.Warn("github fetch: create request failed", "error", err)
		return nil
	}
	req.Header.Set("User-Agent", "IdeaLens-AI/1.0")
	req.Header.Set("Accept", "application/vnd.github+json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Warn("github fetch: request failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("github fetch: non-200 response", "status", resp.StatusCode)
		return nil
	}

	var payload struct {
		Items []struct {
			Name        string `json:"name"`
			FullName    string `json:"full_name"`
			HTMLURL     string `json:"html_url"`
			Description string `json:"description"`
			PushedAt    string `json:"pushed_at"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("github fetch: decode failed", "error", err)
		return nil
	}

	docs := make([]domain.ExternalDocument, 0, len(payload.Items))
	for _, item := range payload.Items {
		var year *int
		if t, err := time.Parse(time.RFC3339, item.PushedAt); err == nil {
			y := t.Year()
			year = &y
		}

		title := item.FullName
		if title == "" {
			title = item.Name
		}
		if title == "" {
			title = item.Description
			if len(title) > 60 {
				title = title[:60]
			}
		}

		docs = append(docs, domain.ExternalDocument{
			Title: title,
			URL:   item.HTMLURL,
			Year:  year,
			Text:  item.FullName + " " + item.Description,
		})
	}
	return docs
}
