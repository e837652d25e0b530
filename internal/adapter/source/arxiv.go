package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
)

const arxivPageSize = 10

// ArxivProvider fetches candidate papers from the arXiv Atom feed.
// arXiv has no server-side year filter on this endpoint, so SyncOptions
// year ranges are ignored.
type ArxivProvider struct {
	baseURL    string // e.g. http://export.arxiv.org/api/query
	httpClient *http.Client
}

// NewArxivProvider creates an arXiv source provider.
func NewArxivProvider(baseURL string) *ArxivProvider {
	return &ArxivProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SourceType returns the catalog this provider feeds.
func (p *ArxivProvider) SourceType() domain.SourceType {
	return domain.SourceResearchPaper
}

// atomFeed mirrors the subset of the arXiv Atom response we read.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Summary   string     `xml:"summary"`
	Published string     `xml:"published"`
	Links     []atomLink `xml:"link"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// Fetch searches papers matching the query across all fields.
// Any failure yields an empty result, never an error.
func (p *ArxivProvider) Fetch(ctx context.Context, query string, _ port.SyncOptions) []domain.ExternalDocument {
	if query == "" {
		return nil
	}

	reqURL := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d",
		p.baseURL, url.QueryEscape(query), arxivPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		slog.Warn("arxiv fetch: create request failed", "error", err)
		return nil
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Warn("arxiv fetch: request failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("arxiv fetch: non-200 response", "status", resp.StatusCode)
		return nil
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		slog.Warn("arxiv fetch: decode failed", "error", err)
		return nil
	}

	docs := make([]domain.ExternalDocument, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		title := strings.TrimSpace(e.Title)
		summary := strings.TrimSpace(e.Summary)

		var year *int
		if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
			y := t.Year()
			year = &y
		}

		link := e.ID
		for _, l := range e.Links {
			if l.Rel == "alternate" && l.Href != "" {
				link = l.Href
				break
			}
		}

		docs = append(docs, domain.ExternalDocument{
			Title: title,
			URL:   link,
			Year:  year,
			Text:  title + " " + summary,
		})
	}
	return docs
}
