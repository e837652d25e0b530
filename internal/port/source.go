package port

import (
	"context"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
)

// SyncOptions scopes an external fetch or reindex run.
// Providers that cannot filter by year server-side may ignore the range.
type SyncOptions struct {
	YearFrom *int `json:"year_from,omitempty"`
	YearTo   *int `json:"year_to,omitempty"`
}

// SourceProvider fetches candidate documents from one external catalog.
// Fetch never fails: HTTP errors, malformed payloads, and empty queries all
// yield an empty slice so one dead upstream never blocks the other sources.
type SourceProvider interface {
	// SourceType returns the catalog this provider feeds.
	SourceType() domain.SourceType

	// Fetch returns up to one page of candidate documents for the query.
	Fetch(ctx context.Context, query string, opts SyncOptions) []domain.ExternalDocument
}
