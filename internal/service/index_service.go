package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
)

// IndexService keeps the document index in sync with the internal archive
// and the external catalogs. Documents are embedded with the active provider
// and stamped with its id so a provider change just means reindexing.
type IndexService struct {
	store     port.AnalysisStore
	index     port.DocumentIndex
	embedder  port.EmbeddingProvider
	providers map[domain.SourceType]port.SourceProvider
}

// NewIndexService creates an index service over the given providers.
func NewIndexService(store port.AnalysisStore, index port.DocumentIndex, embedder port.EmbeddingProvider, providers ...port.SourceProvider) *IndexService {
	m := make(map[domain.SourceType]port.SourceProvider, len(providers))
	for _, p := range providers {
		m[p.SourceType()] = p
	}
	return &IndexService{store: store, index: index, embedder: embedder, providers: m}
}

// SyncInternal re-embeds and upserts every archive project into the index.
// Idempotent: running it twice produces identical index state.
func (s *IndexService) SyncInternal(ctx context.Context) (int, error) {
	projects, err := s.store.ListArchiveProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("load archive: %w", err)
	}

	docs := make([]domain.IndexedDocument, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		entityID := p.ID
		year := p.Year
		deptID := p.DepartmentID

		docs = append(docs, domain.IndexedDocument{
			SourceType:     domain.SourceInternalArchive,
			SourceEntityID: &entityID,
			Title:          p.Title,
			Year:           &year,
			DepartmentID:   &deptID,
			Category:       p.Category,
			Vector:         s.embedder.Embed(ctx, Normalize(p.IndexText())),
			ProviderID:     s.embedder.ProviderID(),
		})
	}

	count, err := s.index.UpsertInternal(ctx, docs)
	if err != nil {
		return count, fmt.Errorf("upsert internal: %w", err)
	}
	slog.Info("internal index synced", "documents", count)
	return count, nil
}

// SyncExternal fetches one page of candidates for the query from the
// provider of the given source type and upserts them. Provider failures
// surface as an empty fetch, never as an error.
func (s *IndexService) SyncExternal(ctx context.Context, sourceType domain.SourceType, query string, opts port.SyncOptions) (int, error) {
	provider, ok := s.providers[sourceType]
	if !ok {
		return 0, fmt.Errorf("no provider registered for source %q", sourceType)
	}

	fetched := provider.Fetch(ctx, query, opts)
	if len(fetched) == 0 {
		return 0, nil
	}

	docs := make([]domain.IndexedDocument, 0, len(fetched))
	for _, ext := range fetched {
		docs = append(docs, domain.IndexedDocument{
			SourceType: sourceType,
			Title:      ext.Title,
			URL:        ext.URL,
			Year:       ext.Year,
			Vector:     s.embedder.Embed(ctx, Normalize(ext.Text)),
			ProviderID: s.embedder.ProviderID(),
		})
	}

	count, err := s.index.UpsertExternal(ctx, sourceType, docs)
	if err != nil {
		return count, fmt.Errorf("upsert external %s: %w", sourceType, err)
	}
	slog.Info("external source synced", "source", sourceType, "query", query, "documents", count)
	return count, nil
}
