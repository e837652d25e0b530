package port

import (
	"context"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
)

// AnalysisStore persists idea analyses and their ranked matches.
type AnalysisStore interface {
	// CreateAnalysisWithMatches persists an analysis and its matches in a
	// single transaction: either both exist afterwards or neither does.
	CreateAnalysisWithMatches(ctx context.Context, a *domain.IdeaAnalysis, matches []domain.IdeaMatch) error

	// GetAnalysis returns an analysis by id scoped to its owner, or
	// ErrAnalysisNotFound when unknown or owned by someone else.
	GetAnalysis(ctx context.Context, id, userID string) (*domain.IdeaAnalysis, error)

	// FindCompletedAnalysis returns the newest completed analysis for
	// (userID, inputHash), or ErrAnalysisNotFound.
	FindCompletedAnalysis(ctx context.Context, userID, inputHash string) (*domain.IdeaAnalysis, error)

	// ListMatches returns the matches of an analysis ordered by rank,
	// with the document year joined in.
	ListMatches(ctx context.Context, analysisID string) ([]domain.IdeaMatch, error)

	// ListArchiveProjects returns every internal archive record.
	ListArchiveProjects(ctx context.Context) ([]domain.ArchiveProject, error)
}

// DocumentIndex stores embedded documents and answers nearest-neighbor queries.
type DocumentIndex interface {
	// UpsertInternal inserts or overwrites internal archive documents keyed by
	// (internal_archive, source_entity_id). Returns the count processed.
	UpsertInternal(ctx context.Context, docs []domain.IndexedDocument) (int, error)

	// UpsertExternal inserts or overwrites externally fetched documents keyed
	// by (sourceType, url). Returns the count processed.
	UpsertExternal(ctx context.Context, sourceType domain.SourceType, docs []domain.IndexedDocument) (int, error)

	// FindNearest returns at most topK documents of the given source types
	// embedded by providerID, ordered by descending cosine similarity with
	// ties broken by ascending document id.
	FindNearest(ctx context.Context, query []float32, topK int, sources []domain.SourceType, providerID string) ([]domain.DocumentMatch, error)
}
