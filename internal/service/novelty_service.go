package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
	"github.com/google/uuid"
)

// AnalyzeRequest is the input of one originality evaluation.
// Async is accepted for forward compatibility but every request is
// processed synchronously.
type AnalyzeRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Async    bool   `json:"async"`
}

// ReindexRequest selects which index portions to refresh.
type ReindexRequest struct {
	InternalArchive bool `json:"internalArchive"`
	CodeRepository  bool `json:"codeRepository"`
	Papers          bool `json:"papers"`
	YearFrom        *int `json:"yearFrom,omitempty"`
	YearTo          *int `json:"yearTo,omitempty"`
}

// MatchResult is one ranked similarity hit in a response.
type MatchResult struct {
	SourceType string  `json:"sourceType"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
	Rank       int     `json:"rank"`
	Snippet    string  `json:"snippet,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

// AnalysisResult is the response DTO of an originality evaluation.
type AnalysisResult struct {
	ID                    string        `json:"id"`
	OriginalityScore      int           `json:"originalityScore"`
	Category              string        `json:"category"`
	MaxSimilarity         float64       `json:"maxSimilarity"`
	MaxInternalSimilarity float64       `json:"maxInternalSimilarity"`
	MaxCodeRepoSimilarity float64       `json:"maxCodeRepoSimilarity"`
	MaxPaperSimilarity    float64       `json:"maxPaperSimilarity"`
	TopMatches            []MatchResult `json:"topMatches"`
	Suggestions           []string      `json:"suggestions"`
	Explanation           string        `json:"explanation"`
}

// NoveltyOptions tunes scoring and search.
type NoveltyOptions struct {
	TopK            int
	WeightInternal  float64
	WeightCodeRepo  float64
	WeightPapers    float64
	HighThreshold   float64
	MediumThreshold float64
	ReindexQuery    string // query used for external reindex runs without a search term
}

// NoveltyService orchestrates one analysis request:
// normalize -> hash -> reuse check -> index refresh -> embed ->
// per-source nearest search -> weighted aggregation -> score -> persist.
type NoveltyService struct {
	store    port.AnalysisStore
	index    port.DocumentIndex
	embedder port.EmbeddingProvider
	indexSvc *IndexService
	cache    *ResultCache
	opts     NoveltyOptions
}

// NewNoveltyService creates the orchestrator.
func NewNoveltyService(store port.AnalysisStore, index port.DocumentIndex, embedder port.EmbeddingProvider, indexSvc *IndexService, cache *ResultCache, opts NoveltyOptions) *NoveltyService {
	return &NoveltyService{
		store:    store,
		index:    index,
		embedder: embedder,
		indexSvc: indexSvc,
		cache:    cache,
		opts:     opts,
	}
}

// Analyze evaluates the originality of an idea for the given user.
// Identical (user, normalized input) pairs reuse the earlier result instead
// of recomputing. External failures degrade the result; persistence failures
// abort it.
func (s *NoveltyService) Analyze(ctx context.Context, userID string, req AnalyzeRequest) (*AnalysisResult, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Abstract) == "" {
		return nil, port.ErrEmptyInput
	}

	normalized := Normalize(req.Title + " " + req.Abstract)
	inputHash := hashText(normalized)
	cacheKey := userID + "::" + inputHash

	if cached := s.cache.Get(cacheKey); cached != nil {
		return cached, nil
	}

	// Reuse a completed identical analysis instead of recomputing.
	// Note: this lookup and the insert below are not serialized, so two
	// concurrent identical requests can each persist a row.
	existing, err := s.store.FindCompletedAnalysis(ctx, userID, inputHash)
	if err == nil {
		result, err := s.buildResult(ctx, existing)
		if err != nil {
			return nil, err
		}
		s.cache.Set(cacheKey, result)
		return result, nil
	}
	if !errors.Is(err, port.ErrAnalysisNotFound) {
		return nil, fmt.Errorf("reuse lookup: %w", err)
	}

	if _, err := s.indexSvc.SyncInternal(ctx); err != nil {
		return nil, fmt.Errorf("sync internal index: %w", err)
	}

	// Live check: pull fresh external candidates for this idea. The two
	// fetches are independent and run concurrently; either may fail without
	// affecting the other or the analysis.
	if strings.TrimSpace(req.Title) != "" {
		s.liveExternalSync(ctx, req.Title)
	}

	queryVec := s.embedder.Embed(ctx, normalized)

	var allMatches []domain.DocumentMatch
	maxBySource := make(map[domain.SourceType]float64, len(domain.AllSourceTypes))
	for _, src := range domain.AllSourceTypes {
		matches, err := s.index.FindNearest(ctx, queryVec, s.opts.TopK, []domain.SourceType{src}, s.embedder.ProviderID())
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", src, err)
		}
		for _, m := range matches {
			allMatches = append(allMatches, m)
			if m.Similarity > maxBySource[src] {
				maxBySource[src] = m.Similarity
			}
		}
	}

	weightedMax := maxBySource[domain.SourceInternalArchive]*s.opts.WeightInternal +
		maxBySource[domain.SourceCodeRepository]*s.opts.WeightCodeRepo +
		maxBySource[domain.SourceResearchPaper]*s.opts.WeightPapers

	score := computeScore(weightedMax)
	category := s.classify(weightedMax)

	now := time.Now().UTC()
	analysis := &domain.IdeaAnalysis{
		ID:               uuid.NewString(),
		UserID:           userID,
		InputHash:        inputHash,
		InputTitle:       req.Title,
		InputAbstract:    req.Abstract,
		OriginalityScore: score,
		MaxSimilarity:    maxBySource[domain.SourceInternalArchive],
		ResultCategory:   category,
		Status:           domain.AnalysisStatusCompleted,
		CreatedAt:        now,
		CompletedAt:      &now,
	}

	matches := rankTopMatches(analysis.ID, allMatches, s.opts.TopK)

	if err := s.store.CreateAnalysisWithMatches(ctx, analysis, matches); err != nil {
		return nil, fmt.Errorf("persist analysis: %w", err)
	}

	result := s.assembleResult(analysis, matches, maxBySource)
	s.cache.Set(cacheKey, result)

	slog.Info("analysis completed",
		"analysis_id", analysis.ID,
		"user_id", userID,
		"score", score,
		"category", category,
	)
	return result, nil
}

// GetAnalysis returns a previously computed analysis owned by the user.
func (s *NoveltyService) GetAnalysis(ctx context.Context, id, userID string) (*AnalysisResult, error) {
	analysis, err := s.store.GetAnalysis(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.buildResult(ctx, analysis)
}

// Reindex refreshes the requested index portions. External runs without a
// request-specific search term use the configured default query.
func (s *NoveltyService) Reindex(ctx context.Context, req ReindexRequest) error {
	opts := port.SyncOptions{YearFrom: req.YearFrom, YearTo: req.YearTo}

	if req.InternalArchive {
		if _, err := s.indexSvc.SyncInternal(ctx); err != nil {
			return err
		}
	}
	if req.CodeRepository {
		if _, err := s.indexSvc.SyncExternal(ctx, domain.SourceCodeRepository, s.opts.ReindexQuery, opts); err != nil {
			return err
		}
	}
	if req.Papers {
		if _, err := s.indexSvc.SyncExternal(ctx, domain.SourceResearchPaper, s.opts.ReindexQuery, opts); err != nil {
			return err
		}
	}
	return nil
}

// SearchPriorWork embeds a free-form query and returns the closest indexed
// documents across every source category, without persisting anything.
func (s *NoveltyService) SearchPriorWork(ctx context.Context, query string, topK int) ([]MatchResult, error) {
	if topK <= 0 {
		topK = s.opts.TopK
	}
	vec := s.embedder.Embed(ctx, Normalize(query))

	matches, err := s.index.FindNearest(ctx, vec, topK, domain.AllSourceTypes, s.embedder.ProviderID())
	if err != nil {
		return nil, fmt.Errorf("search prior work: %w", err)
	}

	results := make([]MatchResult, len(matches))
	for i, m := range matches {
		results[i] = MatchResult{
			SourceType: string(m.Document.SourceType),
			Title:      m.Document.Title,
			URL:        m.Document.URL,
			Similarity: m.Similarity,
			Rank:       i + 1,
			Year:       m.Document.Year,
		}
	}
	return results, nil
}

// liveExternalSync fetches and indexes external candidates for the query,
// one goroutine per source. Failures are logged and swallowed.
func (s *NoveltyService) liveExternalSync(ctx context.Context, query string) {
	external := []domain.SourceType{domain.SourceCodeRepository, domain.SourceResearchPaper}

	var wg sync.WaitGroup
	for _, src := range external {
		wg.Add(1)
		go func(src domain.SourceType) {
			defer wg.Done()
			if _, err := s.indexSvc.SyncExternal(ctx, src, query, port.SyncOptions{}); err != nil {
				slog.Warn("live external sync failed", "source", src, "error", err)
			}
		}(src)
	}
	wg.Wait()
}

func (s *NoveltyService) classify(weightedMax float64) string {
	switch {
	case weightedMax >= s.opts.HighThreshold:
		return domain.CategoryHigh
	case weightedMax >= s.opts.MediumThreshold:
		return domain.CategoryMedium
	default:
		return domain.CategoryLow
	}
}

// buildResult maps a persisted analysis to the response DTO, re-deriving
// per-source maxima from its stored matches.
func (s *NoveltyService) buildResult(ctx context.Context, analysis *domain.IdeaAnalysis) (*AnalysisResult, error) {
	matches, err := s.store.ListMatches(ctx, analysis.ID)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	maxBySource := make(map[domain.SourceType]float64)
	for _, m := range matches {
		if m.Similarity > maxBySource[m.SourceType] {
			maxBySource[m.SourceType] = m.Similarity
		}
	}
	return s.assembleResult(analysis, matches, maxBySource), nil
}

func (s *NoveltyService) assembleResult(analysis *domain.IdeaAnalysis, matches []domain.IdeaMatch, maxBySource map[domain.SourceType]float64) *AnalysisResult {
	top := make([]MatchResult, len(matches))
	for i, m := range matches {
		top[i] = MatchResult{
			SourceType: string(m.SourceType),
			Title:      m.Title,
			URL:        m.URL,
			Similarity: m.Similarity,
			Rank:       m.Rank,
			Snippet:    m.Snippet,
			Year:       m.Year,
		}
	}

	return &AnalysisResult{
		ID:                    analysis.ID,
		OriginalityScore:      analysis.OriginalityScore,
		Category:              analysis.ResultCategory,
		MaxSimilarity:         analysis.MaxSimilarity,
		MaxInternalSimilarity: maxBySource[domain.SourceInternalArchive],
		MaxCodeRepoSimilarity: maxBySource[domain.SourceCodeRepository],
		MaxPaperSimilarity:    maxBySource[domain.SourceResearchPaper],
		TopMatches:            top,
		Suggestions:           buildSuggestions(analysis, matches),
		Explanation:           buildExplanation(analysis.OriginalityScore, analysis.MaxSimilarity, matches),
	}
}

// rankTopMatches sorts all per-source hits by descending similarity (ties by
// ascending document id), keeps topK, and assigns dense 1-based ranks.
func rankTopMatches(analysisID string, all []domain.DocumentMatch, topK int) []domain.IdeaMatch {
	sorted := make([]domain.DocumentMatch, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Similarity != sorted[j].Similarity {
			return sorted[i].Similarity > sorted[j].Similarity
		}
		return sorted[i].Document.ID < sorted[j].Document.ID
	})

	if len(sorted) > topK {
		sorted = sorted[:topK]
	}

	matches := make([]domain.IdeaMatch, len(sorted))
	for i, m := range sorted {
		matches[i] = domain.IdeaMatch{
			AnalysisID: analysisID,
			DocumentID: m.Document.ID,
			SourceType: m.Document.SourceType,
			Similarity: m.Similarity,
			Rank:       i + 1,
			Title:      m.Document.Title,
			URL:        m.Document.URL,
			Year:       m.Document.Year,
		}
	}
	return matches
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// computeScore maps an aggregated similarity onto the 0-100 originality
// scale: higher similarity to prior work means a lower score.
func computeScore(weightedMax float64) int {
	return int(math.Round(clamp((1-weightedMax)*100, 0, 100)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
