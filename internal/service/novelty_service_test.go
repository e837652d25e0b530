package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/adapter/embedding"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory port.AnalysisStore that records writes.
type fakeStore struct {
	mu          sync.Mutex
	analyses    map[string]*domain.IdeaAnalysis
	matches     map[string][]domain.IdeaMatch
	archive     []domain.ArchiveProject
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		analyses: make(map[string]*domain.IdeaAnalysis),
		matches:  make(map[string][]domain.IdeaMatch),
	}
}

func (s *fakeStore) CreateAnalysisWithMatches(_ context.Context, a *domain.IdeaAnalysis, matches []domain.IdeaMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	cp := *a
	s.analyses[a.ID] = &cp
	s.matches[a.ID] = append([]domain.IdeaMatch(nil), matches...)
	return nil
}

func (s *fakeStore) GetAnalysis(_ context.Context, id, userID string) (*domain.IdeaAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.analyses[id]
	if !ok || a.UserID != userID {
		return nil, port.ErrAnalysisNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) FindCompletedAnalysis(_ context.Context, userID, inputHash string) (*domain.IdeaAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *domain.IdeaAnalysis
	for _, a := range s.analyses {
		if a.UserID == userID && a.InputHash == inputHash && a.Status == domain.AnalysisStatusCompleted {
			if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
				newest = a
			}
		}
	}
	if newest == nil {
		return nil, port.ErrAnalysisNotFound
	}
	cp := *newest
	return &cp, nil
}

func (s *fakeStore) ListMatches(_ context.Context, analysisID string) ([]domain.IdeaMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.IdeaMatch(nil), s.matches[analysisID]...), nil
}

func (s *fakeStore) ListArchiveProjects(_ context.Context) ([]domain.ArchiveProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ArchiveProject(nil), s.archive...), nil
}

// fakeIndex is an in-memory port.DocumentIndex using dot products (vectors
// from the hash embedder are L2-normalized, so dot == cosine).
type fakeIndex struct {
	mu     sync.Mutex
	nextID int64
	docs   []domain.IndexedDocument
}

func (x *fakeIndex) add(doc domain.IndexedDocument) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.nextID++
	doc.ID = x.nextID
	x.docs = append(x.docs, doc)
}

func (x *fakeIndex) UpsertInternal(_ context.Context, docs []domain.IndexedDocument) (int, error) {
	for _, d := range docs {
		d.SourceType = domain.SourceInternalArchive
		x.add(d)
	}
	return len(docs), nil
}

func (x *fakeIndex) UpsertExternal(_ context.Context, sourceType domain.SourceType, docs []domain.IndexedDocument) (int, error) {
	for _, d := range docs {
		d.SourceType = sourceType
		x.add(d)
	}
	return len(docs), nil
}

func (x *fakeIndex) FindNearest(_ context.Context, query []float32, topK int, sources []domain.SourceType, providerID string) ([]domain.DocumentMatch, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	wanted := make(map[domain.SourceType]bool, len(sources))
	for _, s := range sources {
		wanted[s] = true
	}

	var matches []domain.DocumentMatch
	for _, d := range x.docs {
		if !wanted[d.SourceType] || d.ProviderID != providerID {
			continue
		}
		var dot float64
		if len(d.Vector) == len(query) {
			for i := range query {
				dot += float64(query[i]) * float64(d.Vector[i])
			}
		}
		matches = append(matches, domain.DocumentMatch{Document: d, Similarity: dot})
	}

	// highest similarity first, ties by ascending id
	for i := 0; i < len(matches); i++ {
		for j := i + 1; j < len(matches); j++ {
			if matches[j].Similarity > matches[i].Similarity ||
				(matches[j].Similarity == matches[i].Similarity && matches[j].Document.ID < matches[i].Document.ID) {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// failingProvider simulates a permanently dead external catalog.
type failingProvider struct {
	sourceType domain.SourceType
}

func (p *failingProvider) SourceType() domain.SourceType { return p.sourceType }
func (p *failingProvider) Fetch(context.Context, string, port.SyncOptions) []domain.ExternalDocument {
	return nil
}

func defaultOptions() NoveltyOptions {
	return NoveltyOptions{
		TopK:            10,
		WeightInternal:  1.0,
		WeightCodeRepo:  0.25,
		WeightPapers:    0.25,
		HighThreshold:   0.8,
		MediumThreshold: 0.5,
		ReindexQuery:    "final year project",
	}
}

func newTestService(t *testing.T, st *fakeStore, idx *fakeIndex) (*NoveltyService, port.EmbeddingProvider) {
	t.Helper()
	embedder := embedding.NewHashProvider(256)
	indexSvc := NewIndexService(st, idx, embedder,
		&failingProvider{domain.SourceCodeRepository},
		&failingProvider{domain.SourceResearchPaper},
	)
	cache := NewResultCache(time.Minute)
	t.Cleanup(cache.Close)
	return NewNoveltyService(st, idx, embedder, indexSvc, cache, defaultOptions()), embedder
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore(), &fakeIndex{})
	_, err := svc.Analyze(context.Background(), "u1", AnalyzeRequest{Title: "  ", Abstract: "\t"})
	assert.ErrorIs(t, err, port.ErrEmptyInput)
}

func TestAnalyzeEmptyIndex(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore(), &fakeIndex{})

	result, err := svc.Analyze(context.Background(), "u1",
		AnalyzeRequest{Title: "Smart Attendance System using Face Recognition"})
	require.NoError(t, err)

	assert.Equal(t, 100, result.OriginalityScore)
	assert.Equal(t, domain.CategoryLow, result.Category)
	assert.Empty(t, result.TopMatches)
	assert.Equal(t, "Your idea appears completely unique based on our database.", result.Explanation)
}

func TestAnalyzeIdenticalInternalDocument(t *testing.T) {
	st := newFakeStore()
	idx := &fakeIndex{}
	svc, embedder := newTestService(t, st, idx)

	title := "Smart Attendance System using Face Recognition"
	entityID := int64(1)
	idx.add(domain.IndexedDocument{
		SourceType:     domain.SourceInternalArchive,
		SourceEntityID: &entityID,
		Title:          title,
		Vector:         embedder.Embed(context.Background(), Normalize(title)),
		ProviderID:     embedder.ProviderID(),
	})

	result, err := svc.Analyze(context.Background(), "u1", AnalyzeRequest{Title: title})
	require.NoError(t, err)

	require.NotEmpty(t, result.TopMatches)
	assert.InDelta(t, 1.0, result.TopMatches[0].Similarity, 1e-6)
	assert.InDelta(t, 1.0, result.MaxInternalSimilarity, 1e-6)
	assert.LessOrEqual(t, result.OriginalityScore, 1)
	assert.Equal(t, domain.CategoryHigh, result.Category)
}

func TestAnalyzeReusesCompletedAnalysis(t *testing.T) {
	st := newFakeStore()
	idx := &fakeIndex{}
	svc, _ := newTestService(t, st, idx)

	req := AnalyzeRequest{Title: "Blockchain Voting Platform", Abstract: "A tamper-proof election system."}

	first, err := svc.Analyze(context.Background(), "u1", req)
	require.NoError(t, err)
	require.Equal(t, 1, st.createCalls)

	// Same service: served from the TTL cache.
	second, err := svc.Analyze(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, st.createCalls)

	// Fresh service sharing the store: served from the persisted row.
	svc2, _ := newTestService(t, st, idx)
	third, err := svc2.Analyze(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, 1, st.createCalls, "reuse must not persist a new row")

	// A different user does not reuse the row.
	_, err = svc2.Analyze(context.Background(), "u2", req)
	require.NoError(t, err)
	assert.Equal(t, 2, st.createCalls)
}

func TestAnalyzeSurvivesFailingExternalProviders(t *testing.T) {
	st := newFakeStore()
	idx := &fakeIndex{}
	svc, embedder := newTestService(t, st, idx)

	entityID := int64(1)
	idx.add(domain.IndexedDocument{
		SourceType:     domain.SourceInternalArchive,
		SourceEntityID: &entityID,
		Title:          "Campus Navigation App",
		Vector:         embedder.Embed(context.Background(), Normalize("campus navigation mobile app")),
		ProviderID:     embedder.ProviderID(),
	})

	result, err := svc.Analyze(context.Background(), "u1",
		AnalyzeRequest{Title: "Campus Navigation Assistant"})
	require.NoError(t, err)

	assert.Greater(t, result.MaxInternalSimilarity, 0.0)
	assert.Zero(t, result.MaxCodeRepoSimilarity)
	assert.Zero(t, result.MaxPaperSimilarity)
	assert.GreaterOrEqual(t, result.OriginalityScore, 0)
	assert.LessOrEqual(t, result.OriginalityScore, 100)
}

func TestAnalyzeMatchesAreDenselyRanked(t *testing.T) {
	st := newFakeStore()
	idx := &fakeIndex{}
	svc, embedder := newTestService(t, st, idx)

	texts := []string{
		"smart parking system sensors",
		"parking lot management platform",
		"hospital appointment scheduler",
		"parking space detection camera",
	}
	for i, text := range texts {
		entityID := int64(i + 1)
		idx.add(domain.IndexedDocument{
			SourceType:     domain.SourceInternalArchive,
			SourceEntityID: &entityID,
			Title:          text,
			Vector:         embedder.Embed(context.Background(), Normalize(text)),
			ProviderID:     embedder.ProviderID(),
		})
	}

	result, err := svc.Analyze(context.Background(), "u1",
		AnalyzeRequest{Title: "Smart Parking Detection System"})
	require.NoError(t, err)
	require.NotEmpty(t, result.TopMatches)

	for i, m := range result.TopMatches {
		assert.Equal(t, i+1, m.Rank)
		if i > 0 {
			assert.LessOrEqual(t, m.Similarity, result.TopMatches[i-1].Similarity)
		}
	}
}

func TestGetAnalysisOwnership(t *testing.T) {
	st := newFakeStore()
	svc, _ := newTestService(t, st, &fakeIndex{})

	created, err := svc.Analyze(context.Background(), "u1", AnalyzeRequest{Title: "IoT Greenhouse"})
	require.NoError(t, err)

	got, err := svc.GetAnalysis(context.Background(), created.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetAnalysis(context.Background(), created.ID, "someone-else")
	assert.ErrorIs(t, err, port.ErrAnalysisNotFound)

	_, err = svc.GetAnalysis(context.Background(), "missing-id", "u1")
	assert.ErrorIs(t, err, port.ErrAnalysisNotFound)
}

func TestClassifyThresholds(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore(), &fakeIndex{})

	assert.Equal(t, domain.CategoryHigh, svc.classify(0.9))
	assert.Equal(t, domain.CategoryHigh, svc.classify(0.8))
	assert.Equal(t, domain.CategoryMedium, svc.classify(0.6))
	assert.Equal(t, domain.CategoryMedium, svc.classify(0.5))
	assert.Equal(t, domain.CategoryLow, svc.classify(0.1))
}

func TestComputeScoreBoundsAndMonotonicity(t *testing.T) {
	prev := 101
	for _, wm := range []float64{-0.5, 0, 0.1, 0.25, 0.5, 0.72, 0.9, 1.0, 1.5} {
		score := computeScore(wm)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
		assert.LessOrEqual(t, score, prev, "score must not increase with weightedMax")
		prev = score
	}
	assert.Equal(t, 100, computeScore(0))
	assert.Equal(t, 0, computeScore(1))
	assert.Equal(t, 28, computeScore(0.72))
}
