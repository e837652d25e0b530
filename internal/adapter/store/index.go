package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/lib/pq"
)

// DocumentIndex stores embedded documents and answers nearest-neighbor
// queries with a linear cosine scan. Brute force is intentional: the archive
// is small enough that an approximate index would add failure modes without
// buying anything.
type DocumentIndex struct {
	store *PostgresStore
}

// NewDocumentIndex creates a document index backed by the given Postgres store.
func NewDocumentIndex(store *PostgresStore) *DocumentIndex {
	return &DocumentIndex{store: store}
}

// UpsertInternal inserts or overwrites internal archive documents keyed by
// (internal_archive, source_entity_id). Re-running is idempotent.
func (x *DocumentIndex) UpsertInternal(ctx context.Context, docs []domain.IndexedDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO indexed_documents
		     (source_type, source_entity_id, title, url, year, department_id, category, vector, provider_id, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (source_type, source_entity_id) WHERE source_entity_id IS NOT NULL DO UPDATE SET
		     title = EXCLUDED.title,
		     year = EXCLUDED.year,
		     department_id = EXCLUDED.department_id,
		     category = EXCLUDED.category,
		     vector = EXCLUDED.vector,
		     provider_id = EXCLUDED.provider_id,
		     updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx,
			domain.SourceInternalArchive, d.SourceEntityID, d.Title, d.URL, d.Year,
			d.DepartmentID, d.Category, vectorToString(d.Vector), d.ProviderID, d.Metadata,
		); err != nil {
			return count, fmt.Errorf("upsert internal document: %w", err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit upsert: %w", err)
	}
	return count, nil
}

// UpsertExternal inserts or overwrites externally fetched documents keyed by
// (sourceType, url), since no stable local id exists for them.
func (x *DocumentIndex) UpsertExternal(ctx context.Context, sourceType domain.SourceType, docs []domain.IndexedDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO indexed_documents
		     (source_type, title, url, year, category, vector, provider_id, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source_type, url) WHERE source_entity_id IS NULL DO UPDATE SET
		     title = EXCLUDED.title,
		     year = EXCLUDED.year,
		     category = EXCLUDED.category,
		     vector = EXCLUDED.vector,
		     provider_id = EXCLUDED.provider_id,
		     updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, d := range docs {
		if d.URL == "" {
			continue // no identity to upsert on
		}
		if _, err := stmt.ExecContext(ctx,
			sourceType, d.Title, d.URL, d.Year, d.Category,
			vectorToString(d.Vector), d.ProviderID, d.Metadata,
		); err != nil {
			return count, fmt.Errorf("upsert external document: %w", err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit upsert: %w", err)
	}
	return count, nil
}

// FindNearest loads every document of the given source types embedded by
// providerID and ranks them by cosine similarity against the query vector.
func (x *DocumentIndex) FindNearest(ctx context.Context, query []float32, topK int, sources []domain.SourceType, providerID string) ([]domain.DocumentMatch, error) {
	if len(sources) == 0 || topK <= 0 {
		return nil, nil
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}

	rows, err := x.store.db.QueryContext(ctx,
		`SELECT id, source_type, source_entity_id, title, url, year, department_id,
		        category, vector, provider_id, metadata, created_at, updated_at
		 FROM indexed_documents
		 WHERE source_type = ANY($1) AND provider_id = $2`,
		pq.Array(names), providerID,
	)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.IndexedDocument
	for rows.Next() {
		var d domain.IndexedDocument
		var vec string
		if err := rows.Scan(
			&d.ID, &d.SourceType, &d.SourceEntityID, &d.Title, &d.URL, &d.Year,
			&d.DepartmentID, &d.Category, &vec, &d.ProviderID, &d.Metadata,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Vector = parseVector(vec)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return rankBySimilarity(docs, query, topK), nil
}

// rankBySimilarity scores docs against the query and returns the topK matches
// sorted by descending similarity, ties broken by ascending document id.
func rankBySimilarity(docs []domain.IndexedDocument, query []float32, topK int) []domain.DocumentMatch {
	matches := make([]domain.DocumentMatch, 0, len(docs))
	for _, d := range docs {
		matches = append(matches, domain.DocumentMatch{
			Document:   d,
			Similarity: cosineSimilarity(query, d.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Document.ID < matches[j].Document.ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// cosineSimilarity returns dot(a,b)/(|a|*|b|), or 0 when either vector is
// empty, mismatched in length, or zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// vectorToString serializes a vector as [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVector is the inverse of vectorToString. Malformed components parse
// as 0 rather than failing the whole read path.
func parseVector(s string) []float32 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err == nil {
			vec[i] = float32(f)
		}
	}
	return vec
}
