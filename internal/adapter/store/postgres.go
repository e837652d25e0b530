package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// --- Idea Analyses ---

// CreateAnalysisWithMatches persists an analysis and its ranked matches in a
// single transaction so no reader ever observes a partial match set.
func (s *PostgresStore) CreateAnalysisWithMatches(ctx context.Context, a *domain.IdeaAnalysis, matches []domain.IdeaMatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO idea_analyses
		     (id, user_id, input_hash, input_title, input_abstract, originality_score,
		      max_similarity, result_category, status, created_at, completed_at, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.UserID, a.InputHash, a.InputTitle, a.InputAbstract, a.OriginalityScore,
		a.MaxSimilarity, a.ResultCategory, a.Status, a.CreatedAt, a.CompletedAt, a.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO idea_matches (analysis_id, document_id, source_type, similarity, rank, title, url, snippet)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("prepare matches: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx,
			a.ID, m.DocumentID, m.SourceType, m.Similarity, m.Rank, m.Title, m.URL, m.Snippet,
		); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
	}

	return tx.Commit()
}

// GetAnalysis returns an analysis by id scoped to its owner.
func (s *PostgresStore) GetAnalysis(ctx context.Context, id, userID string) (*domain.IdeaAnalysis, error) {
	query := `SELECT id, user_id, input_hash, input_title, input_abstract, originality_score,
	                 max_similarity, result_category, status, created_at, completed_at, COALESCE(error_message, '')
	          FROM idea_analyses WHERE id = $1 AND user_id = $2`

	a, err := scanAnalysis(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return a, nil
}

// FindCompletedAnalysis returns the newest completed analysis for the
// (userID, inputHash) pair, enabling idempotent reuse.
func (s *PostgresStore) FindCompletedAnalysis(ctx context.Context, userID, inputHash string) (*domain.IdeaAnalysis, error) {
	query := `SELECT id, user_id, input_hash, input_title, input_abstract, originality_score,
	                 max_similarity, result_category, status, created_at, completed_at, COALESCE(error_message, '')
	          FROM idea_analyses
	          WHERE user_id = $1 AND input_hash = $2 AND status = $3
	          ORDER BY created_at DESC
	          LIMIT 1`

	a, err := scanAnalysis(s.db.QueryRowContext(ctx, query, userID, inputHash, domain.AnalysisStatusCompleted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("find completed analysis: %w", err)
	}
	return a, nil
}

func scanAnalysis(row *sql.Row) (*domain.IdeaAnalysis, error) {
	var a domain.IdeaAnalysis
	err := row.Scan(
		&a.ID, &a.UserID, &a.InputHash, &a.InputTitle, &a.InputAbstract, &a.OriginalityScore,
		&a.MaxSimilarity, &a.ResultCategory, &a.Status, &a.CreatedAt, &a.CompletedAt, &a.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListMatches returns the matches of an analysis ordered by rank, joining the
// indexed document only for the fields the response needs (the year).
func (s *PostgresStore) ListMatches(ctx context.Context, analysisID string) ([]domain.IdeaMatch, error) {
	query := `SELECT m.id, m.analysis_id, m.document_id, m.source_type, m.similarity, m.rank,
	                 m.title, m.url, COALESCE(m.snippet, ''), d.year
	          FROM idea_matches m
	          JOIN indexed_documents d ON d.id = m.document_id
	          WHERE m.analysis_id = $1
	          ORDER BY m.rank ASC`

	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.IdeaMatch
	for rows.Next() {
		var m domain.IdeaMatch
		if err := rows.Scan(
			&m.ID, &m.AnalysisID, &m.DocumentID, &m.SourceType, &m.Similarity, &m.Rank,
			&m.Title, &m.URL, &m.Snippet, &m.Year,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// --- Archive Projects ---

// ListArchiveProjects returns every internal archive record.
func (s *PostgresStore) ListArchiveProjects(ctx context.Context) ([]domain.ArchiveProject, error) {
	query := `SELECT id, title, description, year, semester, category, department_id, created_at, updated_at
	          FROM archive_projects ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list archive projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.ArchiveProject
	for rows.Next() {
		var p domain.ArchiveProject
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Year, &p.Semester,
			&p.Category, &p.DepartmentID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan archive project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateArchiveProject inserts a new archive record.
func (s *PostgresStore) CreateArchiveProject(ctx context.Context, p *domain.ArchiveProject) (*domain.ArchiveProject, error) {
	query := `INSERT INTO archive_projects (title, description, year, semester, category, department_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, title, description, year, semester, category, department_id, created_at, updated_at`

	var created domain.ArchiveProject
	err := s.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Year, p.Semester, p.Category, p.DepartmentID,
	).Scan(
		&created.ID, &created.Title, &created.Description, &created.Year, &created.Semester,
		&created.Category, &created.DepartmentID, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create archive project: %w", err)
	}
	return &created, nil
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(context.Background(), query,
		userID, action, resource, resourceID, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details, ip, user_agent, created_at
	          FROM audit_logs`
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
