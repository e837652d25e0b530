package domain

import "time"

// IdeaAnalysis is one persisted originality evaluation of a proposed idea.
// Terminal once Completed or Failed; never updated after completion.
type IdeaAnalysis struct {
	ID               string     `json:"id"                db:"id"`
	UserID           string     `json:"user_id"           db:"user_id"`
	InputHash        string     `json:"input_hash"        db:"input_hash"` // SHA-256 of normalized input
	InputTitle       string     `json:"input_title"       db:"input_title"`
	InputAbstract    string     `json:"input_abstract"    db:"input_abstract"`
	OriginalityScore int        `json:"originality_score" db:"originality_score"` // 0-100
	MaxSimilarity    float64    `json:"max_similarity"    db:"max_similarity"`    // max internal similarity
	ResultCategory   string     `json:"result_category"   db:"result_category"`
	Status           string     `json:"status"            db:"status"`
	CreatedAt        time.Time  `json:"created_at"        db:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"      db:"completed_at"`
	ErrorMessage     string     `json:"error_message,omitempty" db:"error_message"`
}

// IdeaMatch is one ranked similarity hit belonging to an analysis.
// Rank is dense and 1-based; similarity is non-increasing with rank.
type IdeaMatch struct {
	ID         int64      `json:"id"          db:"id"`
	AnalysisID string     `json:"analysis_id" db:"analysis_id"`
	DocumentID int64      `json:"document_id" db:"document_id"`
	SourceType SourceType `json:"source_type" db:"source_type"`
	Similarity float64    `json:"similarity"  db:"similarity"`
	Rank       int        `json:"rank"        db:"rank"`
	Title      string     `json:"title"       db:"title"`
	URL        string     `json:"url"         db:"url"`
	Snippet    string     `json:"snippet,omitempty" db:"snippet"`
	Year       *int       `json:"year,omitempty"` // joined from the indexed document
}

// Analysis status constants.
const (
	AnalysisStatusPending   = "pending"
	AnalysisStatusCompleted = "completed"
	AnalysisStatusFailed    = "failed"
)

// Result category constants, from least to most similar to prior work.
const (
	CategoryLow    = "low"
	CategoryMedium = "medium"
	CategoryHigh   = "high"
)
