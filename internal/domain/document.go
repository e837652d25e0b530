package domain

import "time"

// SourceType identifies which catalog of prior work a document came from.
type SourceType string

// Document source categories, each searched and weighted independently.
const (
	SourceInternalArchive SourceType = "internal_archive"
	SourceCodeRepository  SourceType = "code_repository"
	SourceResearchPaper   SourceType = "research_paper"
)

// AllSourceTypes lists every source category in weighting order.
var AllSourceTypes = []SourceType{SourceInternalArchive, SourceCodeRepository, SourceResearchPaper}

// IndexedDocument is one retrievable unit of prior work with its embedding.
// Internal documents are identified by (source_type, source_entity_id);
// externally fetched documents by (source_type, url).
type IndexedDocument struct {
	ID             int64      `json:"id"               db:"id"`
	SourceType     SourceType `json:"source_type"      db:"source_type"`
	SourceEntityID *int64     `json:"source_entity_id" db:"source_entity_id"`
	Title          string     `json:"title"            db:"title"`
	URL            string     `json:"url"              db:"url"` // empty for internal docs
	Year           *int       `json:"year"             db:"year"`
	DepartmentID   *int64     `json:"department_id"    db:"department_id"`
	Category       string     `json:"category"         db:"category"`
	Vector         []float32  `json:"-"                db:"vector"`
	ProviderID     string     `json:"provider_id"      db:"provider_id"` // embedder that produced Vector
	Metadata       string     `json:"metadata"         db:"metadata"`
	CreatedAt      time.Time  `json:"created_at"       db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"       db:"updated_at"`
}

// DocumentMatch pairs an indexed document with its similarity to a query vector.
type DocumentMatch struct {
	Document   IndexedDocument `json:"document"`
	Similarity float64         `json:"similarity"`
}

// ExternalDocument is a candidate fetched from an external catalog before indexing.
type ExternalDocument struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Year  *int   `json:"year"`
	Text  string `json:"text"`
}
