package domain

import "time"

// ArchiveProject is one record of the internal project archive.
// The archive feeds the internal portion of the document index.
type ArchiveProject struct {
	ID           int64     `json:"id"            db:"id"`
	Title        string    `json:"title"         db:"title"`
	Description  string    `json:"description"   db:"description"`
	Year         int       `json:"year"          db:"year"`
	Semester     string    `json:"semester"      db:"semester"` // Spring, Fall
	Category     string    `json:"category"      db:"category"`
	DepartmentID int64     `json:"department_id" db:"department_id"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}

// IndexText is the text an archive project contributes to the document index.
func (p *ArchiveProject) IndexText() string {
	return p.Title + " " + p.Description + " " + p.Category + " " + p.Semester
}
