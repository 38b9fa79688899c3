package domain

import (
	"fmt"
	"time"
)

type DocumentTypeID string

type DocumentKind string

const (
	KindPolicy DocumentKind = "policy"
	KindForm   DocumentKind = "form"
)

func (k DocumentKind) Valid() bool {
	return k == KindPolicy || k == KindForm
}

// DocumentType is a catalog entry: one policy or form template.
type DocumentType struct {
	ID    DocumentTypeID `json:"id" yaml:"id"`
	Title string         `json:"title" yaml:"title"`
	Kind  DocumentKind   `json:"kind" yaml:"kind"`
}

// DocumentVersion is a snapshot of a superseded revision.
type DocumentVersion struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
}

// DocumentRecord is one generated artifact owned by a single company.
// History holds every prior revision, newest first.
type DocumentRecord struct {
	ID        string            `json:"id"`
	CompanyID string            `json:"company_id"`
	TypeID    DocumentTypeID    `json:"type_id"`
	Kind      DocumentKind      `json:"kind"`
	Content   string            `json:"content"`
	Version   int               `json:"version"`
	History   []DocumentVersion `json:"history"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewDocumentRecord(id, companyID string, typeID DocumentTypeID, kind DocumentKind, content string, now time.Time) DocumentRecord {
	return DocumentRecord{
		ID:        id,
		CompanyID: companyID,
		TypeID:    typeID,
		Kind:      kind,
		Content:   content,
		Version:   1,
		History:   []DocumentVersion{},
		CreatedAt: now,
	}
}

// Revise returns the next revision of r. The receiver is left untouched and
// the returned history never shares a backing array with it.
func (r DocumentRecord) Revise(content string, now time.Time) DocumentRecord {
	history := make([]DocumentVersion, 0, len(r.History)+1)
	history = append(history, DocumentVersion{
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		Content:   r.Content,
	})
	history = append(history, r.History...)

	next := r
	next.Content = content
	next.Version = r.Version + 1
	next.History = history
	next.CreatedAt = now
	return next
}

// CheckHistory verifies len(History) == Version-1 and that versions
// decrease by exactly one from Version-1 down to 1.
func (r DocumentRecord) CheckHistory() error {
	if r.Version < 1 {
		return fmt.Errorf("version %d below 1", r.Version)
	}
	if len(r.History) != r.Version-1 {
		return fmt.Errorf("history length %d does not match version %d", len(r.History), r.Version)
	}
	for i, snap := range r.History {
		if want := r.Version - 1 - i; snap.Version != want {
			return fmt.Errorf("history[%d] has version %d, want %d", i, snap.Version, want)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can hand records across goroutines.
func (r DocumentRecord) Clone() DocumentRecord {
	out := r
	out.History = make([]DocumentVersion, len(r.History))
	copy(out.History, r.History)
	return out
}

// DocumentRevision asks the store to replace the content of an existing
// record. ExpectedVersion of zero means "whatever is current".
type DocumentRevision struct {
	CompanyID       string
	DocumentID      string
	Content         string
	ExpectedVersion int
	At              time.Time
}

// DocumentSavedEvent is published after every successful create or revise.
type DocumentSavedEvent struct {
	CompanyID  string         `json:"company_id"`
	DocumentID string         `json:"document_id"`
	TypeID     DocumentTypeID `json:"type_id"`
	Version    int            `json:"version"`
	SavedAt    time.Time      `json:"saved_at"`
}
