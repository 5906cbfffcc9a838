// Package models defines legal documents and their statutory deadline
// derivation.
package models

import (
	"strings"
	"time"

	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
)

// DocumentType identifies the kind of legal document issued by the bailiff.
type DocumentType string

const (
	TypeMiseEnDemeure          DocumentType = "PV_MISE_EN_DEMEURE"
	TypeOrdonnancePaiement     DocumentType = "ORDONNANCE_PAIEMENT"
	TypeNotificationOrdonnance DocumentType = "PV_NOTIFICATION_ORDONNANCE"
)

// ParseDocumentType validates a document type string.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case TypeMiseEnDemeure, TypeOrdonnancePaiement, TypeNotificationOrdonnance:
		return DocumentType(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown document type %q", s)
}

// StatutoryDelay returns the statutory delay in days for a document type.
// PV_NOTIFICATION_ORDONNANCE carries no deadline of its own and reports
// ok=false: such documents never expire.
func StatutoryDelay(t DocumentType) (days int, ok bool) {
	switch t {
	case TypeMiseEnDemeure:
		return 10, true
	case TypeOrdonnancePaiement:
		return 20, true
	}
	return 0, false
}

// Deadline computes the statutory expiry for a document type created at the
// given instant. Pure. ok=false means no expiry is computable (no statutory
// delay, or the creation instant is absent) and the document is non-expiring.
func Deadline(t DocumentType, createdAt time.Time) (deadline time.Time, ok bool) {
	days, hasDelay := StatutoryDelay(t)
	if !hasDelay || createdAt.IsZero() {
		return time.Time{}, false
	}
	return createdAt.AddDate(0, 0, days), true
}

// Status is the derived lifecycle state of a document. It is computed on
// read from (now, creation, delay, completed flag) and stored nowhere
// authoritatively.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusExpired   Status = "EXPIRED"
	StatusCompleted Status = "COMPLETED"
)

// LegalDocument is a dated legal act recorded against a dossier.
//
// Invariants:
//   - DelayDays is a function of Type, set at creation, immutable
//   - COMPLETED is terminal and only reachable from PENDING
//   - EXPIRED is reachable only from PENDING once now passes the deadline;
//     an expired document can never become completed
type LegalDocument struct {
	ID            id.DocumentID `json:"id"`
	DossierID     id.DossierID  `json:"dossier_id"`
	Type          DocumentType  `json:"type"`
	DelayDays     int           `json:"delai_jours"`
	CreatedAt     time.Time     `json:"created_at"`
	AttachmentRef string        `json:"attachment_ref,omitempty"`
	BailiffName   string        `json:"huissier"`
	Completed     bool          `json:"completed"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// NewLegalDocument validates and constructs a document. The statutory delay
// is derived from the type here and never changes afterwards.
func NewLegalDocument(documentID id.DocumentID, dossierID id.DossierID, docType DocumentType, bailiffName, attachmentRef string, now time.Time) (*LegalDocument, error) {
	bailiffName = strings.TrimSpace(bailiffName)
	if bailiffName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "bailiff name is required")
	}
	if _, err := ParseDocumentType(string(docType)); err != nil {
		return nil, err
	}
	days, _ := StatutoryDelay(docType)
	return &LegalDocument{
		ID:            documentID,
		DossierID:     dossierID,
		Type:          docType,
		DelayDays:     days,
		CreatedAt:     now,
		AttachmentRef: attachmentRef,
		BailiffName:   bailiffName,
	}, nil
}

// Deadline returns the document's statutory expiry instant. ok=false when the
// document is non-expiring.
func (d *LegalDocument) Deadline() (time.Time, bool) {
	if d.DelayDays <= 0 || d.CreatedAt.IsZero() {
		return time.Time{}, false
	}
	return d.CreatedAt.AddDate(0, 0, d.DelayDays), true
}

// DeriveStatus computes the document status at the given instant. Pure; call
// it at every read boundary instead of trusting a stored status.
func (d *LegalDocument) DeriveStatus(now time.Time) Status {
	if d.Completed {
		return StatusCompleted
	}
	if deadline, ok := d.Deadline(); ok && now.After(deadline) {
		return StatusExpired
	}
	return StatusPending
}

// CanComplete checks the completion conflict rules at the given instant.
func (d *LegalDocument) CanComplete(now time.Time) error {
	switch d.DeriveStatus(now) {
	case StatusCompleted:
		return dErrors.New(dErrors.CodeAlreadyCompleted, "document is already completed")
	case StatusExpired:
		return dErrors.New(dErrors.CodeAlreadyExpired, "document deadline has expired")
	}
	return nil
}

// ApplyCompletion marks the document completed. Call CanComplete first.
func (d *LegalDocument) ApplyCompletion(now time.Time) {
	d.Completed = true
	completedAt := now
	d.CompletedAt = &completedAt
}
