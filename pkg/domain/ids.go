// Package domain holds the typed identifiers shared across modules.
//
// Each ID is a distinct uuid-backed type so a DossierID can never be passed
// where a DocumentID is expected. Parse functions validate at the boundary;
// everything past the boundary works with the typed value.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// DossierID identifies a recovery case file.
type DossierID uuid.UUID

// DocumentID identifies a legal document issued against a dossier.
type DocumentID uuid.UUID

// ActionID identifies a recovery action recorded against a dossier.
type ActionID uuid.UUID

// AudienceID identifies a court hearing recorded against a dossier.
type AudienceID uuid.UUID

// NewDossierID returns a fresh random DossierID.
func NewDossierID() DossierID { return DossierID(uuid.New()) }

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewActionID returns a fresh random ActionID.
func NewActionID() ActionID { return ActionID(uuid.New()) }

// NewAudienceID returns a fresh random AudienceID.
func NewAudienceID() AudienceID { return AudienceID(uuid.New()) }

// ParseDossierID validates and returns a DossierID.
func ParseDossierID(s string) (DossierID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DossierID{}, fmt.Errorf("invalid dossier id %q: %w", s, err)
	}
	return DossierID(u), nil
}

// ParseDocumentID validates and returns a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DocumentID{}, fmt.Errorf("invalid document id %q: %w", s, err)
	}
	return DocumentID(u), nil
}

// ParseActionID validates and returns an ActionID.
func ParseActionID(s string) (ActionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ActionID{}, fmt.Errorf("invalid action id %q: %w", s, err)
	}
	return ActionID(u), nil
}

// ParseAudienceID validates and returns an AudienceID.
func ParseAudienceID(s string) (AudienceID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AudienceID{}, fmt.Errorf("invalid audience id %q: %w", s, err)
	}
	return AudienceID(u), nil
}

func (id DossierID) String() string  { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id ActionID) String() string   { return uuid.UUID(id).String() }
func (id AudienceID) String() string { return uuid.UUID(id).String() }

func (id DossierID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ActionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AudienceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText implementations keep IDs as plain uuid strings in JSON payloads.

func (id DossierID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ActionID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id AudienceID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *DossierID) UnmarshalText(b []byte) error {
	parsed, err := ParseDossierID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DocumentID) UnmarshalText(b []byte) error {
	parsed, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ActionID) UnmarshalText(b []byte) error {
	parsed, err := ParseActionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *AudienceID) UnmarshalText(b []byte) error {
	parsed, err := ParseAudienceID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
