// Package models defines court audiences recorded against a dossier.
package models

import (
	"strings"
	"time"

	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
)

// Audience is one scheduled or held court hearing for a dossier. Audiences
// feed the hand-to-finance eligibility rule alongside recovery actions.
type Audience struct {
	ID           id.AudienceID `json:"id"`
	DossierID    id.DossierID  `json:"dossier_id"`
	DateAudience time.Time     `json:"date_audience"`
	Tribunal     string        `json:"tribunal"`
	Resultat     string        `json:"resultat,omitempty"`
	BailiffName  string        `json:"huissier"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewAudience validates and constructs an audience.
func NewAudience(audienceID id.AudienceID, dossierID id.DossierID, dateAudience time.Time, tribunal, resultat, bailiffName string, now time.Time) (*Audience, error) {
	tribunal = strings.TrimSpace(tribunal)
	if tribunal == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tribunal is required")
	}
	if dateAudience.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "audience date is required")
	}
	return &Audience{
		ID:           audienceID,
		DossierID:    dossierID,
		DateAudience: dateAudience,
		Tribunal:     tribunal,
		Resultat:     strings.TrimSpace(resultat),
		BailiffName:  strings.TrimSpace(bailiffName),
		CreatedAt:    now,
	}, nil
}
