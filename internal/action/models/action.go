// Package models defines recovery actions and the recovered-amount
// arithmetic.
package models

import (
	"strings"
	"time"

	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
)

// ActionType identifies the seizure category of a recovery action.
type ActionType string

const (
	TypeSaisieMobiliere    ActionType = "SAISIE_MOBILIERE"
	TypeSaisieImmobiliere  ActionType = "SAISIE_IMMOBILIERE"
	TypeSaisieAttribution  ActionType = "SAISIE_ATTRIBUTION"
	TypeSaisieRemuneration ActionType = "SAISIE_REMUNERATION"
)

// ParseActionType validates an action type string.
func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case TypeSaisieMobiliere, TypeSaisieImmobiliere, TypeSaisieAttribution, TypeSaisieRemuneration:
		return ActionType(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown action type %q", s)
}

// StateHint is the case-state outcome the bailiff records alongside an action.
type StateHint string

const (
	HintEnCours  StateHint = "EN_COURS"
	HintCloture  StateHint = "CLOTURE"
	HintSuspendu StateHint = "SUSPENDU"
)

// ParseStateHint validates a state hint. The empty string normalizes to
// HintEnCours.
func ParseStateHint(s string) (StateHint, error) {
	switch StateHint(s) {
	case "":
		return HintEnCours, nil
	case HintEnCours, HintCloture, HintSuspendu:
		return StateHint(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown resulting state %q", s)
}

// RecoveryAction is one seizure recorded against a dossier.
//
// MontantRestant is a derived snapshot: remaining = max(0, total claim minus
// the reconciled cumulative recovered amount at write time). The action sum
// is the authoritative ledger; the snapshot exists for display and export.
type RecoveryAction struct {
	ID              id.ActionID  `json:"id"`
	DossierID       id.DossierID `json:"dossier_id"`
	Type            ActionType   `json:"type"`
	MontantRecupere float64      `json:"montant_recupere"`
	MontantRestant  float64      `json:"montant_restant"`
	ResultingState  StateHint    `json:"etat_resultant"`
	AttachmentRef   string       `json:"attachment_ref,omitempty"`
	BailiffName     string       `json:"huissier"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewRecoveryAction validates and constructs an action. The remaining
// snapshot is computed by the caller, which owns the cumulative sum.
func NewRecoveryAction(actionID id.ActionID, dossierID id.DossierID, actionType ActionType, bailiffName string, amount float64, stateHint StateHint, attachmentRef string, now time.Time) (*RecoveryAction, error) {
	if _, err := ParseActionType(string(actionType)); err != nil {
		return nil, err
	}
	hint, err := ParseStateHint(string(stateHint))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(bailiffName) == "" {
		return nil, dErrors.New(dErrors.CodeNoBailiffAssigned, "no bailiff assigned to the dossier")
	}
	if amount < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "recovered amount cannot be negative")
	}
	return &RecoveryAction{
		ID:              actionID,
		DossierID:       dossierID,
		Type:            actionType,
		MontantRecupere: amount,
		ResultingState:  hint,
		AttachmentRef:   attachmentRef,
		BailiffName:     strings.TrimSpace(bailiffName),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Remaining clamps the outstanding claim at zero. Over-recovery never
// produces a negative remainder.
func Remaining(totalClaim, cumulativeRecovered float64) float64 {
	remaining := totalClaim - cumulativeRecovered
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reconcile returns the greater of the action-ledger sum and the recovered
// amount recorded directly on the dossier. The dossier field can be written
// by the finance import path, so trusting the larger value avoids
// undercounting the remainder.
func Reconcile(actionSum, dossierRecovered float64) float64 {
	if dossierRecovered > actionSum {
		return dossierRecovered
	}
	return actionSum
}
