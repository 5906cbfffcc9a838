package models

import (
	dErrors "recouvro/pkg/domain-errors"
)

// Stage is the bailiff sub-workflow position of a dossier. The wire values
// are the legacy French stage names and must not change.
type Stage string

const (
	// StageAwaitingDocuments is the implicit default when a bailiff is
	// freshly assigned and no stage has been recorded yet.
	StageAwaitingDocuments Stage = "EN_ATTENTE_DOCUMENTS"
	StageActions           Stage = "EN_ACTIONS"
	StageAudiences         Stage = "EN_AUDIENCES"
	// StageFinance is terminal for the bailiff sub-workflow. It is reached
	// through the stage-independent hand-to-finance command, never through
	// the linear transition table.
	StageFinance Stage = "TRANSMIS_FINANCE"
)

// ParseStage validates a stage string. The empty string normalizes to
// StageAwaitingDocuments.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case "":
		return StageAwaitingDocuments, nil
	case StageAwaitingDocuments, StageActions, StageAudiences, StageFinance:
		return Stage(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown stage %q", s)
}

// next returns the linear successor of a stage. Hand-to-finance is not part
// of this table.
func (s Stage) next() (Stage, bool) {
	switch s {
	case StageAwaitingDocuments:
		return StageActions, true
	case StageActions:
		return StageAudiences, true
	}
	return "", false
}

// CanAdvanceTo reports whether target is the immediate forward step from s.
// Transitions are one-directional; there is no rollback.
func (s Stage) CanAdvanceTo(target Stage) bool {
	next, ok := s.next()
	return ok && next == target
}

// IsTerminal reports whether the bailiff sub-workflow is finished.
func (s Stage) IsTerminal() bool { return s == StageFinance }

// AllowsDocumentCreation gates DocumentLedger.Create.
func (s Stage) AllowsDocumentCreation() bool { return s == StageAwaitingDocuments }

// AllowsActionCreation gates ActionLedger.Create.
func (s Stage) AllowsActionCreation() bool { return s == StageActions }

// AllowsAudienceCreation gates AudienceLedger.Create.
func (s Stage) AllowsAudienceCreation() bool { return s == StageAudiences }
