// Package progression composes the dossier, document, action, and audience
// ledgers to answer "what can happen next" for a case and to execute the
// gated stage transitions.
package progression

import (
	actionmodels "recouvro/internal/action/models"
	audiencemodels "recouvro/internal/audience/models"
	documentmodels "recouvro/internal/document/models"
	dossiermodels "recouvro/internal/dossier/models"
)

// Snapshot is a fully loaded view of one dossier and its collections,
// assembled per request. Predicates over a Snapshot are pure: callers use
// them to drive UI affordances, and the same gate logic re-runs server-side
// when a command is issued.
type Snapshot struct {
	Dossier   *dossiermodels.Dossier
	Documents []*documentmodels.LegalDocument
	Actions   []*actionmodels.RecoveryAction
	Audiences []*audiencemodels.Audience
}

// CanCreateDocument reports whether a legal document may be recorded.
func (s Snapshot) CanCreateDocument() bool {
	return !s.Dossier.IsClosed() && s.Dossier.EffectiveStage().AllowsDocumentCreation()
}

// CanCreateAction reports whether a recovery action may be recorded.
func (s Snapshot) CanCreateAction() bool {
	return !s.Dossier.IsClosed() && s.Dossier.EffectiveStage().AllowsActionCreation()
}

// CanCreateAudience reports whether an audience may be recorded.
func (s Snapshot) CanCreateAudience() bool {
	return !s.Dossier.IsClosed() && s.Dossier.EffectiveStage().AllowsAudienceCreation()
}

// CanAdvanceToActions reports whether the dossier may move to EN_ACTIONS:
// the linear transition requires at least one recorded document.
func (s Snapshot) CanAdvanceToActions() bool {
	return !s.Dossier.IsClosed() &&
		s.Dossier.EffectiveStage().CanAdvanceTo(dossiermodels.StageActions) &&
		len(s.Documents) > 0
}

// CanAdvanceToAudiences reports whether the dossier may move to EN_AUDIENCES:
// the linear transition requires at least one recorded action.
func (s Snapshot) CanAdvanceToAudiences() bool {
	return !s.Dossier.IsClosed() &&
		s.Dossier.EffectiveStage().CanAdvanceTo(dossiermodels.StageAudiences) &&
		len(s.Actions) > 0
}

// CanHandToFinance reports whether the dossier may be handed to the finance
// department. Unlike the linear transitions this rule is stage-independent:
// any open dossier with at least one action or audience qualifies.
func (s Snapshot) CanHandToFinance() bool {
	return !s.Dossier.IsClosed() &&
		!s.Dossier.EffectiveStage().IsTerminal() &&
		(len(s.Actions) > 0 || len(s.Audiences) > 0)
}
