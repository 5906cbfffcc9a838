// Package audit defines the append-only trail of case-progression events.
//
// Events are emitted from domain services after a mutation is confirmed by the
// store. Keep the event transport-agnostic so stores and sinks can fan out.
package audit

import (
	"time"

	id "recouvro/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: issuing a
	// dated legal document, recording a recovery amount, handing a case to
	// finance. These require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility: stage refreshes, cache invalidations, routine reads.
	CategoryOperations EventCategory = "operations"
)

// Action names for the recovery pipeline. Values are stable wire strings.
type Action string

const (
	ActionDocumentCreated    Action = "document_created"
	ActionDocumentCompleted  Action = "document_completed"
	ActionDocumentDeleted    Action = "document_deleted"
	ActionRecoveryRecorded   Action = "recovery_action_recorded"
	ActionRecoveryUpdated    Action = "recovery_action_updated"
	ActionRecoveryDeleted    Action = "recovery_action_deleted"
	ActionAudienceRecorded   Action = "audience_recorded"
	ActionStageAdvanced      Action = "stage_advanced"
	ActionHandedToFinance    Action = "handed_to_finance"
	ActionDossierCreated     Action = "dossier_created"
	ActionDossierClosed      Action = "dossier_closed"
	ActionDossierReactivated Action = "dossier_reactivated"
)

// Event is emitted from domain logic to capture key actions against a dossier.
type Event struct {
	Category    EventCategory `json:"category"`
	Timestamp   time.Time     `json:"timestamp"`
	DossierID   id.DossierID  `json:"dossier_id"`
	Action      Action        `json:"action"`
	BailiffName string        `json:"bailiff_name,omitempty"`
	// Stage captures the dossier stage after the event, when relevant.
	Stage string `json:"stage,omitempty"`
	// Amount carries the recovered amount for recovery-action events.
	Amount float64 `json:"amount,omitempty"`
	// Detail is a short free-form qualifier (document type, target stage...).
	Detail string `json:"detail,omitempty"`
	// Correlation fields from the HTTP request context.
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}
