package entities

import "time"

// ClaimEventType identifies a claim lifecycle event.
type ClaimEventType string

const (
	// ClaimEventAppealGenerated is emitted after a claim and its appeal are stored.
	ClaimEventAppealGenerated ClaimEventType = "appeal.generated"
)

// ClaimEvent is broadcast to stream subscribers when a claim changes.
type ClaimEvent struct {
	ID                 string             `json:"id"`
	EventType          ClaimEventType     `json:"event_type"`
	ClaimID            int64              `json:"claim_id"`
	PatientName        string             `json:"patient_name"`
	InsuranceCompany   string             `json:"insurance_company"`
	SuccessProbability SuccessProbability `json:"success_probability,omitempty"`
	Timestamp          time.Time          `json:"timestamp"`
}
