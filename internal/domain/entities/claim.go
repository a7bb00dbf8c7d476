package entities

import (
	"encoding/json"
	"time"
)

// AppealStatus tracks where a claim's appeal sits in its lifecycle.
type AppealStatus string

const (
	AppealStatusGenerated  AppealStatus = "generated"
	AppealStatusPending    AppealStatus = "pending"
	AppealStatusSubmitted  AppealStatus = "submitted"
	AppealStatusSuccessful AppealStatus = "successful"
	AppealStatusFailed     AppealStatus = "failed"
)

// IsValid reports whether s is a known appeal status.
func (s AppealStatus) IsValid() bool {
	switch s {
	case AppealStatusGenerated, AppealStatusPending, AppealStatusSubmitted,
		AppealStatusSuccessful, AppealStatusFailed:
		return true
	}
	return false
}

// Claim is a denied insurance claim together with its generated appeal.
// Input fields are never modified after creation.
type Claim struct {
	ID               int64        `json:"id" db:"id"`
	PatientName      string       `json:"patient_name" db:"patient_name"`
	ServiceDate      time.Time    `json:"service_date" db:"service_date"`
	CPTCode          string       `json:"cpt_code" db:"cpt_code"`
	ICD10Codes       string       `json:"icd10_codes" db:"icd10_codes"`
	DenialReason     string       `json:"denial_reason" db:"denial_reason"`
	InsuranceCompany string       `json:"insurance_company" db:"insurance_company"`
	ClaimAmount      float64      `json:"claim_amount" db:"claim_amount"`
	AdditionalInfo   *string      `json:"additional_info" db:"additional_info"`
	AppealText       string       `json:"appeal_text" db:"appeal_text"`
	AppealStatus     AppealStatus `json:"appeal_status" db:"appeal_status"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// MarshalJSON renders ServiceDate as a calendar date.
func (c Claim) MarshalJSON() ([]byte, error) {
	type claimAlias Claim
	return json.Marshal(struct {
		claimAlias
		ServiceDate string `json:"service_date"`
	}{
		claimAlias:  claimAlias(c),
		ServiceDate: c.ServiceDate.Format(ServiceDateLayout),
	})
}
