package entities

// ServiceDateLayout is the accepted format for AppealRequest.ServiceDate.
const ServiceDateLayout = "2006-01-02"

// SuccessProbability is the coarse likelihood that an appeal succeeds.
type SuccessProbability string

const (
	SuccessProbabilityHigh   SuccessProbability = "high"
	SuccessProbabilityMedium SuccessProbability = "medium"
	SuccessProbabilityLow    SuccessProbability = "low"
)

// AppealRequest carries the claim-denial details submitted for an appeal.
type AppealRequest struct {
	PatientName      string  `json:"patient_name"`
	ServiceDate      string  `json:"service_date"`
	CPTCode          string  `json:"cpt_code"`
	ICD10Codes       string  `json:"icd10_codes"`
	DenialReason     string  `json:"denial_reason"`
	InsuranceCompany string  `json:"insurance_company"`
	ClaimAmount      float64 `json:"claim_amount"`
	AdditionalInfo   *string `json:"additional_info,omitempty"`
}

// AppealResult is the structured form of a generated appeal. It is built per
// request and is not persisted on its own.
type AppealResult struct {
	AppealLetter       string             `json:"appeal_letter"`
	SuccessProbability SuccessProbability `json:"success_probability"`
	Strategies         []string           `json:"strategies"`
}

// AppealResponse is returned to the caller once the claim has been stored.
type AppealResponse struct {
	AppealResult
	ClaimID int64 `json:"claim_id"`
}
