// Package appeal builds generation prompts from claim denials and turns the
// provider's free-form reply back into a structured appeal.
package appeal

import (
	"fmt"
	"strings"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
)

// SystemInstruction accompanies every appeal prompt.
const SystemInstruction = `You are an experienced US medical insurance claims specialist who writes appeal letters for denied claims. Your answers must be professional, accurate and consistent with health insurance industry standards.`

// noAdditionalInfo stands in for an absent additional_info field.
const noAdditionalInfo = "None"

const promptTemplate = `You are a US medical insurance claims specialist who helps healthcare providers write professional appeal letters for denied claims.

Write a professional appeal letter for the following denied claim:

Patient name: %s
Date of service: %s
CPT code: %s
ICD-10 diagnosis codes: %s
Denial reason: %s
Insurance company: %s
Claim amount: $%s
Additional clinical information: %s

Provide the following, in this order:
1. A professionally formatted appeal letter with every required part (letterhead, date, subject line, salutation, body, closing and signature)
2. A medical necessity argument based on the clinical information and the denial reason
3. Citations of relevant clinical guidelines, insurance policy or medical literature supporting the argument
4. Under the heading "Success Probability", a rating of how likely this appeal is to succeed, using exactly one of the words High, Medium or Low
5. Under the heading "Strategy Suggestions", 3-5 bullet points with strategies to improve the chance of success

Keep the letter professional, concise and persuasive, and rebut the specific denial reason directly.`

// BuildPrompt renders the claim into the fixed appeal prompt. Field values are
// embedded verbatim.
func BuildPrompt(req *entities.AppealRequest) string {
	additional := noAdditionalInfo
	if req.AdditionalInfo != nil && strings.TrimSpace(*req.AdditionalInfo) != "" {
		additional = *req.AdditionalInfo
	}

	return fmt.Sprintf(promptTemplate,
		req.PatientName,
		req.ServiceDate,
		req.CPTCode,
		req.ICD10Codes,
		req.DenialReason,
		req.InsuranceCompany,
		formatAmount(req.ClaimAmount),
		additional,
	)
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
