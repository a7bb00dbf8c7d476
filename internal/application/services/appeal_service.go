package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/claim-appeal/backend/internal/application/appeal"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/repositories"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/claim-appeal/backend/pkg/errors"
)

// ErrGenerationFailed is wrapped by every error caused by the text-generation
// provider. Nothing is persisted when it is returned.
var ErrGenerationFailed = errors.New("appeal generation failed")

// GenerationOptions are the per-call settings forwarded to the provider.
type GenerationOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// AppealService orchestrates prompt building, generation, parsing and storage.
type AppealService struct {
	repo     repositories.ClaimRepository
	provider providers.TextGenerationProvider
	parser   providers.AppealResponseParser
	opts     GenerationOptions
	eventBus providers.EventBus
}

// NewAppealService creates a new appeal service
func NewAppealService(
	repo repositories.ClaimRepository,
	provider providers.TextGenerationProvider,
	parser providers.AppealResponseParser,
	opts GenerationOptions,
) *AppealService {
	return &AppealService{
		repo:     repo,
		provider: provider,
		parser:   parser,
		opts:     opts,
	}
}

// SetEventBus enables publishing of claim events. A nil bus disables it.
func (s *AppealService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// CreateAppeal generates an appeal for req, stores the claim and returns the
// parsed result together with the new claim id.
func (s *AppealService) CreateAppeal(ctx context.Context, req *entities.AppealRequest) (*entities.AppealResponse, error) {
	ctx, span := observability.StartSpan(ctx, "AppealService.CreateAppeal")
	defer span.End()

	serviceDate, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	genReq := &providers.GenerationRequest{
		Model:             s.opts.Model,
		MaxTokens:         s.opts.MaxTokens,
		Temperature:       s.opts.Temperature,
		SystemInstruction: appeal.SystemInstruction,
		Prompt:            appeal.BuildPrompt(req),
	}

	// Generation and persistence outlive a disconnected client.
	detached := context.WithoutCancel(ctx)

	raw, err := s.provider.Generate(detached, genReq)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewExternalError("failed to generate appeal", fmt.Errorf("%w: %w", ErrGenerationFailed, err))
	}

	result := s.parser.Parse(raw)

	claim := &entities.Claim{
		PatientName:      req.PatientName,
		ServiceDate:      serviceDate,
		CPTCode:          req.CPTCode,
		ICD10Codes:       req.ICD10Codes,
		DenialReason:     req.DenialReason,
		InsuranceCompany: req.InsuranceCompany,
		ClaimAmount:      req.ClaimAmount,
		AdditionalInfo:   req.AdditionalInfo,
		AppealText:       result.AppealLetter,
		AppealStatus:     entities.AppealStatusGenerated,
	}

	if err := s.repo.Create(detached, claim); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.Int64("claim.id", claim.ID),
		attribute.String("appeal.success_probability", string(result.SuccessProbability)),
	)

	s.publishGenerated(detached, claim, result)

	return &entities.AppealResponse{
		AppealResult: *result,
		ClaimID:      claim.ID,
	}, nil
}

// ListAppeals returns every stored claim, newest first.
func (s *AppealService) ListAppeals(ctx context.Context) ([]*entities.Claim, error) {
	return s.repo.List(ctx)
}

// GetAppeal returns a single claim by id.
func (s *AppealService) GetAppeal(ctx context.Context, id int64) (*entities.Claim, error) {
	return s.repo.GetByID(ctx, id)
}

// validateRequest checks required fields and returns the parsed service date.
func validateRequest(req *entities.AppealRequest) (time.Time, error) {
	if req == nil {
		return time.Time{}, apperrors.NewValidationError("request body is required")
	}

	required := []struct {
		name  string
		value string
	}{
		{"patient_name", req.PatientName},
		{"service_date", req.ServiceDate},
		{"cpt_code", req.CPTCode},
		{"icd10_codes", req.ICD10Codes},
		{"denial_reason", req.DenialReason},
		{"insurance_company", req.InsuranceCompany},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return time.Time{}, apperrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	serviceDate, err := time.Parse(entities.ServiceDateLayout, req.ServiceDate)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("invalid service_date %q, expected YYYY-MM-DD", req.ServiceDate))
	}
	if req.ClaimAmount < 0 {
		return time.Time{}, apperrors.NewValidationError("claim_amount must not be negative")
	}

	return serviceDate, nil
}

func (s *AppealService) publishGenerated(ctx context.Context, claim *entities.Claim, result *entities.AppealResult) {
	if s.eventBus == nil {
		return
	}

	event := &entities.ClaimEvent{
		ID:                 uuid.New().String(),
		EventType:          entities.ClaimEventAppealGenerated,
		ClaimID:            claim.ID,
		PatientName:        claim.PatientName,
		InsuranceCompany:   claim.InsuranceCompany,
		SuccessProbability: result.SuccessProbability,
		Timestamp:          time.Now().UTC(),
	}

	if err := s.eventBus.Publish(ctx, providers.EventChannelClaimUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Int64("claim_id", claim.ID).
			Msg("Failed to publish claim event")
	}
}
