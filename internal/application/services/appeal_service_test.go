package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/claim-appeal/backend/internal/application/appeal"
	"github.com/zatekoja/claim-appeal/backend/internal/application/services"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/claim-appeal/backend/pkg/errors"
)

// Mocks

type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *entities.Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) List(ctx context.Context) ([]*entities.Claim, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Claim), args.Error(1)
}

func (m *MockClaimRepository) GetByID(ctx context.Context, id int64) (*entities.Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Claim), args.Error(1)
}

type MockGenerationProvider struct {
	mock.Mock
}

func (m *MockGenerationProvider) Generate(ctx context.Context, req *providers.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ClaimEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ClaimEvent, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *MockEventBus) Close() error {
	return nil
}

const generatedText = `Dear Claims Review Department,

I am writing to appeal the denial of the claim for Jane Doe.

Sincerely,
Dr. Smith

Success Probability: High. The documentation is strong.

Strategy Suggestions:
1. Attach the HbA1c results
2. Cite ADA guidelines`

func newAppealRequest() *entities.AppealRequest {
	return &entities.AppealRequest{
		PatientName:      "Jane Doe",
		ServiceDate:      "2024-01-15",
		CPTCode:          "99214",
		ICD10Codes:       "E11.9,I10",
		DenialReason:     "Medical necessity not established",
		InsuranceCompany: "Acme Health",
		ClaimAmount:      1234.5,
	}
}

var testOptions = services.GenerationOptions{Model: "test-model", MaxTokens: 4000, Temperature: 0.2}

// Tests

func TestAppealService_CreateAppeal(t *testing.T) {
	t.Run("stores the parsed appeal and returns its id", func(t *testing.T) {
		repo := new(MockClaimRepository)
		provider := new(MockGenerationProvider)
		service := services.NewAppealService(repo, provider, appeal.NewHeuristicParser(), testOptions)

		provider.On("Generate", mock.Anything, mock.MatchedBy(func(req *providers.GenerationRequest) bool {
			return req.Model == "test-model" &&
				req.MaxTokens == 4000 &&
				req.Temperature == 0.2 &&
				req.SystemInstruction == appeal.SystemInstruction &&
				strings.Contains(req.Prompt, "Jane Doe")
		})).Return(generatedText, nil)

		var stored *entities.Claim
		repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Claim")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*entities.Claim)
				stored.ID = 17
			}).
			Return(nil)

		resp, err := service.CreateAppeal(context.Background(), newAppealRequest())
		require.NoError(t, err)

		assert.Equal(t, int64(17), resp.ClaimID)
		assert.Equal(t, entities.SuccessProbabilityHigh, resp.SuccessProbability)
		assert.Equal(t, []string{"1. Attach the HbA1c results", "2. Cite ADA guidelines"}, resp.Strategies)
		assert.True(t, strings.HasPrefix(resp.AppealLetter, "Dear Claims Review Department,"))

		require.NotNil(t, stored)
		assert.Equal(t, resp.AppealLetter, stored.AppealText)
		assert.Equal(t, entities.AppealStatusGenerated, stored.AppealStatus)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), stored.ServiceDate)
		assert.Equal(t, 1234.5, stored.ClaimAmount)
		repo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("rejects a malformed service date before generating", func(t *testing.T) {
		repo := new(MockClaimRepository)
		provider := new(MockGenerationProvider)
		service := services.NewAppealService(repo, provider, appeal.NewHeuristicParser(), testOptions)

		req := newAppealRequest()
		req.ServiceDate = "15/01/2024"

		resp, err := service.CreateAppeal(context.Background(), req)
		assert.Nil(t, resp)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		repo := new(MockClaimRepository)
		provider := new(MockGenerationProvider)
		service := services.NewAppealService(repo, provider, appeal.NewHeuristicParser(), testOptions)

		req := newAppealRequest()
		req.CPTCode = ""
		req.DenialReason = "   "

		_, err := service.CreateAppeal(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "cpt_code, denial_reason")
		provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("persists nothing when generation fails", func(t *testing.T) {
		repo := new(MockClaimRepository)
		provider := new(MockGenerationProvider)
		service := services.NewAppealService(repo, provider, appeal.NewHeuristicParser(), testOptions)

		provider.On("Generate", mock.Anything, mock.Anything).
			Return("", errors.Join(providers.ErrProviderFailure, errors.New("status 500")))

		resp, err := service.CreateAppeal(context.Background(), newAppealRequest())
		assert.Nil(t, resp)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
		assert.ErrorIs(t, err, services.ErrGenerationFailed)
		assert.ErrorIs(t, err, providers.ErrProviderFailure)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("client disconnect during generation still stores the appeal", func(t *testing.T) {
		repo := new(MockClaimRepository)
		provider := new(MockGenerationProvider)
		service := services.NewAppealService(repo, provider, appeal.NewHeuristicParser(), testOptions)

		ctx, cancel := context.WithCancel(context.Background())

		provider.On("Generate", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				cancel()
				genCtx := args.Get(0).(context.Context)
				assert.NoError(t, genCtx.Err())
			}).
			Return(generatedText, nil)
		repo.On("Create", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(1).(*entities.Claim).ID = 9
			}).
			Return(nil)

		resp, err := service.CreateAppeal(ctx, newAppealRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(9), resp.ClaimID)
		repo.AssertExpectations(t)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		repo := new(MockClaimRepository)
		provider := new(MockGenerationProvider)
		service := services.NewAppealService(repo, provider, appeal.NewHeuristicParser(), testOptions)

		provider.On("Generate", mock.Anything, mock.Anything).Return(generatedText, nil)
		repo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.NewInternalError("failed to create claim", errors.New("disk full")))

		resp, err := service.CreateAppeal(context.Background(), newAppealRequest())
		assert.Nil(t, resp)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})

	t.Run("publishes an event and ignores publish failures", func(t *testing.T) {
		repo := new(MockClaimRepository)
		provider := new(MockGenerationProvider)
		bus := new(MockEventBus)
		service := services.NewAppealService(repo, provider, appeal.NewHeuristicParser(), testOptions)
		service.SetEventBus(bus)

		provider.On("Generate", mock.Anything, mock.Anything).Return(generatedText, nil)
		repo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { args.Get(1).(*entities.Claim).ID = 5 }).
			Return(nil)
		bus.On("Publish", mock.Anything, providers.EventChannelClaimUpdates, mock.MatchedBy(func(e *entities.ClaimEvent) bool {
			return e.ClaimID == 5 &&
				e.EventType == entities.ClaimEventAppealGenerated &&
				e.SuccessProbability == entities.SuccessProbabilityHigh &&
				e.ID != ""
		})).Return(errors.New("redis down"))

		resp, err := service.CreateAppeal(context.Background(), newAppealRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.ClaimID)
		bus.AssertExpectations(t)
	})
}

func TestAppealService_ListAppeals(t *testing.T) {
	repo := new(MockClaimRepository)
	service := services.NewAppealService(repo, new(MockGenerationProvider), appeal.NewHeuristicParser(), testOptions)

	claims := []*entities.Claim{{ID: 3, PatientName: "C"}, {ID: 2, PatientName: "B"}, {ID: 1, PatientName: "A"}}
	repo.On("List", mock.Anything).Return(claims, nil)

	got, err := service.ListAppeals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, claims, got)
}

func TestAppealService_GetAppeal(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockClaimRepository)
		service := services.NewAppealService(repo, new(MockGenerationProvider), appeal.NewHeuristicParser(), testOptions)

		repo.On("GetByID", mock.Anything, int64(9)).Return(&entities.Claim{ID: 9, AppealText: "letter"}, nil)

		claim, err := service.GetAppeal(context.Background(), 9)
		require.NoError(t, err)
		assert.Equal(t, "letter", claim.AppealText)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockClaimRepository)
		service := services.NewAppealService(repo, new(MockGenerationProvider), appeal.NewHeuristicParser(), testOptions)

		repo.On("GetByID", mock.Anything, int64(404)).Return(nil, apperrors.NewNotFoundError("Claim not found"))

		claim, err := service.GetAppeal(context.Background(), 404)
		assert.Nil(t, claim)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
