package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/claim-appeal/backend/internal/adapters/database"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/repositories"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/claim-appeal/backend/pkg/errors"
)

var claimRowColumns = []string{
	"id", "patient_name", "service_date", "cpt_code", "icd10_codes",
	"denial_reason", "insurance_company", "claim_amount", "additional_info",
	"appeal_text", "appeal_status", "created_at", "updated_at",
}

func newMockAdapter(t *testing.T) (repositories.ClaimRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewClaimAdapter(postgres.NewClientFromDB(db), nil), mock
}

func sampleClaim() *entities.Claim {
	return &entities.Claim{
		PatientName:      "Jane Doe",
		ServiceDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CPTCode:          "99214",
		ICD10Codes:       "E11.9,I10",
		DenialReason:     "Medical necessity not established",
		InsuranceCompany: "Acme Health",
		ClaimAmount:      1234.5,
		AppealText:       "Dear reviewer",
		AppealStatus:     entities.AppealStatusGenerated,
	}
}

func TestClaimAdapter_Create(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO "claims" .* RETURNING "id", "created_at", "updated_at"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), created, created))

	claim := sampleClaim()
	require.NoError(t, adapter.Create(context.Background(), claim))

	assert.Equal(t, int64(42), claim.ID)
	assert.Equal(t, created, claim.CreatedAt)
	assert.Equal(t, created, claim.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimAdapter_Create_RejectsUnknownStatus(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	claim := sampleClaim()
	claim.AppealStatus = "archived"

	err := adapter.Create(context.Background(), claim)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimAdapter_Create_DatabaseError(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`INSERT INTO "claims"`).WillReturnError(errors.New("connection reset"))

	err := adapter.Create(context.Background(), sampleClaim())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestClaimAdapter_List_NewestFirst(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	serviceDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(claimRowColumns).
		AddRow(int64(3), "C", serviceDate, "99213", "I10", "reason", "Acme", 30.0, nil, "letter C", "generated", base.Add(2*time.Minute), base.Add(2*time.Minute)).
		AddRow(int64(2), "B", serviceDate, "99213", "I10", "reason", "Acme", 20.0, "notes", "letter B", "generated", base.Add(time.Minute), base.Add(time.Minute)).
		AddRow(int64(1), "A", serviceDate, "99213", "I10", "reason", "Acme", 10.0, nil, "letter A", "generated", base, base)

	mock.ExpectQuery(`SELECT .* FROM "claims" ORDER BY "created_at" DESC, "id" DESC`).WillReturnRows(rows)

	claims, err := adapter.List(context.Background())
	require.NoError(t, err)
	require.Len(t, claims, 3)

	assert.Equal(t, []string{"C", "B", "A"}, []string{claims[0].PatientName, claims[1].PatientName, claims[2].PatientName})
	assert.Nil(t, claims[0].AdditionalInfo)
	require.NotNil(t, claims[1].AdditionalInfo)
	assert.Equal(t, "notes", *claims[1].AdditionalInfo)
	assert.Equal(t, entities.AppealStatusGenerated, claims[2].AppealStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimAdapter_List_Empty(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT .* FROM "claims"`).WillReturnRows(sqlmock.NewRows(claimRowColumns))

	claims, err := adapter.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Empty(t, claims)
}

func TestClaimAdapter_GetByID(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	serviceDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "claims" WHERE \("id" = \$1\)`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(claimRowColumns).
			AddRow(int64(7), "Jane Doe", serviceDate, "99214", "E11.9", "reason", "Acme", 1234.5, nil, "Dear reviewer", "generated", now, now))

	claim, err := adapter.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claim.ID)
	assert.Equal(t, 1234.5, claim.ClaimAmount)
	assert.Equal(t, serviceDate, claim.ServiceDate)
	assert.Equal(t, "Dear reviewer", claim.AppealText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimAdapter_GetByID_NotFound(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT .* FROM "claims"`).WillReturnError(sql.ErrNoRows)

	claim, err := adapter.GetByID(context.Background(), 999)
	assert.Nil(t, claim)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
