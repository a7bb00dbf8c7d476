package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/repositories"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/claim-appeal/backend/pkg/errors"
)

const claimsTable = "claims"

var claimColumns = []interface{}{
	"id", "patient_name", "service_date", "cpt_code", "icd10_codes",
	"denial_reason", "insurance_company", "claim_amount", "additional_info",
	"appeal_text", "appeal_status", "created_at", "updated_at",
}

// ClaimAdapter implements ClaimRepository on Postgres.
type ClaimAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewClaimAdapter creates a new claim adapter. metrics may be nil.
func NewClaimAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.ClaimRepository {
	return &ClaimAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create inserts a claim; id and both timestamps come back from the database.
func (a *ClaimAdapter) Create(ctx context.Context, claim *entities.Claim) error {
	if claim == nil {
		return apperrors.NewInternalError("claim is nil", fmt.Errorf("claim is nil"))
	}
	if !claim.AppealStatus.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid appeal status %q", claim.AppealStatus))
	}

	record := goqu.Record{
		"patient_name":      claim.PatientName,
		"service_date":      claim.ServiceDate,
		"cpt_code":          claim.CPTCode,
		"icd10_codes":       claim.ICD10Codes,
		"denial_reason":     claim.DenialReason,
		"insurance_company": claim.InsuranceCompany,
		"claim_amount":      claim.ClaimAmount,
		"additional_info":   nullString(claim.AdditionalInfo),
		"appeal_text":       claim.AppealText,
		"appeal_status":     string(claim.AppealStatus),
	}

	query, args, err := a.db.Insert(claimsTable).
		Rows(record).
		Returning("id", "created_at", "updated_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build claim insert query", err)
	}

	start := time.Now()
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt)
	observability.RecordDBMetric(ctx, a.metrics, "claims.create", time.Since(start))
	if err != nil {
		return apperrors.NewInternalError("failed to create claim", err)
	}

	return nil
}

// List returns all claims, newest first. Claims created in the same instant
// are ordered by descending id.
func (a *ClaimAdapter) List(ctx context.Context) ([]*entities.Claim, error) {
	query, args, err := a.db.From(claimsTable).
		Select(claimColumns...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build claim list query", err)
	}

	start := time.Now()
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	observability.RecordDBMetric(ctx, a.metrics, "claims.list", time.Since(start))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list claims", err)
	}
	defer rows.Close()

	claims := make([]*entities.Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan claim", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate claims", err)
	}

	return claims, nil
}

// GetByID retrieves a claim by id
func (a *ClaimAdapter) GetByID(ctx context.Context, id int64) (*entities.Claim, error) {
	query, args, err := a.db.From(claimsTable).
		Select(claimColumns...).
		Where(goqu.Ex{"id": id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build claim query", err)
	}

	start := time.Now()
	claim, err := scanClaim(a.client.DB().QueryRowContext(ctx, query, args...))
	observability.RecordDBMetric(ctx, a.metrics, "claims.get", time.Since(start))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("Claim not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get claim", err)
	}

	return claim, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*entities.Claim, error) {
	claim := &entities.Claim{}
	var additional sql.NullString
	var status string

	err := row.Scan(
		&claim.ID,
		&claim.PatientName,
		&claim.ServiceDate,
		&claim.CPTCode,
		&claim.ICD10Codes,
		&claim.DenialReason,
		&claim.InsuranceCompany,
		&claim.ClaimAmount,
		&additional,
		&claim.AppealText,
		&status,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if additional.Valid {
		claim.AdditionalInfo = &additional.String
	}
	claim.AppealStatus = entities.AppealStatus(status)

	return claim, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
