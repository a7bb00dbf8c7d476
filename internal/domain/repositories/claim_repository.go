package repositories

import (
	"context"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
)

// ClaimRepository defines the interface for claim persistence.
type ClaimRepository interface {
	// Create inserts the claim and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, claim *entities.Claim) error

	// List returns every claim, newest CreatedAt first.
	List(ctx context.Context) ([]*entities.Claim, error)

	// GetByID returns a NOT_FOUND AppError when no claim has the given id.
	GetByID(ctx context.Context, id int64) (*entities.Claim, error)
}
