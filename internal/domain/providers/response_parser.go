package providers

import "github.com/zatekoja/claim-appeal/backend/internal/domain/entities"

// AppealResponseParser turns raw provider text into a structured appeal.
// Parse must not fail; unexpected shapes degrade to defaults.
type AppealResponseParser interface {
	Parse(raw string) *entities.AppealResult
}
