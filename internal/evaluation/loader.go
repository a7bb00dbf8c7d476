package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
)

// LoadGoldenResponses reads and parses a golden response set from a JSON file.
func LoadGoldenResponses(path string) ([]GoldenResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden responses file: %w", err)
	}

	var responses []GoldenResponse
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("failed to parse golden responses: %w", err)
	}

	return responses, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateGoldenResponses checks that all golden responses have required fields and valid values.
func ValidateGoldenResponses(responses []GoldenResponse) error {
	seen := make(map[string]struct{}, len(responses))

	for i, r := range responses {
		if r.ID == "" {
			return fmt.Errorf("response at index %d: missing id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("response at index %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}

		if strings.TrimSpace(r.Response) == "" {
			return fmt.Errorf("response %q: missing response text", r.ID)
		}
		switch r.ExpectedProbability {
		case entities.SuccessProbabilityHigh, entities.SuccessProbabilityMedium, entities.SuccessProbabilityLow:
		default:
			return fmt.Errorf("response %q: invalid expected_probability %q", r.ID, r.ExpectedProbability)
		}
		if !validDifficulties[r.Difficulty] {
			return fmt.Errorf("response %q: invalid difficulty %q (must be easy/medium/hard)", r.ID, r.Difficulty)
		}
	}

	return nil
}
