package evaluation

import "github.com/zatekoja/claim-appeal/backend/internal/domain/entities"

// GoldenResponse is a labeled provider response with the expected parse.
type GoldenResponse struct {
	ID                  string                      `json:"id"`
	Response            string                      `json:"response"`
	ExpectedProbability entities.SuccessProbability `json:"expected_probability"`
	// ExpectedStrategies lists the exact strategy lines. Empty means the
	// parser is expected to fall back to its default strategies.
	ExpectedStrategies []string `json:"expected_strategies"`
	LetterMustContain  []string `json:"letter_must_contain"`
	Difficulty         string   `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single response.
type EvalResult struct {
	ResponseID        string
	Difficulty        string
	ProbabilityMatch  bool
	StrategyRecall    float64
	StrategyPrecision float64
	LetterComplete    bool
	LetterLeak        bool
	UsedFallback      bool
}

// EvalSummary holds aggregate metrics across all golden responses.
type EvalSummary struct {
	TotalResponses       int
	ProbabilityAccuracy  float64
	AvgStrategyRecall    float64
	AvgStrategyPrecision float64
	LetterCompleteRate   float64
	LetterLeakRate       float64
	FallbackCount        int
	ByDifficulty         map[string]*DifficultySummary
	// Failures lists the ids of responses with any mismatch.
	Failures []string
}

// DifficultySummary holds metrics grouped by difficulty.
type DifficultySummary struct {
	Count               int
	ProbabilityAccuracy float64
	AvgStrategyRecall   float64
}
