package evaluation

import (
	"github.com/zatekoja/claim-appeal/backend/internal/application/appeal"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
)

// Runner runs a response parser across a set of golden responses.
type Runner struct {
	parser providers.AppealResponseParser
}

func NewRunner(parser providers.AppealResponseParser) *Runner {
	return &Runner{parser: parser}
}

func (r *Runner) Run(golden []GoldenResponse) *EvalSummary {
	summary := &EvalSummary{
		TotalResponses: len(golden),
		ByDifficulty:   make(map[string]*DifficultySummary),
	}

	for _, gr := range golden {
		result := r.evaluate(gr)
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary
}

func (r *Runner) evaluate(gr GoldenResponse) EvalResult {
	parsed := r.parser.Parse(gr.Response)

	expected := gr.ExpectedStrategies
	if len(expected) == 0 {
		expected = appeal.FallbackStrategies
	}

	return EvalResult{
		ResponseID:        gr.ID,
		Difficulty:        gr.Difficulty,
		ProbabilityMatch:  parsed.SuccessProbability == gr.ExpectedProbability,
		StrategyRecall:    Recall(expected, parsed.Strategies),
		StrategyPrecision: Precision(expected, parsed.Strategies),
		LetterComplete:    LetterContainsAll(parsed.AppealLetter, gr.LetterMustContain),
		LetterLeak:        LetterLeaks(parsed.AppealLetter),
		UsedFallback:      sameStrings(parsed.Strategies, appeal.FallbackStrategies),
	}
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	if res.ProbabilityMatch {
		s.ProbabilityAccuracy++
	}
	s.AvgStrategyRecall += res.StrategyRecall
	s.AvgStrategyPrecision += res.StrategyPrecision
	if res.LetterComplete {
		s.LetterCompleteRate++
	}
	if res.LetterLeak {
		s.LetterLeakRate++
	}
	if res.UsedFallback {
		s.FallbackCount++
	}
	if !res.ProbabilityMatch || res.StrategyRecall < 1 || res.StrategyPrecision < 1 || !res.LetterComplete || res.LetterLeak {
		s.Failures = append(s.Failures, res.ResponseID)
	}

	if _, ok := s.ByDifficulty[res.Difficulty]; !ok {
		s.ByDifficulty[res.Difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[res.Difficulty]
	ds.Count++
	if res.ProbabilityMatch {
		ds.ProbabilityAccuracy++
	}
	ds.AvgStrategyRecall += res.StrategyRecall
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalResponses > 0 {
		n := float64(s.TotalResponses)
		s.ProbabilityAccuracy /= n
		s.AvgStrategyRecall /= n
		s.AvgStrategyPrecision /= n
		s.LetterCompleteRate /= n
		s.LetterLeakRate /= n
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.ProbabilityAccuracy /= n
			ds.AvgStrategyRecall /= n
		}
	}
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
