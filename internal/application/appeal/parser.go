package appeal

import (
	"regexp"
	"strings"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
)

var (
	probabilityMarkers = []string{"Success Probability", "Probability of Success", "成功概率"}
	strategyMarkers    = []string{"Strategy", "Strategies", "策略建议"}
	bulletMarkers      = []string{"•", "-", "1", "2", "3", "4", "5"}

	// The first category word in a probability block decides it.
	probabilityWord = regexp.MustCompile(`(?i)\b(high|medium|low)\b|高|低`)
)

// FallbackStrategies is returned when no strategy lines can be extracted.
var FallbackStrategies = []string{
	"Provide more detailed medical records",
	"Emphasize medical necessity",
	"Cite relevant clinical guidelines",
}

// HeuristicParser segments the provider's prose on paragraph boundaries. The
// letter is every paragraph before the first probability or strategy section.
// When the reply opens with a section, the letter is built from the paragraphs
// that are not sections, and only a reply made of sections alone falls back to
// the raw text.
type HeuristicParser struct{}

// NewHeuristicParser creates a new heuristic response parser.
func NewHeuristicParser() providers.AppealResponseParser {
	return &HeuristicParser{}
}

// Parse splits raw into letter, probability and strategies. It never fails.
func (p *HeuristicParser) Parse(raw string) *entities.AppealResult {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")

	var letter strings.Builder
	var stray []string
	probability := entities.SuccessProbabilityMedium
	var strategies []string

	inLetter := true
	for _, block := range blocks {
		switch {
		case containsAny(block, probabilityMarkers):
			inLetter = false
			probability = classifyProbability(block)
		case containsAny(block, strategyMarkers):
			inLetter = false
			if lines := extractStrategyLines(block); len(lines) > 0 {
				strategies = lines
			}
		case inLetter:
			letter.WriteString(block)
			letter.WriteString("\n\n")
		case strings.TrimSpace(block) != "":
			stray = append(stray, block)
		}
	}

	appealLetter := strings.TrimRight(letter.String(), " \t\r\n")
	if strings.TrimSpace(appealLetter) == "" {
		appealLetter = strings.TrimSpace(strings.Join(stray, "\n\n"))
	}
	if appealLetter == "" {
		appealLetter = strings.TrimSpace(raw)
	}

	if len(strategies) == 0 {
		strategies = append([]string(nil), FallbackStrategies...)
	}

	return &entities.AppealResult{
		AppealLetter:       appealLetter,
		SuccessProbability: probability,
		Strategies:         strategies,
	}
}

// classifyProbability matches category words whole, so "following" or
// "highly" never decide the category.
func classifyProbability(block string) entities.SuccessProbability {
	match := probabilityWord.FindString(block)
	switch {
	case match == "高" || strings.EqualFold(match, "high"):
		return entities.SuccessProbabilityHigh
	case match == "低" || strings.EqualFold(match, "low"):
		return entities.SuccessProbabilityLow
	default:
		return entities.SuccessProbabilityMedium
	}
}

// extractStrategyLines keeps non-empty lines that look like list items. A
// bullet, a hyphen or any digit 1-5 anywhere in the line counts.
func extractStrategyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !containsAny(trimmed, bulletMarkers) {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
