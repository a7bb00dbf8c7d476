package evaluation

import "strings"

// sectionHeadings must never appear in an extracted letter.
var sectionHeadings = []string{"Success Probability", "Probability of Success", "Strategy Suggestions", "成功概率", "策略建议"}

// Recall computes the fraction of expected items present in got.
// Returns 0.0 if expected is empty.
func Recall(expected, got []string) float64 {
	if len(expected) == 0 {
		return 0.0
	}
	return float64(overlap(expected, got)) / float64(len(expected))
}

// Precision computes the fraction of got that was expected.
// Returns 0.0 if got is empty.
func Precision(expected, got []string) float64 {
	if len(got) == 0 {
		return 0.0
	}
	return float64(overlap(expected, got)) / float64(len(got))
}

func overlap(expected, got []string) int {
	expectedSet := make(map[string]struct{}, len(expected))
	for _, e := range expected {
		expectedSet[e] = struct{}{}
	}

	found := 0
	for _, g := range got {
		if _, ok := expectedSet[g]; ok {
			found++
			delete(expectedSet, g)
		}
	}
	return found
}

// LetterLeaks reports whether a section heading ended up inside the letter.
func LetterLeaks(letter string) bool {
	for _, heading := range sectionHeadings {
		if strings.Contains(letter, heading) {
			return true
		}
	}
	return false
}

// LetterContainsAll reports whether every snippet appears in the letter.
func LetterContainsAll(letter string, snippets []string) bool {
	for _, s := range snippets {
		if !strings.Contains(letter, s) {
			return false
		}
	}
	return true
}
