package evaluation

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestRecall(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
		got      []string
		want     float64
	}{
		{"all found", []string{"a", "b"}, []string{"b", "a"}, 1.0},
		{"half found", []string{"a", "b", "c", "d"}, []string{"a", "x", "b"}, 0.5},
		{"none expected", nil, []string{"a"}, 0.0},
		{"nothing got", []string{"a"}, nil, 0.0},
		{"duplicates count once", []string{"a", "b"}, []string{"a", "a"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recall(tt.expected, tt.got); !almostEqual(got, tt.want) {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestPrecision(t *testing.T) {
	if got := Precision([]string{"a"}, []string{"a", "x", "y", "z"}); !almostEqual(got, 0.25) {
		t.Errorf("expected 0.25, got %f", got)
	}
	if got := Precision([]string{"a"}, nil); !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestLetterLeaks(t *testing.T) {
	if LetterLeaks("Dear Reviewer,\n\nSincerely") {
		t.Error("clean letter reported as leaking")
	}
	if !LetterLeaks("Dear Reviewer,\n\nSuccess Probability: High") {
		t.Error("heading inside letter not detected")
	}
}

func TestLetterContainsAll(t *testing.T) {
	if !LetterContainsAll("Dear Reviewer, Jane Doe", []string{"Jane", "Reviewer"}) {
		t.Error("expected all snippets to be found")
	}
	if LetterContainsAll("Dear Reviewer", []string{"Jane"}) {
		t.Error("missing snippet reported as found")
	}
	if !LetterContainsAll("anything", nil) {
		t.Error("no snippets should always match")
	}
}
