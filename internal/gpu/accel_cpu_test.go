//go:build !gpu

package gpu

import "testing"

func TestBatchZScores(t *testing.T) {
	paid := []float64{10, 10, 10, 10, 40}
	scores := BatchZScores(paid)
	if len(scores) != len(paid) {
		t.Fatalf("expected %d scores, got %d", len(paid), len(scores))
	}
	if scores[4] <= scores[0] {
		t.Error("the outlier value should have the highest z-score")
	}
}

func TestBatchZScoresEmpty(t *testing.T) {
	if got := BatchZScores(nil); got != nil {
		t.Errorf("BatchZScores(nil) = %v, want nil", got)
	}
}

func TestAvailableIsFalseOnCPUBuild(t *testing.T) {
	if Available {
		t.Error("Available should be false on the default (!gpu) build")
	}
}
