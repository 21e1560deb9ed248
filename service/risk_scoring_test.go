package services

import (
	"math"
	"testing"

	model "github.com/devraj13/ComplyTrack/models"

	"github.com/stretchr/testify/assert"
)

func TestScoreRisk(t *testing.T) {
	tests := []struct {
		name       string
		impact     float64
		likelihood float64
		wantScore  int
		wantClass  model.Classification
	}{
		{"low corner", 2, 2, 4, model.ClassificationLow},
		{"low boundary", 1, 5, 5, model.ClassificationLow},
		{"medium", 2, 5, 10, model.ClassificationMedium},
		{"high", 3, 5, 15, model.ClassificationHigh},
		{"critical", 4, 4, 16, model.ClassificationCritical},
		{"maximum", 5, 5, 25, model.ClassificationCritical},
		{"clamps both ends", 7, -1, 5, model.ClassificationLow},
		{"truncates fractions", 3.9, 3.9, 9, model.ClassificationMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRisk(tt.impact, tt.likelihood)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantClass, got.Classification)
		})
	}
}

func TestScoreRisk_NonFiniteInputDefaultsToOne(t *testing.T) {
	got := ScoreRisk(math.NaN(), math.Inf(1))
	assert.Equal(t, 1, got.Impact)
	// +Inf clamps to the oversized branch via truncation guard.
	assert.Equal(t, 1, got.Likelihood)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, model.ClassificationLow, got.Classification)
}
