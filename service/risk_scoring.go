package services

import (
	"math"

	model "github.com/devraj13/ComplyTrack/models"
)

// RiskScore is the product of clamped impact and likelihood plus its
// classification band.
type RiskScore struct {
	Impact         int                  `json:"impact"`
	Likelihood     int                  `json:"likelihood"`
	Score          int                  `json:"score"`
	Classification model.Classification `json:"classification"`
}

// ScoreRisk computes the 5x5 matrix score. Inputs are truncated and clamped
// to [1,5]; non-finite input falls back to 1.
func ScoreRisk(impact, likelihood float64) RiskScore {
	i := clampLevel(impact)
	l := clampLevel(likelihood)
	score := i * l
	return RiskScore{
		Impact:         i,
		Likelihood:     l,
		Score:          score,
		Classification: ClassifyScore(score),
	}
}

func clampLevel(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 1
	}
	v := int(math.Trunc(n))
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// ClassifyScore buckets a 1..25 score into severity bands.
func ClassifyScore(score int) model.Classification {
	switch {
	case score <= 5:
		return model.ClassificationLow
	case score <= 10:
		return model.ClassificationMedium
	case score <= 15:
		return model.ClassificationHigh
	default:
		return model.ClassificationCritical
	}
}
