// Package scoring derives compliance scores and rating bands from audit
// responses. Both functions are pure: a persisted record's score can be
// recomputed and audited at any time.
package scoring

import (
	"math"

	"github.com/f880guardian/audit-engine/pkg/models"
)

// Rating band thresholds.
const (
	yellowFloor = 80
	greenFloor  = 95
)

// Score maps a response set to a 0-100 compliance score.
//
// Responses marked not-applicable are excluded. With no applicable responses
// the round is vacuously compliant and scores 100. Otherwise the score is
// round-half-up of 100 * passed / applicable. Response order is irrelevant.
func Score(responses []models.Response) int {
	applicable := 0
	passed := 0
	for _, r := range responses {
		if r.Status == models.StatusNotApplicable {
			continue
		}
		applicable++
		if r.Status == models.StatusPass {
			passed++
		}
	}
	if applicable == 0 {
		return 100
	}
	return int(math.Round(100 * float64(passed) / float64(applicable)))
}

// Classify maps a score to its compliance rating band. Out-of-range input is
// clamped rather than rejected.
func Classify(score int) models.ComplianceRating {
	switch {
	case score < yellowFloor:
		return models.RatingRed
	case score < greenFloor:
		return models.RatingYellow
	default:
		return models.RatingGreen
	}
}
