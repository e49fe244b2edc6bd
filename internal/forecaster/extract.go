package forecaster

import (
	"strings"

	"github.com/STRATINT/fightintel/internal/models"
)

// Extract derives a structured prediction from the prediction agent's final
// text. It only fills the winner and confidence. When either fighter is not
// named verbatim the prediction stays at its defaults with no winner. A blank
// name never passes the guard, although an empty substring would trivially
// match; normalization already rejects blank names before a run starts.
func Extract(finalText, fighter1, fighter2 string) models.Prediction {
	prediction := models.NewPrediction()

	if fighter1 == "" || fighter2 == "" {
		return prediction
	}
	if !strings.Contains(finalText, fighter1) || !strings.Contains(finalText, fighter2) {
		return prediction
	}

	lower := strings.ToLower(finalText)
	f1Mentions := strings.Count(lower, strings.ToLower(fighter1))
	f2Mentions := strings.Count(lower, strings.ToLower(fighter2))

	// ties go to fighter2
	winner := fighter2
	if f1Mentions > f2Mentions {
		winner = fighter1
	}
	prediction.PredictedWinner = &winner

	switch {
	case strings.Contains(lower, "high confidence"):
		prediction.Confidence = models.ConfidenceHigh
	case strings.Contains(lower, "low confidence"):
		prediction.Confidence = models.ConfidenceLow
	}

	return prediction
}
