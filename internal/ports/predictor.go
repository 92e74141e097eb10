package ports

import (
	"context"

	"github.com/utakatalp/matchday-face/internal/league"
)

// Predictor fetches an opaque prediction for a match from the brain.
type Predictor interface {
	Predict(ctx context.Context, matchID string) (*league.Prediction, error)
}
