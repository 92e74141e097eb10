package ports

import (
	"context"

	"github.com/utakatalp/matchday-face/internal/league"
)

type MatchRepo interface {
	UpcomingMatches(ctx context.Context, limit int) ([]*league.Match, error)
	Ping(ctx context.Context) error
}
