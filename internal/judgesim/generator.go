package judgesim

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/pkg/logger"
)

// Metric generation tuning.
const (
	overshootRatio  = 0.05 // fraction of values pushed past the maximum
	overshootMargin = 5.0
	generousMin     = 0.7 // generous judges score in the top band
	stingyMax       = 0.4 // stingy judges stay in the bottom band
)

// judgeNames generates distinct judge names. Short UUID suffixes keep
// repeated runs against the same server from colliding on the roster.
func judgeNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("judge-%s", uuid.NewString()[:8])
	}
	return names
}

// generateSubmissions builds one submission per judge, contestant and
// round, each with every criterion of that round filled in.
func generateSubmissions(ctx context.Context, cat *catalog.Catalog, judges []string, stats *Stats) []Submission {
	var subs []Submission
	for _, judge := range judges {
		// Each judge gets a lasting temperament so rankings are not
		// pure noise.
		temperament := rand.Float64()
		for _, contestant := range cat.Contestants {
			for _, round := range cat.Rounds {
				subs = append(subs, Submission{
					Judge:        judge,
					ContestantID: contestant.ID,
					RoundID:      round.ID,
					Scores:       generateScores(round, temperament),
				})
			}
		}
	}

	stats.ScoresGenerated = len(subs)
	logger.Get().Info(ctx, "generated submissions",
		logger.Int("judges", len(judges)),
		logger.Int("submissions", len(subs)))
	return subs
}

// generateScores fills every criterion of the round. A small fraction of
// values deliberately overshoots the maximum so server-side clamping gets
// exercised.
func generateScores(round catalog.Round, temperament float64) map[string]float64 {
	scores := make(map[string]float64, len(round.Criteria))
	for _, crit := range round.Criteria {
		var v float64
		switch {
		case rand.Float64() < overshootRatio:
			v = crit.MaxScore + rand.Float64()*overshootMargin
		case temperament > generousMin:
			v = crit.MaxScore * (generousMin + rand.Float64()*(1-generousMin))
		case temperament < stingyMax:
			v = crit.MaxScore * rand.Float64() * stingyMax
		default:
			v = crit.MaxScore * rand.Float64()
		}
		scores[crit.ID] = v
	}
	return scores
}
