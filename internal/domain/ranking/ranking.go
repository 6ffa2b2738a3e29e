// Package ranking derives contestant standings from a score-set snapshot.
// Aggregation is pure: recomputed from the full snapshot on every call, no
// state, no side effects.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/internal/domain/model"
)

// RoundBreakdown is the per-round slice of a contestant's standing.
type RoundBreakdown struct {
	RoundID int     `json:"round_id"`
	Title   string  `json:"title"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Judges  int     `json:"judges"`
}

// Standing is one contestant's aggregate position on the leaderboard.
type Standing struct {
	Rank          int              `json:"rank"`
	ContestantID  string           `json:"contestant_id"`
	Name          string           `json:"name"`
	Title         string           `json:"title"`
	TotalScore    float64          `json:"total_score"`
	AverageScore  float64          `json:"average_score"`
	JudgeCount    int              `json:"judge_count"`
	JudgeCoverage float64          `json:"judge_coverage"`
	Rounds        []RoundBreakdown `json:"rounds"`
}

// Rank aggregates the snapshot into an ordered leaderboard. Every catalog
// contestant appears exactly once. Ordering is total score descending;
// ties keep catalog order (stable sort). judgeTotal is the number of judges
// registered in the room; pass 0 when unknown to skip coverage.
func Rank(cat *catalog.Catalog, sets []model.ScoreSet, judgeTotal int) []Standing {
	standings := make([]Standing, 0, len(cat.Contestants))

	for _, contestant := range cat.Contestants {
		var own []model.ScoreSet
		for _, s := range sets {
			if s.ContestantID == contestant.ID {
				own = append(own, s)
			}
		}

		var total float64
		judges := make(map[string]bool)
		for _, s := range own {
			total += s.Total()
			judges[s.Judge] = true
		}

		rounds := make([]RoundBreakdown, 0, len(cat.Rounds))
		for _, r := range cat.Rounds {
			rounds = append(rounds, roundBreakdown(r, own))
		}

		st := Standing{
			ContestantID: contestant.ID,
			Name:         contestant.Name,
			Title:        contestant.Title,
			TotalScore:   total,
			JudgeCount:   len(judges),
			Rounds:       rounds,
		}
		if len(judges) > 0 {
			st.AverageScore = total / float64(len(judges))
		}
		if judgeTotal > 0 {
			st.JudgeCoverage = float64(len(judges)) / float64(judgeTotal)
			if st.JudgeCoverage > 1 {
				// Scores can outlive removed judges; coverage stays in [0, 1].
				st.JudgeCoverage = 1
			}
		}
		standings = append(standings, st)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalScore > standings[j].TotalScore
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// roundBreakdown sums one round's score sets for a contestant and averages
// over the judges that actually scored that round. No contributing judges
// means an average of zero, by policy rather than by division.
func roundBreakdown(r catalog.Round, own []model.ScoreSet) RoundBreakdown {
	b := RoundBreakdown{RoundID: r.ID, Title: r.Title}

	judges := make(map[string]bool)
	for _, s := range own {
		if s.RoundID != r.ID {
			continue
		}
		b.Total += s.Total()
		judges[s.Judge] = true
	}
	b.Judges = len(judges)

	if b.Judges == 0 {
		b.Average = 0
		return b
	}
	b.Average = b.Total / float64(b.Judges)
	return b
}

// ShareText renders a short human-readable summary of the standings, used by
// the outbound share endpoint.
func ShareText(standings []Standing) string {
	if len(standings) == 0 {
		return "No scores yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current leader: %s with %.1f pts.", standings[0].Name, standings[0].TotalScore)
	for _, s := range standings {
		fmt.Fprintf(&sb, "\n%d. %s - %.1f pts (%d judges)", s.Rank, s.Name, s.TotalScore, s.JudgeCount)
	}
	return sb.String()
}
