package judgesim

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/internal/domain/ranking"
)

// scoreTolerance absorbs float formatting differences between the
// server's JSON output and the local computation.
const scoreTolerance = 1e-6

// verifyResults recomputes the standings locally from the room snapshot
// and compares them with the server's leaderboard.
func verifyResults(ctx context.Context, client *HTTPClient, config *Config, cat *catalog.Catalog, roomID string, judges []string, stats *Stats) error {
	log.Println("verifying results...")

	room, err := fetchRoom(ctx, client, config.BaseURL, roomID)
	if err != nil {
		return fmt.Errorf("fetch room: %w", err)
	}

	// Every (judge, contestant, round) triple must appear exactly once,
	// no matter how many times it was submitted.
	expected := len(judges) * len(cat.Contestants) * len(cat.Rounds)
	if len(room.Scores) != expected {
		return fmt.Errorf("room holds %d score sets, expected %d", len(room.Scores), expected)
	}
	log.Printf("replacement verified: %d score sets for %d submissions",
		len(room.Scores), stats.ScoresSubmitted)

	// Clamp check: no stored value may exceed its criterion maximum.
	for _, set := range room.Scores {
		round, ok := cat.Round(set.RoundID)
		if !ok {
			return fmt.Errorf("stored score references unknown round %d", set.RoundID)
		}
		for id, v := range set.CriteriaScores {
			crit, ok := round.Criterion(id)
			if !ok {
				return fmt.Errorf("stored score references unknown criterion %q", id)
			}
			if v < 0 || v > crit.MaxScore {
				return fmt.Errorf("criterion %q holds %f, outside [0, %f]", id, v, crit.MaxScore)
			}
		}
	}
	log.Println("clamping verified: all stored values within bounds")

	serverStandings, err := fetchLeaderboard(ctx, client, config.BaseURL, roomID)
	if err != nil {
		return fmt.Errorf("fetch leaderboard: %w", err)
	}

	localStandings := ranking.Rank(cat, room.Scores, len(room.Judges))
	if err := compareStandings(serverStandings, localStandings); err != nil {
		return fmt.Errorf("leaderboard mismatch: %w", err)
	}
	log.Println("leaderboard verified against local computation")

	displayStandings(serverStandings, config.Verbose)
	return nil
}

// compareStandings checks that the server and local standings agree on
// order, totals and coverage.
func compareStandings(server, local []ranking.Standing) error {
	if len(server) != len(local) {
		return fmt.Errorf("server returned %d standings, local computed %d", len(server), len(local))
	}
	for i := range server {
		s, l := server[i], local[i]
		if s.ContestantID != l.ContestantID {
			return fmt.Errorf("position %d: server has %s, local has %s", i+1, s.ContestantID, l.ContestantID)
		}
		if math.Abs(s.TotalScore-l.TotalScore) > scoreTolerance {
			return fmt.Errorf("%s: server total %.4f, local total %.4f", s.ContestantID, s.TotalScore, l.TotalScore)
		}
		if math.Abs(s.JudgeCoverage-l.JudgeCoverage) > scoreTolerance {
			return fmt.Errorf("%s: server coverage %.4f, local coverage %.4f", s.ContestantID, s.JudgeCoverage, l.JudgeCoverage)
		}
	}
	return nil
}

// displayStandings prints the final board.
func displayStandings(standings []ranking.Standing, verbose bool) {
	log.Println("final standings:")
	for _, s := range standings {
		log.Printf("   %d. %s - total %.1f (avg %.2f, coverage %.0f%%)",
			s.Rank, s.Name, s.TotalScore, s.AverageScore, s.JudgeCoverage*100)
		if !verbose {
			continue
		}
		for _, r := range s.Rounds {
			log.Printf("      %s: total %.1f avg %.2f over %d judges",
				r.Title, r.Total, r.Average, r.Judges)
		}
	}
}
