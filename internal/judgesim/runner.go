package judgesim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/pkg/logger"
)

// HTTP status code constants.
const (
	StatusOK      = 200
	StatusCreated = 201
)

// Run executes the complete judge simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting encore judge simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("judges", config.Judges),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Float64("resubmitRatio", config.ResubmitRatio),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch the competition catalog
	var cat catalog.Catalog
	if err := client.getJSON(ctx, config.BaseURL+"/catalog", &cat); err != nil {
		return fmt.Errorf("catalog retrieval failed: %w", err)
	}
	logger.Get().Info(ctx, "catalog loaded",
		logger.Int("contestants", len(cat.Contestants)),
		logger.Int("rounds", len(cat.Rounds)))

	// Step 3: Create a room and join the panel
	judges := judgeNames(config.Judges)
	roomID, err := setupRoom(ctx, client, config, judges, stats)
	if err != nil {
		return fmt.Errorf("room setup failed: %w", err)
	}

	// Step 4: Generate submissions, with a slice resubmitted to exercise
	// last-write-wins replacement
	subs := generateSubmissions(ctx, &cat, judges, stats)
	subs = withResubmissions(subs, config.ResubmitRatio)

	// Step 5: Submit concurrently
	if err := submitScores(ctx, config, roomID, subs, stats); err != nil {
		return fmt.Errorf("score submission failed: %w", err)
	}

	// Step 6: Verify server standings against a local computation
	if err := verifyResults(ctx, client, config, &cat, roomID, judges, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// setupRoom creates a room under the first judge and joins the rest.
func setupRoom(ctx context.Context, client *HTTPClient, config *Config, judges []string, stats *Stats) (string, error) {
	var room model.Room
	err := client.postJSON(ctx, config.BaseURL+"/rooms",
		map[string]string{"judge": judges[0]}, &room, StatusCreated)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	stats.JudgesJoined = 1
	logger.Get().Info(ctx, "room created", logger.String("room", room.ID))

	for _, judge := range judges[1:] {
		err := client.postJSON(ctx, config.BaseURL+"/rooms/"+room.ID+"/join",
			map[string]string{"judge": judge}, nil, http.StatusOK)
		if err != nil {
			return "", fmt.Errorf("join room as %s: %w", judge, err)
		}
		stats.JudgesJoined++
	}

	logger.Get().Info(ctx, "panel assembled",
		logger.String("room", room.ID),
		logger.Int("judges", stats.JudgesJoined))
	return room.ID, nil
}

// withResubmissions duplicates a fraction of the submissions with fresh
// values. Whichever copy lands last must be the one the server keeps; the
// room snapshot fetched afterwards is the ground truth for verification.
func withResubmissions(subs []Submission, ratio float64) []Submission {
	if ratio <= 0 {
		return subs
	}
	out := subs
	for _, sub := range subs {
		if rand.Float64() >= ratio {
			continue
		}
		redo := Submission{
			Judge:        sub.Judge,
			ContestantID: sub.ContestantID,
			RoundID:      sub.RoundID,
			Scores:       make(map[string]float64, len(sub.Scores)),
		}
		for id, v := range sub.Scores {
			redo.Scores[id] = v * rand.Float64()
		}
		out = append(out, redo)
	}
	return out
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var successRate, scoresPerSecond float64

	if stats.ScoresSubmitted > 0 {
		successRate = float64(stats.ScoresSuccessful) / float64(stats.ScoresSubmitted) * 100
	}

	if stats.Duration > 0 {
		scoresPerSecond = float64(stats.ScoresSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("judgesJoined", stats.JudgesJoined),
		logger.Int("scoresGenerated", stats.ScoresGenerated),
		logger.Int("scoresSubmitted", stats.ScoresSubmitted),
		logger.Int("scoresSuccessful", stats.ScoresSuccessful),
		logger.Int("scoresReplaced", stats.ScoresReplaced),
		logger.Int("scoresFailed", stats.ScoresFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("scoresPerSecond", scoresPerSecond))
}
