package judgesim

import "time"

// Config holds configuration for the judge simulation.
type Config struct {
	BaseURL       string        // Base URL of the service
	Judges        int           // Number of judges to simulate
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	ResubmitRatio float64       // Fraction of submissions sent twice
	LogFile       string        // Log file for test output
	Verbose       bool          // Enable verbose logging
}

// Submission is one judge's score set for a contestant and round.
type Submission struct {
	Judge        string             `json:"judge"`
	ContestantID string             `json:"contestant_id"`
	RoundID      int                `json:"round_id"`
	Scores       map[string]float64 `json:"scores"`
}

// Stats holds simulation statistics.
type Stats struct {
	JudgesJoined     int
	ScoresGenerated  int
	ScoresSubmitted  int
	ScoresSuccessful int
	ScoresReplaced   int
	ScoresFailed     int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
