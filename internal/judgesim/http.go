package judgesim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/ranking"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON fetches url and decodes the JSON payload into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v interface{}) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// postJSON posts payload to url and decodes the response into v when
// the status matches want.
func (c *HTTPClient) postJSON(ctx context.Context, url string, payload, v interface{}, want int) error {
	resp, err := c.Post(ctx, url, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: status %d: %s", url, resp.StatusCode, body)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// submitResponse mirrors the submit endpoint's response shape.
type submitResponse struct {
	Room     model.Room `json:"room"`
	Replaced bool       `json:"replaced"`
}

// submitScores pushes submissions concurrently using a worker pool.
func submitScores(ctx context.Context, config *Config, roomID string, subs []Submission, stats *Stats) error {
	log.Printf("submitting %d score sets with %d workers", len(subs), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/rooms/" + roomID + "/scores"

	var (
		successful int64
		replaced   int64
		failed     int64
		submitted  int64
	)

	subChan := make(chan Submission, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				atomic.AddInt64(&submitted, 1)

				var resp submitResponse
				err := client.postJSON(ctx, url, sub, &resp, http.StatusOK)
				switch {
				case err != nil:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("submission failed: %v", err)
					}
				case resp.Replaced:
					atomic.AddInt64(&replaced, 1)
					atomic.AddInt64(&successful, 1)
				default:
					atomic.AddInt64(&successful, 1)
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.ScoresSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ScoresSuccessful = int(atomic.LoadInt64(&successful))
	stats.ScoresReplaced = int(atomic.LoadInt64(&replaced))
	stats.ScoresFailed = int(atomic.LoadInt64(&failed))

	log.Printf("submission completed: success=%d replaced=%d failed=%d",
		stats.ScoresSuccessful, stats.ScoresReplaced, stats.ScoresFailed)
	return nil
}

// fetchRoom retrieves the current room snapshot.
func fetchRoom(ctx context.Context, client *HTTPClient, baseURL, roomID string) (model.Room, error) {
	var room model.Room
	err := client.getJSON(ctx, baseURL+"/rooms/"+roomID, &room)
	return room, err
}

// fetchLeaderboard retrieves the server-side standings.
func fetchLeaderboard(ctx context.Context, client *HTTPClient, baseURL, roomID string) ([]ranking.Standing, error) {
	var standings []ranking.Standing
	err := client.getJSON(ctx, baseURL+"/rooms/"+roomID+"/leaderboard", &standings)
	return standings, err
}
