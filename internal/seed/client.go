package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/quadra2003/networking-lunches/pkg/logger"
)

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// submit posts every signup through a pool of concurrent workers and
// returns aggregate stats.
func submit(ctx context.Context, cfg *Config, signups []Signup) (*Stats, error) {
	log := logger.Get().Named("seed")
	log.Info(ctx, "submitting signups",
		logger.Int("count", len(signups)), logger.Int("workers", cfg.Workers))

	client := &http.Client{Timeout: cfg.Timeout}
	url := cfg.BaseURL + "/participants"

	var successful, duplicate, failed, submitted int64

	jobs := make(chan Signup, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for signup := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result := submitOne(ctx, client, url, signup)
				atomic.AddInt64(&submitted, 1)
				switch result {
				case "accepted":
					atomic.AddInt64(&successful, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				if cfg.Verbose {
					log.Debug(ctx, "submitted",
						logger.String("submission_id", signup.SubmissionID),
						logger.String("result", result))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, signup := range signups {
			select {
			case <-ctx.Done():
				return
			case jobs <- signup:
			}
		}
	}()

	wg.Wait()

	stats := &Stats{
		Submitted:  int(atomic.LoadInt64(&submitted)),
		Successful: int(atomic.LoadInt64(&successful)),
		Duplicate:  int(atomic.LoadInt64(&duplicate)),
		Failed:     int(atomic.LoadInt64(&failed)),
	}
	log.Info(ctx, "submission completed",
		logger.Int("successful", stats.Successful),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))

	if ctx.Err() != nil {
		return stats, fmt.Errorf("submission interrupted: %w", ctx.Err())
	}
	return stats, nil
}

// submitOne posts a single signup and classifies the outcome.
func submitOne(ctx context.Context, client *http.Client, url string, signup Signup) string {
	body, err := json.Marshal(signup)
	if err != nil {
		return "failed"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "failed"
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "failed"
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "accepted"
	case http.StatusOK:
		var ack ackResponse
		if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "accepted"
	default:
		return "failed"
	}
}
