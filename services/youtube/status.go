package youtube

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/time/rate"

	"scenevault/models"
)

const (
	statusBatchSize    = 50
	defaultBatchPause  = 100 * time.Millisecond
	statusCheckTimeout = 30 * time.Second
)

// Checker classifies video availability in paced batches of at most 50 ids.
type Checker struct {
	client *Client
	pacer  *rate.Limiter
}

// NewChecker builds a checker over client. pause is the minimum gap between
// batches; pass 0 for the default.
func NewChecker(client *Client, pause time.Duration) *Checker {
	if pause <= 0 {
		pause = defaultBatchPause
	}
	return &Checker{
		client: client,
		pacer:  rate.NewLimiter(rate.Every(pause), 1),
	}
}

// CheckAll classifies every id. Batch-level API failures degrade to
// per-video results carrying the error code instead of aborting the whole
// run; quota exhaustion stops further batches since they would fail the same
// way. Only context cancellation returns an error.
func (c *Checker) CheckAll(ctx context.Context, apiKey string, videoIDs []string) ([]models.VideoStatusResult, error) {
	results := make([]models.VideoStatusResult, 0, len(videoIDs))

	for start := 0; start < len(videoIDs); start += statusBatchSize {
		if err := c.pacer.Wait(ctx); err != nil {
			return results, err
		}

		end := start + statusBatchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batch := videoIDs[start:end]

		batchCtx, cancel := context.WithTimeout(ctx, statusCheckTimeout)
		statuses, err := c.client.FetchVideoStatuses(batchCtx, apiKey, batch)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			code := ErrorCode(err)
			log.Printf("[youtube] status batch of %d failed: %v", len(batch), err)
			for _, id := range batch {
				results = append(results, models.VideoStatusResult{
					VideoID: id,
					Status:  models.VideoUnavailable,
					Error:   code,
				})
			}
			if code == CodeQuotaExceeded || code == CodeInvalidAPIKey {
				// Remaining batches would fail identically.
				for _, id := range videoIDs[end:] {
					results = append(results, models.VideoStatusResult{
						VideoID: id,
						Status:  models.VideoUnavailable,
						Error:   code,
					})
				}
				return results, nil
			}
			continue
		}

		for _, id := range batch {
			results = append(results, models.VideoStatusResult{
				VideoID: id,
				Status:  statuses[id],
			})
		}
	}
	return results, nil
}

// CheckOne classifies a single video.
func (c *Checker) CheckOne(ctx context.Context, apiKey, videoID string) (models.VideoStatusResult, error) {
	if videoID == "" {
		return models.VideoStatusResult{}, errors.New("video id is required")
	}
	results, err := c.CheckAll(ctx, apiKey, []string{videoID})
	if err != nil {
		return models.VideoStatusResult{}, err
	}
	return results[0], nil
}
