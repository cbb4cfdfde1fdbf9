// Package reconcile re-checks the availability of imported YouTube scenes
// against the provider and applies the user's missing-video policy.
package reconcile

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"scenevault/models"
	"scenevault/services/prefs"
	"scenevault/services/scenes"
	"scenevault/services/youtube"
)

var (
	ErrUserIDRequired  = errors.New("user id is required")
	ErrAlreadyRunning  = errors.New("a status check is already running")
	ErrNothingToCheck  = errors.New("no checkable scenes in the collection")
	ErrAPIKeyRequired  = youtube.ErrAPIKeyRequired
	ErrSceneNotChecked = errors.New("scene has no video id to check")
)

// Progress is the position of a running check.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Summary is the outcome of one reconciliation run. Skipped counts scenes
// whose check itself failed; their stored status is left untouched.
type Summary struct {
	Checked     int    `json:"checked"`
	Available   int    `json:"available"`
	Unavailable int    `json:"unavailable"`
	Removed     int    `json:"removed"`
	Skipped     int    `json:"skipped"`
	ErrorCode   string `json:"error_code,omitempty"`
}

// RunStatus is the poll-able state of the background runner.
type RunStatus struct {
	Running     bool     `json:"running"`
	Progress    Progress `json:"progress"`
	LastSummary *Summary `json:"last_summary,omitempty"`
	LastError   string   `json:"last_error,omitempty"`
}

// ProgressFunc is invoked after every persisted write.
type ProgressFunc func(current, total int)

// Service runs availability checks over the scene collection.
type Service struct {
	scenes  *scenes.Service
	prefs   *prefs.Service
	checker *youtube.Checker

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	progress    Progress
	lastSummary *Summary
	lastError   string
}

func NewService(sc *scenes.Service, pr *prefs.Service, checker *youtube.Checker) *Service {
	return &Service{scenes: sc, prefs: pr, checker: checker}
}

// Run checks every checkable scene of the user and persists the outcome one
// write at a time. Cancellation between writes keeps already-applied updates.
func (s *Service) Run(ctx context.Context, userID string, onProgress ProgressFunc) (Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Summary{}, ErrUserIDRequired
	}

	apiKey, err := s.prefs.APIKey(userID)
	if err != nil {
		return Summary{}, err
	}
	if apiKey == "" {
		return Summary{}, ErrAPIKeyRequired
	}

	checkable, err := s.scenes.ListCheckable(userID)
	if err != nil {
		return Summary{}, err
	}
	if len(checkable) == 0 {
		return Summary{}, ErrNothingToCheck
	}

	action, err := s.prefs.MissingVideoAction(userID)
	if err != nil {
		return Summary{}, err
	}

	videoIDs := make([]string, 0, len(checkable))
	seen := make(map[string]struct{}, len(checkable))
	for _, scene := range checkable {
		if _, dup := seen[scene.VideoID]; dup {
			continue
		}
		seen[scene.VideoID] = struct{}{}
		videoIDs = append(videoIDs, scene.VideoID)
	}

	results, err := s.checker.CheckAll(ctx, apiKey, videoIDs)
	if err != nil {
		return Summary{}, err
	}
	byVideo := make(map[string]models.VideoStatusResult, len(results))
	for _, res := range results {
		byVideo[res.VideoID] = res
	}

	var summary Summary
	total := len(checkable)
	for i, scene := range checkable {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		res, ok := byVideo[scene.VideoID]
		if !ok || res.Error != "" {
			// The check itself failed; do not touch the stored status.
			summary.Skipped++
			if res.Error != "" && summary.ErrorCode == "" {
				summary.ErrorCode = res.Error
			}
			continue
		}

		if res.Status != models.VideoAvailable &&
			action == models.MissingVideoRemove &&
			scene.SourceType == models.SourceYouTubePlaylist {
			if err := s.scenes.Delete(userID, scene.ID); err != nil && !errors.Is(err, scenes.ErrNotFound) {
				return summary, err
			}
			summary.Removed++
		} else {
			if err := s.scenes.SetStatus(userID, scene.ID, res.Status.Persisted()); err != nil &&
				!errors.Is(err, scenes.ErrNotFound) {
				return summary, err
			}
			if res.Status == models.VideoAvailable {
				summary.Available++
			} else {
				summary.Unavailable++
			}
		}
		summary.Checked++

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	if summary.Checked == 0 && summary.ErrorCode != "" {
		// Every check failed before anything was written.
		return summary, &youtube.APIError{Code: summary.ErrorCode, Message: "status check failed"}
	}

	log.Printf("[reconcile] user %s: checked %d, available %d, unavailable %d, removed %d, skipped %d",
		userID, summary.Checked, summary.Available, summary.Unavailable, summary.Removed, summary.Skipped)
	return summary, nil
}

// CheckOne re-checks a single scene and persists the outcome.
func (s *Service) CheckOne(ctx context.Context, userID, sceneID string) (models.Scene, error) {
	scene, err := s.scenes.Get(userID, sceneID)
	if err != nil {
		return models.Scene{}, err
	}
	if scene.VideoID == "" {
		return models.Scene{}, ErrSceneNotChecked
	}

	apiKey, err := s.prefs.APIKey(userID)
	if err != nil {
		return models.Scene{}, err
	}
	if apiKey == "" {
		return models.Scene{}, ErrAPIKeyRequired
	}

	res, err := s.checker.CheckOne(ctx, apiKey, scene.VideoID)
	if err != nil {
		return models.Scene{}, err
	}
	if res.Error != "" {
		return models.Scene{}, &youtube.APIError{Code: res.Error}
	}

	if err := s.scenes.SetStatus(userID, sceneID, res.Status.Persisted()); err != nil {
		return models.Scene{}, err
	}
	return s.scenes.Get(userID, sceneID)
}

// Start launches a background run for the user. Only one run at a time.
func (s *Service) Start(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.progress = Progress{}
	s.lastError = ""
	s.mu.Unlock()

	go func() {
		defer cancel()
		summary, err := s.Run(ctx, userID, func(current, total int) {
			s.mu.Lock()
			s.progress = Progress{Current: current, Total: total}
			s.mu.Unlock()
		})

		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.lastSummary = &summary
		if err != nil {
			s.lastError = err.Error()
		}
		s.mu.Unlock()
	}()
	return nil
}

// Cancel stops a running background check. Writes already applied stay.
func (s *Service) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Status returns a snapshot of the background runner.
func (s *Service) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunStatus{
		Running:     s.running,
		Progress:    s.progress,
		LastSummary: s.lastSummary,
		LastError:   s.lastError,
	}
}
