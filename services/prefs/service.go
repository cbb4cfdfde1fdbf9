// Package prefs manages per-user preferences: saved dashboard filter state,
// the YouTube API key and the missing-video policy. Preferences live in a
// JSON file beside the row store.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"scenevault/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserIDRequired     = errors.New("user id is required")
)

// Service manages persistence and retrieval of per-user preferences.
type Service struct {
	mu    sync.RWMutex
	path  string
	prefs map[string]models.UserPrefs
}

// NewService creates a preferences service storing data inside the provided
// directory. Stored entries are migrated to the current filter-state shape on
// load.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "prefs.json"),
		prefs: make(map[string]models.UserPrefs),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Get returns the user's preferences, falling back to defaults when none are
// stored.
func (s *Service) Get(userID string) (models.UserPrefs, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.UserPrefs{}, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.prefs[userID]; ok {
		return p, nil
	}
	return defaultPrefs(), nil
}

// Update saves the user's preferences.
func (s *Service) Update(userID string, p models.UserPrefs) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[userID] = normalize(p)

	return s.saveLocked()
}

// UpdateFilter saves only the user's filter state.
func (s *Service) UpdateFilter(userID string, fs models.FilterState) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prefs[userID]
	if !ok {
		p = defaultPrefs()
	}
	p.Filter = MigrateFilterState(fs)
	s.prefs[userID] = p

	return s.saveLocked()
}

// APIKey returns the user's stored YouTube API key, or "".
func (s *Service) APIKey(userID string) (string, error) {
	p, err := s.Get(userID)
	if err != nil {
		return "", err
	}
	return p.YouTubeAPIKey, nil
}

// SetAPIKey stores the user's YouTube API key. An empty key clears it.
func (s *Service) SetAPIKey(userID, key string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prefs[userID]
	if !ok {
		p = defaultPrefs()
	}
	p.YouTubeAPIKey = strings.TrimSpace(key)
	s.prefs[userID] = p

	return s.saveLocked()
}

// MissingVideoAction returns the user's policy for playlist videos that are
// gone from YouTube. Defaults to marking them unavailable.
func (s *Service) MissingVideoAction(userID string) (models.MissingVideoAction, error) {
	p, err := s.Get(userID)
	if err != nil {
		return "", err
	}
	if p.DeletedPlaylistVideos == models.MissingVideoRemove {
		return models.MissingVideoRemove, nil
	}
	return models.MissingVideoMark, nil
}

// Delete removes a user's preferences.
func (s *Service) Delete(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.prefs[userID]; !exists {
		return nil
	}

	delete(s.prefs, userID)

	return s.saveLocked()
}

func defaultPrefs() models.UserPrefs {
	return models.UserPrefs{
		Filter:                models.DefaultFilterState(),
		DeletedPlaylistVideos: models.MissingVideoMark,
	}
}

func normalize(p models.UserPrefs) models.UserPrefs {
	p.Filter = MigrateFilterState(p.Filter)
	p.YouTubeAPIKey = strings.TrimSpace(p.YouTubeAPIKey)
	if p.DeletedPlaylistVideos != models.MissingVideoRemove {
		p.DeletedPlaylistVideos = models.MissingVideoMark
	}
	return p
}

// MigrateFilterState upgrades a stored filter state to the current shape.
// Older versions persisted a "private" status filter and a "channel-asc"
// sort; both options no longer exist.
func MigrateFilterState(fs models.FilterState) models.FilterState {
	if fs.SelectedPlatform == "" {
		fs.SelectedPlatform = models.FilterAll
	}
	if fs.SelectedCategory == "" {
		fs.SelectedCategory = models.FilterAll
	}

	switch fs.SelectedStatus {
	case string(models.StatusAvailable), string(models.StatusUnavailable), models.FilterAll:
	case "private":
		fs.SelectedStatus = string(models.StatusUnavailable)
	default:
		fs.SelectedStatus = models.FilterAll
	}

	switch fs.SortBy {
	case models.SortNewest, models.SortOldest, models.SortTitleAsc, models.SortTitleDesc:
	default:
		// Covers the removed "channel-asc" option and empty state.
		fs.SortBy = models.SortNewest
	}

	return fs
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.prefs = make(map[string]models.UserPrefs)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open prefs: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read prefs: %w", err)
	}
	if len(data) == 0 {
		s.prefs = make(map[string]models.UserPrefs)
		return nil
	}

	var stored map[string]models.UserPrefs
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode prefs: %w", err)
	}

	for userID, p := range stored {
		stored[userID] = normalize(p)
	}
	s.prefs = stored
	return nil
}

func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create prefs temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.prefs); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode prefs: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync prefs: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close prefs temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs file: %w", err)
	}

	return nil
}
