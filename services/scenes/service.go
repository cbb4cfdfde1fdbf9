// Package scenes is the row store for tracked media references. All access
// is scoped to the owning user.
package scenes

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scenevault/internal/database"
	"scenevault/models"
)

var (
	ErrUserIDRequired  = errors.New("user id is required")
	ErrIDRequired      = errors.New("scene id is required")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPlatform = errors.New("unknown platform")
	ErrInvalidCategory = errors.New("unknown category")
	ErrNotFound        = errors.New("scene not found")
	// ErrPlaylistInvariant guards source_type=youtube_playlist ⇒ YouTube platform + playlist id.
	ErrPlaylistInvariant = errors.New("playlist scenes require the YouTube platform and a playlist id")
)

const sceneColumns = `id, user_id, title, platform, category,
	COALESCE(url, ''), COALESCE(thumbnail, ''), COALESCE(timestamp, ''), COALESCE(notes, ''),
	status, source_type, COALESCE(playlist_id, ''), COALESCE(video_id, ''),
	COALESCE(channel_name, ''), COALESCE(upload_date, ''), created_at, updated_at`

// Service manages scene rows in the sqlite store.
type Service struct {
	db *database.DB
}

// NewService creates a scene service over the given database.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// List returns all of the user's scenes, newest first.
func (s *Service) List(userID string) ([]models.Scene, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := s.db.Query(
		`SELECT `+sceneColumns+` FROM scenes WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query scenes: %w", err)
	}
	defer rows.Close()

	return scanScenes(rows)
}

// ListByPlaylist returns the user's YouTube scenes belonging to one playlist.
func (s *Service) ListByPlaylist(userID, playlistID string) ([]models.Scene, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := s.db.Query(
		`SELECT `+sceneColumns+` FROM scenes
		 WHERE user_id = ? AND platform = ? AND playlist_id = ?
		 ORDER BY created_at DESC, id`,
		userID, models.PlatformYouTube, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist scenes: %w", err)
	}
	defer rows.Close()

	return scanScenes(rows)
}

// ListCheckable returns the user's YouTube scenes that carry an external
// video id and can therefore be status-checked.
func (s *Service) ListCheckable(userID string) ([]models.Scene, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := s.db.Query(
		`SELECT `+sceneColumns+` FROM scenes
		 WHERE user_id = ? AND platform = ? AND video_id IS NOT NULL AND video_id != ''
		 ORDER BY created_at DESC, id`,
		userID, models.PlatformYouTube)
	if err != nil {
		return nil, fmt.Errorf("query checkable scenes: %w", err)
	}
	defer rows.Close()

	return scanScenes(rows)
}

// Get returns one scene or ErrNotFound.
func (s *Service) Get(userID, id string) (models.Scene, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Scene{}, ErrUserIDRequired
	}
	if strings.TrimSpace(id) == "" {
		return models.Scene{}, ErrIDRequired
	}

	row := s.db.QueryRow(
		`SELECT `+sceneColumns+` FROM scenes WHERE user_id = ? AND id = ?`, userID, id)

	scene, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Scene{}, ErrNotFound
	}
	if err != nil {
		return models.Scene{}, fmt.Errorf("get scene: %w", err)
	}
	return scene, nil
}

// Create inserts a manual scene from form data.
func (s *Service) Create(userID string, input models.SceneUpsert) (models.Scene, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Scene{}, ErrUserIDRequired
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.Scene{}, ErrTitleRequired
	}
	if !input.Platform.Valid() {
		return models.Scene{}, ErrInvalidPlatform
	}
	if !input.Category.Valid() {
		return models.Scene{}, ErrInvalidCategory
	}

	now := time.Now().UTC()
	scene := models.Scene{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      strings.TrimSpace(input.Title),
		Platform:   input.Platform,
		Category:   input.Category,
		URL:        input.URL,
		Thumbnail:  input.Thumbnail,
		Timestamp:  input.Timestamp,
		Notes:      input.Notes,
		Status:     models.NormalizeStatus(string(input.Status)),
		SourceType: models.SourceManual,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Insert(scene); err != nil {
		return models.Scene{}, err
	}
	return scene, nil
}

// Insert stores a fully built scene row. Used by playlist imports and the
// import engine, which assemble scenes themselves.
func (s *Service) Insert(scene models.Scene) error {
	if strings.TrimSpace(scene.UserID) == "" {
		return ErrUserIDRequired
	}
	if scene.SourceType == models.SourceYouTubePlaylist &&
		(scene.Platform != models.PlatformYouTube || strings.TrimSpace(scene.PlaylistID) == "") {
		return ErrPlaylistInvariant
	}

	_, err := s.db.Exec(
		`INSERT INTO scenes (id, user_id, title, platform, category, url, thumbnail, timestamp,
			notes, status, source_type, playlist_id, video_id, channel_name, upload_date,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scene.ID, scene.UserID, scene.Title, scene.Platform, scene.Category,
		scene.URL, scene.Thumbnail, scene.Timestamp, scene.Notes, scene.Status,
		scene.SourceType, scene.PlaylistID, scene.VideoID, scene.ChannelName,
		scene.UploadDate, scene.CreatedAt, scene.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert scene: %w", err)
	}
	return nil
}

// InsertMany stores scenes one at a time. The loop is deliberately
// sequential; a failure aborts the remaining inserts and partial application
// is surfaced to the caller.
func (s *Service) InsertMany(scenes []models.Scene) error {
	for i := range scenes {
		if err := s.Insert(scenes[i]); err != nil {
			return fmt.Errorf("insert scene %d of %d: %w", i+1, len(scenes), err)
		}
	}
	return nil
}

// Update applies a partial field set and refreshes the update timestamp.
func (s *Service) Update(userID, id string, update models.SceneUpdate) (models.Scene, error) {
	scene, err := s.Get(userID, id)
	if err != nil {
		return models.Scene{}, err
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return models.Scene{}, ErrTitleRequired
		}
		scene.Title = strings.TrimSpace(*update.Title)
	}
	if update.Platform != nil {
		if !update.Platform.Valid() {
			return models.Scene{}, ErrInvalidPlatform
		}
		scene.Platform = *update.Platform
	}
	if update.Category != nil {
		if !update.Category.Valid() {
			return models.Scene{}, ErrInvalidCategory
		}
		scene.Category = *update.Category
	}
	if update.URL != nil {
		scene.URL = *update.URL
	}
	if update.Thumbnail != nil {
		scene.Thumbnail = *update.Thumbnail
	}
	if update.Timestamp != nil {
		scene.Timestamp = *update.Timestamp
	}
	if update.Notes != nil {
		scene.Notes = *update.Notes
	}
	if update.Status != nil {
		scene.Status = models.NormalizeStatus(string(*update.Status))
	}
	scene.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE scenes SET title = ?, platform = ?, category = ?, url = ?, thumbnail = ?,
			timestamp = ?, notes = ?, status = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		scene.Title, scene.Platform, scene.Category, scene.URL, scene.Thumbnail,
		scene.Timestamp, scene.Notes, scene.Status, scene.UpdatedAt, userID, id)
	if err != nil {
		return models.Scene{}, fmt.Errorf("update scene: %w", err)
	}
	return scene, nil
}

// SetStatus updates a single scene's availability.
func (s *Service) SetStatus(userID, id string, status models.Status) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	if strings.TrimSpace(id) == "" {
		return ErrIDRequired
	}

	res, err := s.db.Exec(
		`UPDATE scenes SET status = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		models.NormalizeStatus(string(status)), time.Now().UTC(), userID, id)
	if err != nil {
		return fmt.Errorf("update scene status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCategoryBulk assigns one category to many scenes, one write at a time.
// A failure aborts the remaining loop; already-applied writes stay.
func (s *Service) SetCategoryBulk(userID string, ids []string, category models.Category) (int, error) {
	if !category.Valid() {
		return 0, ErrInvalidCategory
	}
	changed := 0
	for _, id := range ids {
		_, err := s.db.Exec(
			`UPDATE scenes SET category = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
			category, time.Now().UTC(), userID, id)
		if err != nil {
			return changed, fmt.Errorf("update scene category: %w", err)
		}
		changed++
	}
	return changed, nil
}

// SetStatusBulk assigns one status to many scenes, one write at a time.
func (s *Service) SetStatusBulk(userID string, ids []string, status models.Status) (int, error) {
	changed := 0
	for _, id := range ids {
		if err := s.SetStatus(userID, id, status); err != nil && !errors.Is(err, ErrNotFound) {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// Delete removes one scene.
func (s *Service) Delete(userID, id string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	if strings.TrimSpace(id) == "" {
		return ErrIDRequired
	}

	res, err := s.db.Exec(`DELETE FROM scenes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBulk removes many scenes one at a time. Missing ids are skipped.
func (s *Service) DeleteBulk(userID string, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		err := s.Delete(userID, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// DeleteByPlaylist removes every scene imported from one playlist.
func (s *Service) DeleteByPlaylist(userID, playlistID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrUserIDRequired
	}
	if strings.TrimSpace(playlistID) == "" {
		return 0, errors.New("playlist id is required")
	}

	res, err := s.db.Exec(
		`DELETE FROM scenes WHERE user_id = ? AND playlist_id = ?`, userID, playlistID)
	if err != nil {
		return 0, fmt.Errorf("delete playlist scenes: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteAll removes the user's whole collection. Used by replace imports.
func (s *Service) DeleteAll(userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrUserIDRequired
	}

	res, err := s.db.Exec(`DELETE FROM scenes WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete scenes: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats summarizes the user's collection.
func (s *Service) Stats(userID string) (models.Stats, error) {
	all, err := s.List(userID)
	if err != nil {
		return models.Stats{}, err
	}

	stats := models.Stats{
		Total:      len(all),
		ByPlatform: make(map[models.Platform]int, len(models.Platforms)),
		ByCategory: make(map[models.Category]int, len(models.Categories)),
	}
	for _, p := range models.Platforms {
		stats.ByPlatform[p] = 0
	}
	for _, c := range models.Categories {
		stats.ByCategory[c] = 0
	}
	for _, scene := range all {
		if scene.Status == models.StatusAvailable {
			stats.Available++
		} else {
			stats.Unavailable++
		}
		stats.ByPlatform[scene.Platform]++
		stats.ByCategory[scene.Category]++
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScene(row rowScanner) (models.Scene, error) {
	var scene models.Scene
	err := row.Scan(
		&scene.ID, &scene.UserID, &scene.Title, &scene.Platform, &scene.Category,
		&scene.URL, &scene.Thumbnail, &scene.Timestamp, &scene.Notes,
		&scene.Status, &scene.SourceType, &scene.PlaylistID, &scene.VideoID,
		&scene.ChannelName, &scene.UploadDate, &scene.CreatedAt, &scene.UpdatedAt)
	return scene, err
}

func scanScenes(rows *sql.Rows) ([]models.Scene, error) {
	scenes := make([]models.Scene, 0)
	for rows.Next() {
		scene, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		scenes = append(scenes, scene)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenes: %w", err)
	}
	return scenes, nil
}
