// Package playlists stores locally cached YouTube playlist records.
package playlists

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
	ErrUserIDRequired     = errors.New("user id is required")
	ErrPlaylistIDRequired = errors.New("playlist id is required")
	ErrTitleRequired      = errors.New("title is required")
	ErrNotFound           = errors.New("playlist not found")
)

const playlistColumns = `id, user_id, playlist_id, title, COALESCE(description, ''),
	COALESCE(thumbnail, ''), video_count, imported_at, updated_at`

// Service manages playlist records in the sqlite store.
type Service struct {
	db *database.DB
}

func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// List returns the user's playlists, most recently imported first.
func (s *Service) List(userID string) ([]models.Playlist, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := s.db.Query(
		`SELECT `+playlistColumns+` FROM youtube_playlists
		 WHERE user_id = ? ORDER BY imported_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]models.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// Get returns the record for one external playlist id, or ErrNotFound.
func (s *Service) Get(userID, playlistID string) (models.Playlist, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Playlist{}, ErrUserIDRequired
	}
	if strings.TrimSpace(playlistID) == "" {
		return models.Playlist{}, ErrPlaylistIDRequired
	}

	row := s.db.QueryRow(
		`SELECT `+playlistColumns+` FROM youtube_playlists
		 WHERE user_id = ? AND playlist_id = ?`, userID, playlistID)

	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, ErrNotFound
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("get playlist: %w", err)
	}
	return p, nil
}

// Upsert creates or refreshes the record for (user, playlist_id). The import
// timestamp is set on create only; re-imports keep the original.
func (s *Service) Upsert(userID string, input models.PlaylistUpsert) (models.Playlist, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Playlist{}, ErrUserIDRequired
	}
	if strings.TrimSpace(input.PlaylistID) == "" {
		return models.Playlist{}, ErrPlaylistIDRequired
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO youtube_playlists
			(id, user_id, playlist_id, title, description, thumbnail, video_count, imported_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, playlist_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			thumbnail = excluded.thumbnail,
			video_count = excluded.video_count,
			updated_at = excluded.updated_at`,
		uuid.NewString(), userID, input.PlaylistID, input.Title, input.Description,
		input.Thumbnail, input.VideoCount, now, now)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("upsert playlist: %w", err)
	}

	return s.Get(userID, input.PlaylistID)
}

// Rename changes a playlist's local display title.
func (s *Service) Rename(userID, playlistID, title string) (models.Playlist, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Playlist{}, ErrUserIDRequired
	}
	if strings.TrimSpace(playlistID) == "" {
		return models.Playlist{}, ErrPlaylistIDRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Playlist{}, ErrTitleRequired
	}

	res, err := s.db.Exec(
		`UPDATE youtube_playlists SET title = ?, updated_at = ?
		 WHERE user_id = ? AND playlist_id = ?`,
		title, time.Now().UTC(), userID, playlistID)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("rename playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Playlist{}, ErrNotFound
	}
	return s.Get(userID, playlistID)
}

// SetVideoCount refreshes the cached size after scenes are added or removed.
func (s *Service) SetVideoCount(userID, playlistID string, count int) error {
	_, err := s.db.Exec(
		`UPDATE youtube_playlists SET video_count = ?, updated_at = ?
		 WHERE user_id = ? AND playlist_id = ?`,
		count, time.Now().UTC(), userID, playlistID)
	if err != nil {
		return fmt.Errorf("update playlist count: %w", err)
	}
	return nil
}

// Delete removes the playlist record. Its scenes are handled separately by
// the caller.
func (s *Service) Delete(userID, playlistID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	if strings.TrimSpace(playlistID) == "" {
		return ErrPlaylistIDRequired
	}

	res, err := s.db.Exec(
		`DELETE FROM youtube_playlists WHERE user_id = ? AND playlist_id = ?`, userID, playlistID)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.UserID, &p.PlaylistID, &p.Title, &p.Description,
		&p.Thumbnail, &p.VideoCount, &p.ImportedAt, &p.UpdatedAt)
	return p, err
}
