package models

import "time"

// Playlist is locally cached metadata about an externally hosted YouTube
// playlist. At most one record exists per (user, playlist_id).
type Playlist struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PlaylistID  string    `json:"playlist_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	VideoCount  int       `json:"video_count"`
	ImportedAt  time.Time `json:"imported_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaylistUpsert carries the fields refreshed on every import. ImportedAt is
// only applied when the record does not exist yet.
type PlaylistUpsert struct {
	PlaylistID  string `json:"playlist_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	VideoCount  int    `json:"video_count"`
}
