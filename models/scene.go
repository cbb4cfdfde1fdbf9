package models

import "time"

// Platform identifies the streaming platform a scene lives on.
type Platform string

const (
	PlatformYouTube    Platform = "YouTube"
	PlatformJioHotstar Platform = "JioHotstar"
	PlatformZee5       Platform = "Zee5"
	PlatformSonyLIV    Platform = "SonyLIV"
	PlatformOther      Platform = "Other"
)

// Platforms lists every known platform in display order.
var Platforms = []Platform{PlatformYouTube, PlatformJioHotstar, PlatformZee5, PlatformSonyLIV, PlatformOther}

// Valid reports whether the platform is one of the known values.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Category is the pairing tag applied to a scene.
type Category string

const (
	CategoryFM Category = "F/M"
	CategoryFF Category = "F/F"
	CategoryMF Category = "M/F"
	CategoryMM Category = "M/M"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryFM, CategoryFF, CategoryMF, CategoryMM}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the stored availability of a scene. Only two states persist;
// a provider-side "private" classification is normalized to unavailable
// before storage.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// NormalizeStatus collapses any unknown or legacy status value to the
// two-state model.
func NormalizeStatus(s string) Status {
	if Status(s) == StatusAvailable {
		return StatusAvailable
	}
	return StatusUnavailable
}

// SourceType records how a scene entered the collection.
type SourceType string

const (
	SourceManual          SourceType = "manual"
	SourceYouTubePlaylist SourceType = "youtube_playlist"
)

// Scene is a single tracked media reference.
type Scene struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Platform    Platform   `json:"platform"`
	Category    Category   `json:"category"`
	URL         string     `json:"url,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Timestamp   string     `json:"timestamp,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Status      Status     `json:"status"`
	SourceType  SourceType `json:"source_type"`
	PlaylistID  string     `json:"playlist_id,omitempty"`
	VideoID     string     `json:"video_id,omitempty"`
	ChannelName string     `json:"channel_name,omitempty"`
	UploadDate  string     `json:"upload_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SceneUpsert captures the data required to create a scene. Scenes created
// through this payload are always manual entries; playlist imports build
// scenes directly.
type SceneUpsert struct {
	Title     string   `json:"title"`
	Platform  Platform `json:"platform"`
	Category  Category `json:"category"`
	URL       string   `json:"url,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Status    Status   `json:"status"`
}

// SceneUpdate is a partial update; nil fields are left untouched.
type SceneUpdate struct {
	Title     *string   `json:"title,omitempty"`
	Platform  *Platform `json:"platform,omitempty"`
	Category  *Category `json:"category,omitempty"`
	URL       *string   `json:"url,omitempty"`
	Thumbnail *string   `json:"thumbnail,omitempty"`
	Timestamp *string   `json:"timestamp,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Status    *Status   `json:"status,omitempty"`
}

// Stats summarizes a user's collection.
type Stats struct {
	Total       int              `json:"total"`
	Available   int              `json:"available"`
	Unavailable int              `json:"unavailable"`
	ByPlatform  map[Platform]int `json:"byPlatform"`
	ByCategory  map[Category]int `json:"byCategory"`
}
