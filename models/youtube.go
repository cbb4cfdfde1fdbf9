package models

// PlaylistMetadata is the response of the playlist metadata endpoint.
type PlaylistMetadata struct {
	PlaylistID  string `json:"playlistId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	VideoCount  int    `json:"videoCount"`
}

// PlaylistItem is one entry of a playlist page.
type PlaylistItem struct {
	Title       string `json:"title"`
	VideoID     string `json:"videoId"`
	Thumbnail   string `json:"thumbnail"`
	ChannelName string `json:"channelName"`
	UploadDate  string `json:"uploadDate"`
	URL         string `json:"url"`
}

// PlaylistPage is one page of playlist items. An empty NextPageToken means
// the sequence is exhausted.
type PlaylistPage struct {
	Items         []PlaylistItem `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
	TotalResults  int            `json:"totalResults"`
}

// VideoAvailability is the provider-side classification of a single video.
// Unlike Status it carries a transient "private" state that never persists.
type VideoAvailability string

const (
	VideoAvailable   VideoAvailability = "available"
	VideoUnavailable VideoAvailability = "unavailable"
	VideoPrivate     VideoAvailability = "private"
)

// Persisted collapses the three provider states onto the stored two-state
// model.
func (v VideoAvailability) Persisted() Status {
	if v == VideoAvailable {
		return StatusAvailable
	}
	return StatusUnavailable
}

// VideoStatusResult is the per-video outcome of a status check. Error holds a
// provider error code (QUOTA_EXCEEDED, INVALID_API_KEY) when the check itself
// failed; such videos degrade to unavailable rather than aborting the batch.
type VideoStatusResult struct {
	VideoID string            `json:"videoId"`
	Status  VideoAvailability `json:"status"`
	Error   string            `json:"error,omitempty"`
}
