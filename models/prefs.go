package models

// SortOption orders a user's scene listing.
type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortOldest    SortOption = "oldest"
	SortTitleAsc  SortOption = "title-asc"
	SortTitleDesc SortOption = "title-desc"
)

// FilterAll is the wildcard value for the platform/category/status filters.
const FilterAll = "all"

// FilterState is the saved filter/sort state of a user's dashboard. It lives
// in the preferences store, not the row store.
type FilterState struct {
	SearchQuery      string     `json:"searchQuery"`
	SelectedPlatform string     `json:"selectedPlatform"`
	SelectedCategory string     `json:"selectedCategory"`
	SelectedStatus   string     `json:"selectedStatus"`
	SortBy           SortOption `json:"sortBy"`
}

// DefaultFilterState returns the filter state of a fresh dashboard.
func DefaultFilterState() FilterState {
	return FilterState{
		SearchQuery:      "",
		SelectedPlatform: FilterAll,
		SelectedCategory: FilterAll,
		SelectedStatus:   FilterAll,
		SortBy:           SortNewest,
	}
}

// MissingVideoAction controls what reconciliation does with playlist videos
// that are no longer available on YouTube.
type MissingVideoAction string

const (
	// MissingVideoMark keeps the scene and flips its status to unavailable.
	MissingVideoMark MissingVideoAction = "mark"
	// MissingVideoRemove deletes the scene from the collection.
	MissingVideoRemove MissingVideoAction = "remove"
)

// UserPrefs holds a user's device-independent preferences: saved filter
// state, the YouTube Data API key and the missing-video policy. The key is
// only ever forwarded to the YouTube proxy, never logged.
type UserPrefs struct {
	Filter                FilterState        `json:"filter"`
	YouTubeAPIKey         string             `json:"youtubeApiKey,omitempty"`
	DeletedPlaylistVideos MissingVideoAction `json:"deletedPlaylistVideos,omitempty"`
}

// DefaultUserID is used when running without multi-user routing, mirroring a
// fresh single-profile install.
const DefaultUserID = "default"
