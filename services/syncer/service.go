// Package syncer imports YouTube playlists into the scene collection: it
// resolves the playlist id, pages through the provider, deduplicates against
// already-imported videos and persists the result.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"scenevault/config"
	"scenevault/models"
	"scenevault/services/playlists"
	"scenevault/services/prefs"
	"scenevault/services/scenes"
	"scenevault/services/youtube"
)

var (
	ErrUserIDRequired     = errors.New("user id is required")
	ErrInvalidPlaylistURL = errors.New("could not extract a playlist id from the url")
	ErrInvalidCategory    = errors.New("unknown category")
	ErrNoVideosFound      = errors.New("no videos found in playlist")
	ErrPlaylistTooLarge   = errors.New("playlist exceeds the import limit")
)

var listParamRe = regexp.MustCompile(`[?&]list=([^&]+)`)

// bare playlist ids as pasted from the YouTube UI
var playlistIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)

// ExtractPlaylistID pulls the playlist id out of a YouTube URL. A bare id is
// accepted as-is.
func ExtractPlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := listParamRe.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if playlistIDRe.MatchString(input) {
		return input, nil
	}
	return "", ErrInvalidPlaylistURL
}

// NewItems filters out playlist items whose video already exists in the
// collection, and collapses duplicates within the fetched list itself.
func NewItems(items []models.PlaylistItem, existing map[string]struct{}) []models.PlaylistItem {
	seen := make(map[string]struct{}, len(existing))
	for id := range existing {
		seen[id] = struct{}{}
	}

	fresh := make([]models.PlaylistItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.VideoID]; dup {
			continue
		}
		seen[item.VideoID] = struct{}{}
		fresh = append(fresh, item)
	}
	return fresh
}

// Result summarizes one import or refresh run.
type Result struct {
	PlaylistID    string `json:"playlist_id"`
	PlaylistTitle string `json:"playlist_title"`
	AddedCount    int    `json:"added_count"`
	TotalCount    int    `json:"total_count"`
}

// Service orchestrates playlist imports.
type Service struct {
	scenes    *scenes.Service
	playlists *playlists.Service
	prefs     *prefs.Service
	client    *youtube.Client

	pageSize int
	maxItems int
}

// NewService wires the import pipeline. cfg supplies the page size and the
// per-playlist import cap.
func NewService(sc *scenes.Service, pl *playlists.Service, pr *prefs.Service, client *youtube.Client, cfg config.YouTubeSettings) *Service {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}
	maxItems := cfg.MaxPlaylistItems
	if maxItems <= 0 {
		maxItems = 500
	}
	return &Service{
		scenes:    sc,
		playlists: pl,
		prefs:     pr,
		client:    client,
		pageSize:  pageSize,
		maxItems:  maxItems,
	}
}

// Import resolves the playlist URL and imports its videos as scenes under the
// given category. Without a stored API key only a placeholder playlist record
// is created.
func (s *Service) Import(ctx context.Context, userID, playlistURL string, category models.Category) (Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Result{}, ErrUserIDRequired
	}
	playlistID, err := ExtractPlaylistID(playlistURL)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, userID, playlistID, category)
}

// Refresh re-imports an already known playlist, picking up videos added since
// the last run. Existing scenes are never touched.
func (s *Service) Refresh(ctx context.Context, userID, playlistID string, category models.Category) (Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Result{}, ErrUserIDRequired
	}
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return Result{}, ErrInvalidPlaylistURL
	}
	return s.run(ctx, userID, playlistID, category)
}

func (s *Service) run(ctx context.Context, userID, playlistID string, category models.Category) (Result, error) {
	if !category.Valid() {
		return Result{}, ErrInvalidCategory
	}

	apiKey, err := s.prefs.APIKey(userID)
	if err != nil {
		return Result{}, err
	}
	if apiKey == "" {
		return s.basicImport(userID, playlistID)
	}

	meta, err := s.client.FetchPlaylistMetadata(ctx, apiKey, playlistID)
	if err != nil {
		return Result{}, err
	}

	items, err := s.fetchAllItems(ctx, apiKey, playlistID)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, ErrNoVideosFound
	}

	existing, err := s.scenes.ListByPlaylist(userID, playlistID)
	if err != nil {
		return Result{}, err
	}
	existingIDs := make(map[string]struct{}, len(existing))
	for _, scene := range existing {
		if scene.VideoID != "" {
			existingIDs[scene.VideoID] = struct{}{}
		}
	}

	fresh := NewItems(items, existingIDs)
	now := time.Now().UTC()
	newScenes := make([]models.Scene, 0, len(fresh))
	for _, item := range fresh {
		newScenes = append(newScenes, models.Scene{
			ID:          uuid.NewString(),
			UserID:      userID,
			Title:       item.Title,
			Platform:    models.PlatformYouTube,
			Category:    category,
			URL:         item.URL,
			Thumbnail:   item.Thumbnail,
			Status:      models.StatusAvailable,
			SourceType:  models.SourceYouTubePlaylist,
			PlaylistID:  playlistID,
			VideoID:     item.VideoID,
			ChannelName: item.ChannelName,
			UploadDate:  item.UploadDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := s.scenes.InsertMany(newScenes); err != nil {
		return Result{}, err
	}

	total := len(existing) + len(newScenes)
	if _, err := s.playlists.Upsert(userID, models.PlaylistUpsert{
		PlaylistID:  playlistID,
		Title:       meta.Title,
		Description: meta.Description,
		Thumbnail:   s.playlistThumbnail(userID, playlistID, meta, fresh),
		VideoCount:  total,
	}); err != nil {
		return Result{}, err
	}

	log.Printf("[syncer] imported playlist %s for user %s: %d new of %d total", playlistID, userID, len(newScenes), total)
	return Result{
		PlaylistID:    playlistID,
		PlaylistTitle: meta.Title,
		AddedCount:    len(newScenes),
		TotalCount:    total,
	}, nil
}

// basicImport records the playlist without fetching anything. Used when the
// user has not configured an API key yet.
func (s *Service) basicImport(userID, playlistID string) (Result, error) {
	title := "Playlist: " + playlistID
	if existing, err := s.playlists.Get(userID, playlistID); err == nil {
		title = existing.Title
	}

	record, err := s.playlists.Upsert(userID, models.PlaylistUpsert{
		PlaylistID: playlistID,
		Title:      title,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		PlaylistID:    playlistID,
		PlaylistTitle: record.Title,
		AddedCount:    0,
		TotalCount:    record.VideoCount,
	}, nil
}

// fetchAllItems pages through the playlist. The cap is enforced while
// fetching so an oversized playlist fails before anything is persisted.
func (s *Service) fetchAllItems(ctx context.Context, apiKey, playlistID string) ([]models.PlaylistItem, error) {
	var items []models.PlaylistItem
	pageToken := ""
	for {
		page, err := s.client.FetchPlaylistPage(ctx, apiKey, playlistID, s.pageSize, pageToken)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if len(items) > s.maxItems {
			return nil, fmt.Errorf("%w: %d items, limit %d", ErrPlaylistTooLarge, len(items), s.maxItems)
		}
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

// playlistThumbnail picks the stored thumbnail: provider metadata first, then
// the first newly imported item, then whatever was stored before.
func (s *Service) playlistThumbnail(userID, playlistID string, meta models.PlaylistMetadata, fresh []models.PlaylistItem) string {
	if meta.Thumbnail != "" {
		return meta.Thumbnail
	}
	for _, item := range fresh {
		if item.Thumbnail != "" {
			return item.Thumbnail
		}
	}
	if existing, err := s.playlists.Get(userID, playlistID); err == nil {
		return existing.Thumbnail
	}
	return ""
}

// DeletePlaylist removes the playlist record and every scene imported from
// it. Returns the number of scenes removed.
func (s *Service) DeletePlaylist(userID, playlistID string) (int, error) {
	removed, err := s.scenes.DeleteByPlaylist(userID, playlistID)
	if err != nil {
		return 0, err
	}
	if err := s.playlists.Delete(userID, playlistID); err != nil && !errors.Is(err, playlists.ErrNotFound) {
		return removed, err
	}
	return removed, nil
}
