// Package youtube talks to the YouTube Data API v3. The per-user API key is
// passed on every call; the client itself holds only transport state.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"scenevault/models"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Error codes surfaced by the Data API. Handlers map these onto HTTP
// statuses; the reconciler stores QUOTA_EXCEEDED and INVALID_API_KEY on
// per-video results.
const (
	CodeInvalidAPIKey    = "INVALID_API_KEY"
	CodeQuotaExceeded    = "QUOTA_EXCEEDED"
	CodePlaylistNotFound = "PLAYLIST_NOT_FOUND"
	CodeNetworkError     = "NETWORK_ERROR"
)

var ErrAPIKeyRequired = errors.New("youtube api key is required")

// APIError is a classified Data API failure.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode extracts the classification from err, or NETWORK_ERROR when the
// failure never reached the API.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeNetworkError
}

// Client fetches playlists and video statuses from the Data API.
type Client struct {
	baseURL string
	httpc   *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewClient builds a Data API client. baseURL overrides the Google endpoint
// for tests; pass "" for production.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpc:       httpc,
		minInterval: 20 * time.Millisecond,
	}
}

// doGET performs a throttled GET against one API resource, retrying network
// and server-side failures. API-level failures (4xx) are classified and never
// retried.
func (c *Client) doGET(ctx context.Context, resource string, query url.Values, v any) error {
	endpoint := c.baseURL + "/" + resource + "?" + query.Encode()

	err := retry.Do(
		func() error {
			c.throttleMu.Lock()
			since := time.Since(c.lastRequest)
			if since < c.minInterval {
				time.Sleep(c.minInterval - since)
			}
			c.lastRequest = time.Now()
			c.throttleMu.Unlock()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				log.Printf("[youtube] http error: %v", err)
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				log.Printf("[youtube] server error: status %d", resp.StatusCode)
				return fmt.Errorf("youtube request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(classifyAPIError(resp))
			}

			return json.NewDecoder(resp.Body).Decode(v)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &APIError{Code: CodeNetworkError, Message: err.Error()}
}

// classifyAPIError maps a Data API error body onto an APIError code.
func classifyAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	reason := ""
	if len(payload.Error.Errors) > 0 {
		reason = payload.Error.Errors[0].Reason
	}
	message := payload.Error.Message
	if message == "" {
		message = resp.Status
	}

	apiErr := &APIError{Message: message, HTTPStatus: resp.StatusCode}
	switch {
	case reason == "quotaExceeded" || reason == "dailyLimitExceeded" || reason == "rateLimitExceeded":
		apiErr.Code = CodeQuotaExceeded
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized,
		reason == "keyInvalid" || reason == "badRequest":
		apiErr.Code = CodeInvalidAPIKey
	case resp.StatusCode == http.StatusNotFound || reason == "playlistNotFound":
		apiErr.Code = CodePlaylistNotFound
	default:
		apiErr.Code = CodeNetworkError
	}
	return apiErr
}

type playlistListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				Medium  struct{ URL string `json:"url"` } `json:"medium"`
				Default struct{ URL string `json:"url"` } `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			ItemCount int `json:"itemCount"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// FetchPlaylistMetadata returns the playlist's title, description, thumbnail
// and provider-reported size.
func (c *Client) FetchPlaylistMetadata(ctx context.Context, apiKey, playlistID string) (models.PlaylistMetadata, error) {
	if strings.TrimSpace(apiKey) == "" {
		return models.PlaylistMetadata{}, ErrAPIKeyRequired
	}

	query := url.Values{}
	query.Set("part", "snippet,contentDetails")
	query.Set("id", playlistID)
	query.Set("key", apiKey)

	var resp playlistListResponse
	if err := c.doGET(ctx, "playlists", query, &resp); err != nil {
		return models.PlaylistMetadata{}, err
	}
	if len(resp.Items) == 0 {
		return models.PlaylistMetadata{}, &APIError{
			Code:       CodePlaylistNotFound,
			Message:    "playlist not found: " + playlistID,
			HTTPStatus: http.StatusNotFound,
		}
	}

	item := resp.Items[0]
	thumb := item.Snippet.Thumbnails.Medium.URL
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Default.URL
	}
	return models.PlaylistMetadata{
		PlaylistID:  item.ID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Thumbnail:   thumb,
		VideoCount:  item.ContentDetails.ItemCount,
	}, nil
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Medium  struct{ URL string `json:"url"` } `json:"medium"`
				Default struct{ URL string `json:"url"` } `json:"default"`
			} `json:"thumbnails"`
			VideoOwnerChannelTitle string `json:"videoOwnerChannelTitle"`
			ChannelTitle           string `json:"channelTitle"`
			ResourceID             struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

// FetchPlaylistPage returns one page of playlist items. maxResults is capped
// at the provider limit of 50; pass the previous page's NextPageToken to
// continue, or "" for the first page.
func (c *Client) FetchPlaylistPage(ctx context.Context, apiKey, playlistID string, maxResults int, pageToken string) (models.PlaylistPage, error) {
	if strings.TrimSpace(apiKey) == "" {
		return models.PlaylistPage{}, ErrAPIKeyRequired
	}
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("playlistId", playlistID)
	query.Set("maxResults", fmt.Sprintf("%d", maxResults))
	query.Set("key", apiKey)
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	var resp playlistItemsResponse
	if err := c.doGET(ctx, "playlistItems", query, &resp); err != nil {
		return models.PlaylistPage{}, err
	}

	page := models.PlaylistPage{
		Items:         make([]models.PlaylistItem, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
		TotalResults:  resp.PageInfo.TotalResults,
	}
	for _, item := range resp.Items {
		videoID := item.Snippet.ResourceID.VideoID
		if videoID == "" {
			continue
		}
		thumb := item.Snippet.Thumbnails.Medium.URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails.Default.URL
		}
		channel := item.Snippet.VideoOwnerChannelTitle
		if channel == "" {
			channel = item.Snippet.ChannelTitle
		}
		page.Items = append(page.Items, models.PlaylistItem{
			Title:       item.Snippet.Title,
			VideoID:     videoID,
			Thumbnail:   thumb,
			ChannelName: channel,
			UploadDate:  item.Snippet.PublishedAt,
			URL:         "https://www.youtube.com/watch?v=" + videoID,
		})
	}
	return page, nil
}

type videoListResponse struct {
	Items []struct {
		ID     string `json:"id"`
		Status struct {
			UploadStatus  string `json:"uploadStatus"`
			PrivacyStatus string `json:"privacyStatus"`
		} `json:"status"`
	} `json:"items"`
}

// FetchVideoStatuses classifies up to 50 video ids in one call. Ids absent
// from the response are videos the provider no longer serves.
func (c *Client) FetchVideoStatuses(ctx context.Context, apiKey string, videoIDs []string) (map[string]models.VideoAvailability, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	if len(videoIDs) == 0 {
		return map[string]models.VideoAvailability{}, nil
	}
	if len(videoIDs) > 50 {
		return nil, fmt.Errorf("at most 50 video ids per call, got %d", len(videoIDs))
	}

	query := url.Values{}
	query.Set("part", "status")
	query.Set("id", strings.Join(videoIDs, ","))
	query.Set("key", apiKey)

	var resp videoListResponse
	if err := c.doGET(ctx, "videos", query, &resp); err != nil {
		return nil, err
	}

	statuses := make(map[string]models.VideoAvailability, len(videoIDs))
	for _, id := range videoIDs {
		statuses[id] = models.VideoUnavailable
	}
	for _, item := range resp.Items {
		switch {
		case item.Status.PrivacyStatus == "private":
			statuses[item.ID] = models.VideoPrivate
		case item.Status.UploadStatus == "processed" || item.Status.UploadStatus == "uploaded":
			statuses[item.ID] = models.VideoAvailable
		default:
			statuses[item.ID] = models.VideoUnavailable
		}
	}
	return statuses, nil
}
