package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"scenevault/internal/database"
	"scenevault/models"
	"scenevault/services/prefs"
	"scenevault/services/scenes"
	"scenevault/services/youtube"
)

type fixture struct {
	scenes *scenes.Service
	prefs  *prefs.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	prefsSvc, err := prefs.NewService(dir)
	if err != nil {
		t.Fatalf("prefs service: %v", err)
	}
	return fixture{scenes: scenes.NewService(db), prefs: prefsSvc}
}

func seedScene(t *testing.T, fx fixture, videoID string, source models.SourceType) models.Scene {
	t.Helper()
	now := time.Now().UTC()
	scene := models.Scene{
		ID:         uuid.NewString(),
		UserID:     "u1",
		Title:      "Scene " + videoID,
		Platform:   models.PlatformYouTube,
		Category:   models.CategoryFM,
		Status:     models.StatusAvailable,
		SourceType: source,
		VideoID:    videoID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if source == models.SourceYouTubePlaylist {
		scene.PlaylistID = "PLseed"
	}
	if err := fx.scenes.Insert(scene); err != nil {
		t.Fatal(err)
	}
	return scene
}

// statusServer answers /videos from the given map; ids not present are
// omitted from the response, which the client reads as unavailable.
func statusServer(t *testing.T, statuses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var parts []string
		for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
			privacy, ok := statuses[id]
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf(
				`{"id":%q,"status":{"uploadStatus":"processed","privacyStatus":%q}}`, id, privacy))
		}
		fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(parts, ","))
	}))
}

func newReconciler(fx fixture, providerURL string) *Service {
	client := youtube.NewClient(providerURL, nil)
	return NewService(fx.scenes, fx.prefs, youtube.NewChecker(client, time.Millisecond))
}

func TestRunMarksStatuses(t *testing.T) {
	fx := newFixture(t)
	if err := fx.prefs.SetAPIKey("u1", "key"); err != nil {
		t.Fatal(err)
	}
	ok := seedScene(t, fx, "vid-ok", models.SourceYouTubePlaylist)
	gone := seedScene(t, fx, "vid-gone", models.SourceYouTubePlaylist)
	private := seedScene(t, fx, "vid-private", models.SourceYouTubePlaylist)

	srv := statusServer(t, map[string]string{
		"vid-ok":      "public",
		"vid-private": "private",
	})
	defer srv.Close()

	var calls []Progress
	summary, err := newReconciler(fx, srv.URL).Run(context.Background(), "u1", func(current, total int) {
		calls = append(calls, Progress{Current: current, Total: total})
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Checked != 3 || summary.Available != 1 || summary.Unavailable != 2 || summary.Removed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(calls) != 3 || calls[len(calls)-1] != (Progress{Current: 3, Total: 3}) {
		t.Errorf("unexpected progress sequence: %+v", calls)
	}

	assertStatus(t, fx, ok.ID, models.StatusAvailable)
	assertStatus(t, fx, gone.ID, models.StatusUnavailable)
	// Private never persists as its own state.
	assertStatus(t, fx, private.ID, models.StatusUnavailable)
}

func TestRunRemovePolicyOnlyDeletesPlaylistScenes(t *testing.T) {
	fx := newFixture(t)
	if err := fx.prefs.SetAPIKey("u1", "key"); err != nil {
		t.Fatal(err)
	}
	if err := fx.prefs.Update("u1", models.UserPrefs{
		Filter:                models.DefaultFilterState(),
		YouTubeAPIKey:         "key",
		DeletedPlaylistVideos: models.MissingVideoRemove,
	}); err != nil {
		t.Fatal(err)
	}

	imported := seedScene(t, fx, "vid-gone", models.SourceYouTubePlaylist)
	manual := seedScene(t, fx, "vid-manual-gone", models.SourceManual)

	srv := statusServer(t, map[string]string{})
	defer srv.Close()

	summary, err := newReconciler(fx, srv.URL).Run(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Removed != 1 || summary.Unavailable != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	if _, err := fx.scenes.Get("u1", imported.ID); !errors.Is(err, scenes.ErrNotFound) {
		t.Errorf("expected imported scene removed, got %v", err)
	}
	assertStatus(t, fx, manual.ID, models.StatusUnavailable)
}

func TestRunQuotaFailureLeavesStatusesUntouched(t *testing.T) {
	fx := newFixture(t)
	if err := fx.prefs.SetAPIKey("u1", "key"); err != nil {
		t.Fatal(err)
	}
	scene := seedScene(t, fx, "vid-ok", models.SourceYouTubePlaylist)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"errors":[{"reason":"quotaExceeded"}]}}`)
	}))
	defer srv.Close()

	summary, err := newReconciler(fx, srv.URL).Run(context.Background(), "u1", nil)
	var apiErr *youtube.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != youtube.CodeQuotaExceeded {
		t.Fatalf("expected quota error, got %v", err)
	}
	if summary.Checked != 0 || summary.Skipped != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	assertStatus(t, fx, scene.ID, models.StatusAvailable)
}

func TestRunRequiresAPIKey(t *testing.T) {
	fx := newFixture(t)
	seedScene(t, fx, "vid-ok", models.SourceYouTubePlaylist)

	if _, err := newReconciler(fx, "http://unused.invalid").Run(context.Background(), "u1", nil); !errors.Is(err, ErrAPIKeyRequired) {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestRunWithNothingToCheck(t *testing.T) {
	fx := newFixture(t)
	if err := fx.prefs.SetAPIKey("u1", "key"); err != nil {
		t.Fatal(err)
	}

	if _, err := newReconciler(fx, "http://unused.invalid").Run(context.Background(), "u1", nil); !errors.Is(err, ErrNothingToCheck) {
		t.Fatalf("expected ErrNothingToCheck, got %v", err)
	}
}

func TestCheckOne(t *testing.T) {
	fx := newFixture(t)
	if err := fx.prefs.SetAPIKey("u1", "key"); err != nil {
		t.Fatal(err)
	}
	scene := seedScene(t, fx, "vid-private", models.SourceYouTubePlaylist)

	srv := statusServer(t, map[string]string{"vid-private": "private"})
	defer srv.Close()

	updated, err := newReconciler(fx, srv.URL).CheckOne(context.Background(), "u1", scene.ID)
	if err != nil {
		t.Fatalf("CheckOne: %v", err)
	}
	if updated.Status != models.StatusUnavailable {
		t.Errorf("expected unavailable, got %s", updated.Status)
	}
}

func assertStatus(t *testing.T, fx fixture, sceneID string, want models.Status) {
	t.Helper()
	scene, err := fx.scenes.Get("u1", sceneID)
	if err != nil {
		t.Fatalf("get scene: %v", err)
	}
	if scene.Status != want {
		t.Errorf("scene %s: got status %s, want %s", sceneID, scene.Status, want)
	}
}
