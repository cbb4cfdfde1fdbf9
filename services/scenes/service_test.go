package scenes

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenevault/internal/database"
	"scenevault/models"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db)
}

func TestCreateAndGet(t *testing.T) {
	svc := newService(t)

	created, err := svc.Create("u1", models.SceneUpsert{
		Title:    "  Dance Scene  ",
		Platform: models.PlatformJioHotstar,
		Category: models.CategoryMF,
		URL:      "https://example.com/x",
		Notes:    "good one",
		Status:   "private",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dance Scene", created.Title)
	assert.Equal(t, models.SourceManual, created.SourceType)
	// Unknown statuses collapse to unavailable.
	assert.Equal(t, models.StatusUnavailable, created.Status)

	got, err := svc.Get("u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "https://example.com/x", got.URL)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create("u1", models.SceneUpsert{Platform: models.PlatformOther, Category: models.CategoryFM})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Create("u1", models.SceneUpsert{Title: "x", Platform: "Netflix", Category: models.CategoryFM})
	assert.ErrorIs(t, err, ErrInvalidPlatform)

	_, err = svc.Create("u1", models.SceneUpsert{Title: "x", Platform: models.PlatformOther, Category: "Z/Z"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Create("", models.SceneUpsert{Title: "x", Platform: models.PlatformOther, Category: models.CategoryFM})
	assert.ErrorIs(t, err, ErrUserIDRequired)
}

func TestListOrdersNewestFirstAndScopesByUser(t *testing.T) {
	svc := newService(t)

	older := playlistScene("u1", "PL1", "vid1")
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older.UpdatedAt = older.CreatedAt
	require.NoError(t, svc.Insert(older))

	newer := playlistScene("u1", "PL1", "vid2")
	newer.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	newer.UpdatedAt = newer.CreatedAt
	require.NoError(t, svc.Insert(newer))

	require.NoError(t, svc.Insert(playlistScene("u2", "PL9", "vid3")))

	all, err := svc.List("u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "vid2", all[0].VideoID)
	assert.Equal(t, "vid1", all[1].VideoID)
}

func TestInsertEnforcesPlaylistInvariant(t *testing.T) {
	svc := newService(t)

	bad := playlistScene("u1", "", "vid1")
	assert.ErrorIs(t, svc.Insert(bad), ErrPlaylistInvariant)

	wrongPlatform := playlistScene("u1", "PL1", "vid1")
	wrongPlatform.Platform = models.PlatformZee5
	assert.ErrorIs(t, svc.Insert(wrongPlatform), ErrPlaylistInvariant)
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newService(t)
	created, err := svc.Create("u1", models.SceneUpsert{
		Title: "Before", Platform: models.PlatformOther, Category: models.CategoryFM,
		Notes: "keep me", Status: models.StatusAvailable,
	})
	require.NoError(t, err)

	title := "After"
	status := models.StatusUnavailable
	updated, err := svc.Update("u1", created.ID, models.SceneUpdate{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, models.StatusUnavailable, updated.Status)
	assert.Equal(t, "keep me", updated.Notes)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	empty := "  "
	_, err = svc.Update("u1", created.ID, models.SceneUpdate{Title: &empty})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestBulkOperations(t *testing.T) {
	svc := newService(t)
	var ids []string
	for i := 0; i < 3; i++ {
		scene, err := svc.Create("u1", models.SceneUpsert{
			Title: "Scene", Platform: models.PlatformSonyLIV, Category: models.CategoryFM,
			Status: models.StatusAvailable,
		})
		require.NoError(t, err)
		ids = append(ids, scene.ID)
	}

	changed, err := svc.SetCategoryBulk("u1", ids, models.CategoryFF)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	changed, err = svc.SetStatusBulk("u1", ids[:2], models.StatusUnavailable)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	stats, err := svc.Stats("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 2, stats.Unavailable)
	assert.Equal(t, 3, stats.ByCategory[models.CategoryFF])
	assert.Equal(t, 3, stats.ByPlatform[models.PlatformSonyLIV])

	deleted, err := svc.DeleteBulk("u1", append(ids, "missing-id"))
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
}

func TestDeleteByPlaylistScopesOwnerAndPlaylist(t *testing.T) {
	svc := newService(t)
	require.NoError(t, svc.Insert(playlistScene("u1", "PL1", "vid1")))
	require.NoError(t, svc.Insert(playlistScene("u1", "PL1", "vid2")))
	require.NoError(t, svc.Insert(playlistScene("u1", "PL2", "vid3")))
	require.NoError(t, svc.Insert(playlistScene("u2", "PL1", "vid4")))

	removed, err := svc.DeleteByPlaylist("u1", "PL1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	rest, err := svc.List("u1")
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	other, err := svc.List("u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestListCheckable(t *testing.T) {
	svc := newService(t)
	require.NoError(t, svc.Insert(playlistScene("u1", "PL1", "vid1")))

	manual, err := svc.Create("u1", models.SceneUpsert{
		Title: "Manual", Platform: models.PlatformYouTube, Category: models.CategoryFM,
		Status: models.StatusAvailable,
	})
	require.NoError(t, err)
	_ = manual

	checkable, err := svc.ListCheckable("u1")
	require.NoError(t, err)
	require.Len(t, checkable, 1)
	assert.Equal(t, "vid1", checkable[0].VideoID)
}

func TestGetNotFound(t *testing.T) {
	svc := newService(t)
	_, err := svc.Get("u1", "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func playlistScene(userID, playlistID, videoID string) models.Scene {
	now := time.Now().UTC()
	scene := models.Scene{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      "Video " + videoID,
		Platform:   models.PlatformYouTube,
		Category:   models.CategoryFM,
		Status:     models.StatusAvailable,
		SourceType: models.SourceYouTubePlaylist,
		PlaylistID: playlistID,
		VideoID:    videoID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return scene
}
