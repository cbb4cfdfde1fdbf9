package playlists

import (
	"path/filepath"
	"testing"
	"time"

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

func TestUpsertCreatesThenUpdates(t *testing.T) {
	svc := newService(t)

	created, err := svc.Upsert("u1", models.PlaylistUpsert{
		PlaylistID: "PLabc",
		Title:      "First Title",
		Thumbnail:  "https://img/1.jpg",
		VideoCount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "First Title", created.Title)
	assert.Equal(t, 10, created.VideoCount)
	assert.False(t, created.ImportedAt.IsZero())

	time.Sleep(10 * time.Millisecond)

	updated, err := svc.Upsert("u1", models.PlaylistUpsert{
		PlaylistID: "PLabc",
		Title:      "Second Title",
		Thumbnail:  "https://img/2.jpg",
		VideoCount: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "conflict upsert must not create a second row")
	assert.Equal(t, "Second Title", updated.Title)
	assert.Equal(t, 12, updated.VideoCount)
	// Import time is set once; only the update time moves.
	assert.Equal(t, created.ImportedAt.Unix(), updated.ImportedAt.Unix())
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	all, err := svc.List("u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertIsScopedPerUser(t *testing.T) {
	svc := newService(t)

	_, err := svc.Upsert("u1", models.PlaylistUpsert{PlaylistID: "PLabc", Title: "Mine"})
	require.NoError(t, err)
	_, err = svc.Upsert("u2", models.PlaylistUpsert{PlaylistID: "PLabc", Title: "Theirs"})
	require.NoError(t, err)

	mine, err := svc.Get("u1", "PLabc")
	require.NoError(t, err)
	assert.Equal(t, "Mine", mine.Title)

	theirs, err := svc.Get("u2", "PLabc")
	require.NoError(t, err)
	assert.Equal(t, "Theirs", theirs.Title)
}

func TestRename(t *testing.T) {
	svc := newService(t)
	_, err := svc.Upsert("u1", models.PlaylistUpsert{PlaylistID: "PLabc", Title: "Old"})
	require.NoError(t, err)

	renamed, err := svc.Rename("u1", "PLabc", "  New Name  ")
	require.NoError(t, err)
	assert.Equal(t, "New Name", renamed.Title)

	_, err = svc.Rename("u1", "PLmissing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Rename("u1", "PLabc", "   ")
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	_, err := svc.Upsert("u1", models.PlaylistUpsert{PlaylistID: "PLabc", Title: "T"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete("u1", "PLabc"))
	assert.ErrorIs(t, svc.Delete("u1", "PLabc"), ErrNotFound)

	_, err = svc.Get("u1", "PLabc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidation(t *testing.T) {
	svc := newService(t)

	_, err := svc.List("")
	assert.ErrorIs(t, err, ErrUserIDRequired)

	_, err = svc.Upsert("u1", models.PlaylistUpsert{})
	assert.ErrorIs(t, err, ErrPlaylistIDRequired)
}
