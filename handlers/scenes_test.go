package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"scenevault/internal/database"
	"scenevault/models"
	"scenevault/services/scenes"
)

func newScenesHandler(t *testing.T) (*ScenesHandler, *scenes.Service) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := scenes.NewService(db)
	return NewScenesHandler(svc, nil), svc
}

func TestCreateAndListScenes(t *testing.T) {
	handler, _ := newScenesHandler(t)

	body := bytes.NewBufferString(`{"title":"My Scene","platform":"Zee5","category":"F/M","status":"available"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scenes", body)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Scene
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" || created.Title != "My Scene" {
		t.Errorf("unexpected scene: %+v", created)
	}

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/scenes", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed []models.Scene
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 scene, got %d", len(listed))
	}
}

func TestCreateSceneValidationMapsTo400(t *testing.T) {
	handler, _ := newScenesHandler(t)

	body := bytes.NewBufferString(`{"title":"","platform":"Zee5","category":"F/M"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/scenes", body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetSceneNotFoundMapsTo404(t *testing.T) {
	handler, _ := newScenesHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/scenes/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"sceneID": "missing"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestScenesAreScopedByUserHeader(t *testing.T) {
	handler, svc := newScenesHandler(t)

	_, err := svc.Create("alice", models.SceneUpsert{
		Title: "Hers", Platform: models.PlatformOther, Category: models.CategoryFF,
		Status: models.StatusAvailable,
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/scenes", nil)
	req.Header.Set("X-User-ID", "bob")
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	var listed []models.Scene
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected bob to see no scenes, got %d", len(listed))
	}
}

func TestBulkCategory(t *testing.T) {
	handler, svc := newScenesHandler(t)

	scene, err := svc.Create(models.DefaultUserID, models.SceneUpsert{
		Title: "One", Platform: models.PlatformOther, Category: models.CategoryFM,
		Status: models.StatusAvailable,
	})
	if err != nil {
		t.Fatal(err)
	}

	payload, _ := json.Marshal(map[string]any{"ids": []string{scene.ID}, "category": "M/M"})
	rec := httptest.NewRecorder()
	handler.BulkCategory(rec, httptest.NewRequest(http.MethodPost, "/api/scenes/bulk/category", bytes.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, err := svc.Get(models.DefaultUserID, scene.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Category != models.CategoryMM {
		t.Errorf("expected M/M, got %s", updated.Category)
	}
}

func TestBulkRequiresIDs(t *testing.T) {
	handler, _ := newScenesHandler(t)

	rec := httptest.NewRecorder()
	handler.BulkDelete(rec, httptest.NewRequest(http.MethodPost, "/api/scenes/bulk/delete", bytes.NewBufferString(`{"ids":[]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler, svc := newScenesHandler(t)

	for _, status := range []models.Status{models.StatusAvailable, models.StatusUnavailable} {
		if _, err := svc.Create(models.DefaultUserID, models.SceneUpsert{
			Title: "S", Platform: models.PlatformYouTube, Category: models.CategoryFM, Status: status,
		}); err != nil {
			t.Fatal(err)
		}
	}

	rec := httptest.NewRecorder()
	handler.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/scenes/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats models.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.Available != 1 || stats.Unavailable != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
