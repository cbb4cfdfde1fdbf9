package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Server.Port != 7900 {
		t.Errorf("unexpected default port %d", s.Server.Port)
	}
	if s.YouTube.PageSize != 50 || s.YouTube.MaxPlaylistItems != 500 || s.YouTube.BatchPauseMillis != 100 {
		t.Errorf("unexpected youtube defaults: %+v", s.YouTube)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file to be written: %v", err)
	}
}

func TestLoadMigratesLegacyStorageSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	legacy := `{"server":{"host":"0.0.0.0","port":8000},"storage":{"path":"data/old.db"}}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Database.Path != "data/old.db" {
		t.Errorf("expected storage path to migrate, got %q", s.Database.Path)
	}
	if s.Server.Port != 8000 {
		t.Errorf("expected port to survive migration, got %d", s.Server.Port)
	}
}

func TestLoadBackfillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	partial := `{"server":{"host":"127.0.0.1","port":9000},"youtube":{"pageSize":500}}`
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Database.Path == "" || s.Cache.Directory == "" {
		t.Errorf("expected backfilled paths, got %+v", s)
	}
	// Out-of-range page sizes clamp to the provider limit.
	if s.YouTube.PageSize != 50 {
		t.Errorf("expected page size 50, got %d", s.YouTube.PageSize)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManager(path)

	s := DefaultSettings()
	s.Server.PIN = "123456"
	s.YouTube.MaxPlaylistItems = 200
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.PIN != "123456" || loaded.YouTube.MaxPlaylistItems != 200 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}
