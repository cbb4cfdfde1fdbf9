// Package transfer serializes a scene collection for backup and re-imports
// exported snapshots under merge or replace semantics.
package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"scenevault/models"
	"scenevault/services/scenes"
)

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrUnknownMode    = errors.New("unknown import mode")
	// ErrInvalidPayload rejects imports that are not a recognizable
	// collection of scene records.
	ErrInvalidPayload = errors.New("payload is not a scene collection")
)

// Format selects the export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// Mode selects how an import treats the existing collection.
type Mode string

const (
	// ModeMerge inserts every parsed scene alongside the current collection.
	ModeMerge Mode = "merge"
	// ModeReplace deletes the current collection first.
	ModeReplace Mode = "replace"
)

// Document is the structured export envelope. Only this format round-trips
// through Import; CSV and HTML are one-way.
type Document struct {
	ExportedAt time.Time      `json:"exported_at"`
	Count      int            `json:"count"`
	Scenes     []models.Scene `json:"scenes"`
}

// Export is the outcome of one export call.
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ImportSummary reports an applied import.
type ImportSummary struct {
	Imported int `json:"imported"`
	Removed  int `json:"removed"`
}

// Service reads and writes collection snapshots.
type Service struct {
	scenes *scenes.Service
	now    func() time.Time
}

func NewService(sc *scenes.Service) *Service {
	return &Service{scenes: sc, now: time.Now}
}

// Export serializes the user's scenes. ids selects a subset; nil exports the
// whole collection.
func (s *Service) Export(userID string, format Format, ids []string) (Export, error) {
	if strings.TrimSpace(userID) == "" {
		return Export{}, ErrUserIDRequired
	}

	all, err := s.scenes.List(userID)
	if err != nil {
		return Export{}, err
	}
	subset := selectScenes(all, ids)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case FormatJSON:
		data, err = s.exportJSON(subset)
		contentType = "application/json"
	case FormatCSV:
		data, err = exportCSV(subset)
		contentType = "text/csv"
	case FormatHTML:
		data, err = exportHTML(subset)
		contentType = "text/html"
	default:
		return Export{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Export{}, err
	}

	return Export{
		Data:        data,
		Filename:    s.Filename(format),
		ContentType: contentType,
	}, nil
}

// Filename derives the deterministic download name for a format and today's
// date.
func (s *Service) Filename(format Format) string {
	return fmt.Sprintf("scenevault-export-%s-%s.%s", format, s.now().UTC().Format("2006-01-02"), format)
}

func selectScenes(all []models.Scene, ids []string) []models.Scene {
	if len(ids) == 0 {
		return all
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	subset := make([]models.Scene, 0, len(ids))
	for _, scene := range all {
		if _, ok := wanted[scene.ID]; ok {
			subset = append(subset, scene)
		}
	}
	return subset
}

func (s *Service) exportJSON(subset []models.Scene) ([]byte, error) {
	doc := Document{
		ExportedAt: s.now().UTC(),
		Count:      len(subset),
		Scenes:     subset,
	}
	return json.MarshalIndent(doc, "", "  ")
}

var csvHeader = []string{
	"title", "platform", "category", "url", "thumbnail", "timestamp", "notes",
	"status", "source_type", "playlist_id", "video_id", "channel_name",
	"upload_date", "created_at", "updated_at",
}

func exportCSV(subset []models.Scene) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, scene := range subset {
		record := []string{
			scene.Title, string(scene.Platform), string(scene.Category),
			scene.URL, scene.Thumbnail, scene.Timestamp, scene.Notes,
			string(scene.Status), string(scene.SourceType), scene.PlaylistID,
			scene.VideoID, scene.ChannelName, scene.UploadDate,
			scene.CreatedAt.UTC().Format(time.RFC3339),
			scene.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var htmlTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>SceneVault Export</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; vertical-align: top; }
img { max-width: 120px; }
</style>
</head>
<body>
<h1>SceneVault Export</h1>
<p>{{len .Scenes}} scenes, exported {{.ExportedAt.Format "2006-01-02"}}</p>
<table>
<tr><th>Thumbnail</th><th>Title</th><th>Platform</th><th>Category</th><th>Status</th><th>Notes</th><th>Link</th></tr>
{{range .Scenes}}<tr>
<td>{{if .Thumbnail}}<img src="{{.Thumbnail}}" alt="">{{end}}</td>
<td>{{.Title}}</td>
<td>{{.Platform}}</td>
<td>{{.Category}}</td>
<td>{{.Status}}</td>
<td>{{.Notes}}</td>
<td>{{if .URL}}<a href="{{.URL}}">open</a>{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

func exportHTML(subset []models.Scene) ([]byte, error) {
	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, Document{
		ExportedAt: time.Now().UTC(),
		Count:      len(subset),
		Scenes:     subset,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseImport decodes a structured export. Both the envelope and a bare
// scene array are accepted.
func ParseImport(data []byte) ([]models.Scene, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err == nil && doc.Scenes != nil {
		return validateScenes(doc.Scenes)
	}

	var bare []models.Scene
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return validateScenes(bare)
}

func validateScenes(parsed []models.Scene) ([]models.Scene, error) {
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: no scenes found", ErrInvalidPayload)
	}
	for i := range parsed {
		scene := &parsed[i]
		if strings.TrimSpace(scene.Title) == "" {
			return nil, fmt.Errorf("%w: record %d has no title", ErrInvalidPayload, i+1)
		}
		if !scene.Platform.Valid() {
			return nil, fmt.Errorf("%w: record %d has unknown platform %q", ErrInvalidPayload, i+1, scene.Platform)
		}
		if !scene.Category.Valid() {
			return nil, fmt.Errorf("%w: record %d has unknown category %q", ErrInvalidPayload, i+1, scene.Category)
		}
		scene.Status = models.NormalizeStatus(string(scene.Status))
		// Records that claim playlist provenance without the data to back it
		// up are downgraded to manual entries.
		if scene.SourceType == models.SourceYouTubePlaylist &&
			(scene.Platform != models.PlatformYouTube || scene.PlaylistID == "") {
			scene.SourceType = models.SourceManual
			scene.PlaylistID = ""
		}
		if scene.SourceType != models.SourceYouTubePlaylist {
			scene.SourceType = models.SourceManual
		}
	}
	return parsed, nil
}

// Import applies an exported snapshot to the user's collection. Every parsed
// scene is inserted as a new record with a fresh id and current timestamps.
func (s *Service) Import(userID string, data []byte, mode Mode) (ImportSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ImportSummary{}, ErrUserIDRequired
	}
	if mode != ModeMerge && mode != ModeReplace {
		return ImportSummary{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	parsed, err := ParseImport(data)
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	if mode == ModeReplace {
		removed, err := s.scenes.DeleteAll(userID)
		if err != nil {
			return ImportSummary{}, err
		}
		summary.Removed = removed
	}

	now := s.now().UTC()
	fresh := make([]models.Scene, 0, len(parsed))
	for _, scene := range parsed {
		scene.ID = uuid.NewString()
		scene.UserID = userID
		scene.CreatedAt = now
		scene.UpdatedAt = now
		fresh = append(fresh, scene)
	}
	if err := s.scenes.InsertMany(fresh); err != nil {
		return summary, err
	}
	summary.Imported = len(fresh)
	return summary, nil
}
