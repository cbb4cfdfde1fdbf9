package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"scenevault/config"
	"scenevault/services/scheduler"
)

// ScheduledTasksHandler manages the background task configuration.
type ScheduledTasksHandler struct {
	configManager    *config.Manager
	schedulerService *scheduler.Service
}

func NewScheduledTasksHandler(configManager *config.Manager, schedulerService *scheduler.Service) *ScheduledTasksHandler {
	return &ScheduledTasksHandler{
		configManager:    configManager,
		schedulerService: schedulerService,
	}
}

// ListTasks returns all scheduled tasks with current status.
func (h *ScheduledTasksHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": h.schedulerService.GetTaskStatus(),
	})
}

// CreateTask adds a new scheduled task.
func (h *ScheduledTasksHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type      config.ScheduledTaskType      `json:"type"`
		Name      string                        `json:"name"`
		Frequency config.ScheduledTaskFrequency `json:"frequency"`
		Config    map[string]string             `json:"config"`
		Enabled   bool                          `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Type {
	case config.ScheduledTaskTypePlaylistRefresh:
		if req.Config == nil || req.Config["playlistId"] == "" {
			http.Error(w, "playlist refresh requires playlistId in config", http.StatusBadRequest)
			return
		}
	case config.ScheduledTaskTypeStatusCheck:
	default:
		http.Error(w, "unknown task type", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		req.Name = string(req.Type)
	}
	if req.Frequency == "" {
		req.Frequency = config.ScheduledTaskFrequencyDaily
	}

	task := config.ScheduledTask{
		ID:         uuid.NewString(),
		Type:       req.Type,
		Name:       req.Name,
		Frequency:  req.Frequency,
		Config:     req.Config,
		Enabled:    req.Enabled,
		LastStatus: config.ScheduledTaskStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	settings, err := h.configManager.Load()
	if err != nil {
		http.Error(w, "load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	settings.ScheduledTasks.Tasks = append(settings.ScheduledTasks.Tasks, task)
	if err := h.configManager.Save(settings); err != nil {
		http.Error(w, "save settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask modifies an existing task.
func (h *ScheduledTasksHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]

	var req struct {
		Name      string                        `json:"name"`
		Frequency config.ScheduledTaskFrequency `json:"frequency"`
		Config    map[string]string             `json:"config"`
		Enabled   *bool                         `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.configManager.Load()
	if err != nil {
		http.Error(w, "load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	for i := range settings.ScheduledTasks.Tasks {
		if settings.ScheduledTasks.Tasks[i].ID != taskID {
			continue
		}
		if req.Name != "" {
			settings.ScheduledTasks.Tasks[i].Name = req.Name
		}
		if req.Frequency != "" {
			settings.ScheduledTasks.Tasks[i].Frequency = req.Frequency
		}
		if req.Config != nil {
			settings.ScheduledTasks.Tasks[i].Config = req.Config
		}
		if req.Enabled != nil {
			settings.ScheduledTasks.Tasks[i].Enabled = *req.Enabled
		}
		if err := h.configManager.Save(settings); err != nil {
			http.Error(w, "save settings: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, settings.ScheduledTasks.Tasks[i])
		return
	}

	http.Error(w, "task not found", http.StatusNotFound)
}

// DeleteTask removes a task from the schedule.
func (h *ScheduledTasksHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]

	settings, err := h.configManager.Load()
	if err != nil {
		http.Error(w, "load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	tasks := settings.ScheduledTasks.Tasks
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		settings.ScheduledTasks.Tasks = append(tasks[:i], tasks[i+1:]...)
		if err := h.configManager.Save(settings); err != nil {
			http.Error(w, "save settings: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "task not found", http.StatusNotFound)
}

// RunTask triggers immediate execution.
func (h *ScheduledTasksHandler) RunTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	if err := h.schedulerService.RunTaskNow(taskID); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"started": true})
}

func (h *ScheduledTasksHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
