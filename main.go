package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"scenevault/api"
	"scenevault/config"
	"scenevault/handlers"
	"scenevault/internal/database"
	"scenevault/services/playlists"
	"scenevault/services/prefs"
	"scenevault/services/reconcile"
	"scenevault/services/scenes"
	"scenevault/services/scheduler"
	"scenevault/services/syncer"
	"scenevault/services/transfer"
	"scenevault/services/youtube"
	"scenevault/utils"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 SceneVault Backend Starting...")

	configPath := os.Getenv("SCENEVAULT_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Handle PIN generation and legacy API key migration
	settings.Server.APIKey = strings.TrimSpace(settings.Server.APIKey)
	settings.Server.PIN = strings.TrimSpace(settings.Server.PIN)

	pinGenerated := false
	if settings.Server.APIKey != "" && settings.Server.PIN == "" {
		fmt.Println("🔄 Legacy API key detected, generating new 6-digit PIN...")
	}
	if settings.Server.PIN == "" {
		pin, err := utils.GeneratePIN()
		if err != nil {
			log.Fatalf("failed to generate PIN: %v", err)
		}
		settings.Server.PIN = pin
		if err := cfgManager.Save(settings); err != nil {
			log.Fatalf("failed to persist generated PIN: %v", err)
		}
		pinGenerated = true
	}

	fmt.Printf("🔑 SceneVault PIN: %s\n", settings.Server.PIN)
	if pinGenerated {
		fmt.Println("📱 Configure your frontend to use this 6-digit PIN for authentication.")
	}

	// Open the row store
	db, err := database.Open(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Services
	sceneService := scenes.NewService(db)
	playlistService := playlists.NewService(db)
	prefsService, err := prefs.NewService(settings.Cache.Directory)
	if err != nil {
		log.Fatalf("failed to init preferences store: %v", err)
	}

	ytClient := youtube.NewClient(settings.YouTube.BaseURL, nil)
	ytChecker := youtube.NewChecker(ytClient, time.Duration(settings.YouTube.BatchPauseMillis)*time.Millisecond)

	syncService := syncer.NewService(sceneService, playlistService, prefsService, ytClient, settings.YouTube)
	reconcileService := reconcile.NewService(sceneService, prefsService, ytChecker)
	transferService := transfer.NewService(sceneService)
	schedulerService := scheduler.NewService(cfgManager, syncService, reconcileService)

	// Handlers
	scenesHandler := handlers.NewScenesHandler(sceneService, reconcileService)
	playlistsHandler := handlers.NewPlaylistsHandler(playlistService, syncService)
	reconcileHandler := handlers.NewReconcileHandler(reconcileService)
	transferHandler := handlers.NewTransferHandler(transferService)
	prefsHandler := handlers.NewPrefsHandler(prefsService)
	settingsHandler := handlers.NewSettingsHandler(cfgManager)
	tasksHandler := handlers.NewScheduledTasksHandler(cfgManager, schedulerService)

	var r *mux.Router = utils.NewRouter()
	api.Register(r, settings.Server.PIN,
		scenesHandler, playlistsHandler, reconcileHandler,
		transferHandler, prefsHandler, settingsHandler, tasksHandler)

	// Start the background scheduler
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := schedulerService.Start(schedulerCtx); err != nil {
		log.Printf("Warning: scheduler failed to start: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := schedulerService.Stop(shutdownCtx); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	reconcileService.Cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
