package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/camden-git/castingvitrine/cms"
	"github.com/camden-git/castingvitrine/config"
	"github.com/camden-git/castingvitrine/database"
	"github.com/camden-git/castingvitrine/handlers"
	"github.com/camden-git/castingvitrine/layout"
	"github.com/camden-git/castingvitrine/media"
	"github.com/camden-git/castingvitrine/metrics"
	"github.com/camden-git/castingvitrine/models"
	"github.com/camden-git/castingvitrine/repository"
	"github.com/camden-git/castingvitrine/seed"
	"github.com/camden-git/castingvitrine/session"
	"github.com/camden-git/castingvitrine/store"
	"github.com/camden-git/castingvitrine/workers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

const (
	sessionSweepInterval = time.Minute
	startupLoadTimeout   = 2 * time.Minute
	facetReaderConns     = 4
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.PlaceholdersPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	gormDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	loader := &store.Loader{Cache: repository.NewTalentRepository(gormDB)}
	switch cfg.TalentSource {
	case config.SourceCMS:
		log.Printf("Loading talents from CMS collection '%s' at %s", cfg.CMSCollection, cfg.CMSBaseURL)
		loader.Source = cms.NewClient(cfg.CMSBaseURL, cfg.CMSCollection, cfg.CMSAPIToken, cfg.CMSPageSize, cfg.CMSTimeout)
		loader.FailOpen = true
	default:
		log.Printf("Loading bundled talent records")
		loader.Source = store.SourceFunc(func(context.Context) ([]models.Talent, error) { return seed.Talents() })
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), startupLoadTimeout)
	catalog, err := loader.Load(loadCtx)
	cancelLoad()
	if err != nil {
		log.Fatalf("FATAL: Failed to load talents: %v", err)
	}

	readerDB, err := database.InitReaderDB(cfg.DatabasePath, facetReaderConns)
	if err != nil {
		log.Printf("Warning: facet counts will be computed in memory: %v", err)
	} else {
		defer readerDB.Close()
	}

	metricsManager := metrics.NewManager()
	metricsManager.SetTalentsLoaded(cfg.TalentSource, catalog.Len())

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypePlaceholder: cfg.PlaceholdersSubDir,
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	placeholderOpts := media.DefaultPlaceholderOptions()
	placeholderOpts.CacheLimit = cfg.PlaceholderCacheLimit
	mediaProcessor, err := media.NewProcessor(mediaStore, placeholderOpts)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize placeholder renderer: %v", err)
	}

	log.Printf("Initializing placeholder warmer pool (Workers: %d, Queue Size: %d)...", cfg.NumPlaceholderWorkers, cfg.PlaceholderQueueSize)
	warmer := workers.NewPlaceholderWarmer(mediaProcessor, metricsManager, cfg.PlaceholderQueueSize, cfg.NumPlaceholderWorkers)
	defer warmer.Stop()
	log.Printf("Queued %d placeholder renders", warmer.QueueForTalents(catalog.All()))

	sizer := cfg.PageSizer()
	machine := layout.NewDisplayMachine(cfg.DisplayThresholds())
	sessions := session.NewManager(catalog, session.Options{
		Sizer:           sizer,
		Machine:         machine,
		Placeholder:     media.PlaceholderURL,
		DefaultPageSize: cfg.DefaultPageSize,
		TTL:             cfg.SessionTTL,
		Observer:        metricsManager,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.RunJanitor(ctx, sessionSweepInterval)

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing placeholders in: %s", cfg.PlaceholdersPath)
	log.Printf("Page size mode: %s", cfg.PageSizeMode)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)
	r.Use(metricsManager.Middleware)

	talentHandler := &handlers.TalentHandler{
		Catalog:         catalog,
		Sizer:           sizer,
		Breakpoints:     layout.Breakpoints{Small: cfg.BreakpointSmall, Large: cfg.BreakpointLarge},
		Machine:         machine,
		DefaultPageSize: cfg.DefaultPageSize,
		DB:              readerDB,
		Metrics:         metricsManager,
	}
	sessionHandler := &handlers.SessionHandler{Sessions: sessions}
	placeholderHandler := &handlers.PlaceholderHandler{Processor: mediaProcessor, Store: mediaStore, Metrics: metricsManager}
	healthHandler := &handlers.HealthHandler{Catalog: catalog, Source: cfg.TalentSource, Started: time.Now()}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Route("/talents", func(r chi.Router) {
			r.Get("/", talentHandler.ListTalents)
			r.Get("/{talent_id}", talentHandler.GetTalent)
		})
		r.Get("/filters", talentHandler.FilterOptions)
		r.Get("/layout", talentHandler.Layout)

		r.Route("/sessions", sessionHandler.Routes)

		r.Get("/placeholder/{width}/{height}", placeholderHandler.ServePlaceholder)

		r.Get(fmt.Sprintf("/%s/*", cfg.PlaceholdersSubDir), handlers.AssetServer(mediaStore, cfg.PlaceholdersSubDir))
		log.Printf("Registered placeholder asset server at /api/%s/*", cfg.PlaceholdersSubDir)
	})

	r.Handle("/metrics", metricsManager.Handler())

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during server shutdown: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("FATAL: Server error: %v", err)
	}
}
