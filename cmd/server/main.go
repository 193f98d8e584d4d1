// Package main provides the SAGE assistant server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sagecampus/sage-assistant-go/internal/assistant"
	"github.com/sagecampus/sage-assistant-go/internal/buildinfo"
	"github.com/sagecampus/sage-assistant-go/internal/config"
	"github.com/sagecampus/sage-assistant-go/internal/genai"
	"github.com/sagecampus/sage-assistant-go/internal/lang"
	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/metrics"
	"github.com/sagecampus/sage-assistant-go/internal/rag"
	"github.com/sagecampus/sage-assistant-go/internal/ratelimit"
	"github.com/sagecampus/sage-assistant-go/internal/sentry"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log.WithField("version", buildinfo.Short()).Info("Starting SAGE assistant server")

	// Initialize Sentry error tracking (no-op when DSN is empty)
	if err := sentry.Initialize(sentry.Config{
		DSN:        cfg.SentryDSN,
		Release:    buildinfo.Short(),
		SampleRate: cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without error tracking")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create vector database for semantic search (optional - requires Gemini API key)
	vectorDB, err := rag.NewVectorDB(cfg.ChromemPath(), cfg.GeminiAPIKey, log)
	if err != nil {
		log.WithError(err).Warn("Failed to create vector database, semantic search disabled")
		vectorDB = nil
	}
	if vectorDB != nil {
		if err := vectorDB.Initialize(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to initialize vector store, semantic search disabled")
			vectorDB = nil
		}
	}

	// Index the catalog into the vector store when collections are empty
	if vectorDB != nil {
		indexCatalog(context.Background(), db, vectorDB, log)
	}

	// BM25 keyword index backs course search when semantic search is off
	courseIndex := rag.NewCourseIndex(log)
	courses, err := db.AllCourses(context.Background())
	if err != nil {
		log.WithError(err).Warn("Failed to load courses for keyword index")
	} else if err := courseIndex.Initialize(courses); err != nil {
		log.WithError(err).Warn("Failed to initialize keyword index")
	} else {
		log.WithField("courses", courseIndex.Count()).Info("Keyword course index initialized")
	}

	retriever := rag.NewRetriever(vectorDB, db, courseIndex, m, log, rag.RetrieverConfig{
		CourseTopK: cfg.CourseTopK,
		VenueTopK:  cfg.VenueTopK,
		EventTopK:  cfg.EventTopK,
	})

	// Groq completion client
	completion := genai.NewCompletionClient(cfg.GroqAPIKey, cfg.GroqModel)
	if completion.IsEnabled() {
		completion.SetUsageRecorder(tokenRecorder{metrics: m})
		log.WithField("model", completion.Model()).Info("Completion client created")
	} else {
		log.Warn("Groq API key not configured, chat will return apologies")
	}

	orchestrator := assistant.New(completion, retriever, lang.NewDetector(), m, log, assistant.Config{
		AcademicTemperature:   cfg.AcademicTemperature,
		SocialTemperature:     cfg.SocialTemperature,
		StreamingTemperature:  cfg.StreamingTemperature,
		MaxTokens:             cfg.MaxCompletionTokens,
		TopP:                  cfg.TopP,
		PromptHistoryTurns:    cfg.PromptHistoryTurns,
		ExpansionHistoryTurns: cfg.ExpansionHistoryTurns,
	})

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	srv := &handlers{
		db:             db,
		orchestrator:   orchestrator,
		metrics:        m,
		logger:         log.WithModule("http"),
		historyTurns:   cfg.PromptHistoryTurns,
		requestTimeout: cfg.RequestTimeout,
	}
	limiter := ratelimit.NewPerClientLimiter(ratelimit.PerClientConfig{
		RequestsPerMinute: cfg.ChatRatePerMinute,
		Burst:             cfg.ChatRateBurst,
	})
	limiter.OnDrop(m.RateLimitDropsTotal.Inc)
	defer limiter.Stop()

	setupRoutes(router, srv, db, vectorDB, limiter, registry, cfg)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Write timeout must cover a full streaming completion.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}

// indexCatalog embeds catalog rows into their collections on first boot.
// Collections that already hold documents are left untouched since chromem
// persists embeddings on disk.
func indexCatalog(ctx context.Context, db *storage.DB, vectorDB *rag.VectorDB, log *logger.Logger) {
	if vectorDB.Count(rag.CourseCollection) == 0 {
		courses, err := db.AllCourses(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to load courses for indexing")
		} else if err := vectorDB.IndexCourses(ctx, courses); err != nil {
			log.WithError(err).Warn("Failed to index courses")
		}
	}

	if vectorDB.Count(rag.DiningCollection) == 0 && vectorDB.Count(rag.EntertainmentCollection) == 0 {
		venues, err := db.AllVenues(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to load venues for indexing")
		} else {
			dining, entertainment := splitVenues(venues)
			if err := vectorDB.IndexVenues(ctx, rag.DiningCollection, dining); err != nil {
				log.WithError(err).Warn("Failed to index dining venues")
			}
			if err := vectorDB.IndexVenues(ctx, rag.EntertainmentCollection, entertainment); err != nil {
				log.WithError(err).Warn("Failed to index entertainment venues")
			}
		}
	}

	if vectorDB.Count(rag.EventCollection) == 0 {
		events, err := db.AllEvents(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to load events for indexing")
		} else if err := vectorDB.IndexEvents(ctx, events); err != nil {
			log.WithError(err).Warn("Failed to index events")
		}
	}
}

// splitVenues separates catalog venues into the dining and entertainment
// collections by category.
func splitVenues(venues []*storage.Venue) (dining, entertainment []*storage.Venue) {
	diningCategories := map[string]bool{
		"restaurant":     true,
		"cafe":           true,
		"dessert_shop":   true,
		"cafeteria":      true,
		"dining_drinking": true,
	}
	for _, venue := range venues {
		if diningCategories[venue.Category] {
			dining = append(dining, venue)
		} else {
			entertainment = append(entertainment, venue)
		}
	}
	return dining, entertainment
}

// tokenRecorder feeds completion token usage into Prometheus.
type tokenRecorder struct {
	metrics *metrics.Metrics
}

func (r tokenRecorder) RecordCompletionTokens(usage genai.TokenUsage) {
	r.metrics.CompletionTokensTotal.WithLabelValues("input").Add(float64(usage.Input))
	r.metrics.CompletionTokensTotal.WithLabelValues("output").Add(float64(usage.Output))
}
