// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, and security headers.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-trip-backend/internal/ai"
	"github.com/tbourn/go-trip-backend/internal/config"
	"github.com/tbourn/go-trip-backend/internal/http/handlers"
	"github.com/tbourn/go-trip-backend/internal/http/middleware"
	"github.com/tbourn/go-trip-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), body limits, compression, CORS
// and security headers, health and metrics endpoints, and the public API
// under /api.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip compression
//  8. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, aiClient ai.Client, cfg config.Config) {
	// Unmatched methods fall through to NoRoute; clients of the original
	// API expect 404 there, not 405.
	r.HandleMethodNotAllowed = false

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Response compression; plans and journals compress well
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 8) Open CORS posture: the API is key-less and public by contract.
	// Force ACAO: * even for requests without an Origin header (helps tests
	// and simple health checks).
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false, // must remain false with AllowAllOrigins
		MaxAge:           12 * time.Hour,
	}))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Plain-text 404 fallback, kept for client compatibility.
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (optional)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/ai/config
	itinSvc := &services.ItineraryService{
		DB:              db,
		AI:              aiClient,
		PlanModel:       cfg.AI.PlanModel,
		PlanSource:      cfg.PlanSource(),
		GenerateTimeout: cfg.AI.GenerateTimeout,
		TitleLocale:     language.English,
	}
	tripSvc := &services.TripService{DB: db}
	recoSvc := &services.RecoService{DB: db, AI: aiClient, ChatModel: cfg.AI.ChatModel}
	diarySvc := &services.DiaryService{DB: db, AI: aiClient, ChatModel: cfg.AI.ChatModel}
	h := handlers.New(itinSvc, tripSvc, recoSvc, diarySvc)

	// Public API
	api := r.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		// Itinerary lifecycle
		api.POST("/itinerary/generate", h.GenerateItinerary)
		api.POST("/itinerary/save", h.SaveTrip)
		api.GET("/itinerary/load", h.LoadTrip)

		// Trip collection
		api.GET("/trips", h.ListTrips)
		api.POST("/trips/delete", h.DeleteTrip)

		// Recommendation chat
		api.GET("/chat/messages", h.ChatMessages)
		api.POST("/reco/next-destination", h.Recommend)

		// Diary
		api.POST("/diary/summarize", h.SummarizeDay)
	}
}

// limitBody caps the request body size for all endpoints to maxBytes using
// http.MaxBytesReader. Requests exceeding the cap cause downstream body
// reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
