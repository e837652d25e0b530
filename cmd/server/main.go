package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/adapter/embedding"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/adapter/source"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/handler"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/mcp"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/middleware"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/service"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting IdeaLens AI",
		"port", cfg.Port,
		"embedding_provider", cfg.EmbeddingProvider,
		"embedding_dimension", cfg.EmbeddingDimension,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	docIndex := store.NewDocumentIndex(pgStore)

	// ── Embedding provider (selected by configuration) ──────────────────
	var embedder port.EmbeddingProvider
	switch cfg.EmbeddingProvider {
	case "remote":
		embedder = embedding.NewRemoteProvider(cfg.EmbedEndpoint, cfg.EmbedToken, cfg.EmbeddingDimension)
	default:
		embedder = embedding.NewHashProvider(cfg.EmbeddingDimension)
	}

	// ── External source providers ────────────────────────────────────────
	githubProvider := source.NewGitHubProvider(cfg.GitHubAPIURL, cfg.GitHubToken)
	arxivProvider := source.NewArxivProvider(cfg.ArxivAPIURL)

	// ── Services ─────────────────────────────────────────────────────────
	indexService := service.NewIndexService(pgStore, docIndex, embedder, githubProvider, arxivProvider)

	resultCache := service.NewResultCache(time.Duration(cfg.CacheTTLMinutes) * time.Minute)
	defer resultCache.Close()

	noveltyService := service.NewNoveltyService(pgStore, docIndex, embedder, indexService, resultCache, service.NoveltyOptions{
		TopK:            cfg.TopK,
		WeightInternal:  cfg.WeightInternal,
		WeightCodeRepo:  cfg.WeightCodeRepo,
		WeightPapers:    cfg.WeightPapers,
		HighThreshold:   cfg.HighThreshold,
		MediumThreshold: cfg.MediumThreshold,
		ReindexQuery:    cfg.ReindexQuery,
	})

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Protected Routes ─────────────────────────────────────────────────
	jwtMiddleware := middleware.JWTMiddleware(middleware.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
	})

	api := app.Group("/api/v1", jwtMiddleware)

	noveltyHandler := handler.NewNoveltyHandler(noveltyService)
	noveltyHandler.Register(api)

	archiveHandler := handler.NewArchiveHandler(pgStore)
	archiveHandler.Register(api)

	auditHandler := handler.NewAuditHandler(pgStore)
	auditHandler.Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(noveltyService, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
