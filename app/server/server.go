package server

import (
	"context"
	"os"

	"rolerag/app/api"
	"rolerag/app/middleware"
	"rolerag/config"
	"rolerag/ingest"
	"rolerag/model"
	"rolerag/rag"
	"rolerag/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	app    *fiber.App
	store  *store.PostgresStore
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("server shutdown failed", zap.Error(err))
		}
	}
	if s.store != nil {
		s.store.Close()
	}
	s.logger.Info("server stopped")
}

// Run wires the process-wide singletons (store, model adapters, pipelines)
// and serves. Any initialization failure is fatal; there is no degraded
// mode with part of the model stack missing.
func (s *Server) Run() {
	ctx := context.Background()

	pool, err := store.NewPostgresStore(ctx, s.cfg.Postgres.ConnString(), s.logger)
	if err != nil {
		s.logger.Fatal("error connecting to Postgres", zap.Error(err))
		return
	}
	s.store = pool

	if err := pool.Init(ctx); err != nil {
		s.logger.Fatal("error creating tables", zap.Error(err))
		return
	}

	if err := os.MkdirAll(s.cfg.App.UploadDir, 0o755); err != nil {
		s.logger.Fatal("error creating upload directory", zap.Error(err))
		return
	}

	var (
		llm        = model.NewOllamaLLM(s.cfg.Models.ChatURL, s.cfg.Models.ChatModel)
		embedder   = model.NewOllamaEmbedder(s.cfg.Models.EmbedURL, s.cfg.Models.EmbedModel)
		reranker   = model.NewHTTPReranker(s.cfg.Models.RerankURL, s.cfg.Models.RerankModel)
		classifier = model.NewHTTPClassifier(s.cfg.Models.ClassifierURL, s.cfg.Models.ClassifierModel)
		extractor  = ingest.NewExtractor(s.cfg.Models.ConverterURL, s.logger)
	)

	questionPipeline := rag.New(llm, embedder, reranker, pool, s.logger,
		s.cfg.Retrieval.TopK, s.cfg.Retrieval.KeepN)
	ingestPipeline := ingest.New(extractor, classifier, embedder, pool, s.logger,
		s.cfg.Ingestion.ChunkSize, s.cfg.Ingestion.ChunkOverlap)

	locks := store.NewSessionLocks()

	var (
		app = fiber.New(fiber.Config{
			ErrorHandler: api.ErrorHandler,
			BodyLimit:    64 * 1024 * 1024,
		})
		checkHandler   = api.NewCheckHandler()
		uploadHandler  = api.NewUploadHandler(pool, locks, ingestPipeline, s.cfg.App.UploadDir, s.logger)
		chatHandler    = api.NewChatHandler(pool, locks, questionPipeline, s.logger)
		sessionHandler = api.NewSessionHandler(pool, s.logger)
		check          = app.Group("/check")
		apiv1          = app.Group("/api/v1")
	)
	s.app = app

	app.Use(middleware.RequestLogger(s.logger))

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/upload", uploadHandler.HandleUpload)
	apiv1.Post("/chat", chatHandler.HandleChat)
	apiv1.Get("/sessions", sessionHandler.HandleListSessions)
	apiv1.Get("/sessions/:id/history", sessionHandler.HandleHistory)

	if err := app.Listen(s.cfg.App.Addr); err != nil {
		s.logger.Error("error starting server", zap.Error(err))
	}
}
