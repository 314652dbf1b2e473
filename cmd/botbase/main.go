package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/botbase/internal/ai"
	"github.com/xxxsen/botbase/internal/chunker"
	"github.com/xxxsen/botbase/internal/config"
	"github.com/xxxsen/botbase/internal/db"
	"github.com/xxxsen/botbase/internal/embedcache"
	"github.com/xxxsen/botbase/internal/filestore"
	"github.com/xxxsen/botbase/internal/handler"
	"github.com/xxxsen/botbase/internal/job"
	"github.com/xxxsen/botbase/internal/middleware"
	"github.com/xxxsen/botbase/internal/repo"
	"github.com/xxxsen/botbase/internal/schedule"
	"github.com/xxxsen/botbase/internal/service"
)

const (
	embedLruSize = 2048
	embedLruTTL  = time.Hour
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "botbase",
		Short: "botbase backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run botbase server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// buildAIClients assembles the generation and embedding clients from the
// primary provider plus any configured fallbacks. Each provider gets its
// own call timeout so one hung upstream cannot stall the chain.
func buildAIClients(cfg config.AIConfig) (ai.IGenerator, ai.IEmbedder, error) {
	refs := make([]config.AIProviderRef, 0, 1+len(cfg.Fallback))
	refs = append(refs, config.AIProviderRef{
		Provider:   cfg.Provider,
		ChatModel:  cfg.ChatModel,
		EmbedModel: cfg.EmbedModel,
		Data:       cfg.Data,
	})
	refs = append(refs, cfg.Fallback...)

	timeout := time.Duration(cfg.Timeout) * time.Second
	generators := make([]ai.GeneratorEntry, 0, len(refs))
	embedders := make([]ai.EmbedderEntry, 0, len(refs))
	for _, ref := range refs {
		provider, err := ai.NewProvider(ref.Provider, ref.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: %w", ref.Provider, err)
		}
		generators = append(generators, ai.GeneratorEntry{
			Name:      ref.Provider + "/" + ref.ChatModel,
			Generator: ai.WrapTimeoutToGenerator(ai.NewGenerator(provider, ref.ChatModel), timeout),
		})
		embedders = append(embedders, ai.EmbedderEntry{
			Name:     ref.EmbedModel,
			Embedder: ai.WrapTimeoutToEmbedder(ai.NewEmbedder(provider, ref.EmbedModel), timeout),
		})
	}
	if len(refs) == 1 {
		return generators[0].Generator, embedders[0].Embedder, nil
	}
	return ai.NewGroupGenerator(generators), ai.NewGroupEmbedder(embedders), nil
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("chunk_mode", cfg.Chunking.Mode),
	)

	botRepo := repo.NewBotRepo(database)
	sourceRepo := repo.NewSourceRepo(database)
	chunkRepo := repo.NewChunkRepo(database)
	embedCacheRepo := repo.NewEmbeddingCacheRepo(database)

	generator, embedder, err := buildAIClients(cfg.AI)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, embedCacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, embedLruSize, embedLruTTL)

	var store filestore.Store
	if cfg.FileStore.Type != "" {
		store, err = filestore.New(cfg.FileStore)
		if err != nil {
			return fmt.Errorf("init file store: %w", err)
		}
	}

	splitter := chunker.New(chunker.Options{
		Mode:      cfg.Chunking.Mode,
		MinSize:   cfg.Chunking.MinSize,
		MaxSize:   cfg.Chunking.MaxSize,
		Overlap:   cfg.Chunking.Overlap,
		MinTail:   cfg.Chunking.MinTail,
		MaxTokens: cfg.Chunking.MaxToken,
	})

	authService := service.NewAuthService(cfg.AccessCodeHash, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	botService := service.NewBotService(botRepo, cfg.Limits.BotLimit)
	ingestService := service.NewIngestService(sourceRepo, chunkRepo, splitter, embedder, store,
		cfg.Limits.KeepRawFiles, int64(cfg.Limits.MaxSourceSizeMB)<<20)
	chatService := service.NewChatService(chunkRepo, embedder, generator, cfg.Retrieval.Threshold, cfg.Retrieval.MatchLimit, cfg.AI.MaxInputChars)
	crawlService := service.NewCrawlService(ingestService, cfg.Limits.CrawlMaxPages)

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		Bots:          handler.NewBotHandler(botService),
		Sources:       handler.NewSourceHandler(botService, ingestService, crawlService),
		Chat:          handler.NewChatHandler(botService, chatService),
		JWTSecret:     []byte(cfg.JWTSecret),
		ChatRateLimit: cfg.Limits.RateMsgsPerMin,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewStaleSourceCleanupJob(sourceRepo, chunkRepo, cfg.StaleSourceMins), "*/30 * * * *"); err != nil {
		return fmt.Errorf("schedule stale source cleanup: %w", err)
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(embedCacheRepo, cfg.EmbedCacheDays), "0 4 * * *"); err != nil {
		return fmt.Errorf("schedule embedding cache cleanup: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
