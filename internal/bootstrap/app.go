package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docqa/internal/ai"
	"docqa/internal/app"
	"docqa/internal/cache"
	"docqa/internal/config"
	mysqlClient "docqa/internal/platform/mysql"
	rabbitmqClient "docqa/internal/platform/rabbitmq"
	redisClient "docqa/internal/platform/redis"
	"docqa/internal/pkg/pdfextract"
	"docqa/internal/repository"
	"docqa/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	Composer  *app.AnswerComposer
	Documents *app.DocumentService
	Chat      *app.ChatService

	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Publisher     *rabbitmqClient.HistoryPublisher
	HistoryWorker *worker.HistoryWorker

	StartedAt time.Time
}

// New builds the application from cfg. Redis is only dialled for the redis
// store driver; MySQL and RabbitMQ only when history is enabled. Anything
// already opened is closed again if a later step fails.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	logger := NewLogger(cfg.App, os.Stderr)
	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	defer func() {
		if err != nil {
			_ = a.closeClients()
		}
	}()

	generator, err := ai.NewGenerator(ai.ChatConfig{
		Provider:          cfg.LLM.Provider,
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout(),
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	}, logger)
	if err != nil {
		return nil, err
	}
	retry := ai.DefaultRetryPolicy(logger)
	if cfg.LLM.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.LLM.MaxAttempts
	}
	if cfg.LLM.RetryDelayMS > 0 {
		retry.Delay = cfg.LLM.RetryDelay()
	}
	a.Composer = app.NewAnswerComposer(generator, retry, logger)

	store, err := a.documentStore(ctx)
	if err != nil {
		return nil, err
	}

	var (
		recorder  app.UploadRecorder
		publisher app.AsyncMessagePublisher
		history   app.HistoryReader
	)
	if cfg.History.Enabled {
		if err := a.startHistory(ctx); err != nil {
			return nil, err
		}
		messageRepo := repository.NewMessageRepository(a.MySQL)
		recorder = repository.NewUploadRecordRepository(a.MySQL)
		publisher = a.Publisher
		history = messageRepo
	}

	a.Documents = app.NewDocumentService(
		pdfextract.New(cfg.Pipeline.MinContentChars),
		store,
		recorder,
		app.DocumentServiceConfig{
			UploadDir:         cfg.Upload.Dir,
			MaxFileSize:       cfg.Upload.MaxFileSize,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			ChunkSize:         cfg.Pipeline.ChunkSize,
			ChunkOverlap:      cfg.Pipeline.ChunkOverlap,
		},
		logger,
	)
	a.Chat = app.NewChatService(store, a.Composer, publisher, history, app.ChatServiceConfig{
		ChunkThreshold: cfg.Pipeline.ChunkThreshold,
		TopK:           cfg.Pipeline.TopK,
	}, logger)

	logger.Info("application ready",
		"store", cfg.Store.Driver,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"history", cfg.History.Enabled,
	)
	return a, nil
}

func (a *App) documentStore(ctx context.Context) (app.DocumentStore, error) {
	if a.Config.Store.Driver != "redis" {
		return cache.NewMemoryDocumentStore(), nil
	}
	client, err := redisClient.New(ctx, a.Config.Redis)
	if err != nil {
		return nil, err
	}
	a.Redis = client
	return cache.NewRedisDocumentStore(client, a.Config.Store.KeyPrefix), nil
}

func (a *App) startHistory(ctx context.Context) error {
	db, err := mysqlClient.New(ctx, a.Config.MySQLDSN(), a.Logger)
	if err != nil {
		return err
	}
	a.MySQL = db

	conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL, a.Config.RabbitMQ.HistoryQueue)
	if err != nil {
		return err
	}
	a.MQConn = conn
	a.Publisher = rabbitmqClient.NewHistoryPublisher(conn, a.Config.RabbitMQ.HistoryQueue)

	a.HistoryWorker = worker.NewHistoryWorker(conn, repository.NewMessageRepository(db), a.Config.RabbitMQ.HistoryQueue, a.Logger)
	// The worker outlives the bootstrap context.
	if err := a.HistoryWorker.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start history worker failed: %w", err)
	}
	return nil
}

// Dependencies reports the reachability of every optional backend in use.
func (a *App) Dependencies(ctx context.Context) map[string]string {
	deps := map[string]string{"store": a.Config.Store.Driver}
	if a.Redis != nil {
		deps["redis"] = status(a.Redis.Ping(ctx).Err())
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err != nil {
			deps["mysql"] = status(err)
		} else {
			deps["mysql"] = status(sqlDB.PingContext(ctx))
		}
	}
	if a.MQConn != nil {
		if a.MQConn.IsClosed() {
			deps["rabbitmq"] = "down"
		} else {
			deps["rabbitmq"] = "up"
		}
	}
	return deps
}

func status(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}

// Close deletes every stored document and its upload, then releases the
// backing clients.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Documents != nil {
		if err := a.Documents.ClearAll(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear documents failed: %w", err))
		}
	}
	errs = append(errs, a.closeClients())
	return errors.Join(errs...)
}

func (a *App) closeClients() error {
	var errs []error
	if a.HistoryWorker != nil {
		a.HistoryWorker.Close()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
