package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/storefront-admin/internal/admin"
	"github.com/imrishuroy/storefront-admin/internal/aws"
	"github.com/imrishuroy/storefront-admin/internal/config"
	"github.com/imrishuroy/storefront-admin/internal/handlers"
	"github.com/imrishuroy/storefront-admin/internal/idempotency"
	"github.com/imrishuroy/storefront-admin/internal/logger"
	"github.com/imrishuroy/storefront-admin/internal/snapshot"
)

func setupRouter(cfg handlers.HandlerConfig, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(log))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)

	clients, err := aws.NewAWSClients(ctx, cfg.AWSNeeds())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}

	backend, err := snapshot.New(snapshot.Options{
		Kind:      cfg.SnapshotBackend,
		Dir:       cfg.SnapshotDir,
		Table:     cfg.SnapshotTable,
		RedisAddr: cfg.RedisAddr,
	}, clients.DynamoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init snapshot backend")
	}

	storeOpts := []admin.Option{
		admin.WithKey(cfg.SnapshotKey),
		admin.WithLogger(log.With().Str("component", "admin").Logger()),
	}
	// the worker writes order status into the same snapshot
	if cfg.SnapshotBackend != snapshot.KindMemory {
		storeOpts = append(storeOpts, admin.WithSharedBackend())
	}
	store := admin.Open(ctx, backend, storeOpts...)

	hcfg := handlers.HandlerConfig{
		Store:  store,
		Logger: log,
	}
	if cfg.QueueURL != "" {
		hcfg.Publisher = aws.NewPublisher(clients.SQS, cfg.QueueURL)
	}
	if cfg.IdempotencyTable != "" {
		hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	}

	r := setupRouter(hcfg, log)

	if cfg.RunLocal {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("snapshot_backend", cfg.SnapshotBackend).Msg("running local server")
		if err := r.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("failed to run local server")
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
