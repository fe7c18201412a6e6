package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/storefront-admin/internal/admin"
	"github.com/imrishuroy/storefront-admin/internal/aws"
	"github.com/imrishuroy/storefront-admin/internal/config"
	"github.com/imrishuroy/storefront-admin/internal/idempotency"
	"github.com/imrishuroy/storefront-admin/internal/logger"
	"github.com/imrishuroy/storefront-admin/internal/metrics"
	"github.com/imrishuroy/storefront-admin/internal/snapshot"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.Environment).With().Str("component", "worker").Logger()

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

	var idemp IdempotencyMarker
	if cfg.IdempotencyTable != "" {
		idemp = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	}
	var reporter RevenueReporter
	if cfg.MetricsNamespace != "" {
		reporter = metrics.NewRevenueReporter(clients.CloudWatch, cfg.MetricsNamespace, log)
	}

	storeOpts := []admin.Option{admin.WithKey(cfg.SnapshotKey)}
	if cfg.SnapshotBackend != snapshot.KindMemory {
		storeOpts = append(storeOpts, admin.WithSharedBackend())
	}
	p := NewProcessor(backend, idemp, reporter, log, storeOpts...)

	// RUN_LOCAL=true simulates a single SQS event, optionally taken from LOCAL_SQS_BODY.
	if cfg.RunLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"o1","user_id":"u2","total":0,"idempotency_key":"local-key-1"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: testBody}},
		}
		resp, err := p.Handle(ctx, event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Fatal().Err(err).Int("failures", len(resp.BatchItemFailures)).Msg("local handler error")
		}
		return
	}

	lambda.Start(p.Handle)
}
