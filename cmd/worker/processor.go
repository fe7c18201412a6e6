package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/storefront-admin/internal/admin"
	"github.com/imrishuroy/storefront-admin/internal/aws"
	"github.com/imrishuroy/storefront-admin/internal/idempotency"
	"github.com/imrishuroy/storefront-admin/internal/metrics"
	"github.com/imrishuroy/storefront-admin/internal/snapshot"
)

// IdempotencyMarker completes the record the checkout endpoint claimed.
type IdempotencyMarker interface {
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
}

// RevenueReporter publishes revenue figures after a batch.
type RevenueReporter interface {
	Report(ctx context.Context, src metrics.RevenueSource) error
}

// Processor handles order.placed messages and moves orders out of pending.
type Processor struct {
	backend     snapshot.Backend
	storeOpts   []admin.Option
	idempotency IdempotencyMarker
	reporter    RevenueReporter
	log         zerolog.Logger
}

// NewProcessor creates a processor over backend. idemp and reporter may be nil.
func NewProcessor(backend snapshot.Backend, idemp IdempotencyMarker, reporter RevenueReporter, log zerolog.Logger, storeOpts ...admin.Option) *Processor {
	return &Processor{
		backend:     backend,
		storeOpts:   append([]admin.Option{admin.WithLogger(log)}, storeOpts...),
		idempotency: idemp,
		reporter:    reporter,
		log:         log,
	}
}

// Handle processes an SQS batch. The store is reloaded once per batch so
// changes made by the api since the last invocation are visible. Failed
// messages are returned as batch item failures and retried by SQS. When the
// snapshot cannot be read the whole batch fails.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	store, err := admin.Load(ctx, p.backend, p.storeOpts...)
	if err != nil {
		return resp, fmt.Errorf("load admin snapshot: %w", err)
	}

	processed := 0
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, store, rec); err != nil {
			p.log.Error().Err(err).Str("message_id", rec.MessageId).Msg("worker error")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
			continue
		}
		processed++
	}

	if p.reporter != nil && processed > 0 {
		if err := p.reporter.Report(ctx, store); err != nil {
			p.log.Warn().Err(err).Msg("revenue report failed")
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, store *admin.Store, rec events.SQSMessage) error {
	if attr, ok := rec.MessageAttributes["event_type"]; ok && attr.StringValue != nil && *attr.StringValue != aws.EventOrderPlaced {
		p.log.Debug().Str("event_type", *attr.StringValue).Msg("ignoring event")
		return nil
	}

	var msg aws.OrderEvent
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.OrderID == "" {
		return errors.New("message has no order_id")
	}

	log := p.log.With().
		Str("order_id", msg.OrderID).
		Str("key", msg.IdempotencyKey).
		Str("correlation_id", msg.CorrelationID).
		Logger()

	order, ok := store.Order(msg.OrderID)
	if !ok {
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}

	switch order.Status {
	case admin.StatusPending:
		processing := admin.StatusProcessing
		if !store.UpdateOrder(ctx, msg.OrderID, admin.OrderPatch{Status: &processing}) {
			return fmt.Errorf("order vanished during update: %s", msg.OrderID)
		}
		log.Info().Msg("order moved to processing")
	case admin.StatusProcessing, admin.StatusShipped, admin.StatusDelivered:
		log.Info().Str("status", string(order.Status)).Msg("duplicate event, order already past pending")
		return nil
	case admin.StatusCancelled:
		return fmt.Errorf("order=%s is cancelled", msg.OrderID)
	default:
		return fmt.Errorf("unexpected status for order=%s: %s", msg.OrderID, order.Status)
	}

	if p.idempotency == nil || msg.IdempotencyKey == "" {
		return nil
	}
	body, _ := json.Marshal(map[string]string{"order_id": msg.OrderID, "status": string(admin.StatusPending)})
	err := p.idempotency.MarkDone(ctx, msg.IdempotencyKey, string(body), http.StatusCreated)
	if errors.Is(err, idempotency.ErrConditionFailed) {
		// the api already completed the record
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update idempotency: %w", err)
	}
	return nil
}
