package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/storefront-admin/internal/admin"
	"github.com/imrishuroy/storefront-admin/internal/aws"
	"github.com/imrishuroy/storefront-admin/internal/idempotency"
	"github.com/imrishuroy/storefront-admin/internal/validation"
)

// OrderPublisher announces placed orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev aws.OrderEvent) error
}

// IdempotencyStore guards checkout against client retries.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, orderID string) (*idempotency.Record, bool, error)
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// HandlerConfig groups dependencies for the HTTP handlers. Publisher and
// Idempotency are optional; checkout skips those steps when they are nil.
type HandlerConfig struct {
	Store       *admin.Store
	Publisher   OrderPublisher
	Idempotency IdempotencyStore
	Logger      zerolog.Logger

	// NewID and Now default to uuid.NewString and time.Now.
	NewID func() string
	Now   func() time.Time
}

type handler struct {
	store       *admin.Store
	publisher   OrderPublisher
	idempotency IdempotencyStore
	log         zerolog.Logger
	v           *validatorv10.Validate
	newID       func() string
	now         func() time.Time
}

// RegisterRoutes mounts the admin and storefront routes on r.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := &handler{
		store:       cfg.Store,
		publisher:   cfg.Publisher,
		idempotency: cfg.Idempotency,
		log:         cfg.Logger,
		v:           validation.New(),
		newID:       cfg.NewID,
		now:         cfg.Now,
	}
	if h.newID == nil {
		h.newID = uuid.NewString
	}
	if h.now == nil {
		h.now = time.Now
	}

	h.registerAdminRoutes(r.Group("/admin", h.refresh))
	h.registerStorefrontRoutes(r.Group("", h.refresh))
}

// refresh picks up snapshot changes written by other processes before the
// request reads or mutates the store.
func (h *handler) refresh(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("serving cached admin data")
	}
	c.Next()
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetHeader("X-Request-Id")).
			Msg("request")
	}
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + "_not_found"})
}
