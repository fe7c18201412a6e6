package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/storefront-admin/internal/admin"
	"github.com/imrishuroy/storefront-admin/internal/aws"
	"github.com/imrishuroy/storefront-admin/internal/idempotency"
	"github.com/imrishuroy/storefront-admin/internal/validation"
)

func (h *handler) registerStorefrontRoutes(r *gin.RouterGroup) {
	r.GET("/catalog", h.catalog)
	r.GET("/announcements", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Announcements()) })
	r.GET("/banners", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Banners()) })
	r.POST("/checkout", h.checkout)
}

// catalog lists products; ?in_stock=true hides sold-out ones.
func (h *handler) catalog(c *gin.Context) {
	products := h.store.Products()
	if c.Query("in_stock") != "true" {
		c.JSON(http.StatusOK, products)
		return
	}
	out := make([]admin.Product, 0, len(products))
	for _, p := range products {
		if p.InStock {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) checkout(c *gin.Context) {
	ctx := c.Request.Context()

	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	for _, it := range req.Items {
		p, ok := h.store.Product(it.ProductID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_product", "product_id": it.ProductID})
			return
		}
		if !p.InStock {
			c.JSON(http.StatusConflict, gin.H{"error": "out_of_stock", "product_id": it.ProductID})
			return
		}
		if validation.Cents(it.Price) != validation.Cents(p.Price) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "price_mismatch",
				"product_id": it.ProductID,
				"price":      p.Price,
			})
			return
		}
	}

	orderID := h.newID()
	idempKey := c.GetHeader("Idempotency-Key")
	log := h.log.With().Str("order_id", orderID).Str("key", idempKey).Logger()

	if h.idempotency != nil && idempKey != "" {
		rec, claimed, err := h.idempotency.Claim(ctx, idempKey, orderID)
		if err != nil {
			log.Error().Err(err).Msg("idempotency claim failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
			return
		}
		if !claimed {
			replay(c, rec)
			return
		}
	}

	h.store.AddOrder(ctx, admin.Order{
		ID:     orderID,
		UserID: req.UserID,
		Total:  req.Total,
		Status: admin.StatusPending,
		Date:   h.now(),
	})

	if h.publisher != nil {
		ev := aws.OrderEvent{
			OrderID:        orderID,
			UserID:         req.UserID,
			Total:          req.Total,
			IdempotencyKey: idempKey,
			CorrelationID:  c.GetHeader("X-Request-Id"),
		}
		if err := h.publisher.PublishOrderPlaced(ctx, ev); err != nil {
			log.Error().Err(err).Msg("publish order.placed failed")

			// Nobody will process the order, so it must not count as revenue.
			cancelled := admin.StatusCancelled
			h.store.UpdateOrder(ctx, orderID, admin.OrderPatch{Status: &cancelled})
			h.markFailed(c, idempKey, fmt.Sprintf("sqs_send_failed: %v", err))

			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			return
		}
	}

	resp := gin.H{"order_id": orderID, "status": admin.StatusPending}
	if h.idempotency != nil && idempKey != "" {
		body, _ := json.Marshal(resp)
		if err := h.idempotency.MarkDone(ctx, idempKey, string(body), http.StatusCreated); err != nil {
			log.Warn().Err(err).Msg("mark idempotency done failed")
		}
	}

	log.Info().Float64("total", req.Total).Msg("order placed")
	c.Header("Location", fmt.Sprintf("/admin/orders/%s", orderID))
	c.JSON(http.StatusCreated, resp)
}

func (h *handler) markFailed(c *gin.Context, key, note string) {
	if h.idempotency == nil || key == "" {
		return
	}
	if err := h.idempotency.MarkFailed(c.Request.Context(), key, note); err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("mark idempotency failed failed")
	}
}

// replay answers a retried checkout from the stored record.
func replay(c *gin.Context, rec *idempotency.Record) {
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" && json.Valid([]byte(rec.ResponseBody)) {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
	case idempotency.StatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "order_id": rec.OrderID})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
}
