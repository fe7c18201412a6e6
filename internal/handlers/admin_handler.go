package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/storefront-admin/internal/admin"
	"github.com/imrishuroy/storefront-admin/internal/validation"
)

func (h *handler) registerAdminRoutes(g *gin.RouterGroup) {
	g.GET("/snapshot", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.store.Snapshot())
	})

	g.GET("/products", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Products()) })
	g.POST("/products", h.addProduct)
	g.PATCH("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)

	g.GET("/announcements", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Announcements()) })
	g.POST("/announcements", h.addAnnouncement)
	g.PUT("/announcements/:index", h.updateAnnouncement)
	g.DELETE("/announcements/:index", h.removeAnnouncement)

	g.GET("/banners", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Banners()) })
	g.POST("/banners", h.addBanner)
	g.PATCH("/banners/:id", h.updateBanner)
	g.DELETE("/banners/:id", h.removeBanner)

	g.GET("/coupons", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Coupons()) })
	g.POST("/coupons", h.addCoupon)
	g.PATCH("/coupons/:id", h.updateCoupon)
	g.DELETE("/coupons/:id", h.deleteCoupon)

	g.GET("/users", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Users()) })
	g.PUT("/users/:id/role", h.updateUserRole)

	g.GET("/orders", func(c *gin.Context) { c.JSON(http.StatusOK, h.store.Orders()) })
	g.POST("/orders", h.addOrder)
	g.GET("/orders/:id", h.getOrder)
	g.PATCH("/orders/:id", h.updateOrder)

	g.GET("/revenue", h.revenue)
}

// products

func (h *handler) addProduct(c *gin.Context) {
	var req validation.ProductRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	if req.ID == "" {
		req.ID = h.newID()
	}
	if _, exists := h.store.Product(req.ID); exists {
		c.JSON(http.StatusConflict, gin.H{"error": "product_exists", "id": req.ID})
		return
	}

	p := admin.Product{
		ID:         req.ID,
		Title:      req.Title,
		Price:      req.Price,
		Rating:     req.Rating,
		Reviews:    req.Reviews,
		Image:      req.Image,
		Images:     req.Images,
		InStock:    req.InStock,
		StockCount: req.StockCount,
	}
	h.store.AddProduct(c.Request.Context(), p)
	c.JSON(http.StatusCreated, p)
}

func (h *handler) updateProduct(c *gin.Context) {
	var patch admin.ProductPatch
	if err := validation.BindAndValidate(c, &patch, h.v); err != nil {
		return
	}
	id := c.Param("id")
	if !h.store.UpdateProduct(c.Request.Context(), id, patch) {
		notFound(c, "product")
		return
	}
	p, _ := h.store.Product(id)
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteProduct(c *gin.Context) {
	if !h.store.DeleteProduct(c.Request.Context(), c.Param("id")) {
		notFound(c, "product")
		return
	}
	c.Status(http.StatusNoContent)
}

// announcements

func (h *handler) addAnnouncement(c *gin.Context) {
	var req validation.AnnouncementRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	if err := h.store.AddAnnouncement(c.Request.Context(), req.Message); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_announcement"})
		return
	}
	c.JSON(http.StatusCreated, h.store.Announcements())
}

func (h *handler) updateAnnouncement(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	var req validation.AnnouncementRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	if err := h.store.UpdateAnnouncement(c.Request.Context(), index, req.Message); err != nil {
		h.announcementError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Announcements())
}

func (h *handler) removeAnnouncement(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	if err := h.store.RemoveAnnouncement(c.Request.Context(), index); err != nil {
		h.announcementError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Announcements())
}

func (h *handler) announcementError(c *gin.Context, err error) {
	if errors.Is(err, admin.ErrAnnouncementIndex) {
		notFound(c, "announcement")
		return
	}
	h.log.Error().Err(err).Msg("announcement update failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

// banners

func (h *handler) addBanner(c *gin.Context) {
	var req validation.BannerRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	if req.ID != 0 {
		if _, exists := h.findBanner(req.ID); exists {
			c.JSON(http.StatusConflict, gin.H{"error": "banner_exists", "id": req.ID})
			return
		}
	}
	b := h.store.AddBanner(c.Request.Context(), admin.Banner{
		ID:       req.ID,
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Price:    req.Price,
		Badge:    req.Badge,
		Image:    req.Image,
		BgColor:  req.BgColor,
	})
	c.JSON(http.StatusCreated, b)
}

func (h *handler) updateBanner(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var patch admin.BannerPatch
	if err := validation.BindAndValidate(c, &patch, h.v); err != nil {
		return
	}
	if !h.store.UpdateBanner(c.Request.Context(), id, patch) {
		notFound(c, "banner")
		return
	}
	b, _ := h.findBanner(id)
	c.JSON(http.StatusOK, b)
}

func (h *handler) removeBanner(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if !h.store.RemoveBanner(c.Request.Context(), id) {
		notFound(c, "banner")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) findBanner(id int) (admin.Banner, bool) {
	for _, b := range h.store.Banners() {
		if b.ID == id {
			return b, true
		}
	}
	return admin.Banner{}, false
}

// coupons

func (h *handler) addCoupon(c *gin.Context) {
	var req validation.CouponRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	coupon := h.store.AddCoupon(c.Request.Context(), admin.Coupon{
		ID:         h.newID(),
		Code:       req.Code,
		Type:       admin.DiscountType(req.Type),
		Amount:     req.Amount,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		UsageLimit: req.UsageLimit,
		Active:     active,
	})
	c.JSON(http.StatusCreated, coupon)
}

func (h *handler) updateCoupon(c *gin.Context) {
	var patch admin.CouponPatch
	if err := validation.BindAndValidate(c, &patch, h.v); err != nil {
		return
	}
	id := c.Param("id")
	existing, ok := h.store.Coupon(id)
	if !ok {
		notFound(c, "coupon")
		return
	}
	if err := validation.Validate(c, patch.Applied(existing), h.v); err != nil {
		return
	}
	if !h.store.UpdateCoupon(c.Request.Context(), id, patch) {
		notFound(c, "coupon")
		return
	}
	updated, _ := h.store.Coupon(id)
	c.JSON(http.StatusOK, updated)
}

func (h *handler) deleteCoupon(c *gin.Context) {
	if !h.store.DeleteCoupon(c.Request.Context(), c.Param("id")) {
		notFound(c, "coupon")
		return
	}
	c.Status(http.StatusNoContent)
}

// users

func (h *handler) updateUserRole(c *gin.Context) {
	var req validation.RoleRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	id := c.Param("id")
	if !h.store.UpdateUserRole(c.Request.Context(), id, admin.Role(req.Role)) {
		notFound(c, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "role": req.Role})
}

// orders

func (h *handler) addOrder(c *gin.Context) {
	var req validation.OrderRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	o := admin.Order{
		ID:     req.ID,
		UserID: req.UserID,
		Total:  req.Total,
		Status: admin.OrderStatus(req.Status),
		Date:   h.now(),
	}
	if o.ID == "" {
		o.ID = h.newID()
	}
	if o.Status == "" {
		o.Status = admin.StatusPending
	}
	if req.Date != nil {
		o.Date = *req.Date
	}
	if _, exists := h.store.Order(o.ID); exists {
		c.JSON(http.StatusConflict, gin.H{"error": "order_exists", "id": o.ID})
		return
	}
	h.store.AddOrder(c.Request.Context(), o)
	stored, _ := h.store.Order(o.ID)
	c.JSON(http.StatusCreated, stored)
}

func (h *handler) getOrder(c *gin.Context) {
	o, ok := h.store.Order(c.Param("id"))
	if !ok {
		notFound(c, "order")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handler) updateOrder(c *gin.Context) {
	var patch admin.OrderPatch
	if err := validation.BindAndValidate(c, &patch, h.v); err != nil {
		return
	}
	id := c.Param("id")
	if !h.store.UpdateOrder(c.Request.Context(), id, patch) {
		notFound(c, "order")
		return
	}
	o, _ := h.store.Order(id)
	c.JSON(http.StatusOK, o)
}

// revenue

func (h *handler) revenue(c *gin.Context) {
	r, err := admin.ParseRange(c.DefaultQuery("range", string(admin.RangeThisMonth)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_range", "msg": err.Error()})
		return
	}
	total, err := h.store.RevenueByRange(r)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_range"})
		return
	}
	series, err := h.store.RevenueSeries(r)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_range"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"range": r, "revenue": total, "series": series})
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_" + name, "msg": err.Error()})
		return 0, false
	}
	return v, true
}
