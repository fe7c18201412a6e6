package validation

import "time"

// ProductRequest is the payload for POST /admin/products.
type ProductRequest struct {
	ID         string   `json:"id,omitempty"` // generated when empty
	Title      string   `json:"title" validate:"required"`
	Price      float64  `json:"price" validate:"gte=0"`
	Rating     float64  `json:"rating" validate:"gte=0,lte=5"`
	Reviews    int      `json:"reviews" validate:"gte=0"`
	Image      string   `json:"image" validate:"required,url"`
	Images     []string `json:"images,omitempty" validate:"max=3,dive,url"` // extra images
	InStock    bool     `json:"inStock"`
	StockCount int      `json:"stockCount" validate:"gte=0"`
}

// BannerRequest is the payload for POST /admin/banners. A zero id is auto-assigned.
type BannerRequest struct {
	ID       int    `json:"id,omitempty" validate:"gte=0"`
	Title    string `json:"title" validate:"required"`
	Subtitle string `json:"subtitle"`
	Price    string `json:"price"`
	Badge    string `json:"badge,omitempty"`
	Image    string `json:"image" validate:"required,url"`
	BgColor  string `json:"bgColor,omitempty"`
}

// CouponRequest is the payload for POST /admin/coupons.
type CouponRequest struct {
	Code       string  `json:"code" validate:"required"`
	Type       string  `json:"type" validate:"required,oneof=percent fixed"`
	Amount     float64 `json:"amount" validate:"gt=0"`
	StartDate  string  `json:"startDate,omitempty"`
	EndDate    string  `json:"endDate,omitempty"`
	UsageLimit *int    `json:"usageLimit,omitempty" validate:"omitempty,gte=1"`
	Active     *bool   `json:"active,omitempty"` // defaults to true
}

type AnnouncementRequest struct {
	Message string `json:"message" validate:"required"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin manager customer"`
}

// OrderRequest is the payload for POST /admin/orders (manual entry).
type OrderRequest struct {
	ID     string     `json:"id,omitempty"`
	UserID string     `json:"userId" validate:"required"`
	Total  float64    `json:"total" validate:"gte=0"`
	Status string     `json:"status,omitempty" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Date   *time.Time `json:"date,omitempty"`
}

// Item represents a single checkout line item.
type Item struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Price     float64 `json:"price" validate:"required,gt=0"` // unit price shown to the shopper
}

// CheckoutRequest is the payload for POST /checkout.
type CheckoutRequest struct {
	UserID string  `json:"user_id" validate:"required"`
	Items  []Item  `json:"items" validate:"required,min=1,dive"`
	Total  float64 `json:"total" validate:"required,gt=0"` // total the client claims
}
