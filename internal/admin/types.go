package admin

import "time"

// Role of an admin panel user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleCustomer Role = "customer"
)

// OrderStatus values. Only cancelled orders are excluded from revenue.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// DiscountType of a coupon.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// MaxExtraImages is how many images a product may carry besides its main one.
const MaxExtraImages = 3

type Product struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      float64  `json:"price"`
	Rating     float64  `json:"rating"`
	Reviews    int      `json:"reviews"`
	Image      string   `json:"image"`
	Images     []string `json:"images,omitempty"`
	InStock    bool     `json:"inStock"`
	StockCount int      `json:"stockCount"`
}

type Banner struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Price    string `json:"price"` // display text, e.g. "From ₹15,473"
	Badge    string `json:"badge,omitempty"`
	Image    string `json:"image"`
	BgColor  string `json:"bgColor,omitempty"`
}

// Coupon dates are ISO strings as entered by the admin; the store does not
// parse or compare them.
type Coupon struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	Type       DiscountType `json:"type"`
	Amount     float64      `json:"amount"`
	StartDate  string       `json:"startDate,omitempty"`
	EndDate    string       `json:"endDate,omitempty"`
	UsageLimit *int         `json:"usageLimit,omitempty"`
	Active     bool         `json:"active"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Order.UserID is a weak reference; nothing checks that the user exists.
type Order struct {
	ID     string      `json:"id"`
	UserID string      `json:"userId"`
	Total  float64     `json:"total"`
	Status OrderStatus `json:"status"`
	Date   time.Time   `json:"date"`
}

// Data is the aggregate persisted as one snapshot.
type Data struct {
	Products      []Product `json:"products"`
	Announcements []string  `json:"announcements"`
	Banners       []Banner  `json:"banners"`
	Coupons       []Coupon  `json:"coupons"`
	Users         []User    `json:"users"`
	Orders        []Order   `json:"orders"`
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	out := Data{
		Products:      make([]Product, len(d.Products)),
		Announcements: append([]string{}, d.Announcements...),
		Banners:       append([]Banner{}, d.Banners...),
		Coupons:       make([]Coupon, len(d.Coupons)),
		Users:         append([]User{}, d.Users...),
		Orders:        append([]Order{}, d.Orders...),
	}
	for i, p := range d.Products {
		p.Images = cloneImages(p.Images)
		out.Products[i] = p
	}
	for i, c := range d.Coupons {
		if c.UsageLimit != nil {
			limit := *c.UsageLimit
			c.UsageLimit = &limit
		}
		out.Coupons[i] = c
	}
	return out
}

// cloneImages copies an image list, keeping "no images" as nil so a product
// survives a JSON round trip unchanged.
func cloneImages(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

// normalize replaces nil collections so a snapshot from an older schema
// still serves empty lists instead of null.
func (d *Data) normalize() {
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Announcements == nil {
		d.Announcements = []string{}
	}
	if d.Banners == nil {
		d.Banners = []Banner{}
	}
	if d.Coupons == nil {
		d.Coupons = []Coupon{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
}

// Patches carry pointer fields; a nil field is left untouched by an update.

type ProductPatch struct {
	Title      *string   `json:"title,omitempty" validate:"omitempty,min=1"`
	Price      *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Rating     *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Reviews    *int      `json:"reviews,omitempty" validate:"omitempty,gte=0"`
	Image      *string   `json:"image,omitempty" validate:"omitempty,url"`
	Images     *[]string `json:"images,omitempty" validate:"omitempty,max=3,dive,url"`
	InStock    *bool     `json:"inStock,omitempty"`
	StockCount *int      `json:"stockCount,omitempty" validate:"omitempty,gte=0"`
}

func (p ProductPatch) apply(dst Product) Product {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Rating != nil {
		dst.Rating = *p.Rating
	}
	if p.Reviews != nil {
		dst.Reviews = *p.Reviews
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	if p.Images != nil {
		dst.Images = cloneImages(*p.Images)
	}
	if p.InStock != nil {
		dst.InStock = *p.InStock
	}
	if p.StockCount != nil {
		dst.StockCount = *p.StockCount
	}
	return dst
}

type BannerPatch struct {
	Title    *string `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	Price    *string `json:"price,omitempty"`
	Badge    *string `json:"badge,omitempty"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
	BgColor  *string `json:"bgColor,omitempty"`
}

func (p BannerPatch) apply(dst Banner) Banner {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Subtitle != nil {
		dst.Subtitle = *p.Subtitle
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Badge != nil {
		dst.Badge = *p.Badge
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	if p.BgColor != nil {
		dst.BgColor = *p.BgColor
	}
	return dst
}

type CouponPatch struct {
	Code       *string       `json:"code,omitempty" validate:"omitempty,min=1"`
	Type       *DiscountType `json:"type,omitempty" validate:"omitempty,oneof=percent fixed"`
	Amount     *float64      `json:"amount,omitempty" validate:"omitempty,gt=0"`
	StartDate  *string       `json:"startDate,omitempty"`
	EndDate    *string       `json:"endDate,omitempty"`
	UsageLimit *int          `json:"usageLimit,omitempty" validate:"omitempty,gte=1"`
	Active     *bool         `json:"active,omitempty"`
}

// Applied returns c with the patch merged in, without storing it.
func (p CouponPatch) Applied(c Coupon) Coupon {
	return p.apply(c)
}

func (p CouponPatch) apply(dst Coupon) Coupon {
	if p.Code != nil {
		dst.Code = normalizeCode(*p.Code)
	}
	if p.Type != nil {
		dst.Type = *p.Type
	}
	if p.Amount != nil {
		dst.Amount = *p.Amount
	}
	if p.StartDate != nil {
		dst.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		dst.EndDate = *p.EndDate
	}
	if p.UsageLimit != nil {
		limit := *p.UsageLimit
		dst.UsageLimit = &limit
	}
	if p.Active != nil {
		dst.Active = *p.Active
	}
	return dst
}

type OrderPatch struct {
	UserID *string      `json:"userId,omitempty"`
	Total  *float64     `json:"total,omitempty" validate:"omitempty,gte=0"`
	Status *OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Date   *time.Time   `json:"date,omitempty"`
}

func (p OrderPatch) apply(dst Order) Order {
	if p.UserID != nil {
		dst.UserID = *p.UserID
	}
	if p.Total != nil {
		dst.Total = *p.Total
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.Date != nil {
		dst.Date = *p.Date
	}
	return dst
}
