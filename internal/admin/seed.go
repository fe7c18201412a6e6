package admin

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const seedOrderCount = 24

var seedStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

func seedProducts() []Product {
	return []Product{
		{ID: "1", Title: "Apple iPhone 15 (128 GB) - Black", Price: 69900, Rating: 4.6, Reviews: 12840, Image: "https://images.unsplash.com/photo-1695048133142-1a20484d2569?w=600", InStock: true, StockCount: 42},
		{ID: "2", Title: "Samsung Galaxy Watch7 (44mm)", Price: 15473, Rating: 4.3, Reviews: 2210, Image: "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=600", InStock: true, StockCount: 18},
		{ID: "3", Title: "Apple MacBook Air M3 (13-inch, 8GB, 256GB)", Price: 114900, Rating: 4.7, Reviews: 3120, Image: "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=600", InStock: true, StockCount: 9},
		{ID: "4", Title: "Sony WH-1000XM5 Wireless Headphones", Price: 29990, Rating: 4.5, Reviews: 8765, Image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=600", Images: []string{"https://images.unsplash.com/photo-1583394838336-acd977736f90?w=600"}, InStock: true, StockCount: 27},
		{ID: "5", Title: "Nike Air Max 270 Running Shoes", Price: 12995, Rating: 4.2, Reviews: 1543, Image: "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=600", InStock: true, StockCount: 55},
		{ID: "6", Title: "Canon EOS R50 Mirrorless Camera", Price: 68995, Rating: 4.4, Reviews: 640, Image: "https://images.unsplash.com/photo-1516035069371-29a1b244cc32?w=600", InStock: false, StockCount: 0},
		{ID: "7", Title: "boAt Airdopes 141 Earbuds", Price: 1299, Rating: 4.0, Reviews: 215430, Image: "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=600", InStock: true, StockCount: 310},
		{ID: "8", Title: "Levi's Men's Slim Fit Jeans", Price: 2199, Rating: 4.1, Reviews: 9874, Image: "https://images.unsplash.com/photo-1542272604-787c3835535d?w=600", InStock: true, StockCount: 120},
	}
}

func seedAnnouncements() []string {
	return []string{
		"Use code S23 to get 23% OFF on all orders!",
		"Free shipping on orders above ₹1,999",
		"New arrivals dropping weekly, stay tuned!",
		"Festive sale starts this Friday",
	}
}

func seedBanners() []Banner {
	return []Banner{
		{
			ID:       1,
			Title:    "Samsung Galaxy Watch7",
			Subtitle: "Challenge your past for a better tomorrow",
			Price:    "From ₹15,473",
			Badge:    "FREEDOM SALE LIVE NOW",
			Image:    "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=1200&h=600&fit=crop",
			BgColor:  "from-green-400 to-blue-500",
		},
		{
			ID:       2,
			Title:    "iPhone 15 Pro",
			Subtitle: "Titanium. So strong. So light. So Pro.",
			Price:    "From ₹1,34,900",
			Badge:    "NEW ARRIVAL",
			Image:    "https://images.unsplash.com/photo-1592899677977-9c10ca588bbd?w=1200&h=600&fit=crop",
			BgColor:  "from-purple-400 to-pink-500",
		},
		{
			ID:       3,
			Title:    "MacBook Air M3",
			Subtitle: "Supercharged by M3 chip",
			Price:    "From ₹1,14,900",
			Badge:    "BEST SELLER",
			Image:    "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=1200&h=600&fit=crop",
			BgColor:  "from-blue-400 to-purple-600",
		},
	}
}

func seedUsers() []User {
	return []User{
		{ID: "u1", Name: "Admin User", Email: "admin@example.com", Role: RoleAdmin},
		{ID: "u2", Name: "Manager User", Email: "manager@example.com", Role: RoleManager},
		{ID: "u3", Name: "Jane Customer", Email: "jane@example.com", Role: RoleCustomer},
	}
}

// Seed builds the initial dataset. Orders get totals in [500, 5500], a
// status cycling through pending, processing, shipped and delivered, and a
// date up to 27 days before now.
func Seed(now time.Time, rng *rand.Rand) Data {
	users := seedUsers()
	orders := make([]Order, 0, seedOrderCount)
	for i := 0; i < seedOrderCount; i++ {
		orders = append(orders, Order{
			ID:     fmt.Sprintf("o%d", i+1),
			UserID: users[(i+1)%len(users)].ID,
			Total:  math.Round(500 + rng.Float64()*5000),
			Status: seedStatuses[i%len(seedStatuses)],
			Date:   now.AddDate(0, 0, -rng.IntN(28)).UTC(),
		})
	}

	return Data{
		Products:      seedProducts(),
		Announcements: seedAnnouncements(),
		Banners:       seedBanners(),
		Coupons:       []Coupon{},
		Users:         users,
		Orders:        orders,
	}
}
