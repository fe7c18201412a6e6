package admin

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/storefront-admin/internal/snapshot"
)

var (
	testLoc = time.FixedZone("IST", 5*3600+1800)
	testNow = time.Date(2025, 3, 15, 14, 0, 0, 0, testLoc)
)

func testOptions() []Option {
	return []Option{
		WithClock(func() time.Time { return testNow }),
		WithLocation(testLoc),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
}

// openWith stores d as the existing snapshot and opens a store over it.
func openWith(t *testing.T, d Data) (*Store, *snapshot.Memory) {
	t.Helper()
	backend := snapshot.NewMemory()
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, backend.Save(context.Background(), StorageKey, raw))
	return Open(context.Background(), backend, testOptions()...), backend
}

func ptr[T any](v T) *T { return &v }

type failingBackend struct {
	loadErr error
	saves   int
}

func (f *failingBackend) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, f.loadErr
}

func (f *failingBackend) Save(ctx context.Context, key string, payload []byte) error {
	f.saves++
	return errors.New("disk full")
}

func TestOpen_SeedsWhenNoSnapshot(t *testing.T) {
	backend := snapshot.NewMemory()
	s := Open(context.Background(), backend, testOptions()...)

	d := s.Snapshot()
	assert.NotEmpty(t, d.Products)
	assert.Len(t, d.Announcements, 4)
	assert.Len(t, d.Banners, 3)
	assert.Empty(t, d.Coupons)
	assert.NotNil(t, d.Coupons)
	require.Len(t, d.Users, 3)
	assert.Equal(t, RoleAdmin, d.Users[0].Role)
	assert.Equal(t, RoleManager, d.Users[1].Role)
	assert.Equal(t, RoleCustomer, d.Users[2].Role)
	assert.Len(t, d.Orders, 24)

	// the seed is written back immediately
	assert.Equal(t, 1, backend.Saves())
	_, err := backend.Load(context.Background(), StorageKey)
	assert.NoError(t, err)
}

func TestSeed_Orders(t *testing.T) {
	d := Seed(testNow, rand.New(rand.NewPCG(7, 7)))
	earliest := testNow.AddDate(0, 0, -27).Add(-time.Second)

	for i, o := range d.Orders {
		assert.Equal(t, seedStatuses[i%4], o.Status, o.ID)
		assert.NotEqual(t, StatusCancelled, o.Status)
		assert.GreaterOrEqual(t, o.Total, 500.0)
		assert.LessOrEqual(t, o.Total, 5500.0)
		assert.True(t, o.Date.After(earliest), "order %s too old: %s", o.ID, o.Date)
		assert.False(t, o.Date.After(testNow), "order %s in the future", o.ID)
	}
	assert.Equal(t, "o1", d.Orders[0].ID)
	assert.Equal(t, "u2", d.Orders[0].UserID)
	assert.Equal(t, "u1", d.Orders[2].UserID)
}

func TestOpen_CorruptSnapshotFallsBackToSeed(t *testing.T) {
	backend := snapshot.NewMemory()
	require.NoError(t, backend.Save(context.Background(), StorageKey, []byte("{not json")))

	s := Open(context.Background(), backend, testOptions()...)
	assert.Len(t, s.Orders(), 24)

	raw, err := backend.Load(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw), "corrupt snapshot should be replaced")
}

func TestOpen_LoadErrorFallsBackToSeed(t *testing.T) {
	backend := &failingBackend{loadErr: errors.New("timeout")}
	s := Open(context.Background(), backend, testOptions()...)
	assert.Len(t, s.Users(), 3)
	assert.Zero(t, backend.saves, "a failed read must not be answered with a save")

	_, err := Load(context.Background(), backend, testOptions()...)
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}

// flakyBackend fails the first failLoads reads and otherwise behaves like
// snapshot.Memory.
type flakyBackend struct {
	*snapshot.Memory
	failLoads int
}

func (f *flakyBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if f.failLoads > 0 {
		f.failLoads--
		return nil, errors.New("i/o timeout")
	}
	return f.Memory.Load(ctx, key)
}

func storedOrder(t *testing.T, backend snapshot.Backend, id string) (Order, bool) {
	t.Helper()
	raw, err := backend.Load(context.Background(), StorageKey)
	require.NoError(t, err)
	var d Data
	require.NoError(t, json.Unmarshal(raw, &d))
	for _, o := range d.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

func TestOpen_TransientLoadErrorKeepsStoredData(t *testing.T) {
	ctx := context.Background()
	_, mem := openWith(t, Data{Orders: []Order{{ID: "real-order", UserID: "u3", Total: 700, Status: StatusPending, Date: testNow.UTC()}}})
	backend := &flakyBackend{Memory: mem, failLoads: 1}
	saves := mem.Saves()

	s := Open(ctx, backend, testOptions()...)
	assert.Len(t, s.Orders(), 24, "seed is served while the backend is unreadable")
	assert.Equal(t, saves, mem.Saves())

	_, ok := storedOrder(t, mem, "real-order")
	assert.True(t, ok)

	// the next mutation reads the backend again and applies on top of it
	require.NoError(t, s.AddAnnouncement(ctx, "back online"))
	_, ok = s.Order("real-order")
	assert.True(t, ok)
	_, ok = storedOrder(t, mem, "real-order")
	assert.True(t, ok)
	assert.Equal(t, []string{"back online"}, s.Announcements())
}

func TestDetachedStoreDoesNotSave(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{loadErr: errors.New("timeout")}
	s := Open(ctx, backend, testOptions()...)

	s.AddProduct(ctx, Product{ID: "p1", Title: "Lamp", Price: 999})
	_, ok := s.Product("p1")
	assert.True(t, ok)
	assert.Zero(t, backend.saves)
}

func TestSharedBackend_SeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	backend := snapshot.NewMemory()
	opts := append(testOptions(), WithSharedBackend())

	api := Open(ctx, backend, opts...)
	api.AddOrder(ctx, Order{ID: "chk", UserID: "u3", Total: 1200, Status: StatusPending, Date: testNow})

	worker := Open(ctx, backend, opts...)
	require.True(t, worker.UpdateOrder(ctx, "chk", OrderPatch{Status: ptr(StatusProcessing)}))

	require.NoError(t, api.Refresh(ctx))
	o, ok := api.Order("chk")
	require.True(t, ok)
	assert.Equal(t, StatusProcessing, o.Status)

	// an unrelated write must not bring back the stale status
	worker.UpdateOrder(ctx, "chk", OrderPatch{Status: ptr(StatusShipped)})
	require.NoError(t, api.AddAnnouncement(ctx, "Free shipping"))
	stored, ok := storedOrder(t, backend, "chk")
	require.True(t, ok)
	assert.Equal(t, StatusShipped, stored.Status)
}

func TestRefresh_NoopWhenNotShared(t *testing.T) {
	ctx := context.Background()
	backend := snapshot.NewMemory()
	s := Open(ctx, backend, testOptions()...)

	other := Open(ctx, backend, testOptions()...)
	require.NoError(t, other.AddAnnouncement(ctx, "elsewhere"))

	require.NoError(t, s.Refresh(ctx))
	assert.Len(t, s.Announcements(), 4)
}

func TestOpen_CustomKey(t *testing.T) {
	backend := snapshot.NewMemory()
	Open(context.Background(), backend, append(testOptions(), WithKey("tenantA"))...)

	_, err := backend.Load(context.Background(), "tenantA")
	assert.NoError(t, err)
	_, err = backend.Load(context.Background(), StorageKey)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestOpen_OlderSchemaMissingCollections(t *testing.T) {
	backend := snapshot.NewMemory()
	require.NoError(t, backend.Save(context.Background(), StorageKey,
		[]byte(`{"announcements":["hello"],"legacyField":true}`)))

	s := Open(context.Background(), backend, testOptions()...)
	d := s.Snapshot()
	assert.Equal(t, []string{"hello"}, d.Announcements)
	assert.NotNil(t, d.Products)
	assert.Empty(t, d.Orders)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := snapshot.NewMemory()
	s := Open(ctx, backend, testOptions()...)

	s.AddCoupon(ctx, Coupon{ID: "c1", Code: "save10", Type: DiscountPercent, Amount: 10, UsageLimit: ptr(5), Active: true})
	s.AddOrder(ctx, Order{ID: "o99", UserID: "u3", Total: 1234.5, Status: StatusPending, Date: testNow})
	s.AddBanner(ctx, Banner{Title: "Sale"})
	s.UpdateProduct(ctx, "4", ProductPatch{Images: &[]string{}})

	reloaded := Open(ctx, backend, testOptions()...)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
}

func TestSaveFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{loadErr: snapshot.ErrNotFound}
	s := Open(ctx, backend, testOptions()...)

	s.AddProduct(ctx, Product{ID: "p1", Title: "Lamp", Price: 999})
	_, ok := s.Product("p1")
	assert.True(t, ok, "in-memory state still changes when saving fails")
	assert.Equal(t, 2, backend.saves)
}

func TestEveryMutationSaves(t *testing.T) {
	ctx := context.Background()
	s, backend := openWith(t, Data{})
	base := backend.Saves()

	s.AddProduct(ctx, Product{ID: "p1"})
	require.NoError(t, s.AddAnnouncement(ctx, "hi"))
	s.AddBanner(ctx, Banner{})
	s.AddCoupon(ctx, Coupon{ID: "c1"})
	s.AddOrder(ctx, Order{ID: "o1"})
	assert.Equal(t, base+5, backend.Saves())

	// misses change nothing and write nothing
	s.UpdateProduct(ctx, "missing", ProductPatch{Title: ptr("x")})
	s.DeleteCoupon(ctx, "missing")
	assert.Equal(t, base+5, backend.Saves())
}

func TestUpdateProduct_OnlyPatchedFields(t *testing.T) {
	ctx := context.Background()
	s, _ := openWith(t, Data{Products: []Product{
		{ID: "p1", Title: "Kettle", Price: 1500, Rating: 4.1, Reviews: 10, Image: "https://img/k.png", Images: []string{"https://img/k2.png"}, InStock: true, StockCount: 3},
		{ID: "p2", Title: "Toaster", Price: 2500},
	}})
	before := s.Products()

	ok := s.UpdateProduct(ctx, "p1", ProductPatch{Price: ptr(1299.0), InStock: ptr(false)})
	require.True(t, ok)

	after := s.Products()
	want := before[0]
	want.Price = 1299
	want.InStock = false
	assert.Equal(t, want, after[0])
	assert.Equal(t, before[1], after[1])
}

func TestDeleteThenUpdateIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := openWith(t, Data{
		Products: []Product{{ID: "p1"}, {ID: "p2"}},
		Banners:  []Banner{{ID: 1}, {ID: 2}},
		Coupons:  []Coupon{{ID: "c1", Code: "A"}},
	})

	require.True(t, s.DeleteProduct(ctx, "p1"))
	assert.False(t, s.UpdateProduct(ctx, "p1", ProductPatch{Title: ptr("back")}))
	_, ok := s.Product("p1")
	assert.False(t, ok)
	assert.Len(t, s.Products(), 1)
	assert.False(t, s.DeleteProduct(ctx, "p1"))

	require.True(t, s.RemoveBanner(ctx, 1))
	assert.False(t, s.UpdateBanner(ctx, 1, BannerPatch{Title: ptr("x")}))
	assert.Equal(t, []Banner{{ID: 2}}, s.Banners())

	require.True(t, s.DeleteCoupon(ctx, "c1"))
	assert.False(t, s.UpdateCoupon(ctx, "c1", CouponPatch{Active: ptr(true)}))
	assert.Empty(t, s.Coupons())
}

func TestAnnouncements(t *testing.T) {
	ctx := context.Background()
	s, _ := openWith(t, Data{Announcements: []string{"a", "b", "c"}})
	before := s.Announcements()

	require.NoError(t, s.AddAnnouncement(ctx, "d"))
	require.NoError(t, s.RemoveAnnouncement(ctx, len(s.Announcements())-1))
	assert.Equal(t, before, s.Announcements())

	require.NoError(t, s.UpdateAnnouncement(ctx, 1, "B"))
	require.NoError(t, s.RemoveAnnouncement(ctx, 0))
	assert.Equal(t, []string{"B", "c"}, s.Announcements())

	assert.ErrorIs(t, s.AddAnnouncement(ctx, "   "), ErrEmptyAnnouncement)
	assert.ErrorIs(t, s.UpdateAnnouncement(ctx, 2, "x"), ErrAnnouncementIndex)
	assert.ErrorIs(t, s.UpdateAnnouncement(ctx, -1, "x"), ErrAnnouncementIndex)
	assert.ErrorIs(t, s.RemoveAnnouncement(ctx, 5), ErrAnnouncementIndex)
	assert.Equal(t, []string{"B", "c"}, s.Announcements())
}

func TestAddBanner_AutoID(t *testing.T) {
	ctx := context.Background()

	s, _ := openWith(t, Data{Banners: []Banner{{ID: 1}, {ID: 3}}})
	b := s.AddBanner(ctx, Banner{Title: "New"})
	assert.Equal(t, 4, b.ID)
	assert.Equal(t, 4, s.Banners()[2].ID)

	explicit := s.AddBanner(ctx, Banner{ID: 10})
	assert.Equal(t, 10, explicit.ID)

	empty, _ := openWith(t, Data{})
	assert.Equal(t, 1, empty.AddBanner(ctx, Banner{}).ID)
}

func TestUpdateBanner(t *testing.T) {
	ctx := context.Background()
	s, _ := openWith(t, Data{Banners: []Banner{{ID: 1, Title: "Old", Subtitle: "keep", Badge: "HOT"}}})

	require.True(t, s.UpdateBanner(ctx, 1, BannerPatch{Title: ptr("New"), BgColor: ptr("from-red-400")}))
	assert.Equal(t, Banner{ID: 1, Title: "New", Subtitle: "keep", Badge: "HOT", BgColor: "from-red-400"}, s.Banners()[0])
}

func TestCoupons(t *testing.T) {
	ctx := context.Background()
	s, _ := openWith(t, Data{})

	// the store does not enforce percent <= 100 or date ordering
	c := s.AddCoupon(ctx, Coupon{ID: "c1", Code: " welcome150 ", Type: DiscountPercent, Amount: 150, StartDate: "2025-05-01", EndDate: "2025-04-01", Active: true})
	assert.Equal(t, "WELCOME150", c.Code)
	assert.Equal(t, c, s.Coupons()[0])

	require.True(t, s.UpdateCoupon(ctx, "c1", CouponPatch{Code: ptr("vip"), Active: ptr(false), UsageLimit: ptr(3)}))
	got := s.Coupons()[0]
	assert.Equal(t, "VIP", got.Code)
	assert.False(t, got.Active)
	assert.Equal(t, 3, *got.UsageLimit)
	assert.Equal(t, 150.0, got.Amount)
	assert.Equal(t, "2025-05-01", got.StartDate)
}

func TestUpdateUserRole(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, snapshot.NewMemory(), testOptions()...)

	require.True(t, s.UpdateUserRole(ctx, "u3", RoleManager))
	assert.False(t, s.UpdateUserRole(ctx, "u404", RoleAdmin))

	users := s.Users()
	assert.Equal(t, RoleManager, users[2].Role)
	assert.Equal(t, "Jane Customer", users[2].Name)
	assert.Equal(t, RoleAdmin, users[0].Role)
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s, _ := openWith(t, Data{Orders: []Order{{ID: "o1", Status: StatusPending}}})

	s.AddOrder(ctx, Order{ID: "o2", Status: StatusPending, Total: 10, Date: testNow})
	s.AddOrder(ctx, Order{ID: "o3", Status: StatusPending, Total: 20, Date: testNow})

	orders := s.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, []string{"o3", "o2", "o1"}, []string{orders[0].ID, orders[1].ID, orders[2].ID})

	require.True(t, s.UpdateOrder(ctx, "o2", OrderPatch{Status: ptr(StatusShipped)}))
	o2, ok := s.Order("o2")
	require.True(t, ok)
	assert.Equal(t, StatusShipped, o2.Status)
	assert.Equal(t, 10.0, o2.Total)
	assert.True(t, o2.Date.Equal(testNow))

	assert.False(t, s.UpdateOrder(ctx, "o404", OrderPatch{Status: ptr(StatusCancelled)}))
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := openWith(t, Data{Products: []Product{{ID: "p1", Images: []string{"a"}}}})

	d := s.Snapshot()
	d.Products[0].Images[0] = "mutated"
	d.Products[0].Title = "mutated"

	p, _ := s.Product("p1")
	assert.Equal(t, "a", p.Images[0])
	assert.Empty(t, p.Title)
}
