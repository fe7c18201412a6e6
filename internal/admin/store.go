// Package admin holds the storefront's admin aggregate: products,
// announcements, banners, coupons, users and orders. Every mutation replaces
// the aggregate and saves a full snapshot through a snapshot.Backend.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/imrishuroy/storefront-admin/internal/snapshot"
)

// StorageKey is the snapshot key used unless WithKey overrides it.
const StorageKey = "adminData"

var (
	// ErrAnnouncementIndex is returned for an index outside the announcement list.
	ErrAnnouncementIndex = errors.New("announcement index out of range")
	// ErrEmptyAnnouncement is returned when adding a blank announcement.
	ErrEmptyAnnouncement = errors.New("announcement message is empty")
)

// ErrSnapshotUnavailable is returned by Load when the backend fails for a
// reason other than a missing snapshot.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

// errCorruptSnapshot marks a stored snapshot that is not valid JSON.
var errCorruptSnapshot = errors.New("snapshot is not valid JSON")

// Store owns the aggregate. It is safe for concurrent use; mutations are
// serialised and each one ends with a save of the whole snapshot.
type Store struct {
	mu      sync.RWMutex
	data    Data
	backend snapshot.Backend
	key     string
	log     zerolog.Logger
	nowFunc func() time.Time
	loc     *time.Location
	rng     *rand.Rand

	// shared: other processes write the same snapshot.
	shared bool
	// detached: the backend could not be read, so data is a stand-in that
	// must not overwrite what is stored.
	detached bool
}

// Option configures Open.
type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now for seeding and revenue windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFunc = now }
}

// WithLocation sets the wall-clock zone revenue windows are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithRand fixes the random source used by the seed dataset.
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) { s.rng = rng }
}

// WithSharedBackend is for a backend that other processes also write, such
// as the api and the worker sharing a DynamoDB table. The store then re-reads
// the snapshot before every mutation and on Refresh. Concurrent writers
// still follow last writer wins.
func WithSharedBackend() Option {
	return func(s *Store) { s.shared = true }
}

// Open restores the last snapshot from backend and never fails. A missing or
// corrupt snapshot is replaced by the seed dataset, which is saved. When the
// backend itself fails the store serves the seed without saving it, and
// reattaches on the first later read that succeeds.
func Open(ctx context.Context, backend snapshot.Backend, opts ...Option) *Store {
	s, err := Load(ctx, backend, opts...)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("snapshot load failed, serving seed data without saving")
	}
	return s
}

// Load is Open for callers that must not proceed on a backend failure. The
// returned store is usable even when err wraps ErrSnapshotUnavailable.
func Load(ctx context.Context, backend snapshot.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		key:     StorageKey,
		log:     zerolog.Nop(),
		nowFunc: time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(s.nowFunc().UnixNano()), 0x5eed))
	}

	data, err := s.read(ctx)
	switch {
	case err == nil:
		s.data = data
	case errors.Is(err, snapshot.ErrNotFound):
		s.log.Info().Str("key", s.key).Msg("no snapshot found, using seed data")
		s.data = Seed(s.nowFunc(), s.rng)
		s.persist(ctx, s.data)
	case errors.Is(err, errCorruptSnapshot):
		s.log.Warn().Err(err).Str("key", s.key).Msg("replacing unreadable snapshot with seed data")
		s.data = Seed(s.nowFunc(), s.rng)
		s.persist(ctx, s.data)
	default:
		s.data = Seed(s.nowFunc(), s.rng)
		s.detached = true
		return s, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	return s, nil
}

func (s *Store) read(ctx context.Context) (Data, error) {
	raw, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return Data{}, err
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("%w: %v", errCorruptSnapshot, err)
	}
	d.normalize()
	return d, nil
}

// Refresh re-reads the snapshot for a shared or detached store and is a
// no-op otherwise. On error the cached state stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shared && !s.detached {
		return nil
	}
	return s.syncLocked(ctx)
}

// syncLocked replaces the cached aggregate with the stored one. A missing or
// corrupt snapshot leaves the cache as is and lets the next save replace it.
func (s *Store) syncLocked(ctx context.Context) error {
	data, err := s.read(ctx)
	switch {
	case err == nil:
		s.data = data
	case errors.Is(err, snapshot.ErrNotFound), errors.Is(err, errCorruptSnapshot):
	default:
		return fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	if s.detached {
		s.log.Info().Str("key", s.key).Msg("snapshot readable again")
		s.detached = false
	}
	return nil
}

// persist is the save-after-mutate hook. Failures are logged only.
func (s *Store) persist(ctx context.Context, d Data) {
	raw, err := json.Marshal(d)
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot marshal failed")
		return
	}
	if err := s.backend.Save(ctx, s.key, raw); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("snapshot save failed")
	}
}

// mutate runs fn against a copy of the aggregate. When fn reports a change the
// copy replaces the current aggregate and is saved. A detached store keeps
// the change in memory only.
func (s *Store) mutate(ctx context.Context, fn func(d *Data) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shared || s.detached {
		if err := s.syncLocked(ctx); err != nil {
			s.log.Warn().Err(err).Str("key", s.key).Msg("mutating cached snapshot")
		}
	}

	next := s.data.Clone()
	if !fn(&next) {
		return false
	}
	s.data = next
	if s.detached {
		s.log.Warn().Str("key", s.key).Msg("snapshot not loaded, change kept in memory only")
		return true
	}
	s.persist(ctx, next)
	return true
}

// Snapshot returns a deep copy of the aggregate.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *Store) Products() []Product     { return s.Snapshot().Products }
func (s *Store) Announcements() []string { return s.Snapshot().Announcements }
func (s *Store) Banners() []Banner       { return s.Snapshot().Banners }
func (s *Store) Coupons() []Coupon       { return s.Snapshot().Coupons }
func (s *Store) Users() []User           { return s.Snapshot().Users }
func (s *Store) Orders() []Order         { return s.Snapshot().Orders }

func (s *Store) Product(id string) (Product, bool) {
	for _, p := range s.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *Store) Coupon(id string) (Coupon, bool) {
	for _, c := range s.Coupons() {
		if c.ID == id {
			return c, true
		}
	}
	return Coupon{}, false
}

func (s *Store) Order(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.data.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Products

// AddProduct appends p. The caller supplies a unique id.
func (s *Store) AddProduct(ctx context.Context, p Product) {
	p.Images = cloneImages(p.Images)
	s.mutate(ctx, func(d *Data) bool {
		d.Products = append(d.Products, p)
		return true
	})
}

// UpdateProduct merges patch into the product with id and reports whether
// one matched.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch ProductPatch) bool {
	return s.mutate(ctx, func(d *Data) bool {
		for i := range d.Products {
			if d.Products[i].ID == id {
				d.Products[i] = patch.apply(d.Products[i])
				return true
			}
		}
		return false
	})
}

func (s *Store) DeleteProduct(ctx context.Context, id string) bool {
	return s.mutate(ctx, func(d *Data) bool {
		return removeWhere(&d.Products, func(p Product) bool { return p.ID == id })
	})
}

// Announcements are addressed by position. Removing one shifts the later
// indices down by one.

func (s *Store) AddAnnouncement(ctx context.Context, msg string) error {
	if strings.TrimSpace(msg) == "" {
		return ErrEmptyAnnouncement
	}
	s.mutate(ctx, func(d *Data) bool {
		d.Announcements = append(d.Announcements, msg)
		return true
	})
	return nil
}

func (s *Store) UpdateAnnouncement(ctx context.Context, index int, msg string) error {
	var err error
	s.mutate(ctx, func(d *Data) bool {
		if index < 0 || index >= len(d.Announcements) {
			err = ErrAnnouncementIndex
			return false
		}
		d.Announcements[index] = msg
		return true
	})
	return err
}

func (s *Store) RemoveAnnouncement(ctx context.Context, index int) error {
	var err error
	s.mutate(ctx, func(d *Data) bool {
		if index < 0 || index >= len(d.Announcements) {
			err = ErrAnnouncementIndex
			return false
		}
		d.Announcements = append(d.Announcements[:index], d.Announcements[index+1:]...)
		return true
	})
	return err
}

// Banners

// AddBanner appends b and returns it. A zero id is replaced by one more than
// the largest existing id, or 1 for an empty list.
func (s *Store) AddBanner(ctx context.Context, b Banner) Banner {
	s.mutate(ctx, func(d *Data) bool {
		if b.ID == 0 {
			b.ID = nextBannerID(d.Banners)
		}
		d.Banners = append(d.Banners, b)
		return true
	})
	return b
}

func nextBannerID(banners []Banner) int {
	highest := 0
	for _, b := range banners {
		if b.ID > highest {
			highest = b.ID
		}
	}
	return highest + 1
}

func (s *Store) UpdateBanner(ctx context.Context, id int, patch BannerPatch) bool {
	return s.mutate(ctx, func(d *Data) bool {
		for i := range d.Banners {
			if d.Banners[i].ID == id {
				d.Banners[i] = patch.apply(d.Banners[i])
				return true
			}
		}
		return false
	})
}

func (s *Store) RemoveBanner(ctx context.Context, id int) bool {
	return s.mutate(ctx, func(d *Data) bool {
		return removeWhere(&d.Banners, func(b Banner) bool { return b.ID == id })
	})
}

// Coupons. Codes are stored trimmed and upper-cased; amounts and dates are
// stored as given.

func (s *Store) AddCoupon(ctx context.Context, c Coupon) Coupon {
	c.Code = normalizeCode(c.Code)
	if c.UsageLimit != nil {
		limit := *c.UsageLimit
		c.UsageLimit = &limit
	}
	s.mutate(ctx, func(d *Data) bool {
		d.Coupons = append(d.Coupons, c)
		return true
	})
	return c
}

func (s *Store) UpdateCoupon(ctx context.Context, id string, patch CouponPatch) bool {
	return s.mutate(ctx, func(d *Data) bool {
		for i := range d.Coupons {
			if d.Coupons[i].ID == id {
				d.Coupons[i] = patch.apply(d.Coupons[i])
				return true
			}
		}
		return false
	})
}

func (s *Store) DeleteCoupon(ctx context.Context, id string) bool {
	return s.mutate(ctx, func(d *Data) bool {
		return removeWhere(&d.Coupons, func(c Coupon) bool { return c.ID == id })
	})
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Users can only have their role changed.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role Role) bool {
	return s.mutate(ctx, func(d *Data) bool {
		for i := range d.Users {
			if d.Users[i].ID == id {
				d.Users[i].Role = role
				return true
			}
		}
		return false
	})
}

// Orders are kept newest first and are never deleted.

// AddOrder puts o at the front of the order list.
func (s *Store) AddOrder(ctx context.Context, o Order) {
	o.Date = o.Date.UTC()
	s.mutate(ctx, func(d *Data) bool {
		d.Orders = append([]Order{o}, d.Orders...)
		return true
	})
}

func (s *Store) UpdateOrder(ctx context.Context, id string, patch OrderPatch) bool {
	if patch.Date != nil {
		utc := patch.Date.UTC()
		patch.Date = &utc
	}
	return s.mutate(ctx, func(d *Data) bool {
		for i := range d.Orders {
			if d.Orders[i].ID == id {
				d.Orders[i] = patch.apply(d.Orders[i])
				return true
			}
		}
		return false
	})
}

// removeWhere drops every element matching match and reports whether any did.
func removeWhere[T any](items *[]T, match func(T) bool) bool {
	kept := (*items)[:0]
	removed := false
	for _, it := range *items {
		if match(it) {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	*items = kept
	return removed
}
