package quota

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQuotaExhausted is returned by TryReserve when the country's window is at
// its configured maximum. Callers treat it as a ranking-exclusion signal, not
// a fatal error.
var ErrQuotaExhausted = errors.New("quota: exhausted")

// ErrUnknownReservation is returned by Commit and Release for reservation IDs
// the ledger does not hold.
var ErrUnknownReservation = errors.New("quota: unknown reservation")

// Limits bounds the allocations granted to one country per rolling window.
type Limits struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type key struct {
	country string
	window  string
}

type counter struct {
	granted  int
	reserved int
}

type reservation struct {
	key       key
	expiresAt time.Time
}

// Ledger tracks granted and reserved allocations per (country, window) pair.
// Reservations are provisional holds that expire after a bounded time so a
// stalled dispatch attempt cannot starve the quota. All operations are
// linearizable: two concurrent TryReserve calls for the last remaining slot
// never both succeed.
type Ledger struct {
	mu           sync.Mutex
	limits       map[string]Limits
	windowDays   int
	ttl          time.Duration
	counters     map[key]*counter
	reservations map[string]reservation
	now          func() time.Time
}

// NewLedger creates a ledger for the configured country limits. Countries
// absent from limits are unconstrained; their reservations are still tracked
// so Commit and Release behave uniformly.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{
		limits:       cfg.Countries,
		windowDays:   cfg.WindowDays,
		ttl:          time.Duration(cfg.ReservationTTLSeconds) * time.Second,
		counters:     make(map[key]*counter),
		reservations: make(map[string]reservation),
		now:          time.Now,
	}
}

// WindowID returns the allocation window containing t.
func (l *Ledger) WindowID(t time.Time) string {
	days := l.windowDays
	if days <= 0 {
		days = 30
	}
	return fmt.Sprintf("w%d", t.UTC().Unix()/(int64(days)*86400))
}

// TryReserve places a provisional hold against the country's window. It
// returns ErrQuotaExhausted when granted plus reserved holds already reach the
// configured maximum.
func (l *Ledger) TryReserve(country, windowID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(l.now())

	k := key{country: country, window: windowID}
	c := l.counters[k]
	if c == nil {
		c = &counter{}
		l.counters[k] = c
	}
	if lim, ok := l.limits[country]; ok && c.granted+c.reserved >= lim.Max {
		return "", fmt.Errorf("%w: %s/%s", ErrQuotaExhausted, country, windowID)
	}
	id := uuid.NewString()
	c.reserved++
	l.reservations[id] = reservation{key: k, expiresAt: l.now().Add(l.reservationTTL())}
	return id, nil
}

// Renew extends a reservation so it survives at least until the given time
// plus the base TTL. Dispatch holds span waves whose timeouts exceed the
// TTL; without renewal the sweep would free the slot to a competing mission
// while providers are still answering.
func (l *Ledger) Renew(reservationID string, until time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[reservationID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReservation, reservationID)
	}
	if deadline := until.Add(l.reservationTTL()); deadline.After(r.expiresAt) {
		r.expiresAt = deadline
		l.reservations[reservationID] = r
	}
	return nil
}

// Commit converts a reservation into a permanent grant. Only called once an
// offer is actually accepted.
func (l *Ledger) Commit(reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[reservationID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReservation, reservationID)
	}
	delete(l.reservations, reservationID)
	c := l.counters[r.key]
	c.reserved--
	c.granted++
	return nil
}

// Release frees a reservation back to the pool.
func (l *Ledger) Release(reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[reservationID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReservation, reservationID)
	}
	delete(l.reservations, reservationID)
	l.counters[r.key].reserved--
	return nil
}

// Sweep releases reservations whose hold expired and returns how many were
// freed. The dispatcher runs this periodically as a janitor.
func (l *Ledger) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now())
}

func (l *Ledger) sweepLocked(now time.Time) int {
	n := 0
	for id, r := range l.reservations {
		if now.After(r.expiresAt) {
			delete(l.reservations, id)
			l.counters[r.key].reserved--
			n++
		}
	}
	return n
}

// Granted returns the committed allocation count for the pair.
func (l *Ledger) Granted(country, windowID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c := l.counters[key{country: country, window: windowID}]; c != nil {
		return c.granted
	}
	return 0
}

// Exhausted reports whether no further reservation can succeed for the pair.
func (l *Ledger) Exhausted(country, windowID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limits[country]
	if !ok {
		return false
	}
	c := l.counters[key{country: country, window: windowID}]
	if c == nil {
		return lim.Max <= 0
	}
	return c.granted+c.reserved >= lim.Max
}

// Headroom returns how many reservations the pair can still take, or -1 when
// the country is unconstrained.
func (l *Ledger) Headroom(country, windowID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limits[country]
	if !ok {
		return -1
	}
	c := l.counters[key{country: country, window: windowID}]
	if c == nil {
		return lim.Max
	}
	h := lim.Max - c.granted - c.reserved
	if h < 0 {
		h = 0
	}
	return h
}

// WindowState is a point-in-time snapshot of one (country, window) counter.
type WindowState struct {
	Country  string `json:"country"`
	Window   string `json:"window"`
	Granted  int    `json:"granted"`
	Reserved int    `json:"reserved"`
	Max      int    `json:"max"`
}

// Snapshot returns the current counters, used to audit quota state at
// decision time.
func (l *Ledger) Snapshot() []WindowState {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]WindowState, 0, len(l.counters))
	for k, c := range l.counters {
		max := 0
		if lim, ok := l.limits[k.country]; ok {
			max = lim.Max
		}
		out = append(out, WindowState{
			Country:  k.country,
			Window:   k.window,
			Granted:  c.granted,
			Reserved: c.reserved,
			Max:      max,
		})
	}
	return out
}

func (l *Ledger) reservationTTL() time.Duration {
	if l.ttl <= 0 {
		return 30 * time.Second
	}
	return l.ttl
}

// SetClock overrides the time source, for tests.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }
