package dispatch

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// timerEntry is one pending offer expiry.
type timerEntry struct {
	offerID   string
	missionID string
	at        time.Time
	index     int
}

type entryHeap []*timerEntry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *entryHeap) Push(x any)        { e := x.(*timerEntry); e.index = len(*h); *h = append(*h, e) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// timerWheel multiplexes all offer expiries onto a single min-heap polled by
// one scheduling loop, instead of one OS timer per offer.
type timerWheel struct {
	mu      sync.Mutex
	entries entryHeap
	byOffer map[string]*timerEntry
	wake    chan struct{}
	fire    func(offerID, missionID string)
	now     func() time.Time
}

func newTimerWheel(fire func(offerID, missionID string)) *timerWheel {
	return &timerWheel{
		byOffer: make(map[string]*timerEntry),
		wake:    make(chan struct{}, 1),
		fire:    fire,
		now:     time.Now,
	}
}

// Schedule registers an expiry for the offer, replacing any previous one.
func (w *timerWheel) Schedule(offerID, missionID string, at time.Time) {
	w.mu.Lock()
	if e, ok := w.byOffer[offerID]; ok {
		heap.Remove(&w.entries, e.index)
	}
	e := &timerEntry{offerID: offerID, missionID: missionID, at: at}
	heap.Push(&w.entries, e)
	w.byOffer[offerID] = e
	w.mu.Unlock()
	w.wakeup()
}

// Cancel drops the offer's expiry. Safe to call for unknown offers.
func (w *timerWheel) Cancel(offerID string) {
	w.mu.Lock()
	if e, ok := w.byOffer[offerID]; ok {
		heap.Remove(&w.entries, e.index)
		delete(w.byOffer, offerID)
	}
	w.mu.Unlock()
	w.wakeup()
}

// Pending returns the number of scheduled expiries.
func (w *timerWheel) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

func (w *timerWheel) wakeup() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run polls the heap until the context is cancelled, firing due expiries.
func (w *timerWheel) Run(ctx context.Context) {
	for {
		w.mu.Lock()
		if len(w.entries) == 0 {
			w.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-w.wake:
			}
			continue
		}
		next := w.entries[0]
		delay := next.at.Sub(w.now())
		if delay <= 0 {
			heap.Pop(&w.entries)
			delete(w.byOffer, next.offerID)
			w.mu.Unlock()
			w.fire(next.offerID, next.missionID)
			continue
		}
		w.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}
