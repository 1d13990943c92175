package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koryxa/dispatch/core/audit"
	"github.com/koryxa/dispatch/core/events"
	"github.com/koryxa/dispatch/core/logger"
	"github.com/koryxa/dispatch/core/metrics"
	"github.com/koryxa/dispatch/core/model"
	"github.com/koryxa/dispatch/core/needindex"
	"github.com/koryxa/dispatch/core/notify"
	"github.com/koryxa/dispatch/core/quota"
	"github.com/koryxa/dispatch/core/rank"
	"github.com/koryxa/dispatch/internal/eventbus"
)

// MissionSpec is the inbound request to create a mission.
type MissionSpec struct {
	RequesterID string         `json:"requester_id"`
	Title       string         `json:"title"`
	Skills      []string       `json:"skills"`
	Country     string         `json:"country"`
	Deadline    time.Time      `json:"deadline"`
	BudgetEUR   float64        `json:"budget_eur"`
	Mode        model.WorkMode `json:"mode"`
	Tier        string         `json:"tier"`
}

// MissionView is the read model returned to the API layer.
type MissionView struct {
	Mission model.Mission `json:"mission"`
	Offers  []model.Offer `json:"offers"`
}

// missionState holds the per-mission dispatch state. Its mutex is the
// single-writer critical section: accept, refuse, expiry and cancellation
// for one mission are serialized through it, so the state machine never
// observes two conflicting terminal transitions for the same wave.
type missionState struct {
	mu               sync.Mutex
	mission          model.Mission
	pool             []model.Provider
	ranked           []rank.Candidate
	nextIdx          int
	wave             int
	offers           map[string]*model.Offer
	windowID         string
	reservation      string
	quotaTruncated   bool
	poolEmptyAtStart bool
	reranked         bool
}

// Dispatcher runs the mission offer state machine: it carves ranked
// candidates into waves, tracks per-offer expiries on a shared timer wheel,
// reacts to accept/refuse/timeout events and escalates when a wave budget is
// exhausted. Concurrency is scoped per mission; the quota ledger is the only
// cross-mission shared resource.
type Dispatcher struct {
	cfg       Config
	ranker    *rank.Ranker
	ledger    *quota.Ledger
	need      *needindex.Scorer
	providers ProviderDirectory
	notifier  notify.Notifier
	store     audit.Store
	sink      metrics.MetricsSink
	bus       *eventbus.Bus[any]
	log       logger.Logger
	wheel     *timerWheel
	now       func() time.Time

	mu       sync.Mutex
	missions map[string]*missionState
	byOffer  map[string]string
}

// NewDispatcher creates a dispatcher. The audit store is mandatory: every
// state transition must be recorded.
func NewDispatcher(cfg Config, ranker *rank.Ranker, ledger *quota.Ledger, need *needindex.Scorer, dir ProviderDirectory, notifier notify.Notifier, store audit.Store, sink metrics.MetricsSink, bus *eventbus.Bus[any], log logger.Logger) (*Dispatcher, error) {
	if ranker == nil || ledger == nil || need == nil || dir == nil || store == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewDispatcher")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	d := &Dispatcher{
		cfg:       cfg,
		ranker:    ranker,
		ledger:    ledger,
		need:      need,
		providers: dir,
		notifier:  notifier,
		store:     store,
		sink:      sink,
		bus:       bus,
		log:       log,
		now:       time.Now,
		missions:  make(map[string]*missionState),
		byOffer:   make(map[string]string),
	}
	d.wheel = newTimerWheel(d.expire)
	return d, nil
}

// Run drives the timer wheel and the quota reservation janitor until the
// context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	go d.wheel.Run(ctx)
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := d.ledger.Sweep(); n > 0 {
				d.log.Infof("released %d expired quota reservations", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close releases resources held by the dispatcher.
func (d *Dispatcher) Close() error {
	if d.bus != nil {
		d.bus.Close()
	}
	return d.store.Close()
}

// CreateMission validates the spec, records the mission and immediately
// starts wave 1. Configuration and input errors are rejected here, never
// mid-dispatch.
func (d *Dispatcher) CreateMission(ctx context.Context, spec MissionSpec) (string, error) {
	tier, err := model.ParseTier(spec.Tier)
	if err != nil {
		return "", err
	}
	m := model.Mission{
		ID:          uuid.NewString(),
		RequesterID: spec.RequesterID,
		Title:       spec.Title,
		Skills:      spec.Skills,
		Country:     spec.Country,
		Deadline:    spec.Deadline,
		BudgetEUR:   spec.BudgetEUR,
		Mode:        spec.Mode,
		Tier:        tier,
		Status:      model.MissionDraft,
		CreatedAt:   d.now(),
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	if !d.need.Known(m.Country) {
		return "", fmt.Errorf("%w: %s", needindex.ErrUnknownCountry, m.Country)
	}
	if err := d.append(ctx, audit.Entry{MissionID: m.ID, Type: audit.EventMissionCreated}); err != nil {
		return "", err
	}
	ms := &missionState{mission: m, offers: make(map[string]*model.Offer)}
	d.mu.Lock()
	d.missions[m.ID] = ms
	d.mu.Unlock()

	if err := d.dispatch(ctx, ms); err != nil {
		return m.ID, err
	}
	return m.ID, nil
}

// dispatch ranks the pool, reserves quota for the mission's country and
// starts the first wave, or escalates right away when nothing is eligible.
func (d *Dispatcher) dispatch(ctx context.Context, ms *missionState) error {
	pool, err := d.providers.List(ctx)
	if err != nil {
		return fmt.Errorf("provider directory: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.mission
	ms.pool = pool
	ms.windowID = d.ledger.WindowID(d.now())

	// Quota for the opportunity's country must have headroom before any
	// offer is sent.
	resID, err := d.ledger.TryReserve(m.Country, ms.windowID)
	switch {
	case errors.Is(err, quota.ErrQuotaExhausted):
		// No allocation can be granted for the mission's country, so a
		// re-rank over provider countries must not resurrect the mission.
		ms.quotaTruncated = true
		ms.poolEmptyAtStart = true
		ms.reranked = true
		d.resolveLocked(ctx, ms)
		return nil
	case err != nil:
		return err
	}
	ms.reservation = resID

	ms.ranked = d.ranker.Rank(m, pool, d.need, d.ledger, ms.windowID)
	ms.quotaTruncated = d.ranker.QuotaExcluded(m, pool, d.ledger, ms.windowID) > 0
	if len(ms.ranked) == 0 {
		ms.poolEmptyAtStart = true
		d.resolveLocked(ctx, ms)
		return nil
	}
	ms.mission.Status = model.MissionDispatching
	return d.startWaveLocked(ctx, ms)
}

// ensureReservationLocked keeps the mission's quota slot held, renewing the
// existing hold or taking a fresh one when the janitor already swept it.
// Caller holds ms.mu.
func (d *Dispatcher) ensureReservationLocked(ms *missionState, until time.Time) error {
	if ms.reservation != "" {
		if err := d.ledger.Renew(ms.reservation, until); err == nil {
			return nil
		}
		ms.reservation = ""
	}
	id, err := d.ledger.TryReserve(ms.mission.Country, ms.windowID)
	if err != nil {
		return err
	}
	ms.reservation = id
	return nil
}

// startWaveLocked opens wave k+1 with the next slice of ranked candidates.
// Caller holds ms.mu.
func (d *Dispatcher) startWaveLocked(ctx context.Context, ms *missionState) error {
	now := d.now()
	expiresAt := now.Add(d.cfg.TimeoutFor(ms.mission.Tier))
	// The hold must outlive the wave: its base TTL is shorter than the
	// wave timeout, and a swept hold would hand the slot to a competing
	// mission while providers are still answering.
	if err := d.ensureReservationLocked(ms, expiresAt); err != nil {
		return err
	}

	ms.wave++
	remaining := len(ms.ranked) - ms.nextIdx
	size := d.cfg.WaveSize(ms.wave, remaining)
	batch := ms.ranked[ms.nextIdx : ms.nextIdx+size]
	offers := make([]*model.Offer, 0, len(batch))
	entries := make([]audit.Entry, 0, len(batch)+1)
	entries = append(entries, audit.Entry{
		MissionID: ms.mission.ID,
		Type:      audit.EventWaveStarted,
		Wave:      ms.wave,
	})
	for _, c := range batch {
		o := &model.Offer{
			ID:            uuid.NewString(),
			MissionID:     ms.mission.ID,
			ProviderID:    c.Provider.ID,
			Wave:          ms.wave,
			Status:        model.OfferPending,
			SentAt:        now,
			ExpiresAt:     expiresAt,
			FitScore:      c.Fit,
			FairnessScore: c.Fairness,
			RecencyScore:  c.Recency,
		}
		offers = append(offers, o)
		entries = append(entries, audit.Entry{
			MissionID:  ms.mission.ID,
			Type:       audit.EventOfferSent,
			OfferID:    o.ID,
			ProviderID: o.ProviderID,
			Wave:       ms.wave,
		})
	}
	// Persist first: losing an offer transition silently would break the
	// at-most-one-acceptance invariant on replay.
	if err := d.appendBatch(ctx, entries); err != nil {
		ms.wave--
		return err
	}

	ms.nextIdx += size
	d.mu.Lock()
	for _, o := range offers {
		ms.offers[o.ID] = o
		d.byOffer[o.ID] = ms.mission.ID
	}
	d.mu.Unlock()

	for _, o := range offers {
		d.wheel.Schedule(o.ID, ms.mission.ID, o.ExpiresAt)
		offersSent.WithLabelValues(ms.mission.Tier.String()).Inc()
		d.publish(events.OfferEvent{
			MissionID:  ms.mission.ID,
			OfferID:    o.ID,
			ProviderID: o.ProviderID,
			Wave:       o.Wave,
			Status:     o.Status,
		})
		offer := *o
		go func() { _ = d.notifier.OfferPending(offer) }()
	}
	d.publish(events.WaveEvent{MissionID: ms.mission.ID, Wave: ms.wave, Offers: len(offers), Action: "started"})
	d.log.Infof("mission %s wave %d: %d offers sent", ms.mission.ID, ms.wave, len(offers))
	return nil
}

// Accept handles a provider accepting an offer. The first accept to enter
// the mission's critical section wins; later attempts observe a non-pending
// offer and get ErrOfferNoLongerActive.
func (d *Dispatcher) Accept(ctx context.Context, offerID, providerID string) error {
	ms, err := d.lookupByOffer(offerID)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	o := ms.offers[offerID]
	if o.ProviderID != providerID {
		return ErrOfferNotOwned
	}
	if o.Status != model.OfferPending || o.Wave != ms.wave || ms.mission.Status != model.MissionDispatching {
		return ErrOfferNoLongerActive
	}

	// The hold may have been swept while providers were answering. Take
	// the slot back before confirming; if another mission holds it now,
	// the accept fails rather than exceed the country's cap.
	if err := d.ensureReservationLocked(ms, d.now()); err != nil {
		return err
	}

	siblings := ms.pendingSiblings(offerID)
	entries := []audit.Entry{{
		MissionID:  ms.mission.ID,
		Type:       audit.EventOfferAccepted,
		OfferID:    o.ID,
		ProviderID: o.ProviderID,
		Wave:       o.Wave,
	}}
	for _, s := range siblings {
		entries = append(entries, audit.Entry{
			MissionID:  ms.mission.ID,
			Type:       audit.EventOfferCancelled,
			OfferID:    s.ID,
			ProviderID: s.ProviderID,
			Wave:       s.Wave,
		})
	}
	entries = append(entries, audit.Entry{
		MissionID: ms.mission.ID,
		Type:      audit.EventMissionConfirmed,
		Wave:      o.Wave,
	})
	if err := d.appendBatch(ctx, entries); err != nil {
		return err
	}

	now := d.now()
	o.Status = model.OfferAccepted
	for _, s := range siblings {
		s.Status = model.OfferCancelled
		d.wheel.Cancel(s.ID)
		d.publish(events.OfferEvent{MissionID: ms.mission.ID, OfferID: s.ID, ProviderID: s.ProviderID, Wave: s.Wave, Status: s.Status})
	}
	d.wheel.Cancel(o.ID)
	ms.mission.Status = model.MissionConfirmed
	if ms.reservation != "" {
		if err := d.ledger.Commit(ms.reservation); err != nil {
			d.log.Errorf("quota commit for mission %s: %v", ms.mission.ID, err)
		}
		ms.reservation = ""
	}

	latency := now.Sub(o.SentAt)
	offerOutcomes.WithLabelValues(o.Status.String()).Inc()
	missionsResolved.WithLabelValues(ms.mission.Status.String()).Inc()
	acceptLatency.WithLabelValues(ms.mission.Tier.String()).Observe(latency.Seconds())
	d.recordOffer(*o, latency)
	d.recordMission(ms)
	d.publish(events.OfferEvent{MissionID: ms.mission.ID, OfferID: o.ID, ProviderID: o.ProviderID, Wave: o.Wave, Status: o.Status, Latency: latency})
	d.publish(events.MissionEvent{MissionID: ms.mission.ID, Status: ms.mission.Status})

	m, offer := ms.mission, *o
	go func() { _ = d.notifier.MissionConfirmed(m, offer) }()
	d.log.Infof("mission %s confirmed by provider %s at wave %d", m.ID, providerID, o.Wave)
	return nil
}

// Refuse marks the offer refused. The wave keeps running until every offer
// in it is terminal.
func (d *Dispatcher) Refuse(ctx context.Context, offerID, providerID, comment string) error {
	ms, err := d.lookupByOffer(offerID)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	o := ms.offers[offerID]
	if o.ProviderID != providerID {
		return ErrOfferNotOwned
	}
	if o.Status != model.OfferPending || ms.mission.Status != model.MissionDispatching {
		return ErrOfferNoLongerActive
	}
	if err := d.append(ctx, audit.Entry{
		MissionID:  ms.mission.ID,
		Type:       audit.EventOfferRefused,
		OfferID:    o.ID,
		ProviderID: o.ProviderID,
		Wave:       o.Wave,
		Comment:    comment,
	}); err != nil {
		return err
	}
	o.Status = model.OfferRefused
	d.wheel.Cancel(o.ID)
	offerOutcomes.WithLabelValues(o.Status.String()).Inc()
	d.recordOffer(*o, 0)
	d.publish(events.OfferEvent{MissionID: ms.mission.ID, OfferID: o.ID, ProviderID: o.ProviderID, Wave: o.Wave, Status: o.Status})
	if ms.waveResolved() {
		d.resolveLocked(ctx, ms)
	}
	return nil
}

// expire is fired by the timer wheel when an offer's expiry passes.
func (d *Dispatcher) expire(offerID, missionID string) {
	ms, err := d.lookupByOffer(offerID)
	if err != nil {
		return
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	o := ms.offers[offerID]
	if o == nil || o.Status != model.OfferPending || ms.mission.Status != model.MissionDispatching {
		return
	}
	ctx := context.Background()
	if err := d.append(ctx, audit.Entry{
		MissionID:  missionID,
		Type:       audit.EventOfferExpired,
		OfferID:    o.ID,
		ProviderID: o.ProviderID,
		Wave:       o.Wave,
	}); err != nil {
		// The transition is not applied without its audit entry; retry
		// shortly instead of losing it.
		d.log.Errorf("audit append for expiry of offer %s: %v", o.ID, err)
		d.wheel.Schedule(o.ID, missionID, d.now().Add(5*time.Second))
		return
	}
	o.Status = model.OfferExpired
	offerOutcomes.WithLabelValues(o.Status.String()).Inc()
	d.recordOffer(*o, 0)
	d.publish(events.OfferEvent{MissionID: missionID, OfferID: o.ID, ProviderID: o.ProviderID, Wave: o.Wave, Status: o.Status})
	if ms.waveResolved() {
		d.resolveLocked(ctx, ms)
	}
}

// resolveLocked runs the escalation policy once a wave is resolved without
// acceptance. Caller holds ms.mu.
func (d *Dispatcher) resolveLocked(ctx context.Context, ms *missionState) {
	d.publish(events.WaveEvent{MissionID: ms.mission.ID, Wave: ms.wave, Action: "resolved"})

	// Bounded retry: when the pool was truncated solely by quota exclusion,
	// sweep stale reservations and re-rank once before deciding.
	if ms.nextIdx >= len(ms.ranked) && ms.quotaTruncated && !ms.reranked {
		ms.reranked = true
		d.ledger.Sweep()
		seen := make(map[string]struct{}, len(ms.offers))
		for _, o := range ms.offers {
			seen[o.ProviderID] = struct{}{}
		}
		var fresh []model.Provider
		for _, p := range ms.pool {
			if _, ok := seen[p.ID]; !ok {
				fresh = append(fresh, p)
			}
		}
		for _, c := range d.ranker.Rank(ms.mission, fresh, d.need, d.ledger, ms.windowID) {
			ms.ranked = append(ms.ranked, c)
		}
	}

	in := PolicyInput{
		WaveCount:        ms.wave,
		MaxWaves:         d.cfg.MaxWaves,
		PoolRemaining:    len(ms.ranked) - ms.nextIdx,
		QuotaTruncated:   ms.quotaTruncated,
		PoolEmptyAtStart: ms.poolEmptyAtStart,
	}
	dec := Decide(in)

	// The decision is recorded before any state transition.
	if err := d.append(ctx, audit.Entry{
		MissionID: ms.mission.ID,
		Type:      audit.EventEscalation,
		Wave:      ms.wave,
		Target:    string(dec.Target),
		Reasons:   reasonStrings(dec.Reasons),
		Quota:     d.ledger.Snapshot(),
	}); err != nil {
		d.log.Errorf("audit append for escalation of mission %s: %v", ms.mission.ID, err)
	}
	escalationsTotal.WithLabelValues(string(dec.Target)).Inc()
	if er, ok := d.sink.(metrics.EscalationRecorder); ok {
		if err := er.RecordEscalation(metrics.EscalationEvent{
			MissionID: ms.mission.ID,
			Target:    string(dec.Target),
			Reasons:   reasonStrings(dec.Reasons),
			Wave:      ms.wave,
			Time:      d.now(),
		}); err != nil {
			d.log.Errorf("escalation metrics error: %v", err)
		}
	}
	d.publish(events.EscalationEvent{MissionID: ms.mission.ID, Target: string(dec.Target), Reasons: reasonStrings(dec.Reasons)})
	d.log.Infof("mission %s wave %d escalation: %s (%v)", ms.mission.ID, ms.wave, dec.Target, dec.Reasons)

	switch dec.Target {
	case TargetNextWave:
		err := d.startWaveLocked(ctx, ms)
		if err == nil {
			break
		}
		d.log.Errorf("start wave for mission %s: %v", ms.mission.ID, err)
		if errors.Is(err, quota.ErrQuotaExhausted) {
			// The country's slot was lost between waves; no offer
			// sent now could ever confirm.
			d.escalateToHumanLocked(ctx, ms, []string{string(ReasonQuotaExhausted)})
		}
	case TargetHumanFallback:
		d.escalateToHumanLocked(ctx, ms, reasonStrings(dec.Reasons))
	}
}

// escalateToHumanLocked hands the mission to a human operator and releases
// any remaining quota hold. Caller holds ms.mu.
func (d *Dispatcher) escalateToHumanLocked(ctx context.Context, ms *missionState, reasons []string) {
	if err := d.append(ctx, audit.Entry{MissionID: ms.mission.ID, Type: audit.EventMissionEscalated, Wave: ms.wave}); err != nil {
		d.log.Errorf("audit append for mission %s: %v", ms.mission.ID, err)
	}
	ms.mission.Status = model.MissionEscalated
	d.releaseLocked(ms)
	missionsResolved.WithLabelValues(ms.mission.Status.String()).Inc()
	d.recordMission(ms)
	d.publish(events.MissionEvent{MissionID: ms.mission.ID, Status: ms.mission.Status})
	m := ms.mission
	go func() { _ = d.notifier.MissionEscalated(m, reasons) }()
}

// Cancel withdraws a mission: all pending offers are cancelled, their timers
// stopped and the quota reservation released.
func (d *Dispatcher) Cancel(ctx context.Context, missionID string) error {
	ms, err := d.lookup(missionID)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	switch ms.mission.Status {
	case model.MissionDraft, model.MissionDispatching:
	default:
		return ErrMissionNotActive
	}

	pending := ms.pendingSiblings("")
	entries := make([]audit.Entry, 0, len(pending)+1)
	for _, o := range pending {
		entries = append(entries, audit.Entry{
			MissionID:  missionID,
			Type:       audit.EventOfferCancelled,
			OfferID:    o.ID,
			ProviderID: o.ProviderID,
			Wave:       o.Wave,
		})
	}
	entries = append(entries, audit.Entry{MissionID: missionID, Type: audit.EventMissionCancelled})
	if err := d.appendBatch(ctx, entries); err != nil {
		return err
	}
	for _, o := range pending {
		o.Status = model.OfferCancelled
		d.wheel.Cancel(o.ID)
		offerOutcomes.WithLabelValues(o.Status.String()).Inc()
		d.publish(events.OfferEvent{MissionID: missionID, OfferID: o.ID, ProviderID: o.ProviderID, Wave: o.Wave, Status: o.Status})
	}
	ms.mission.Status = model.MissionCancelled
	d.releaseLocked(ms)
	missionsResolved.WithLabelValues(ms.mission.Status.String()).Inc()
	d.recordMission(ms)
	d.publish(events.MissionEvent{MissionID: missionID, Status: ms.mission.Status})
	d.log.Infof("mission %s cancelled with %d pending offers", missionID, len(pending))
	return nil
}

// CloseMission archives a confirmed or escalated mission.
func (d *Dispatcher) CloseMission(ctx context.Context, missionID string) error {
	ms, err := d.lookup(missionID)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.mission.Status != model.MissionConfirmed && ms.mission.Status != model.MissionEscalated {
		return ErrMissionNotActive
	}
	if err := d.append(ctx, audit.Entry{MissionID: missionID, Type: audit.EventMissionClosed}); err != nil {
		return err
	}
	ms.mission.Status = model.MissionClosed
	d.publish(events.MissionEvent{MissionID: missionID, Status: ms.mission.Status})
	return nil
}

// GetMission returns the mission and its offers, ordered by wave then
// provider.
func (d *Dispatcher) GetMission(missionID string) (MissionView, error) {
	ms, err := d.lookup(missionID)
	if err != nil {
		return MissionView{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	view := MissionView{Mission: ms.mission, Offers: make([]model.Offer, 0, len(ms.offers))}
	for _, o := range ms.offers {
		view.Offers = append(view.Offers, *o)
	}
	sort.Slice(view.Offers, func(i, j int) bool {
		if view.Offers[i].Wave != view.Offers[j].Wave {
			return view.Offers[i].Wave < view.Offers[j].Wave
		}
		return view.Offers[i].ProviderID < view.Offers[j].ProviderID
	})
	return view, nil
}

func (d *Dispatcher) lookup(missionID string) (*missionState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ms, ok := d.missions[missionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, missionID)
	}
	return ms, nil
}

func (d *Dispatcher) lookupByOffer(offerID string) (*missionState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	missionID, ok := d.byOffer[offerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOfferNotFound, offerID)
	}
	return d.missions[missionID], nil
}

// append stamps and persists one audit entry. A failed append is fatal to
// the transition being attempted.
func (d *Dispatcher) append(ctx context.Context, e audit.Entry) error {
	e.ID = uuid.NewString()
	e.Timestamp = d.now()
	if err := d.store.Append(ctx, e); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}

// appendBatch stamps and persists a multi-entry transition in one atomic
// store call, so a retried transition never leaves half its trace behind.
func (d *Dispatcher) appendBatch(ctx context.Context, entries []audit.Entry) error {
	now := d.now()
	for i := range entries {
		entries[i].ID = uuid.NewString()
		entries[i].Timestamp = now
	}
	if err := d.store.AppendBatch(ctx, entries); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}

func (d *Dispatcher) publish(e any) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}

func (d *Dispatcher) recordOffer(o model.Offer, latency time.Duration) {
	out := metrics.OfferOutcome{
		MissionID:  o.MissionID,
		OfferID:    o.ID,
		ProviderID: o.ProviderID,
		Wave:       o.Wave,
		Status:     o.Status,
		Latency:    latency,
		Time:       d.now(),
	}
	if err := d.sink.RecordOfferOutcome([]metrics.OfferOutcome{out}); err != nil {
		d.log.Errorf("metrics error: %v", err)
	}
}

func (d *Dispatcher) recordMission(ms *missionState) {
	mr, ok := d.sink.(metrics.MissionRecorder)
	if !ok {
		return
	}
	if err := mr.RecordMissionOutcome(metrics.MissionOutcome{
		MissionID: ms.mission.ID,
		Status:    ms.mission.Status,
		Tier:      ms.mission.Tier,
		Country:   ms.mission.Country,
		Wave:      ms.wave,
		Time:      d.now(),
	}); err != nil {
		d.log.Errorf("metrics error: %v", err)
	}
}

// releaseLocked frees the mission's quota reservation if still held.
func (d *Dispatcher) releaseLocked(ms *missionState) {
	if ms.reservation == "" {
		return
	}
	if err := d.ledger.Release(ms.reservation); err != nil {
		d.log.Errorf("quota release for mission %s: %v", ms.mission.ID, err)
	}
	ms.reservation = ""
}

// pendingSiblings returns pending offers except the one given. Caller holds
// ms.mu.
func (ms *missionState) pendingSiblings(except string) []*model.Offer {
	var out []*model.Offer
	for _, o := range ms.offers {
		if o.ID != except && o.Status == model.OfferPending {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// waveResolved reports whether every offer of the current wave is terminal
// and none was accepted. Caller holds ms.mu.
func (ms *missionState) waveResolved() bool {
	for _, o := range ms.offers {
		if o.Wave != ms.wave {
			continue
		}
		if o.Status == model.OfferPending || o.Status == model.OfferAccepted {
			return false
		}
	}
	return true
}

// SetClock overrides the time source for the dispatcher and its timer wheel,
// for tests.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
	d.wheel.now = now
}
