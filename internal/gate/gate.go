package gate

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/limiter"
)

// Disclosure is prepended to approved sends in supervised regime, stating the
// reply is machine-generated.
const Disclosure = "[Mensaje automatizado] "

// jitterRange caps the random component added to the base send delay so
// outbound replies do not look machine-timed.
const jitterRange = 90 * time.Second

var (
	ErrActionNotFound = errors.New("gate: pending action not found")
	ErrAlreadyDecided = errors.New("gate: action already decided")
)

// Policy is the single validated regime configuration consumed by the gate.
// Both operating regimes flow through the same code path with different
// settings; there is no regime branching anywhere else.
type Policy struct {
	Regime    core.Regime
	ActionTTL time.Duration
	BaseDelay time.Duration // minimum human-like delay before a send
}

// Decision is the gate's answer for one candidate response.
type Decision struct {
	RequiresHuman bool
	Action        *core.PendingAction // set when a human decision is pending
	Deferred      bool                // rate-limited, re-queued
	Delay         time.Duration       // send delay when authorized immediately
}

type pendingEntry struct {
	action  core.PendingAction
	done    chan struct{}
	outcome core.Outcome
}

type deferredSend struct {
	buyerID string
	text    string
	actor   core.Actor
}

// Gate wraps the send decision: autonomous send vs human-approval-required,
// the pending-action queue with expiry, the audit trail and rate limits.
// The in-memory active set is authoritative; repository writes are
// best-effort mirrors.
type Gate struct {
	policy    Policy
	limiter   *limiter.RateLimiter
	actions   core.ActionRepository
	audit     core.AuditRepository
	notifier  core.Notifier
	deliverer core.Deliverer

	mu       sync.Mutex
	pending  map[string]*pendingEntry // keyed by action id
	byKey    map[string]string        // buyerID|type -> action id
	deferred []deferredSend

	now    func() time.Time     // test hook
	jitter func() time.Duration // test hook
}

func New(policy Policy, rl *limiter.RateLimiter, actions core.ActionRepository, audit core.AuditRepository, notifier core.Notifier, deliverer core.Deliverer) *Gate {
	return &Gate{
		policy:    policy,
		limiter:   rl,
		actions:   actions,
		audit:     audit,
		notifier:  notifier,
		deliverer: deliverer,
		pending:   make(map[string]*pendingEntry),
		byKey:     make(map[string]string),
		now:       time.Now,
		jitter:    func() time.Duration { return time.Duration(rand.Int63n(int64(jitterRange))) },
	}
}

func dedupKey(buyerID string, t core.ActionType) string {
	return buyerID + "|" + string(t)
}

// Evaluate decides whether the candidate response may be sent autonomously.
// Supervised regime, high risk tier or Fraud intent always require a human;
// everything else is sent immediately with a human-like delay, subject to
// rate limits.
func (g *Gate) Evaluate(ctx context.Context, buyerID string, in core.Intent, tier core.RiskTier, candidate string, payload core.ActionPayload) Decision {
	needsHuman := g.policy.Regime == core.RegimeSupervised ||
		tier == core.TierHigh ||
		in == core.IntentFraud

	if needsHuman {
		action := g.enqueue(ctx, buyerID, core.ActionSendMessage, candidate, payload)
		return Decision{RequiresHuman: true, Action: action}
	}

	if candidate == "" {
		return Decision{}
	}
	return g.send(ctx, buyerID, candidate, core.ActorAutomated)
}

// enqueue creates (or returns the existing) pending action for the
// (buyer, type) pair. At most one active action exists per pair.
func (g *Gate) enqueue(ctx context.Context, buyerID string, t core.ActionType, candidate string, payload core.ActionPayload) *core.PendingAction {
	g.mu.Lock()
	key := dedupKey(buyerID, t)
	if id, ok := g.byKey[key]; ok {
		existing := g.pending[id].action
		g.mu.Unlock()
		return &existing
	}

	now := g.now()
	payload.CandidateResponse = candidate
	entry := &pendingEntry{
		action: core.PendingAction{
			ID:        uuid.NewString(),
			Type:      t,
			BuyerID:   buyerID,
			Payload:   payload,
			CreatedAt: now,
			ExpiresAt: now.Add(g.policy.ActionTTL),
			Outcome:   core.OutcomePending,
		},
		done:    make(chan struct{}),
		outcome: core.OutcomePending,
	}
	g.pending[entry.action.ID] = entry
	g.byKey[key] = entry.action.ID
	action := entry.action
	g.mu.Unlock()

	if err := g.actions.Insert(ctx, action); err != nil {
		log.Printf("gate: failed to persist pending action %s: %v", action.ID, err)
	}
	if err := g.notifier.NotifyReview(ctx, action); err != nil {
		log.Printf("gate: review notification failed for %s: %v", action.ID, err)
	}
	g.record(ctx, string(t), core.ActorAutomated, core.OutcomePending)
	return &action
}

// Approve resolves a pending action as approved by a human and dispatches the
// message with a human-like delay. In supervised regime the automation
// disclosure is prepended.
func (g *Gate) Approve(ctx context.Context, id string) error {
	entry, err := g.resolve(ctx, id, core.OutcomeApproved, core.ActorHuman)
	if err != nil {
		return err
	}
	text := entry.action.Payload.CandidateResponse
	if text == "" {
		return nil
	}
	if g.policy.Regime == core.RegimeSupervised {
		text = Disclosure + text
	}
	g.send(ctx, entry.action.BuyerID, text, core.ActorHuman)
	return nil
}

// Reject resolves a pending action as rejected. Nothing is sent.
func (g *Gate) Reject(ctx context.Context, id string) error {
	_, err := g.resolve(ctx, id, core.OutcomeRejected, core.ActorHuman)
	return err
}

func (g *Gate) resolve(ctx context.Context, id string, outcome core.Outcome, actor core.Actor) (*pendingEntry, error) {
	g.mu.Lock()
	entry, ok := g.pending[id]
	if !ok {
		g.mu.Unlock()
		return nil, ErrActionNotFound
	}
	if entry.outcome != core.OutcomePending {
		g.mu.Unlock()
		return nil, ErrAlreadyDecided
	}
	entry.outcome = outcome
	entry.action.Outcome = outcome
	delete(g.pending, id)
	delete(g.byKey, dedupKey(entry.action.BuyerID, entry.action.Type))
	close(entry.done)
	g.mu.Unlock()

	if err := g.actions.UpdateOutcome(ctx, id, outcome); err != nil {
		log.Printf("gate: failed to persist outcome for %s: %v", id, err)
	}
	g.record(ctx, string(entry.action.Type), actor, outcome)
	return entry, nil
}

// Await blocks until the action is decided, its TTL expires, or the context
// is cancelled. Expiry and cancellation both fail closed: no decision means
// no send.
func (g *Gate) Await(ctx context.Context, id string) core.Outcome {
	g.mu.Lock()
	entry, ok := g.pending[id]
	g.mu.Unlock()
	if !ok {
		return core.OutcomeRejected
	}

	timer := time.NewTimer(entry.action.ExpiresAt.Sub(g.now()))
	defer timer.Stop()

	select {
	case <-entry.done:
		return entry.outcome
	case <-timer.C:
		g.expire(ctx, id)
		return core.OutcomeExpired
	case <-ctx.Done():
		return core.OutcomeRejected
	}
}

// SweepExpired resolves every active action past its TTL as expired.
// Returns the number of actions expired.
func (g *Gate) SweepExpired(ctx context.Context) int {
	now := g.now()
	g.mu.Lock()
	var stale []string
	for id, entry := range g.pending {
		if !entry.action.ExpiresAt.After(now) {
			stale = append(stale, id)
		}
	}
	g.mu.Unlock()

	for _, id := range stale {
		g.expire(ctx, id)
	}
	return len(stale)
}

func (g *Gate) expire(ctx context.Context, id string) {
	g.mu.Lock()
	entry, ok := g.pending[id]
	if !ok || entry.outcome != core.OutcomePending {
		g.mu.Unlock()
		return
	}
	entry.outcome = core.OutcomeExpired
	entry.action.Outcome = core.OutcomeExpired
	delete(g.pending, id)
	delete(g.byKey, dedupKey(entry.action.BuyerID, entry.action.Type))
	close(entry.done)
	g.mu.Unlock()

	if err := g.actions.UpdateOutcome(ctx, id, core.OutcomeExpired); err != nil {
		log.Printf("gate: failed to persist expiry for %s: %v", id, err)
	}
	g.record(ctx, string(entry.action.Type), core.ActorAutomated, core.OutcomeExpired)
}

// Restore reloads undecided actions from the repository into the active set
// after a process restart. Actions already past their TTL are left to the
// next expiry sweep. Returns the number restored.
func (g *Gate) Restore(ctx context.Context) int {
	actions, err := g.actions.ListActive(ctx)
	if err != nil {
		log.Printf("gate: restore query failed: %v", err)
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	restored := 0
	for _, action := range actions {
		if _, ok := g.pending[action.ID]; ok {
			continue
		}
		g.pending[action.ID] = &pendingEntry{
			action:  action,
			done:    make(chan struct{}),
			outcome: core.OutcomePending,
		}
		g.byKey[dedupKey(action.BuyerID, action.Type)] = action.ID
		restored++
	}
	return restored
}

// Active returns a snapshot of the pending actions awaiting a decision.
func (g *Gate) Active() []core.PendingAction {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]core.PendingAction, 0, len(g.pending))
	for _, entry := range g.pending {
		out = append(out, entry.action)
	}
	return out
}

// send dispatches text through the delivery collaborator, deferring instead
// when a rate limit would be violated.
func (g *Gate) send(ctx context.Context, buyerID, text string, actor core.Actor) Decision {
	if !g.limiter.AllowSend(buyerID) {
		g.mu.Lock()
		g.deferred = append(g.deferred, deferredSend{buyerID: buyerID, text: text, actor: actor})
		g.mu.Unlock()
		g.record(ctx, string(core.ActionSendMessage), actor, core.OutcomeDeferred)
		log.Printf("gate: send to %s deferred by rate limit", buyerID)
		return Decision{Deferred: true}
	}

	delay := g.policy.BaseDelay + g.jitter()
	if err := g.deliverer.Deliver(ctx, buyerID, text, delay); err != nil {
		log.Printf("gate: delivery handoff failed for %s: %v", buyerID, err)
	}
	g.record(ctx, string(core.ActionSendMessage), actor, core.OutcomeApproved)
	return Decision{Delay: delay}
}

// FlushDeferred retries deferred sends that now fit the rate limits. Sends
// that are still over budget stay queued. Returns the number dispatched.
func (g *Gate) FlushDeferred(ctx context.Context) int {
	g.mu.Lock()
	queued := g.deferred
	g.deferred = nil
	g.mu.Unlock()

	sent := 0
	for i, d := range queued {
		if !g.limiter.AllowSend(d.buyerID) {
			g.mu.Lock()
			g.deferred = append(g.deferred, queued[i:]...)
			g.mu.Unlock()
			break
		}
		delay := g.policy.BaseDelay + g.jitter()
		if err := g.deliverer.Deliver(ctx, d.buyerID, d.text, delay); err != nil {
			log.Printf("gate: deferred delivery failed for %s: %v", d.buyerID, err)
		}
		g.record(ctx, string(core.ActionSendMessage), d.actor, core.OutcomeApproved)
		sent++
	}
	return sent
}

// record appends one audit entry per state-changing decision. Audit failures
// are logged, never fatal.
func (g *Gate) record(ctx context.Context, action string, actor core.Actor, outcome core.Outcome) {
	entry := core.AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  g.now(),
		Action:     action,
		Actor:      actor,
		Outcome:    outcome,
		Supervised: g.policy.Regime == core.RegimeSupervised,
	}
	if err := g.audit.Append(ctx, entry); err != nil {
		log.Printf("gate: audit append failed: %v", err)
	}
}
