package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/conversation"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/gate"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/intent"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/responder"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/risk"
)

// Engine fuses classification, risk scoring, the state machine, response
// selection and the action gate into one analysis pipeline. Analyses for the
// same buyer are serialized; different buyers run concurrently up to the
// worker limit.
type Engine struct {
	buyers   core.BuyerRepository
	products core.ProductRepository
	convs    core.ConversationRepository
	scorer   *risk.Scorer
	selector *responder.Selector
	gate     *gate.Gate

	sem *semaphore.Weighted

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-buyer serialization

	now func() time.Time // test hook
}

func New(buyers core.BuyerRepository, products core.ProductRepository, convs core.ConversationRepository, scorer *risk.Scorer, selector *responder.Selector, g *gate.Gate, workerLimit int) *Engine {
	if workerLimit <= 0 {
		workerLimit = 1
	}
	return &Engine{
		buyers:   buyers,
		products: products,
		convs:    convs,
		scorer:   scorer,
		selector: selector,
		gate:     g,
		sem:      semaphore.NewWeighted(int64(workerLimit)),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// Gate exposes the action gate for the approval workflow (listing, approving
// and rejecting pending actions).
func (e *Engine) Gate() *gate.Gate {
	return e.gate
}

// AnalyzeMessage runs one inbound message through the full pipeline and
// returns the analysis verdict. A persistence failure degrades the result
// (Persisted=false) instead of failing the call.
func (e *Engine) AnalyzeMessage(ctx context.Context, buyerID, productID, message string) (core.AnalysisResult, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return core.AnalysisResult{}, err
	}
	defer e.sem.Release(1)

	lock := e.lockFor(buyerID)
	lock.Lock()
	defer lock.Unlock()

	buyer, err := e.buyers.GetByID(ctx, buyerID)
	if err != nil {
		return core.AnalysisResult{}, fmt.Errorf("engine: load buyer %s: %w", buyerID, err)
	}
	product, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return core.AnalysisResult{}, fmt.Errorf("engine: load product %s: %w", productID, err)
	}

	now := e.now()
	conv, err := e.convs.GetByBuyer(ctx, buyerID)
	if err != nil {
		if err != core.ErrNotFound {
			return core.AnalysisResult{}, fmt.Errorf("engine: load conversation for %s: %w", buyerID, err)
		}
		conv = conversation.New(buyerID, now)
	}

	in := intent.Classify(message)
	assessment := e.scorer.Score(message, *buyer, in)
	conversation.Apply(conv, in, assessment.Score, assessment.Tier == core.TierHigh, now)

	candidate, hasResponse := e.selector.Select(ctx, conv.State, in, assessment.Tier, *product, *buyer)

	result := core.AnalysisResult{
		Intent:    in,
		Priority:  assessment.Tier,
		FraudRisk: assessment.Score,
		State:     conv.State,
		Persisted: true,
	}
	if hasResponse {
		result.Response = candidate
	}

	decision := e.gate.Evaluate(ctx, buyerID, in, assessment.Tier, result.Response, core.ActionPayload{
		Message:  message,
		Analysis: result,
	})
	result.RequiresHuman = decision.RequiresHuman

	if err := e.convs.Upsert(ctx, *conv); err != nil {
		log.Printf("engine: conversation save failed for %s (continuing degraded): %v", buyerID, err)
		result.Persisted = false
	}
	return result, nil
}

// Summary returns the queryable view of a buyer's conversation.
// Exists=false when the buyer has never written.
func (e *Engine) Summary(ctx context.Context, buyerID string) (core.ConversationSummary, error) {
	conv, err := e.convs.GetByBuyer(ctx, buyerID)
	if err != nil {
		if err == core.ErrNotFound {
			return core.ConversationSummary{}, nil
		}
		return core.ConversationSummary{}, err
	}
	return core.ConversationSummary{
		Exists:            true,
		State:             conv.State,
		MessageCount:      conv.MessageCount,
		RequiresAttention: conv.RequiresAttention,
		FraudScore:        conv.FraudScore,
	}, nil
}

// SweepInactive marks conversations idle past the abandonment window as
// Abandoned. Meant to run from a periodic ticker. Returns how many changed.
func (e *Engine) SweepInactive(ctx context.Context) int {
	cutoff := e.now().Add(-conversation.AbandonAfter)
	stale, err := e.convs.ListInactiveSince(ctx, cutoff)
	if err != nil {
		log.Printf("engine: inactivity sweep query failed: %v", err)
		return 0
	}

	marked := 0
	for i := range stale {
		buyerID := stale[i].BuyerID
		lock := e.lockFor(buyerID)
		lock.Lock()
		// The snapshot from the query may be stale: a message analyzed since
		// then must not be clobbered by the sweep, so re-check under the lock.
		conv, err := e.convs.GetByBuyer(ctx, buyerID)
		if err != nil {
			log.Printf("engine: abandonment re-check failed for %s: %v", buyerID, err)
			lock.Unlock()
			continue
		}
		if !conv.LastActivity.Before(cutoff) {
			lock.Unlock()
			continue
		}
		if conversation.MarkAbandoned(conv) {
			if err := e.convs.Upsert(ctx, *conv); err != nil {
				log.Printf("engine: failed to save abandoned conversation %s: %v", buyerID, err)
			} else {
				marked++
			}
		}
		lock.Unlock()
	}
	return marked
}

func (e *Engine) lockFor(buyerID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.locks[buyerID]; ok {
		return l
	}
	l := &sync.Mutex{}
	e.locks[buyerID] = l
	return l
}
