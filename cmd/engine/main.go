package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/config"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/database"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/engine"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/gate"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/limiter"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/notification"
	mongorepo "github.com/ejnero-dev/wall-e-research-sub001/internal/repository/mongo"
	sqlrepo "github.com/ejnero-dev/wall-e-research-sub001/internal/repository/sql"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/responder"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/risk"
	"github.com/ejnero-dev/wall-e-research-sub001/pkg/response"
)

const sweepInterval = 5 * time.Minute

func main() {
	// 1. Config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("🚀 Starting conversation engine in %s regime (%s mode)...", cfg.Regime, cfg.AppEnv)

	// 2. Databases
	mongoClient, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ MongoDB Connection failed: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	auditDB, err := database.ConnectSQL(cfg.AuditUser, cfg.AuditPass, cfg.AuditHost, cfg.AuditName)
	if err != nil {
		log.Fatalf("❌ Audit Database Connection failed: %v", err)
	}
	defer auditDB.Close()

	// 3. Repositories
	buyerRepo := mongorepo.NewBuyerRepository(mongoClient)
	productRepo := mongorepo.NewProductRepository(mongoClient)
	convRepo := mongorepo.NewConversationRepository(mongoClient)
	actionRepo := mongorepo.NewActionRepository(mongoClient)

	auditRepo := sqlrepo.NewAuditRepository(auditDB)
	if err := auditRepo.EnsureSchema(context.Background()); err != nil {
		log.Printf("⚠️ Audit schema setup failed (audit degraded): %v", err)
	}

	// 4. Collaborators
	var notifier core.Notifier = notification.NoopNotifier{}
	if cfg.WebhookURL != "" {
		notifier = notification.NewWebhookNotifier(cfg.WebhookURL)
	}
	deliverer := notification.NewQueueDeliverer(100)

	// 5. Core services
	rateLimiter := limiter.New(cfg.MaxMessagesPerHour, time.Hour, time.Duration(cfg.MinDelaySeconds)*time.Second)
	policy := gate.Policy{
		Regime:    cfg.Regime,
		ActionTTL: time.Duration(cfg.ActionTTLHours) * time.Hour,
		BaseDelay: time.Duration(cfg.MinDelaySeconds) * time.Second,
	}
	actionGate := gate.New(policy, rateLimiter, actionRepo, auditRepo, notifier, deliverer)
	if n := actionGate.Restore(context.Background()); n > 0 {
		log.Printf("🔁 Restored %d pending actions from storage", n)
	}

	scorer := risk.NewScorer(risk.Thresholds{High: cfg.RiskHighThreshold, Medium: cfg.RiskMediumThreshold}, cfg.LongDistanceKm)
	selector := responder.NewSelector(nil)
	eng := engine.New(buyerRepo, productRepo, convRepo, scorer, selector, actionGate, cfg.WorkerLimit)

	// 6. Background sweeps
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := actionGate.SweepExpired(ctx); n > 0 {
					log.Printf("⏳ Expired %d pending actions", n)
				}
				if n := eng.SweepInactive(ctx); n > 0 {
					log.Printf("💤 Marked %d conversations abandoned", n)
				}
				if n := actionGate.FlushDeferred(ctx); n > 0 {
					log.Printf("📤 Dispatched %d deferred sends", n)
				}
			}
		}
	}()

	// Drain the outbound queue to the delivery collaborator (stdout stand-in).
	go func() {
		for msg := range deliverer.Outbound() {
			log.Printf("📬 Outbound to %s (after %s): %s", msg.BuyerID, msg.Delay, msg.Text)
		}
	}()

	// 7. Intake routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"regime": string(cfg.Regime)}, "ok")
	})
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			BuyerID   string `json:"buyer_id"`
			ProductID string `json:"product_id"`
			Message   string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		result, err := eng.AnalyzeMessage(r.Context(), req.BuyerID, req.ProductID, req.Message)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.Success(w, result, "")
	})
	mux.HandleFunc("/api/actions", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, actionGate.Active(), "")
	})
	mux.HandleFunc("/api/actions/decision", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			ID      string `json:"id"`
			Approve bool   `json:"approve"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		var err error
		if req.Approve {
			err = actionGate.Approve(r.Context(), req.ID)
		} else {
			err = actionGate.Reject(r.Context(), req.ID)
		}
		if err != nil {
			response.NotFound(w, err.Error())
			return
		}
		response.Success(w, nil, "decision recorded")
	})
	mux.HandleFunc("/api/audit", func(w http.ResponseWriter, r *http.Request) {
		entries, err := auditRepo.Recent(r.Context(), 50)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.Success(w, entries, "")
	})
	mux.HandleFunc("/api/conversations/summary", func(w http.ResponseWriter, r *http.Request) {
		buyerID := r.URL.Query().Get("buyer_id")
		if buyerID == "" {
			response.BadRequest(w, "buyer_id is required")
			return
		}
		summary, err := eng.Summary(r.Context(), buyerID)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.Success(w, summary, "")
	})

	// 8. Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		log.Printf("✅ Intake API running on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
