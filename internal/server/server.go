package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/noamsh/makolet/internal/backup"
	"github.com/noamsh/makolet/internal/category"
	"github.com/noamsh/makolet/internal/handler"
	"github.com/noamsh/makolet/internal/middleware"
	"github.com/noamsh/makolet/internal/reconcile"
	"github.com/noamsh/makolet/internal/store"
	ws "github.com/noamsh/makolet/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	shoppingH     *handler.ShoppingHandler
	inventoryH    *handler.InventoryHandler
	voiceH        *handler.VoiceHandler
	historyH      *handler.HistoryHandler
	groceryListH  *handler.GroceryListHandler
	snapshotH     *handler.SnapshotHandler
	backupH       *handler.BackupHandler
	settingsH     *handler.SettingsHandler
	reconciler    *reconcile.Reconciler
	scheduler     *reconcile.Scheduler
	backupManager *backup.Manager
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	shoppingStore := store.NewShoppingStore(db)
	inventoryStore := store.NewInventoryStore(db)
	historyStore := store.NewHistoryStore(db)
	listStore := store.NewGroceryListStore(db)
	learnedStore := store.NewLearnedCategoryStore(db)
	settingsStore := store.NewSettingsStore(db)
	backupStore := store.NewBackupStore(db)

	classifier := category.NewClassifier(learnedStore)
	reconciler := reconcile.New(shoppingStore, inventoryStore, historyStore, listStore, learnedStore)

	scheduler := reconcile.NewScheduler(reconciler, func() {
		hub.Broadcast(ws.NewMessage(ws.EntityShopping, ws.ActionReconciled, 0, nil))
	})

	exporter := backup.NewExporter(shoppingStore, inventoryStore, historyStore, listStore, learnedStore, settingsStore)

	s3Cfg, err := backup.LoadS3Config(settingsStore)
	if err != nil {
		logger.Warn("failed to load backup settings, backups disabled", "error", err)
		s3Cfg = backup.S3Config{}
	}
	backupMgr := backup.NewManager(s3Cfg, exporter, backupStore, settingsStore, func(st backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: ws.EntityBackup,
			Action: string(st.State),
			Extra: map[string]any{
				"in_progress": st.InProgress,
				"error":       st.Error,
			},
		})
	})

	return &Server{
		db:            db,
		hub:           hub,
		shoppingH:     handler.NewShoppingHandler(shoppingStore, reconciler, classifier, hub),
		inventoryH:    handler.NewInventoryHandler(inventoryStore, reconciler, classifier, hub),
		voiceH:        handler.NewVoiceHandler(reconciler, classifier, hub),
		historyH:      handler.NewHistoryHandler(historyStore),
		groceryListH:  handler.NewGroceryListHandler(listStore, reconciler, classifier, hub),
		snapshotH:     handler.NewSnapshotHandler(exporter, hub),
		backupH:       handler.NewBackupHandler(backupMgr, hub),
		settingsH:     handler.NewSettingsHandler(settingsStore, backupMgr, hub),
		reconciler:    reconciler,
		scheduler:     scheduler,
		backupManager: backupMgr,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// Scheduler returns the periodic reconcile scheduler.
func (s *Server) Scheduler() *reconcile.Scheduler {
	return s.scheduler
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Shopping list
	mux.HandleFunc("GET /api/shopping", s.shoppingH.List)
	mux.HandleFunc("POST /api/shopping", s.shoppingH.Create)
	mux.HandleFunc("PUT /api/shopping/{id}", s.shoppingH.Update)
	mux.HandleFunc("DELETE /api/shopping/{id}", s.shoppingH.Delete)
	mux.HandleFunc("POST /api/shopping/{id}/purchase", s.shoppingH.Purchase)

	// Inventory
	mux.HandleFunc("GET /api/inventory", s.inventoryH.List)
	mux.HandleFunc("POST /api/inventory", s.inventoryH.Create)
	mux.HandleFunc("PUT /api/inventory/{id}", s.inventoryH.Update)
	mux.HandleFunc("DELETE /api/inventory/{id}", s.inventoryH.Delete)
	mux.HandleFunc("POST /api/inventory/{id}/adjust", s.inventoryH.Adjust)
	mux.HandleFunc("PUT /api/inventory/{id}/min", s.inventoryH.SetMinQuantity)
	mux.HandleFunc("POST /api/reconcile", s.inventoryH.Reconcile)

	// Voice transcripts. Generous limit: one spoken trip is a parse
	// plus a confirm.
	mux.HandleFunc("POST /api/voice/parse", s.rateLimited(s.voiceH.Parse, 30))
	mux.HandleFunc("POST /api/voice/confirm", s.rateLimited(s.voiceH.Confirm, 30))

	// Purchase history
	mux.HandleFunc("GET /api/history", s.historyH.List)

	// Grocery trip lists
	mux.HandleFunc("GET /api/grocery-lists", s.groceryListH.List)
	mux.HandleFunc("POST /api/grocery-lists", s.groceryListH.Create)
	mux.HandleFunc("GET /api/grocery-lists/{id}", s.groceryListH.Get)
	mux.HandleFunc("DELETE /api/grocery-lists/{id}", s.groceryListH.Delete)
	mux.HandleFunc("PUT /api/grocery-lists/{id}/store", s.groceryListH.SetStoreName)
	mux.HandleFunc("POST /api/grocery-lists/{id}/to-shopping", s.groceryListH.ToShoppingList)
	mux.HandleFunc("POST /api/grocery-lists/{id}/items", s.groceryListH.AddItem)
	mux.HandleFunc("PUT /api/grocery-lists/{id}/items/{item_id}", s.groceryListH.UpdateItem)
	mux.HandleFunc("DELETE /api/grocery-lists/{id}/items/{item_id}", s.groceryListH.DeleteItem)

	// Snapshots and backups. Import and restore rewrite state, so they
	// share the rate limit with backup runs.
	mux.HandleFunc("GET /api/snapshot", s.snapshotH.Export)
	mux.HandleFunc("POST /api/snapshot/import", s.rateLimited(s.snapshotH.Import, 10))
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backups", s.rateLimited(s.backupH.Run, 10))
	mux.HandleFunc("POST /api/backups/{id}/restore", s.rateLimited(s.backupH.Restore, 10))
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.GetAll)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc, perMinute int) http.HandlerFunc {
	// Key per path so voice traffic does not drain the import budget.
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r) + "|" + r.URL.Path
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, perMinute, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
