package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailproof/internal/cache"
	"mailproof/internal/config"
	"mailproof/internal/lookup"
	"mailproof/internal/proxy"
	"mailproof/internal/queue"
	"mailproof/internal/store"
	"mailproof/internal/validator"
)

var (
	cfg         *config.Config
	engine      *validator.Engine
	bulkEnabled bool
)

func main() {
	cfg = config.Load()

	// 1. Initialize the bulk pipeline when Redis and Postgres are both
	// configured. Single verifications work without either.
	if cfg.BulkEnabled() {
		fmt.Printf("🔌 Connecting to Redis at %s...\n", cfg.RedisAddr)
		if err := queue.Init(cfg.RedisAddr); err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		fmt.Println("✅ Connected to Redis Queue")

		fmt.Println("🔌 Connecting to Database...")
		if err := store.Init(cfg.DBURL); err != nil {
			log.Fatalf("❌ Failed to connect to DB: %v", err)
		}
		fmt.Println("✅ Connected to PostgreSQL & Migrations Applied")

		bulkEnabled = true
	} else {
		fmt.Println("⚠️  REDIS_ADDR / DB_URL not set. Bulk verification disabled.")
	}

	// 2. Initialize Proxy Manager
	if len(cfg.ProxyList) > 0 {
		if err := proxy.Init(cfg.ProxyList, cfg.ProxyConcurrency, cfg.SMTPProxyEnabled); err != nil {
			log.Fatalf("❌ Failed to initialize proxy manager: %v", err)
		}

		fmt.Printf("🛡️  Proxy rotation enabled (%d proxies loaded, max %d concurrent)\n", len(cfg.ProxyList), cap(proxy.Semaphore))
		if cfg.SMTPProxyEnabled {
			fmt.Println("⚠️  SMTP Proxying is ENABLED (Port 25 traffic will route through proxies)")
		} else {
			fmt.Println("✅ SMTP Proxying is DISABLED (Port 25 traffic routes direct)")
		}
	} else {
		fmt.Println("⚠️  No proxies configured. Running with direct connections.")
	}

	// 3. Build the verification engine.
	engine = buildEngine(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if engine.Cache != nil {
		engine.Cache.StartCleanup(ctx, 5*time.Minute)
		fmt.Printf("✅ Domain cache enabled (TTL: %s, eviction interval: 5m)\n", cfg.DomainCacheTTL)
	}

	// 4. Define Handlers
	mux := http.NewServeMux()
	mux.HandleFunc("/api/verify-email", enableCORS(verifyHandler))
	mux.HandleFunc("/api/verify-email/quick", enableCORS(quickHandler))
	mux.HandleFunc("/api/verify-email/bulk", enableCORS(requireAPIKey(bulkHandler)))
	mux.HandleFunc("/api/verify-email/status", enableCORS(requireAPIKey(statusHandler)))
	mux.HandleFunc("/api/info", enableCORS(infoHandler))

	// 5. Server Configuration
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 6. Graceful shutdown on SIGTERM / SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		fmt.Printf("🚀 Mailproof Engine running on :%s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	<-quit
	fmt.Println("⏳ Shutdown signal received, draining in-flight requests...")

	// Cancelling ctx stops the cache eviction goroutine before the
	// process exits.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	fmt.Println("✅ Server shut down cleanly.")
}

func buildEngine(cfg *config.Config) *validator.Engine {
	prober := lookup.NewProber(cfg.HeloHost, cfg.MailFrom)
	prober.Timeout = cfg.SMTPTimeout

	e := validator.NewEngine(validator.DefaultLists(), lookup.NewDNSChecker(), prober)

	if cfg.HIBPAPIKey != "" {
		e.Reputation = validator.NewReputationAnalyzer(lookup.NewHIBPClient(cfg.HIBPAPIKey), nil)
		fmt.Println("✅ Breach lookups enabled (HIBP)")
	}

	if cfg.DomainCacheTTL > 0 {
		e.Cache = cache.New()
		e.CacheTTL = cfg.DomainCacheTTL
	}

	return e
}

// enableCORS middleware sets CORS headers for frontend access.
// Note: Access-Control-Allow-Origin is set to "*" which is permissive.
// Restrict this to your specific frontend origin in production.
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	guide := map[string]interface{}{
		"service": "Mailproof Engine",
		"version": "1.0.0",
		"capabilities": []string{
			"Syntax & Domain Classification",
			"DNS (MX, SPF, DKIM, DMARC)",
			"SMTP Recipient Probing",
			"Risk Scoring (ACCEPT / CHALLENGE / REJECT)",
			"Bulk CSV Jobs",
		},
		"bulkEnabled": bulkEnabled,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(guide); err != nil {
		log.Printf("❌ Error encoding /api/info response: %v", err)
	}
}
