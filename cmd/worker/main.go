package main

import (
	"context"
	"fmt"
	"log"
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
	"mailproof/internal/worker"
)

func main() {
	log.Println("🚀 Starting Mailproof Worker...")

	cfg := config.Load()

	// The worker cannot run without the bulk infrastructure.
	if cfg.RedisAddr == "" {
		log.Fatal("❌ REDIS_ADDR environment variable is required")
	}
	if err := queue.Init(cfg.RedisAddr); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	if cfg.DBURL == "" {
		log.Fatal("❌ DB_URL environment variable is required")
	}
	if err := store.Init(cfg.DBURL); err != nil {
		log.Fatalf("❌ Failed to connect to DB: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	if len(cfg.ProxyList) > 0 {
		if err := proxy.Init(cfg.ProxyList, cfg.ProxyConcurrency, cfg.SMTPProxyEnabled); err != nil {
			log.Fatalf("❌ Failed to initialize proxy manager: %v", err)
		}
		log.Printf("🛡️  Proxy rotation enabled (%d proxies loaded)", len(cfg.ProxyList))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prober := lookup.NewProber(cfg.HeloHost, cfg.MailFrom)
	prober.Timeout = cfg.SMTPTimeout

	engine := validator.NewEngine(validator.DefaultLists(), lookup.NewDNSChecker(), prober)
	if cfg.HIBPAPIKey != "" {
		engine.Reputation = validator.NewReputationAnalyzer(lookup.NewHIBPClient(cfg.HIBPAPIKey), nil)
	}
	if cfg.DomainCacheTTL > 0 {
		engine.Cache = cache.New()
		engine.CacheTTL = cfg.DomainCacheTTL
		engine.Cache.StartCleanup(ctx, 5*time.Minute)
		log.Printf("✅ Domain cache enabled (TTL: %s)", cfg.DomainCacheTTL)
	}

	// Stop the processing loops on SIGTERM / SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-quit
		fmt.Println("⏳ Shutdown signal received, stopping workers...")
		cancel()
	}()

	runner := worker.NewRunner(engine)

	done := make(chan struct{})
	for i := 0; i < cfg.WorkerCount; i++ {
		go func() {
			runner.Start(ctx)
			done <- struct{}{}
		}()
	}
	log.Printf("👷 %d worker loops running", cfg.WorkerCount)

	for i := 0; i < cfg.WorkerCount; i++ {
		<-done
	}
	log.Println("✅ Worker shut down cleanly.")
}
