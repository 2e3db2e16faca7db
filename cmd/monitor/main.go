package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Aias00/gold-price-monitor/internal/config"
	"github.com/Aias00/gold-price-monitor/internal/httpx"
	"github.com/Aias00/gold-price-monitor/internal/scheduler"
	"github.com/Aias00/gold-price-monitor/internal/service"
	"github.com/Aias00/gold-price-monitor/internal/source"
	"github.com/Aias00/gold-price-monitor/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] gold-price-monitor starting...")

	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec)*time.Second, cfg.Proxy)

	loc, err := time.LoadLocation(cfg.Quote.Timezone)
	if err != nil {
		log.Printf("[WARN] load timezone %q: %v, using fixed CST", cfg.Quote.Timezone, err)
		loc = time.FixedZone("CST", 8*3600)
	}

	quote, err := source.NewQuoteClient(cfg.Quote.SecID,
		source.WithBaseURL(cfg.Quote.URL),
		source.WithHTTPClient(httpClient.HTTP),
		source.WithHeader(http.Header{"User-Agent": []string{httpClient.UserAgent}}),
		source.WithLocation(loc),
	)
	if err != nil {
		log.Fatalf("[FATAL] init quote client: %v", err)
	}
	history := source.NewHistoryClient(cfg.History.URL, cfg.History.Contract, httpClient)

	var st store.Store
	if err := os.MkdirAll(filepath.Dir(cfg.Cache.SQLitePath), 0o755); err != nil {
		log.Printf("[WARN] create data dir: %v", err)
	}
	if sq, err := store.NewSQLite(cfg.Cache.SQLitePath); err != nil {
		log.Printf("[WARN] init sqlite store failed, using in-memory: %v", err)
		st = store.NewMemory()
	} else {
		st = sq
	}
	defer st.Close()

	svc := service.New(service.Config{
		SourceKey:    "gold_price:" + cfg.History.Contract,
		TTL:          time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		HistoryLimit: cfg.Cache.HistoryLimit,
		Unit:         cfg.Quote.Unit,
		Source:       cfg.Quote.Source,
	}, quote, history, st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, svc)
	if err := sched.Register(time.Duration(cfg.Schedule.RefreshMinutes) * time.Minute); err != nil {
		log.Fatalf("[FATAL] register refresh task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] run_on_start enabled, refreshing now")
		go sched.RunNow()
	}

	a := &api{svc: svc}
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[INFO] server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] server: %v", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Println("[INFO] gold-price-monitor stopped")
}
