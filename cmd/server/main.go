package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ukccu/internal/adapters/email"
	web "ukccu/internal/adapters/http"
	"ukccu/internal/adapters/http/perf"
	"ukccu/internal/adapters/iplookup"
	"ukccu/internal/adapters/notify"
	"ukccu/internal/adapters/sheets"
	"ukccu/internal/adapters/storage"
	"ukccu/internal/adapters/storage/kv"
	readStateStore "ukccu/internal/adapters/storage/readstate"
	submissionStore "ukccu/internal/adapters/storage/submission"
	voteLockStore "ukccu/internal/adapters/storage/votelock"
	"ukccu/internal/config"
	"ukccu/internal/content"
	"ukccu/internal/domain/votingstatus"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("failed to read .env: %v", err)
	}
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := storage.ParseDialect(cfg.DBType)
	if err != nil {
		log.Fatalf("invalid database type: %v", err)
	}
	db, err := storage.Open(ctx, dialect, cfg.DBURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultCapacity)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)
	store := kv.NewSQLStore(timedDB, dialect)

	catalog, err := content.Load(cfg.ContentFile)
	if err != nil {
		log.Fatalf("failed to load content: %v", err)
	}

	var sheetsClient *sheets.Client
	if cfg.SubmissionBackend == "sheets" || cfg.StatusSource == "sheets" {
		sheetsClient, err = sheets.New(ctx, cfg.SheetsCredentials, cfg.SheetsID)
		if err != nil {
			log.Fatalf("failed to connect to Google Sheets: %v", err)
		}
	}

	var submissions submissionStore.Store = submissionStore.NewKVStore(store)
	if cfg.SubmissionBackend == "sheets" {
		submissions = submissionStore.NewSheetsStore(sheetsClient)
		log.Println("Submissions stored in Google Sheets")
	}

	var status votingstatus.Source = votingstatus.StaticSource{Status: votingstatus.Status{
		Status: cfg.VotingStatus,
		Start:  cfg.VotingStart,
		End:    cfg.VotingEnd,
		Notice: cfg.VotingNotice,
	}}
	if cfg.StatusSource == "sheets" {
		status = sheets.NewStatusSource(sheetsClient, cfg.StatusCacheTTL)
		log.Println("Voting status read from Google Sheets")
	}

	var sender email.Sender = email.NewNoopSender()
	if cfg.ResendKey != "" {
		sender = email.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		log.Println("Email sender configured (Resend)")
	} else if cfg.IsProduction() {
		log.Println("WARNING: UKCCU_RESEND_KEY is not set; registration confirmations are DISABLED in production")
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("failed to start Telegram notifier: %v", err)
		}
		notifier = tg
		log.Println("Organiser alerts configured (Telegram)")
	}

	var adminHash []byte
	if cfg.AdminPasswordHash != "" {
		adminHash = []byte(cfg.AdminPasswordHash)
	}

	mux := web.NewMux(web.Deps{
		Catalog:           catalog,
		Markers:           store,
		Submissions:       submissions,
		ReadState:         readStateStore.NewKVStore(store),
		VoteLock:          voteLockStore.NewKVStore(store),
		Status:            status,
		Email:             sender,
		Notifier:          notifier,
		IP:                iplookup.NewResolver(iplookup.NewEchoClient(cfg.IPEchoURL), cfg.TrustedProxies),
		IPSalt:            cfg.IPSalt,
		TrustedProxies:    cfg.TrustedProxies,
		AdminPasswordHash: adminHash,
		Collector:         collector,
		StaticDir:         cfg.StaticDir,
		CSRFKey:           cfg.CSRFKey,
		Production:        cfg.IsProduction(),
		TrustedOrigins:    localOrigins(cfg.Addr),
		SlowRequest:       cfg.SlowRequest,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err)
		}
	}()

	log.Printf("UKCCU %s starting on %s (env=%s, db=%s, schema=%d)", version, cfg.Addr, cfg.Env, dialect, storage.LatestSchemaVersion)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

// setupLogging installs the default slog handler from UKCCU_LOG_FORMAT and UKCCU_LOG_LEVEL.
func setupLogging(cfg config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// localOrigins trusts same-host form posts during development.
func localOrigins(addr string) []string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return nil
	}
	return []string{"localhost:" + port, "127.0.0.1:" + port}
}
