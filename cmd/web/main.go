// cmd/web/main.go
//
// Perks site – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Connect to Vault when VAULT_ADDR is set, then load configuration
//     (YAML + PERKS_ env, `vault:` references resolved).
//
//  3. Start the daily rotating logger (tees to console in a TTY).
//
//  4. Open the database, run every component's migrations, and load the
//     optional GeoLite2 database.
//
//  5. Build shared services: token verifier, rate limiter, stores, mailer,
//     notifier, admin token parser.
//
//  6. Build the chi router:
//
//     • RequestID → request logger → Recoverer
//     • HTTPS redirect, security headers, CORS
//     • request info (client address, UA, geo)
//     • /healthz, /metrics, then every component's routes
//
//  7. Run the HTTP server and the submission-log janitor under one
//     errgroup until SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/perks/internal/auth"
	"github.com/yanizio/perks/internal/component"
	"github.com/yanizio/perks/internal/config"
	"github.com/yanizio/perks/internal/content"
	"github.com/yanizio/perks/internal/database"
	"github.com/yanizio/perks/internal/guard"
	"github.com/yanizio/perks/internal/httpx"
	"github.com/yanizio/perks/internal/logger"
	"github.com/yanizio/perks/internal/message"
	"github.com/yanizio/perks/internal/middleware"
	"github.com/yanizio/perks/internal/notify"
	"github.com/yanizio/perks/internal/requestinfo"
	"github.com/yanizio/perks/internal/server"
	"github.com/yanizio/perks/internal/submission"
	"github.com/yanizio/perks/internal/vault"

	_ "github.com/yanizio/perks/components/admin"
	_ "github.com/yanizio/perks/components/forms"
	_ "github.com/yanizio/perks/components/pages"
)

const serverEnvPath = "/usr/local/etc/perks/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		zap.S().Errorw("fatal", "err", err)
		_ = zap.S().Sync()
		log.Fatalf("perks: %v", err)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Config (Vault first, if configured) ─────────────────────────
	//
	var secrets config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			return err
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 3.  Database, migrations, geo ───────────────────────────────────
	//
	db, err := database.OpenWithOptions(ctx, cfg.Database.Driver, cfg.Database.DSN, database.Options{
		MaxOpenConns:    cfg.Database.MaxOpen,
		MaxIdleConns:    cfg.Database.MaxIdle,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         5,
		RetryBackoff:    2 * time.Second,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logOut.Infow("database online", "driver", cfg.Database.Driver)

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db, component.Migrations(cfg.Database.Driver)); err != nil {
			return err
		}
		logOut.Infow("schema migrated")
	}

	if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
		logOut.Warnw("geoip disabled", "path", cfg.GeoIP.DBPath, "err", err)
	}
	defer requestinfo.CloseGeo()

	//
	// ── 4.  Services ────────────────────────────────────────────────────
	//
	sender, err := message.NewSender(cfg.SMTP)
	if err != nil {
		return err
	}
	subLog := submission.NewLog(db)
	svc := component.Services{
		DB:          db,
		Config:      cfg,
		Verifier:    guard.NewVerifier(cfg.Recaptcha),
		Limiter:     guard.NewLimiter(subLog, cfg.RateLimit),
		Submissions: submission.NewStore(db),
		Content:     content.NewStore(db),
		Notifier:    notify.New(sender, cfg.SMTP.AdminAddress),
		Tokens:      auth.NewTokens(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer),
	}
	if cfg.Recaptcha.SecretKey == "" {
		logOut.Warnw("recaptcha secret empty, only the bypass token verifies")
	}

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(logger.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(middleware.Security)
	r.Use(middleware.CORS(cfg.HTTP.AllowedOrigins))
	r.Use(requestinfo.Enrich)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		pctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			httpx.Error(req.Context(), w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		httpx.WriteJSON(req.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if err := component.Boot(svc, r); err != nil {
		return err
	}

	//
	// ── 6.  Run ─────────────────────────────────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, server.New(cfg.HTTP.ListenAddr, r))
	})
	g.Go(func() error {
		return submission.NewJanitor(subLog, cfg.RateLimit.Retention, cfg.RateLimit.PurgeInterval).Run(gctx)
	})
	return g.Wait()
}
