package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joblens/joblens/internal/account"
	"github.com/joblens/joblens/internal/avatar"
	"github.com/joblens/joblens/internal/config"
	"github.com/joblens/joblens/internal/httpapi"
	"github.com/joblens/joblens/internal/jobs"
	"github.com/joblens/joblens/internal/observability"
	"github.com/joblens/joblens/internal/realtime"
	"github.com/joblens/joblens/internal/session"
	"github.com/joblens/joblens/internal/token"
)

func main() {
	// Local development keeps credentials in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	latency := observability.NewLatencyWindow(256)

	ctx := context.Background()
	jobStore, err := jobs.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("job store init failed: %v", err)
	}
	defer jobStore.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("job store: postgres")
	} else {
		log.Printf("job store: in-memory (seeded)")
	}

	issuer := token.NewIssuer(cfg.RTCAPIKey, cfg.RTCAPISecret, cfg.RTCServiceURL)
	avatarClient := avatar.NewClient(cfg.AvatarAPIKey, cfg.AvatarPersonaID, cfg.AvatarAPIURL, cfg.AvatarTimeout)
	if avatarClient.Configured() {
		log.Printf("avatar upstream: live")
	} else {
		log.Printf("avatar upstream: mock (AVATAR_API_KEY or AVATAR_PERSONA_ID missing)")
	}

	// Sessions mint through the real issuer only when RTC is configured;
	// mock mode pairs the mock transport with dev credentials so the
	// lifecycle stays usable without a media server.
	var grants session.TokenSource = issuer
	var transport realtime.Transport
	if cfg.RTCConfigured() {
		transport = realtime.NewWSTransport()
		log.Printf("realtime transport: websocket")
	} else {
		transport = realtime.NewMockTransport()
		grants = token.NewDevSource()
		log.Printf("realtime transport: mock (RTC_* not configured; dev credentials)")
	}

	sessions := session.NewManager(grants, avatarClient, transport, cfg.RTCConnectTimeout, cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Controller) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.Count()))
	})

	accounts := account.NewService()

	api := httpapi.New(cfg, issuer, avatarClient, sessions, jobStore, accounts, metrics, latency)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
