package main

import (
	"PerpScope/internal/alert"
	"PerpScope/internal/journal"
	"PerpScope/internal/ledger"
	"PerpScope/internal/monitor"
	"PerpScope/internal/observability"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds all keeper configuration, loaded from environment
// variables. PERPSCOPE_PROGRAM_ID is mandatory: deriving addresses
// against a defaulted program id would silently target the wrong
// program, so there is no fallback.
type Config struct {
	RPCURL     string
	ProgramID  solana.PublicKey
	Candidates []solana.PublicKey

	ScanInterval time.Duration
	Concurrency  int

	// Optional sinks; empty disables.
	PostgresDSN string
	NATSURL     string

	MetricsAddr string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		RPCURL:       envOrDefault("PERPSCOPE_RPC_URL", "https://api.devnet.solana.com"),
		ScanInterval: time.Duration(envIntOrDefault("PERPSCOPE_SCAN_INTERVAL_SEC", 10)) * time.Second,
		Concurrency:  envIntOrDefault("PERPSCOPE_SCAN_CONCURRENCY", monitor.DefaultConcurrency),
		PostgresDSN:  os.Getenv("PERPSCOPE_POSTGRES_DSN"),
		NATSURL:      os.Getenv("PERPSCOPE_NATS_URL"),
		MetricsAddr:  envOrDefault("PERPSCOPE_METRICS_ADDR", ":9091"),
	}

	raw := os.Getenv("PERPSCOPE_PROGRAM_ID")
	if raw == "" {
		return Config{}, fmt.Errorf("PERPSCOPE_PROGRAM_ID is required")
	}
	programID, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse PERPSCOPE_PROGRAM_ID: %w", err)
	}
	cfg.ProgramID = programID

	for _, s := range strings.Split(os.Getenv("PERPSCOPE_CANDIDATES"), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		owner, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return Config{}, fmt.Errorf("parse candidate %q: %w", s, err)
		}
		cfg.Candidates = append(cfg.Candidates, owner)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	log := observability.NewLogger("keeper")

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	if len(cfg.Candidates) == 0 {
		log.Warn().Msg("no candidates configured, scans will only read market state")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := ledger.NewClient(cfg.RPCURL)
	mon := monitor.New(client, cfg.ProgramID, cfg.Concurrency,
		observability.NewLogger("monitor"))

	metrics := observability.NewMetrics()
	health := observability.NewHealthChecker()

	// --- Optional Postgres journal ---
	var jw *journal.Writer
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open")
		}
		defer db.Close()
		db.SetMaxOpenConns(4)
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping")
		}
		jw = journal.NewWriter(db)
		if err := jw.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("journal schema")
		}
		log.Info().Msg("journal enabled")
	}

	// --- Optional NATS alerts ---
	var pub *alert.Publisher
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("nats connect")
		}
		defer nc.Drain()
		js, err := jetstream.New(nc)
		if err != nil {
			log.Fatal().Err(err).Msg("jetstream")
		}
		if err := alert.EnsureStream(ctx, js); err != nil {
			log.Fatal().Err(err).Msg("alerts stream")
		}
		pub = alert.NewPublisher(js)
		log.Info().Msg("alerts enabled")
	}

	// --- Metrics & health listener ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.LivenessHandler)
	mux.HandleFunc("/readyz", health.ReadinessHandler)
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics listener")
		}
	}()
	defer srv.Shutdown(context.Background())

	log.Info().
		Stringer("program_id", cfg.ProgramID).
		Int("candidates", len(cfg.Candidates)).
		Dur("interval", cfg.ScanInterval).
		Msg("keeper started")

	runCycle(ctx, log, mon, cfg.Candidates, metrics, jw, pub)
	health.SetReady(true)

	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("keeper stopped")
			return
		case <-ticker.C:
			runCycle(ctx, log, mon, cfg.Candidates, metrics, jw, pub)
		}
	}
}

func runCycle(
	ctx context.Context,
	log zerolog.Logger,
	mon *monitor.Monitor,
	candidates []solana.PublicKey,
	metrics *observability.Metrics,
	jw *journal.Writer,
	pub *alert.Publisher,
) {
	started := time.Now()

	report, err := mon.Scan(ctx, candidates)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("scan cycle failed")
		metrics.ScanAborted.Inc()
		return
	}
	elapsed := time.Since(started)

	metrics.ScanCycles.Inc()
	metrics.ScanDuration.Observe(elapsed.Seconds())
	metrics.ScanCandidates.Add(float64(report.Scanned))
	metrics.ScanSkipped.Add(float64(report.Skipped))
	metrics.ScanFailed.Add(float64(report.Failed))
	metrics.LiquidatableLast.Set(float64(len(report.Findings)))
	metrics.LiquidatableSeen.Add(float64(len(report.Findings)))
	metrics.MarkPrice.Set(float64(report.MarkPrice))

	log.Info().
		Stringer("cycle_id", report.CycleID).
		Int("scanned", report.Scanned).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("liquidatable", len(report.Findings)).
		Dur("elapsed", elapsed).
		Msg("scan cycle complete")

	if jw != nil {
		writeJournal(ctx, log, jw, report, started, elapsed, metrics)
	}
	if pub != nil {
		publishAlerts(ctx, log, pub, report, metrics)
	}
}

func writeJournal(
	ctx context.Context,
	log zerolog.Logger,
	jw *journal.Writer,
	report *monitor.Report,
	started time.Time,
	elapsed time.Duration,
	metrics *observability.Metrics,
) {
	cycle := journal.CycleRow{
		CycleID:      report.CycleID,
		MarkPrice:    int64(report.MarkPrice),
		FundingIndex: report.FundingIndex,
		Scanned:      report.Scanned,
		Skipped:      report.Skipped,
		Failed:       report.Failed,
		Findings:     len(report.Findings),
		StartedAt:    started,
		DurationMs:   elapsed.Milliseconds(),
	}

	rows := make([]journal.FindingRow, 0, len(report.Findings))
	for _, f := range report.Findings {
		rows = append(rows, journal.FindingRow{
			CycleID:       report.CycleID,
			Owner:         f.Owner.String(),
			BaseAmount:    f.Position.BaseAmount,
			Collateral:    int64(f.Position.Collateral),
			EntryPrice:    int64(f.Position.EntryPrice),
			Health:        f.Health,
			UnrealizedPnL: f.UnrealizedPnL,
			Penalty:       int64(f.Penalty),
		})
	}

	if err := jw.WriteCycle(ctx, cycle, rows); err != nil {
		log.Warn().Err(err).Stringer("cycle_id", report.CycleID).Msg("journal write failed")
		metrics.JournalWrites.WithLabelValues("error").Inc()
		return
	}
	metrics.JournalWrites.WithLabelValues("ok").Inc()
}

func publishAlerts(
	ctx context.Context,
	log zerolog.Logger,
	pub *alert.Publisher,
	report *monitor.Report,
	metrics *observability.Metrics,
) {
	for _, f := range report.Findings {
		a := alert.LiquidationAlert{
			CycleID:       report.CycleID,
			Owner:         f.Owner.String(),
			Health:        f.Health,
			MarkPrice:     int64(report.MarkPrice),
			Collateral:    int64(f.Position.Collateral),
			UnrealizedPnL: f.UnrealizedPnL,
			Penalty:       int64(f.Penalty),
			Timestamp:     time.Now().UTC(),
		}
		if err := pub.Publish(ctx, a); err != nil {
			// Non-fatal: downstream bots can still query the chain
			log.Warn().Err(err).Str("owner", a.Owner).Msg("alert publish failed")
			metrics.AlertsSent.WithLabelValues("error").Inc()
			continue
		}
		metrics.AlertsSent.WithLabelValues("ok").Inc()
	}
}
