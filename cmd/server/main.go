package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	electionhandler "ballotbox/internal/election/handler"
	electionmetrics "ballotbox/internal/election/metrics"
	electionservice "ballotbox/internal/election/service"
	electionstore "ballotbox/internal/election/store/election"
	partystore "ballotbox/internal/election/store/party"
	"ballotbox/internal/jwttoken"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/httpserver"
	"ballotbox/internal/platform/logger"
	"ballotbox/internal/platform/metrics"
	platformredis "ballotbox/internal/platform/redis"
	voterhandler "ballotbox/internal/voter/handler"
	voterservice "ballotbox/internal/voter/service"
	voterstore "ballotbox/internal/voter/store/voter"
	votinghandler "ballotbox/internal/voting/handler"
	votingmetrics "ballotbox/internal/voting/metrics"
	votingservice "ballotbox/internal/voting/service"
	"ballotbox/internal/voting/store/ledger"
	"ballotbox/internal/voting/store/resultscache"
	"ballotbox/internal/voting/store/tally"
	auditpublisher "ballotbox/pkg/platform/audit/publisher"
	auditmemory "ballotbox/pkg/platform/audit/store/memory"
	auditpostgres "ballotbox/pkg/platform/audit/store/postgres"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Storage: Postgres when configured, in-memory otherwise.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	httpMetrics := metrics.New()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	// Audit trail, drained asynchronously so the vote hot path never waits
	// on audit storage.
	var auditor *auditpublisher.Publisher
	if db != nil {
		auditor = auditpublisher.NewPublisher(auditpostgres.New(db), auditpublisher.WithAsyncBuffer(256), auditpublisher.WithLogger(log))
	} else {
		auditor = auditpublisher.NewPublisher(auditmemory.NewInMemoryStore(), auditpublisher.WithAsyncBuffer(256), auditpublisher.WithLogger(log))
	}
	defer auditor.Close()

	var (
		elections electionservice.ElectionStore
		parties   electionservice.PartyStore
		ballots   interface {
			votingservice.Ledger
			electionservice.Ledger
		}
		tallies interface {
			votingservice.Tally
			electionservice.Tally
		}
		voters      voterservice.Store
		votingOpts  []votingservice.Option
		electionOps []electionservice.Option
	)

	if db != nil {
		elections = electionstore.NewPostgres(db)
		parties = partystore.NewPostgres(db)
		ballots = ledger.NewPostgres(db)
		tallies = tally.NewPostgres(db)
		voters = voterstore.NewPostgres(db)
		votingOpts = append(votingOpts, votingservice.WithTx(votingservice.NewSQLTx(db)))
		electionOps = append(electionOps, electionservice.WithTx(electionservice.NewSQLTx(db)))
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		elections = electionstore.NewInMemory()
		parties = partystore.NewInMemory()
		ballots = ledger.NewInMemory()
		tallies = tally.NewInMemory()
		voters = voterstore.NewInMemory()
	}

	if redisClient != nil {
		cache := resultscache.NewRedis(redisClient.Client, cfg.ResultsCacheTTL, log)
		votingOpts = append(votingOpts, votingservice.WithResultsCache(cache))
	}

	votingOpts = append(votingOpts,
		votingservice.WithAuditPublisher(auditor),
		votingservice.WithMetrics(votingmetrics.New()),
		votingservice.WithLogger(log),
	)
	electionOps = append(electionOps,
		electionservice.WithAuditPublisher(auditor),
		electionservice.WithMetrics(electionmetrics.New()),
		electionservice.WithLogger(log),
	)

	votingSvc := votingservice.NewService(elections, parties, ballots, tallies, votingOpts...)
	electionSvc := electionservice.NewService(elections, parties, ballots, tallies, electionOps...)
	voterSvc := voterservice.NewService(voters, voterservice.WithAuditPublisher(auditor), voterservice.WithLogger(log))

	router := chi.NewRouter()
	votinghandler.New(votingSvc, log, httpMetrics, jwtValidator).Register(router)
	electionhandler.New(electionSvc, log, httpMetrics, jwtValidator, cfg.AdminToken).Register(router)
	voterhandler.New(voterSvc, log, httpMetrics, jwtValidator).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting ballotbox", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("ballotbox stopped")
}
