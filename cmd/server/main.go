// Command server runs the HTTP API for the election pipelines.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polibase/polibase/internal/election/handler"
	"github.com/polibase/polibase/internal/election/importer"
	"github.com/polibase/polibase/internal/election/linker"
	"github.com/polibase/polibase/internal/election/metrics"
	"github.com/polibase/polibase/internal/election/service"
	"github.com/polibase/polibase/internal/election/source"
	"github.com/polibase/polibase/internal/election/source/smri"
	"github.com/polibase/polibase/internal/election/source/soumu"
	"github.com/polibase/polibase/internal/election/tenure"
	"github.com/polibase/polibase/internal/platform/config"
	"github.com/polibase/polibase/internal/platform/httpserver"
	"github.com/polibase/polibase/internal/platform/logger"
	"github.com/polibase/polibase/internal/platform/postgres"
	"github.com/polibase/polibase/internal/platform/redisclient"
	"github.com/polibase/polibase/pkg/platform/audit"
	auditpostgres "github.com/polibase/polibase/pkg/platform/audit/store/postgres"
	"github.com/polibase/polibase/pkg/platform/middleware/admin"
	"github.com/polibase/polibase/pkg/platform/middleware/requestmeta"

	"github.com/polibase/polibase/internal/election/store/conference"
	electionstore "github.com/polibase/polibase/internal/election/store/election"
	"github.com/polibase/polibase/internal/election/store/group"
	"github.com/polibase/polibase/internal/election/store/member"
	"github.com/polibase/polibase/internal/election/store/party"
	"github.com/polibase/polibase/internal/election/store/partyhistory"
	"github.com/polibase/polibase/internal/election/store/politician"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := redisclient.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores.
	politicians := politician.NewPostgres(db)
	parties := party.NewPostgres(db)
	histories := partyhistory.NewPostgres(db)
	elections := electionstore.NewPostgres(db)
	members := member.NewPostgres(db)
	groups := group.NewPostgres(db)
	conferences := conference.NewPostgres(db)
	auditStore := auditpostgres.New(db)

	// Sources.
	fetcher := soumu.NewFetcher(http.DefaultClient, redisClient, log)
	constituency := soumu.NewConstituencySource(cfg.ConstituencyURLTemplate, fetcher, log)
	proportionalSheets := soumu.NewProportionalSheetSource(cfg.ProportionalURLTemplate, fetcher, log)
	var councillorsSource source.CouncillorSource
	if cfg.CouncillorsFile != "" {
		councillorsSource = smri.NewFileSource(cfg.CouncillorsFile, log)
	} else {
		councillorsSource = smri.NewHTTPSource(cfg.CouncillorsURL, http.DefaultClient, log)
	}

	// Pipelines.
	factory := service.NewFactory(politicians, parties, histories, elections, log)
	general := importer.NewGeneral(factory, members, constituency, log)
	councillors := importer.NewCouncillors(factory, members, councillorsSource, log)
	proportional := importer.NewProportional(factory, members, proportionalSheets, log)
	groupLinker := linker.New(elections, members, politicians, histories, groups, log)
	populator := tenure.NewPopulator(elections, members, conferences, politicians, log)

	publisher := audit.NewPublisher(auditStore, audit.WithLogger(log))
	m := metrics.New()
	h := handler.New(general, councillors, proportional, groupLinker, populator, auditStore, publisher, m, log)

	router := chi.NewRouter()
	router.Use(requestmeta.Middleware)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		if cfg.AdminJWTSecret == "" {
			log.Warn("POLIBASE_ADMIN_JWT_SECRET not set, pipeline routes disabled")
			r.Use(func(http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusServiceUnavailable)
				})
			})
		} else {
			r.Use(admin.RequireToken(cfg.AdminJWTSecret, log))
		}
		h.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting polibase", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
