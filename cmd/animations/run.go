package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/romariotrain/animation-platform/internal/animation/httpapi"
	"github.com/romariotrain/animation-platform/internal/animation/metrics"
	"github.com/romariotrain/animation-platform/internal/animation/render"
	"github.com/romariotrain/animation-platform/internal/animation/repository"
	"github.com/romariotrain/animation-platform/internal/animation/service"
	"github.com/romariotrain/animation-platform/internal/app"
	"github.com/romariotrain/animation-platform/internal/auth"
	"github.com/romariotrain/animation-platform/internal/config"
	pg "github.com/romariotrain/animation-platform/internal/storage/postgres"
)

type stores struct {
	animations repository.AnimationRepository
	users      repository.UserRepository
	close      func() error
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{
			animations: repository.NewMemoryRepository(),
			users:      repository.NewMemoryUserRepository(),
			close:      func() error { return nil },
		}, nil
	}

	db, err := pg.Connect(ctx, cfg.DatabaseURL, pg.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := pg.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &stores{
		animations: pg.NewAnimationRepo(db, pg.NewOutboxRepo(db)),
		users:      pg.NewUserRepo(db),
		close:      db.Close,
	}, nil
}

func newRunner(cfg *config.Config, logger zerolog.Logger) app.Runner {
	return func(ctx context.Context) error {
		st, err := openStores(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = st.close() }()

		if err := os.MkdirAll(cfg.UploadPath, 0o755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		renderer, err := render.NewClient(render.Options{
			BaseURL: cfg.RenderBaseURL,
			Timeout: cfg.RenderTimeout,
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
		if err != nil {
			return err
		}

		orch := service.NewOrchestrator(st.animations, st.users, renderer, m, logger)
		h := httpapi.New(httpapi.Services{
			Orchestrator: orch,
			Query:        service.NewQuery(st.animations),
			Accounts:     service.NewAccounts(st.users, st.animations, issuer, cfg.DefaultMaxCalls),
			Gateway:      auth.NewGateway(issuer, st.users),
		}, httpapi.Config{
			ServiceName:        serviceName,
			Environment:        cfg.AppEnv,
			FrontendURL:        cfg.FrontendURL,
			UploadPath:         cfg.UploadPath,
			RateLimitPerMinute: cfg.RateLimitPerMin,
			Gatherer:           reg,
			Metrics:            m,
			Logger:             logger,
		})

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(h),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("http server listening")
			if err := srv.ListenAndServe(); err != nil {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			shutdownErr := srv.Shutdown(shutdownCtx)

			// Generations outlive their requests; stores close only after them.
			drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.WriteTimeout)
			defer cancelDrain()
			if err := orch.Drain(drainCtx); err != nil {
				logger.Error().Err(err).Msg("generations still running at shutdown")
			}

			if shutdownErr != nil {
				return fmt.Errorf("shutdown: %w", shutdownErr)
			}
			return nil

		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("listen and serve: %w", err)
		}
	}
}
