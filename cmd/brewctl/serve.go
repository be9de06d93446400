package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"brewing_control/internal/clock"
	"brewing_control/internal/config"
	"brewing_control/internal/control"
	"brewing_control/internal/handlers"
	"brewing_control/internal/logger"
	"brewing_control/internal/peripheral"
	"brewing_control/internal/peripheral/redisbridge"
	"brewing_control/internal/peripheral/sim"
	"brewing_control/internal/repository"
	"brewing_control/internal/repository/db"
	"brewing_control/internal/server"
	"brewing_control/internal/service"
)

const (
	defaultDBPath    = "app.db"
	redisPingTimeout = 3 * time.Second
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the control engine and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			log := logger.Get(cfg.LogLevel)
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	dbPath := cfg.DB.Path
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", defaultDBPath)
		dbPath = defaultDBPath
	}
	conn, err := db.InitDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(conn)

	clk := clock.System{}
	dev, closer, err := openRig(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var (
		skew control.SkewReporter
		ntp  *clock.NTPChecker
	)
	if cfg.NTP.Enabled {
		ntp = clock.NewNTPChecker(clk, cfg.NTP.Server, cfg.NTP.Interval, cfg.NTP.Threshold)
		skew = ntp
	}

	engine, err := control.NewEngine(cfg.Engine(), dev, clk, repos.StateRepo, skew, log.Named("engine"))
	if err != nil {
		return err
	}
	recipe, proc, err := repos.StateRepo.LoadCheckpoint(ctx)
	if err != nil {
		log.Warnw("checkpoint_load_failed", "err", err)
	} else if err := engine.Restore(recipe, proc); err != nil {
		log.Warnw("checkpoint_restore_failed", "err", err, "status", proc.Status)
	}

	services, err := service.NewService(repos, engine, service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	}, log.Named("service"))
	if err != nil {
		return err
	}
	apiHandler := handlers.NewHandler(services, log.Named("http"))
	srv := &server.Server{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	if ntp != nil {
		g.Go(func() error {
			ntp.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		log.Infow("http_listening", "port", cfg.Port, "driver", cfg.Rig.Driver)
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openRig connects the configured peripheral driver.
func openRig(ctx context.Context, cfg *config.Config, clk clock.Clock) (peripheral.Peripheral, io.Closer, error) {
	switch cfg.Rig.Driver {
	case config.DriverSim:
		return sim.New(clk, cfg.Rig.HeaterPins, cfg.Rig.ActuatorPins), nopCloser{}, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis at %s: %w", cfg.Redis.Addr, err)
		}
		return redisbridge.New(client, cfg.Redis.Prefix, len(cfg.Rig.HeaterPins)), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown rig driver %q", cfg.Rig.Driver)
	}
}
