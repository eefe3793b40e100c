package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gridfall/gridfall-server/internal/config"
	"github.com/gridfall/gridfall-server/internal/console"
	"github.com/gridfall/gridfall-server/internal/content"
	"github.com/gridfall/gridfall-server/internal/httpapi"
	"github.com/gridfall/gridfall-server/internal/journal"
	"github.com/gridfall/gridfall-server/internal/logging"
	"github.com/gridfall/gridfall-server/internal/policy"
	"github.com/gridfall/gridfall-server/internal/server"
	"github.com/gridfall/gridfall-server/internal/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.LogFile)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogue, err := loadContent(cfg.ContentDir)
	if err != nil {
		log.Fatalw("load content", "err", err)
	}

	bus := console.NewBus()
	policies := policy.NewSet(policy.Aggressive{})
	if cfg.ScriptsDir != "" {
		if err := policy.LoadDir(cfg.ScriptsDir, bus, policies); err != nil {
			log.Warnw("load decision scripts", "dir", cfg.ScriptsDir, "err", err)
		}
	}
	log.Infow("decision policies ready", "names", policies.Names())

	jr, err := journal.Open(cfg.JournalDSN, log)
	if err != nil {
		log.Fatalw("open journal", "err", err)
	}
	defer jr.Close()

	world, err := catalogue.BuildWorld(cfg.Seed,
		[]string{"luvui", "aris"},
		[]string{"rat", "rat", "rat"})
	if err != nil {
		log.Fatalw("build world", "err", err)
	}

	sched := sim.NewScheduler(world, policies, bus)
	srv := server.New(log, sched, bus, jr, cfg.LivenessTimeout)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalw("listen", "addr", cfg.Addr, "err", err)
	}

	admin := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: httpapi.SetupRoutes(srv),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("game server listening", "addr", cfg.Addr)
		return srv.Run(ctx, ln)
	})
	g.Go(func() error {
		log.Infow("admin server listening", "addr", cfg.AdminAddr)
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return admin.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalw("server exited", "err", err)
	}
	log.Infow("shutdown complete")
}

func loadContent(dir string) (*content.Catalogue, error) {
	if dir == "" {
		return content.Default()
	}
	return content.Load(dir)
}
