package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/latticeworld/worldcore/internal/auth"
	"github.com/latticeworld/worldcore/internal/config"
	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/eventbus"
	"github.com/latticeworld/worldcore/internal/logging"
	"github.com/latticeworld/worldcore/internal/metrics"
	"github.com/latticeworld/worldcore/internal/scheduler"
	"github.com/latticeworld/worldcore/internal/storage"
	"github.com/latticeworld/worldcore/internal/terrain"
	"github.com/latticeworld/worldcore/internal/transport"
	"github.com/latticeworld/worldcore/internal/world"
)

func main() {
	mainLog := logging.GetLogger("server")
	mainLog.Info("starting worldcore server")

	cfg, err := config.Load("")
	if err != nil {
		mainLog.Warn("failed to load config: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	tables, err := data.Load(data.Paths{
		Blocks:    defaultString(cfg.World.BlocksPath, "assets/blocks.json"),
		Templates: defaultString(cfg.World.TemplatesPath, "assets/templates.json"),
		Items:     defaultString(cfg.World.ItemsPath, "assets/items.json"),
	})
	if err != nil {
		log.Fatalf("load data tables: %v", err)
	}

	store, err := storage.Open(defaultString(cfg.World.StoragePath, "data/worldcore.badger"))
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}

	seed := cfg.World.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	provider, err := terrain.NewProvider(tables, store, seed)
	if err != nil {
		log.Fatalf("init terrain provider: %v", err)
	}

	hooks := world.NewHookBus()
	w := world.NewWorld(tables)
	frag := world.NewFragment(w, hooks)

	if err := world.LoadWorldFromStore(frag, store); err != nil {
		mainLog.Warn("failed to load saved world graph, starting empty: %v", err)
	}

	bus := newEventBus(cfg.EventBus, mainLog)
	eventbus.Init(bus)
	hooks.Register(eventbus.NewSink(bus, "worldcore"))
	if err := eventbus.StartLoggingListener(bus); err != nil {
		mainLog.Warn("failed to start eventbus logging listener: %v", err)
	}

	repo := newAuthRepository(cfg.Auth, mainLog)

	ndjson := transport.NewNDJSONTransport(repo)
	if err := ndjson.Listen(":7777"); err != nil {
		log.Fatalf("listen: %v", err)
	}

	engine := scheduler.NewEngine(frag, provider, world.ForestStablePlane, ndjson)

	sched := metrics.NewScheduler()
	engine.SetMetrics(sched)

	ctx, cancel := context.WithCancel(context.Background())
	metrics.StartHostSampler(ctx, 5*time.Second)

	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	go func() {
		mainLog.Info("prometheus /metrics on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, promhttp.Handler()); err != nil {
			mainLog.Error("metrics http server stopped: %v", err)
		}
	}()

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- engine.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		mainLog.Info("received signal %v, shutting down", sig)
		cancel()
		<-runErrCh
	case err := <-runErrCh:
		if err != nil {
			mainLog.Error("engine stopped: %v", err)
		}
	}

	if err := world.SaveWorldToStore(frag, store); err != nil {
		mainLog.Error("failed to save world graph: %v", err)
	}

	mainLog.Info("worldcore server stopped")
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func newEventBus(cfg config.EventBusConfig, log *logging.Logger) eventbus.EventBus {
	if cfg.InMemory || cfg.URL == "" {
		log.Info("using in-memory event bus")
		return eventbus.NewMemoryBus(1024)
	}

	retention := time.Duration(cfg.Retention) * time.Hour
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, retention)
	if err != nil {
		log.Warn("failed to connect to jetstream at %s, falling back to in-memory bus: %v", cfg.URL, err)
		return eventbus.NewMemoryBus(1024)
	}
	log.Info("jetstream bus connected at %s", cfg.URL)
	return bus
}

func newAuthRepository(cfg config.AuthConfig, log *logging.Logger) auth.Repository {
	if cfg.InMemory || cfg.Host == "" {
		log.Info("using in-memory credential repository")
		return auth.NewTestRepository()
	}

	repo, err := auth.NewMySQLRepository(auth.MySQLConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		log.Warn("failed to connect to mysql credential db, falling back to in-memory: %v", err)
		return auth.NewTestRepository()
	}
	return repo
}
