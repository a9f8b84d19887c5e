package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/internal/adapter"
	"main/internal/broker/motilal"
	"main/internal/childlog"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/replicate"
	"main/internal/session"
	"main/internal/setups"
	"main/internal/symbols"
	"main/pkg/conn"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("copytrader: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to JSON config")
	configReload := flag.Duration("config-reload-interval", 2*time.Second, "Config reload interval (0=disable)")
	skipRefresh := flag.Bool("skip-symbol-refresh", false, "Skip the security master refresh at startup")
	metricsInterval := flag.Duration("metrics-interval", time.Minute, "Metrics snapshot log interval (0=disable)")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "copytrader",
			ServerAddress:   *pyroscopeAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileGoroutines,
			},
		})
		if err != nil {
			logs.Warnf("start pyroscope, err: %+v", err)
		} else {
			defer profiler.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	dbClient, err := openSymbolDB(loaded.Symbols)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	store, err := symbols.NewStore(dbClient.DB())
	if err != nil {
		return err
	}
	if !*skipRefresh {
		refresher := symbols.NewRefresher(store, httpClient, loaded.Symbols.CSVURL)
		if rows, err := refresher.Refresh(ctx); err != nil {
			logs.Warnf("refresh security master, err: %+v", err)
		} else {
			logs.Infof("security master refreshed: %d rows", rows)
		}
	}

	dir := session.NewDirectory()
	clients := session.LoadClients(loaded.Paths.ClientsDir)
	session.Bootstrap(ctx, dir, clients, connector(loaded.Broker, httpClient), loaded.Broker.LoginWorkers)
	logs.Infof("sessions established: %d of %d clients", dir.Len(), len(clients))

	sink := childlog.NewSink(loaded.Paths.ChildLogDir)
	defer sink.Close()

	metrics := obs.NewMetrics()
	engine, err := replicate.NewEngine(
		engineConfig(loaded.Engine),
		setups.NewStore(loaded.Paths.SetupsDir),
		directoryAdapter{dir},
		store,
		sink,
		metrics,
	)
	if err != nil {
		return err
	}

	if *configPath != "" && *configReload > 0 {
		go watchConfig(ctx, *configPath, *configReload, engine)
	}
	if *metricsInterval > 0 {
		go snapshotLoop(ctx, *metricsInterval, metrics)
	}

	engine.Run(ctx)
	return nil
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default()
	}
	return ops.Load(path)
}

func engineConfig(spec ops.EngineSpec) replicate.Config {
	return replicate.Config{
		PollInterval:    spec.PollInterval,
		FreshnessWindow: spec.FreshnessWindow,
		WorkersPerSetup: spec.WorkersPerSetup,
		BrokerTimeout:   spec.BrokerTimeout,
		Location:        spec.Location,
		SessionOpenSec:  spec.SessionOpenSec,
		SessionCloseSec: spec.SessionCloseSec,
	}
}

func openSymbolDB(cfg ops.SymbolsConfig) (*conn.Client, error) {
	if cfg.Driver == "postgres" {
		return conn.NewPostgres(conn.PostgresOption{ConnString: cfg.DSN})
	}
	return conn.NewSQLite(cfg.Path, nil)
}

// connector builds the login path used at bootstrap: one broker client
// per account, authenticated with the account's credentials.
func connector(cfg ops.BrokerConfig, httpClient *http.Client) session.ConnectFunc {
	return func(ctx context.Context, cred adapter.Client) (session.Broker, error) {
		client := motilal.NewClient(httpClient, motilal.Config{
			BaseURL:        cfg.BaseURL,
			APIKey:         cred.APIKey,
			SourceID:       cfg.SourceID,
			BrowserName:    cfg.BrowserName,
			BrowserVersion: cfg.BrowserVersion,
		})
		if err := client.Login(ctx, cred); err != nil {
			return nil, err
		}
		return client, nil
	}
}

type directoryAdapter struct {
	dir *session.Directory
}

func (d directoryAdapter) ByUserID(userID string) (replicate.Session, bool) {
	s, ok := d.dir.ByUserID(userID)
	if !ok {
		return nil, false
	}
	return s, true
}

func watchConfig(ctx context.Context, path string, interval time.Duration, engine *replicate.Engine) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				logs.Warnf("config stat failed, err: %+v", err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			loaded, err := ops.Load(path)
			if err != nil {
				logs.Warnf("config reload failed, err: %+v", err)
				continue
			}
			engine.UpdateConfig(engineConfig(loaded.Engine))
			lastMod = info.ModTime()
			logs.Infof("config reloaded: %s", path)
		}
	}
}

func snapshotLoop(ctx context.Context, interval time.Duration, metrics *obs.Metrics) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := metrics.Snapshot()
			logs.Infof("metrics: cycles=%d orders=%d placed=%d cancelled=%d child_failures=%d feed_failures=%d skips=%v cycle=%+v order=%+v",
				s.Cycles, s.OrdersSeen, s.Placed, s.Cancelled, s.ChildFailures, s.FeedFailures,
				s.SkipCounts, s.CycleLatency, s.OrderLatency)
		}
	}
}
