package replicate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/internal/obs"
	"main/pkg/exception"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

// Session is a live broker handle for one account.
type Session interface {
	Name() string
	UserID() string
	PlaceOrder(ctx context.Context, intent adapter.ChildOrderIntent) (orderID string, err error)
	CancelOrder(ctx context.Context, orderID string) (message string, err error)
	OrderBook(ctx context.Context) ([]adapter.MasterOrder, error)
}

// SessionDirectory resolves accounts to live sessions. Absence is a
// normal, recoverable condition.
type SessionDirectory interface {
	ByUserID(userID string) (Session, bool)
}

// SetupSource lists the currently enabled replication setups.
type SetupSource interface {
	ListEnabled() []adapter.Setup
}

// LotSizer answers minimum lot size lookups for a security id.
type LotSizer interface {
	MinLotSize(ctx context.Context, securityID int64) (int64, bool)
}

// ChildLogger receives per-child diagnostic lines.
type ChildLogger interface {
	Log(child, format string, args ...any)
}

// Config tunes the replication loop.
type Config struct {
	PollInterval    time.Duration
	FreshnessWindow time.Duration
	WorkersPerSetup int
	BrokerTimeout   time.Duration
	Location        *time.Location
	SessionOpenSec  int // seconds from midnight, broker clock
	SessionCloseSec int
}

func (cfg Config) withDefaults() Config {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = 5 * time.Second
	}
	if cfg.WorkersPerSetup <= 0 {
		cfg.WorkersPerSetup = 4
	}
	if cfg.BrokerTimeout <= 0 {
		cfg.BrokerTimeout = 15 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SessionOpenSec <= 0 {
		cfg.SessionOpenSec = 9 * 3600
	}
	if cfg.SessionCloseSec <= cfg.SessionOpenSec {
		cfg.SessionCloseSec = 15*3600 + 30*60
	}
	return cfg
}

// Engine polls each enabled setup's master order book and replicates
// placements and cancellations to the setup's children.
type Engine struct {
	cfg atomic.Value // Config

	setups   SetupSource
	sessions SessionDirectory
	lots     LotSizer
	childLog ChildLogger
	metrics  *obs.Metrics

	statesMu sync.Mutex
	states   map[string]*setupState

	lastEnabled map[string]struct{} // driver goroutine only

	now func() time.Time
}

func NewEngine(cfg Config, setups SetupSource, sessions SessionDirectory, lots LotSizer, childLog ChildLogger, metrics *obs.Metrics) (*Engine, error) {
	if setups == nil || sessions == nil {
		return nil, exception.ErrReplicateNilCollaborator
	}

	e := &Engine{
		setups:      setups,
		sessions:    sessions,
		lots:        lots,
		childLog:    childLog,
		metrics:     metrics,
		states:      make(map[string]*setupState),
		lastEnabled: make(map[string]struct{}),
		now:         time.Now,
	}
	e.cfg.Store(cfg.withDefaults())
	return e, nil
}

// UpdateConfig swaps the engine configuration; the next cycle uses it.
func (e *Engine) UpdateConfig(cfg Config) {
	e.cfg.Store(cfg.withDefaults())
}

func (e *Engine) config() Config {
	return e.cfg.Load().(Config)
}

// Run drives replication cycles until the context is done. The
// in-flight cycle always drains before Run returns.
func (e *Engine) Run(ctx context.Context) {
	logs.Info("replication engine running")
	for {
		e.RunCycle(ctx)

		select {
		case <-ctx.Done():
			logs.Info("replication engine stopped")
			return
		case <-sys.Shutdown():
			logs.Info("replication engine stopped")
			return
		case <-time.After(e.config().PollInterval):
		}
	}
}

// RunCycle executes one full replication pass: list enabled setups,
// fan out one task per setup, and join them all. Panics are contained
// to the cycle.
func (e *Engine) RunCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("replication cycle panic: %+v", r)
		}
	}()

	start := e.now()
	setups := e.setups.ListEnabled()
	e.logEnabledDiff(setups)

	var wg sync.WaitGroup
	for _, setup := range setups {
		wg.Add(1)
		go func(s adapter.Setup) {
			defer wg.Done()
			e.runSetup(ctx, s)
		}(setup)
	}
	wg.Wait()

	e.metrics.ObserveCycle(e.now().Sub(start))
}

// runSetup fetches the master order book for one setup and processes
// every order through a bounded worker pool. All orders finish before
// the setup's task is considered done.
func (e *Engine) runSetup(ctx context.Context, setup adapter.Setup) {
	master, ok := e.sessions.ByUserID(setup.Master)
	if !ok {
		logs.Warnf("master session not found for setup %s (account %s)", setup.Name, setup.Master)
		return
	}

	orders := e.fetchMasterOrders(ctx, master)
	if len(orders) == 0 {
		return
	}

	st := e.stateFor(setup.Name)
	workers := e.config().WorkersPerSetup
	if workers > len(orders) {
		workers = len(orders)
	}

	tasks := make(chan adapter.MasterOrder)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for order := range tasks {
				begin := e.now()
				outcome := e.processOrder(ctx, setup, st, order)
				e.metrics.ObserveOrder(e.now().Sub(begin))
				e.recordOutcome(setup, outcome)
			}
		}()
	}
	for _, order := range orders {
		tasks <- order
	}
	close(tasks)
	wg.Wait()
}

// fetchMasterOrders retrieves the master's current order book. Failures
// are reported and yield an empty snapshot, never an aborted cycle.
func (e *Engine) fetchMasterOrders(ctx context.Context, master Session) []adapter.MasterOrder {
	fetchCtx, cancel := context.WithTimeout(ctx, e.config().BrokerTimeout)
	defer cancel()

	orders, err := master.OrderBook(fetchCtx)
	if err != nil {
		logs.Warnf("fetch order book for master %s, err: %+v", master.UserID(), err)
		e.metrics.IncFeedFailure()
		return nil
	}
	return orders
}

func (e *Engine) recordOutcome(setup adapter.Setup, outcome adapter.OrderOutcome) {
	if outcome.Skip != enum.SkipReasonNone {
		e.metrics.IncSkip(outcome.Skip)
		return
	}

	switch outcome.Action {
	case enum.ReplicationActionPlace:
		e.metrics.IncPlaced()
	case enum.ReplicationActionCancel:
		e.metrics.IncCancelled()
	default:
		return
	}

	if failed := outcome.Failed(); failed > 0 {
		e.metrics.AddChildFailures(failed)
		logs.Warnf("setup %s order %s: %d of %d child forwards failed",
			setup.Name, outcome.MasterOrderID, failed, len(outcome.Children))
	}
}

func (e *Engine) stateFor(name string) *setupState {
	e.statesMu.Lock()
	defer e.statesMu.Unlock()
	st, ok := e.states[name]
	if !ok {
		st = newSetupState()
		e.states[name] = st
	}
	return st
}

// logEnabledDiff logs setups newly enabled or disabled since the last
// cycle. Informational only; membership is always taken fresh.
func (e *Engine) logEnabledDiff(setups []adapter.Setup) {
	current := make(map[string]struct{}, len(setups))
	for _, s := range setups {
		current[s.Name] = struct{}{}
	}
	for name := range current {
		if _, ok := e.lastEnabled[name]; !ok {
			logs.Infof("replication enabled for setup %s", name)
		}
	}
	for name := range e.lastEnabled {
		if _, ok := current[name]; !ok {
			logs.Infof("replication disabled for setup %s", name)
		}
	}
	e.lastEnabled = current
}
