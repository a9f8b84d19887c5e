package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Engine  EngineConfig  `json:"engine"`
	Broker  BrokerConfig  `json:"broker"`
	Symbols SymbolsConfig `json:"symbols"`
	Paths   PathsConfig   `json:"paths"`
}

// EngineConfig tunes the replication loop. Durations are milliseconds.
type EngineConfig struct {
	PollIntervalMS    int    `json:"pollIntervalMs"`
	FreshnessWindowMS int    `json:"freshnessWindowMs"`
	WorkersPerSetup   int    `json:"workersPerSetup"`
	BrokerTimeoutMS   int    `json:"brokerTimeoutMs"`
	Timezone          string `json:"timezone"`
	SessionOpen       string `json:"sessionOpen"`
	SessionClose      string `json:"sessionClose"`
}

// BrokerConfig describes the broker REST endpoint.
type BrokerConfig struct {
	BaseURL        string `json:"baseUrl"`
	SourceID       string `json:"sourceId"`
	BrowserName    string `json:"browserName"`
	BrowserVersion string `json:"browserVersion"`
	LoginWorkers   int    `json:"loginWorkers"`
}

// SymbolsConfig describes the security master mirror.
type SymbolsConfig struct {
	Driver string `json:"driver"` // "sqlite" or "postgres"
	Path   string `json:"path"`   // sqlite file
	DSN    string `json:"dsn"`    // postgres conn string
	CSVURL string `json:"csvUrl"`
}

// PathsConfig locates the external JSON record folders.
type PathsConfig struct {
	SetupsDir   string `json:"setupsDir"`
	ClientsDir  string `json:"clientsDir"`
	ChildLogDir string `json:"childLogDir"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Engine  EngineSpec
	Broker  BrokerConfig
	Symbols SymbolsConfig
	Paths   PathsConfig
}

// EngineSpec is the resolved engine configuration.
type EngineSpec struct {
	PollInterval    time.Duration
	FreshnessWindow time.Duration
	WorkersPerSetup int
	BrokerTimeout   time.Duration
	Location        *time.Location
	SessionOpenSec  int // seconds from midnight
	SessionCloseSec int
}

const (
	defaultPollInterval    = time.Second
	defaultFreshnessWindow = 5 * time.Second
	defaultWorkersPerSetup = 4
	defaultBrokerTimeout   = 15 * time.Second
	defaultTimezone        = "Asia/Kolkata"
	defaultSessionOpen     = "09:00"
	defaultSessionClose    = "15:30"

	defaultBrokerBaseURL  = "https://openapi.motilaloswal.com"
	defaultSourceID       = "Desktop"
	defaultBrowserName    = "chrome"
	defaultBrowserVersion = "104"
	defaultLoginWorkers   = 20

	defaultSymbolDriver = "sqlite"
	defaultSymbolPath   = "symbols.db"
	defaultCSVURL       = "https://raw.githubusercontent.com/Pramod541988/Stock_List/main/security_id.csv"

	defaultSetupsDir   = "data/copytrading"
	defaultClientsDir  = "data/clients"
	defaultChildLogDir = "logs"
)

// Load reads a JSON config file and resolves it with defaults.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return resolve(cfg)
}

// Default returns the resolved configuration with every field defaulted.
func Default() (Loaded, error) {
	return resolve(FileConfig{})
}

func resolve(cfg FileConfig) (Loaded, error) {
	engine, err := resolveEngine(cfg.Engine)
	if err != nil {
		return Loaded{}, err
	}

	broker := cfg.Broker
	if broker.BaseURL == "" {
		broker.BaseURL = defaultBrokerBaseURL
	}
	if broker.SourceID == "" {
		broker.SourceID = defaultSourceID
	}
	if broker.BrowserName == "" {
		broker.BrowserName = defaultBrowserName
	}
	if broker.BrowserVersion == "" {
		broker.BrowserVersion = defaultBrowserVersion
	}
	if broker.LoginWorkers <= 0 {
		broker.LoginWorkers = defaultLoginWorkers
	}

	symbols := cfg.Symbols
	if symbols.Driver == "" {
		symbols.Driver = defaultSymbolDriver
	}
	if symbols.Driver != "sqlite" && symbols.Driver != "postgres" {
		return Loaded{}, fmt.Errorf("unsupported symbols driver: %s", symbols.Driver)
	}
	if symbols.Path == "" {
		symbols.Path = defaultSymbolPath
	}
	if symbols.CSVURL == "" {
		symbols.CSVURL = defaultCSVURL
	}

	paths := cfg.Paths
	if paths.SetupsDir == "" {
		paths.SetupsDir = defaultSetupsDir
	}
	if paths.ClientsDir == "" {
		paths.ClientsDir = defaultClientsDir
	}
	if paths.ChildLogDir == "" {
		paths.ChildLogDir = defaultChildLogDir
	}

	return Loaded{
		Engine:  engine,
		Broker:  broker,
		Symbols: symbols,
		Paths:   paths,
	}, nil
}

func resolveEngine(cfg EngineConfig) (EngineSpec, error) {
	spec := EngineSpec{
		PollInterval:    time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		FreshnessWindow: time.Duration(cfg.FreshnessWindowMS) * time.Millisecond,
		WorkersPerSetup: cfg.WorkersPerSetup,
		BrokerTimeout:   time.Duration(cfg.BrokerTimeoutMS) * time.Millisecond,
	}
	if spec.PollInterval <= 0 {
		spec.PollInterval = defaultPollInterval
	}
	if spec.FreshnessWindow <= 0 {
		spec.FreshnessWindow = defaultFreshnessWindow
	}
	if spec.WorkersPerSetup <= 0 {
		spec.WorkersPerSetup = defaultWorkersPerSetup
	}
	if spec.BrokerTimeout <= 0 {
		spec.BrokerTimeout = defaultBrokerTimeout
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return EngineSpec{}, fmt.Errorf("invalid timezone %s: %w", tz, err)
	}
	spec.Location = loc

	openAt := cfg.SessionOpen
	if openAt == "" {
		openAt = defaultSessionOpen
	}
	closeAt := cfg.SessionClose
	if closeAt == "" {
		closeAt = defaultSessionClose
	}
	spec.SessionOpenSec, err = parseClock(openAt)
	if err != nil {
		return EngineSpec{}, fmt.Errorf("invalid sessionOpen: %w", err)
	}
	spec.SessionCloseSec, err = parseClock(closeAt)
	if err != nil {
		return EngineSpec{}, fmt.Errorf("invalid sessionClose: %w", err)
	}
	if spec.SessionCloseSec <= spec.SessionOpenSec {
		return EngineSpec{}, fmt.Errorf("sessionClose must be after sessionOpen")
	}
	return spec, nil
}

// parseClock converts "HH:MM" to seconds from midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*3600 + t.Minute()*60, nil
}
