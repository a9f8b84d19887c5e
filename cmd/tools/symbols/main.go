package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/internal/ops"
	"main/internal/symbols"
	"main/pkg/conn"
)

// One-shot refresh of the local security master mirror. Run it to seed
// the database before the first engine start, or from cron to pick up
// listing changes outside engine restarts.
func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	csvURL := flag.String("url", "", "Override the security master CSV URL")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	if err := run(*configPath, *csvURL, *timeout); err != nil {
		log.Fatalf("symbols: %v", err)
	}
}

func run(configPath, csvURL string, timeout time.Duration) error {
	var (
		loaded ops.Loaded
		err    error
	)
	if configPath == "" {
		loaded, err = ops.Default()
	} else {
		loaded, err = ops.Load(configPath)
	}
	if err != nil {
		return err
	}
	if csvURL != "" {
		loaded.Symbols.CSVURL = csvURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var client *conn.Client
	if loaded.Symbols.Driver == "postgres" {
		client, err = conn.NewPostgres(conn.PostgresOption{ConnString: loaded.Symbols.DSN})
	} else {
		client, err = conn.NewSQLite(loaded.Symbols.Path, nil)
	}
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := symbols.NewStore(client.DB())
	if err != nil {
		return err
	}

	refresher := symbols.NewRefresher(store, &http.Client{Timeout: timeout}, loaded.Symbols.CSVURL)
	rows, err := refresher.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("security master refreshed: %d rows\n", rows)
	return nil
}
