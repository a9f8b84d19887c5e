package session

import (
	"context"
	"sync"

	"main/internal/adapter"

	"github.com/yanun0323/logs"
)

// ConnectFunc authenticates one client against the broker and returns a
// ready Broker handle for its account.
type ConnectFunc func(ctx context.Context, client adapter.Client) (Broker, error)

// Bootstrap logs every client in concurrently with a bounded worker pool
// and registers the resulting sessions. Login failures are logged per
// client and never abort the rest.
func Bootstrap(ctx context.Context, dir *Directory, clients []adapter.Client, connect ConnectFunc, workers int) {
	if dir == nil || connect == nil || len(clients) == 0 {
		return
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(clients) {
		workers = len(clients)
	}

	tasks := make(chan adapter.Client)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for client := range tasks {
				broker, err := connect(ctx, client)
				if err != nil {
					logs.Warnf("login failed for %s (%s), err: %+v", client.Name, client.UserID, err)
					continue
				}
				s, err := NewSession(client.Name, client.UserID, broker)
				if err != nil {
					logs.Warnf("register session for %s, err: %+v", client.Name, err)
					continue
				}
				dir.Register(s)
				logs.Infof("logged in: %s (%s)", client.Name, client.UserID)
			}
		}()
	}

	for _, client := range clients {
		select {
		case tasks <- client:
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return
		}
	}
	close(tasks)
	wg.Wait()
}
