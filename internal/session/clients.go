package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"main/internal/adapter"

	"github.com/yanun0323/logs"
)

// LoadClients reads every client credential record under dir.
// Malformed files are skipped and logged.
func LoadClients(dir string) []adapter.Client {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logs.Warnf("read clients dir %s, err: %+v", dir, err)
		return nil
	}

	clients := make([]adapter.Client, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logs.Warnf("read client file %s, err: %+v", path, err)
			continue
		}

		var client adapter.Client
		if err := json.Unmarshal(data, &client); err != nil {
			logs.Warnf("parse client file %s, err: %+v", path, err)
			continue
		}
		if client.Name == "" || client.UserID == "" {
			logs.Warnf("skip client file %s: missing name or user id", path)
			continue
		}
		clients = append(clients, client)
	}
	return clients
}
