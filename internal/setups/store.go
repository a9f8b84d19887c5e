// Package setups reads replication setup records from a JSON folder.
//
// The folder is owned by an external CRUD surface; this package only
// reads it. It is scanned on every engine cycle so edits take effect
// on the next cycle without a restart.
package setups

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"main/internal/adapter"

	"github.com/yanun0323/logs"
)

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ListEnabled returns every well-formed setup whose enabled flag is true.
// Malformed records are skipped and logged, never fatal.
func (s *Store) ListEnabled() []adapter.Setup {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logs.Warnf("read setups dir %s, err: %+v", s.dir, err)
		return nil
	}

	setups := make([]adapter.Setup, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logs.Warnf("read setup file %s, err: %+v", path, err)
			continue
		}

		var setup adapter.Setup
		if err := json.Unmarshal(data, &setup); err != nil {
			logs.Warnf("parse setup file %s, err: %+v", path, err)
			continue
		}
		if !setup.Enabled {
			continue
		}
		if err := setup.Validate(); err != nil {
			logs.Warnf("skip invalid setup file %s, err: %+v", path, err)
			continue
		}
		setups = append(setups, setup)
	}
	return setups
}
