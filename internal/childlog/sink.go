// Package childlog appends per-child diagnostic lines to day-scoped log
// files so an operator can reconstruct which master orders were or were
// not replicated for each child account.
package childlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yanun0323/logs"
)

type Sink struct {
	dir string

	mu    sync.Mutex
	day   string
	files map[string]*os.File
}

func NewSink(dir string) *Sink {
	return &Sink{
		dir:   dir,
		files: make(map[string]*os.File),
	}
}

// Log appends one formatted line to the child's log file for today.
// Failures are diagnostics only and never propagate.
func (s *Sink) Log(child, format string, args ...any) {
	now := time.Now()
	line := fmt.Sprintf("%s - %s\n", now.Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))

	s.mu.Lock()
	defer s.mu.Unlock()

	day := now.Format("2006-01-02")
	if day != s.day {
		s.closeAllLocked()
		s.day = day
	}

	f, ok := s.files[child]
	if !ok {
		opened, err := s.open(day, child)
		if err != nil {
			logs.Warnf("open child log for %s, err: %+v", child, err)
			return
		}
		f = opened
		s.files[child] = f
	}

	if _, err := f.WriteString(line); err != nil {
		logs.Warnf("write child log for %s, err: %+v", child, err)
	}
}

// Close releases every open log file.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeAllLocked()
}

func (s *Sink) open(day, child string) (*os.File, error) {
	dir := filepath.Join(s.dir, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, child+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func (s *Sink) closeAllLocked() {
	for name, f := range s.files {
		if err := f.Close(); err != nil {
			logs.Warnf("close child log for %s, err: %+v", name, err)
		}
	}
	s.files = make(map[string]*os.File)
}
