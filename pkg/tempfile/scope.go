package tempfile

import (
	"os"
	"sync"
)

// Scope collects paths of locally-created intermediate files so that every
// artifact produced during one pipeline run is removed exactly once, whether
// the run succeeds or fails partway through. Register on create, Keep what
// the caller wants to survive, Cleanup in a defer.
type Scope struct {
	mu       sync.Mutex
	paths    []string
	kept     map[string]bool
	cleaned  bool
	RemoveFn func(string) error
}

func NewScope() *Scope {
	return &Scope{kept: make(map[string]bool), RemoveFn: os.Remove}
}

// Register records a file for cleanup and returns the path unchanged so it
// can wrap a producing call.
func (s *Scope) Register(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path != "" {
		s.paths = append(s.paths, path)
	}
	return path
}

// Keep excludes a previously registered path from cleanup.
func (s *Scope) Keep(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kept[path] = true
}

// Cleanup removes every registered, non-kept file. Safe to call more than
// once; only the first call does work.
func (s *Scope) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned {
		return
	}
	s.cleaned = true
	for _, p := range s.paths {
		if s.kept[p] {
			continue
		}
		_ = s.RemoveFn(p)
	}
	s.paths = nil
}
