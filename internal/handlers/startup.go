package handlers

import (
	"net/http"
	"sync"
)

// Startup steps reported by the readiness endpoint
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepBootstrap  = "Bootstrap admin"
	StepServices   = "Initializing services"
)

// StartupStatus tracks initialization progress. Until MarkReady is called it
// answers every request with 503, except the readiness path which reports
// the steps.
type StartupStatus struct {
	mu      sync.RWMutex
	ready   bool
	current string
	steps   []StartupStep
	next    http.Handler
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type startupSnapshot struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// NewStartupStatus creates a tracker for the named steps
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed
func (s *StartupStatus) CompleteStep(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.steps {
		if s.steps[i].Name == name {
			s.steps[i].Completed = true
			return
		}
	}
}

// MarkReady starts routing requests to next
func (s *StartupStatus) MarkReady(next http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	s.next = next
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *StartupStatus) snapshot() startupSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := startupSnapshot{
		Ready:    s.ready,
		Current:  s.current,
		Progress: 100,
		Steps:    append([]StartupStep(nil), s.steps...),
	}
	if !s.ready && len(s.steps) > 0 {
		completed := 0
		for _, step := range s.steps {
			if step.Completed {
				completed++
			}
		}
		snap.Progress = completed * 100 / len(s.steps)
	}
	return snap
}

func (s *StartupStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if r.URL.Path == "/readyz" {
		status := http.StatusOK
		if !snap.Ready {
			status = http.StatusServiceUnavailable
		}
		respondJSON(w, status, snap)
		return
	}
	if !snap.Ready {
		w.Header().Set("Retry-After", "2")
		respondWithError(w, http.StatusServiceUnavailable, "starting", snap.Current, "", nil)
		return
	}

	s.mu.RLock()
	next := s.next
	s.mu.RUnlock()
	next.ServeHTTP(w, r)
}
