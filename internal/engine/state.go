package engine

import (
	"sync"

	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/schedule"
)

// State is the application state owned by a Session and shared with the
// views by reference. Only the Session writes to it.
type State struct {
	mu       sync.RWMutex
	settings api.Settings
	schedule schedule.Config
	results  []api.Result
	latest   *LatestResult
	lastJob  *Outcome
}

// Settings returns the last settings fetched from the server.
func (s *State) Settings() api.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Schedule returns the schedule the countdown is running on.
func (s *State) Schedule() schedule.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// Results returns a copy of the stored results, newest first.
func (s *State) Results() []api.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Latest returns the newest known result.
func (s *State) Latest() (LatestResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return LatestResult{}, false
	}
	return *s.latest, true
}

// LastJob returns the outcome of the most recent finished manual test.
func (s *State) LastJob() (Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastJob == nil {
		return Outcome{}, false
	}
	return *s.lastJob, true
}

func (s *State) setSettings(settings api.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

func (s *State) setSchedule(cfg schedule.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = cfg
}

func (s *State) setResults(results []api.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	if len(results) > 0 {
		s.latest = latestFromAPI(&results[0])
	}
}

func (s *State) setLatest(r LatestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &r
}

func (s *State) setLastJob(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastJob = &o
}

func (s *State) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = api.Settings{}
	s.schedule = schedule.Config{}
	s.results = nil
	s.latest = nil
	s.lastJob = nil
}
