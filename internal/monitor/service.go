package monitor

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/notifications"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/telemetry"
)

const defaultScanGap = time.Hour

var ErrNotEnabled = errors.New("monitoring not enabled for user")

// Source discovers open postings. Implementations wrap job boards or the
// platform's own crawl.
type Source interface {
	Discover(ctx context.Context) ([]match.JobPosting, error)
}

// OpportunitySender turns a scored posting into a user notification.
type OpportunitySender interface {
	SendJobOpportunity(ctx context.Context, userID string, job match.JobPosting, result match.MatchResult) (notifications.Notification, error)
}

type userState struct {
	enabled  bool
	prefs    Preferences
	lastScan time.Time
	notified map[string]struct{}
	stats    Stats
}

// Service periodically scans discovered postings for enabled users, scores
// them against each profile, and notifies on strong matches. A posting is
// never notified twice to the same user.
type Service struct {
	Profiles profiles.Repo
	Source   Source
	Sender   OpportunitySender

	// ScanInterval is the background loop cadence. MinScanGap throttles
	// per-user scans regardless of how they are triggered.
	ScanInterval time.Duration
	MinScanGap   time.Duration

	// Defaults seeds preferences for newly enabled users and fills zeroed
	// fields on update. Unset fields fall back to DefaultPreferences.
	Defaults Preferences

	Now func() time.Time

	mu    sync.Mutex
	users map[string]*userState

	stop chan struct{}
	wg   sync.WaitGroup
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) defaultPrefs() Preferences {
	prefs := DefaultPreferences()
	if s.Defaults.MinMatchScore > 0 {
		prefs.MinMatchScore = s.Defaults.MinMatchScore
	}
	if s.Defaults.MaxNotificationsPerScan > 0 {
		prefs.MaxNotificationsPerScan = s.Defaults.MaxNotificationsPerScan
	}
	if s.Defaults.RemotePreference != "" {
		prefs.RemotePreference = s.Defaults.RemotePreference
	}
	return prefs
}

func (s *Service) scanGap() time.Duration {
	if s.MinScanGap > 0 {
		return s.MinScanGap
	}
	return defaultScanGap
}

// Enable turns monitoring on for a user with default preferences. Re-enabling
// keeps existing preferences and dedupe state.
func (s *Service) Enable(userID string) MonitorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.ensureUser(userID)
	state.enabled = true
	status := MonitorStatus{Enabled: true, Preferences: state.prefs, Stats: state.stats}
	telemetry.Info("monitor.enabled", map[string]any{"user_id": userID})
	return status
}

// Disable turns monitoring off. Stats and dedupe state are kept.
func (s *Service) Disable(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states()[userID]; ok {
		state.enabled = false
	}
	telemetry.Info("monitor.disabled", map[string]any{"user_id": userID})
}

// UpdatePreferences replaces the user's preferences, filling zero values with
// defaults. Monitoring must be enabled first.
func (s *Service) UpdatePreferences(userID string, prefs Preferences) (MonitorStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.lookup(userID)
	if !ok {
		return MonitorStatus{}, ErrNotEnabled
	}
	defaults := s.defaultPrefs()
	if prefs.MinMatchScore <= 0 {
		prefs.MinMatchScore = defaults.MinMatchScore
	}
	if prefs.MaxNotificationsPerScan <= 0 {
		prefs.MaxNotificationsPerScan = defaults.MaxNotificationsPerScan
	}
	if prefs.RemotePreference == "" {
		prefs.RemotePreference = defaults.RemotePreference
	}
	state.prefs = prefs
	return MonitorStatus{Enabled: true, Preferences: state.prefs, Stats: state.stats}, nil
}

// StatusFor reports the user's monitoring state.
func (s *Service) StatusFor(userID string) MonitorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states()[userID]
	if !ok {
		return MonitorStatus{Enabled: false, Preferences: s.defaultPrefs()}
	}
	return MonitorStatus{Enabled: state.enabled, Preferences: state.prefs, Stats: state.stats}
}

// Scan evaluates discovered postings for one user. Scans inside the per-user
// gap are skipped.
func (s *Service) Scan(ctx context.Context, userID string) (ScanReport, error) {
	now := s.now()

	s.mu.Lock()
	state, ok := s.lookup(userID)
	if !ok {
		s.mu.Unlock()
		return ScanReport{}, ErrNotEnabled
	}
	if !state.lastScan.IsZero() && now.Sub(state.lastScan) < s.scanGap() {
		s.mu.Unlock()
		return ScanReport{SkipReason: "throttled"}, nil
	}
	state.lastScan = now
	prefs := state.prefs
	notified := make(map[string]struct{}, len(state.notified))
	for id := range state.notified {
		notified[id] = struct{}{}
	}
	s.mu.Unlock()

	profile, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return ScanReport{}, err
	}
	jobs, err := s.Source.Discover(ctx)
	if err != nil {
		return ScanReport{}, err
	}

	type scored struct {
		job    match.JobPosting
		result match.MatchResult
	}
	var candidates []scored
	evaluated := 0
	for _, job := range jobs {
		if _, seen := notified[job.ID]; seen {
			continue
		}
		if !passesPreferences(job, prefs) {
			continue
		}
		evaluated++
		result := match.Score(profile, job)
		if result.TotalScore < prefs.MinMatchScore {
			continue
		}
		candidates = append(candidates, scored{job: job, result: result})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].result.TotalScore > candidates[j].result.TotalScore
	})
	if len(candidates) > prefs.MaxNotificationsPerScan {
		candidates = candidates[:prefs.MaxNotificationsPerScan]
	}

	sent := 0
	var sentIDs []string
	for _, c := range candidates {
		if _, err := s.Sender.SendJobOpportunity(ctx, userID, c.job, c.result); err != nil {
			telemetry.Warn("monitor.notify_failed", map[string]any{"user_id": userID, "job_id": c.job.ID, "error": err.Error()})
			continue
		}
		sent++
		sentIDs = append(sentIDs, c.job.ID)
	}

	s.mu.Lock()
	if state, ok := s.lookup(userID); ok {
		for _, id := range sentIDs {
			state.notified[id] = struct{}{}
		}
		state.stats.Scans++
		state.stats.JobsEvaluated += evaluated
		state.stats.NotificationsSent += sent
		state.stats.LastScanAt = now
	}
	s.mu.Unlock()

	telemetry.Info("monitor.scan_complete", map[string]any{
		"user_id":            userID,
		"jobs_evaluated":     evaluated,
		"notifications_sent": sent,
	})
	return ScanReport{Scanned: true, JobsEvaluated: evaluated, NotificationsSent: sent}, nil
}

// Start launches the background scan loop. Stop shuts it down and waits.
func (s *Service) Start() {
	interval := s.ScanInterval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.scanAll()
			}
		}
	}()
}

// Stop halts the background loop and blocks until it exits.
func (s *Service) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.stop = nil
}

func (s *Service) scanAll() {
	s.mu.Lock()
	var userIDs []string
	for id, state := range s.states() {
		if state.enabled {
			userIDs = append(userIDs, id)
		}
	}
	s.mu.Unlock()

	ctx := context.Background()
	for _, userID := range userIDs {
		if _, err := s.Scan(ctx, userID); err != nil {
			telemetry.Error("monitor.scan_failed", map[string]any{"user_id": userID, "error": err.Error()})
		}
	}
}

// callers must hold s.mu
func (s *Service) states() map[string]*userState {
	if s.users == nil {
		s.users = make(map[string]*userState)
	}
	return s.users
}

func (s *Service) lookup(userID string) (*userState, bool) {
	state, ok := s.states()[userID]
	if !ok || !state.enabled {
		return nil, false
	}
	return state, true
}

func (s *Service) ensureUser(userID string) *userState {
	users := s.states()
	state, ok := users[userID]
	if !ok {
		state = &userState{prefs: s.defaultPrefs(), notified: make(map[string]struct{})}
		users[userID] = state
	}
	return state
}

func passesPreferences(job match.JobPosting, prefs Preferences) bool {
	for _, company := range prefs.ExcludedCompanies {
		if strings.EqualFold(strings.TrimSpace(company), job.Company) {
			return false
		}
	}
	switch prefs.RemotePreference {
	case RemoteOnly:
		if !job.Remote {
			return false
		}
	case RemoteOnSite:
		if job.Remote {
			return false
		}
	}
	if len(prefs.Keywords) > 0 {
		title := strings.ToLower(job.Title)
		found := false
		for _, kw := range prefs.Keywords {
			if strings.Contains(title, strings.ToLower(strings.TrimSpace(kw))) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(prefs.Locations) > 0 && !job.Remote {
		location := strings.ToLower(job.Location)
		found := false
		for _, loc := range prefs.Locations {
			if strings.Contains(location, strings.ToLower(strings.TrimSpace(loc))) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
