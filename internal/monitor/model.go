package monitor

import "time"

// Remote-work preference values.
const (
	RemoteOnly     = "remote_only"
	RemoteHybrid   = "hybrid"
	RemoteOnSite   = "on_site"
	RemoteFlexible = "flexible"
)

// Preferences control which discovered postings turn into notifications.
type Preferences struct {
	MinMatchScore           float64  `json:"minMatchScore"`
	MaxNotificationsPerScan int      `json:"maxNotificationsPerScan"`
	RemotePreference        string   `json:"remotePreference,omitempty"`
	Locations               []string `json:"locations,omitempty"`
	Keywords                []string `json:"keywords,omitempty"`
	ExcludedCompanies       []string `json:"excludedCompanies,omitempty"`
}

// DefaultPreferences returns the starting preferences for a newly enabled user.
func DefaultPreferences() Preferences {
	return Preferences{
		MinMatchScore:           0.6,
		MaxNotificationsPerScan: 3,
		RemotePreference:        RemoteFlexible,
	}
}

// Stats accumulates per-user scan counters.
type Stats struct {
	Scans             int       `json:"scans"`
	JobsEvaluated     int       `json:"jobsEvaluated"`
	NotificationsSent int       `json:"notificationsSent"`
	LastScanAt        time.Time `json:"lastScanAt"`
}

// MonitorStatus is the per-user view returned to callers.
type MonitorStatus struct {
	Enabled     bool        `json:"enabled"`
	Preferences Preferences `json:"preferences"`
	Stats       Stats       `json:"stats"`
}

// ScanReport summarizes one scan attempt.
type ScanReport struct {
	Scanned           bool   `json:"scanned"`
	SkipReason        string `json:"skipReason,omitempty"`
	JobsEvaluated     int    `json:"jobsEvaluated"`
	NotificationsSent int    `json:"notificationsSent"`
}
