package types

import "time"

// NotificationStatus is returned by GET /notifications.
type NotificationStatus struct {
	// Whether messaging is enabled in the active config.
	Enabled bool `json:"enabled" example:"true"`
	// Configured clients, sorted by name.
	Clients []ClientStatus `json:"clients"`
	// Category routes; "_default" is the fallback route.
	Routes map[string][]string `json:"routes"`
	// Non-fatal problems found when the config was loaded.
	Warnings []string `json:"warnings,omitempty"`
	// Most recent dispatches, newest first.
	Recent []DispatchRecord `json:"recent"`
}

// ClientStatus describes one configured messaging client. Secrets are omitted.
type ClientStatus struct {
	// example: signal
	Name string `json:"name" example:"signal"`
	// example: signal
	Type    string `json:"type" example:"signal"`
	Enabled bool   `json:"enabled" example:"true"`
	// example: http://localhost:8080
	APIURL string `json:"api_url" example:"http://localhost:8080"`
	// Categories that have recipients configured.
	Categories []string `json:"categories"`
	// Send timeout in seconds.
	// example: 10
	TimeoutSeconds float64 `json:"timeout_seconds" example:"10"`
}

// DispatchRecord summarizes the notifications sent for one bookmark.
type DispatchRecord struct {
	Time       time.Time        `json:"time"`
	URL        string           `json:"url"`
	Title      string           `json:"title"`
	Category   string           `json:"category,omitempty"`
	Clients    []string         `json:"clients"`
	Results    []DispatchResult `json:"results"`
	DurationMS int64            `json:"duration_ms" example:"42"`
}

// DispatchResult is the outcome for one recipient.
type DispatchResult struct {
	// example: signal
	Client string `json:"client" example:"signal"`
	// example: +15551234567
	Recipient string `json:"recipient,omitempty" example:"+15551234567"`
	// individual or group.
	Class string `json:"class,omitempty" example:"individual"`
	// ok or error.
	Status string `json:"status" example:"ok"`
	// configuration, transport, timeout, backend or internal.
	ErrKind string `json:"err_kind,omitempty" example:"timeout"`
	Error   string `json:"error,omitempty"`
}
