package notify

import (
	"context"
	"sort"
	"time"
)

// DefaultRoute is the category_routing key used when a category has no route.
const DefaultRoute = "_default"

const (
	DefaultTemplate = "🔖 {title}\n{url}"
	DefaultTimeout  = 10 * time.Second
)

// BookmarkEvent is one accepted bookmark. URL and Title are non-empty.
type BookmarkEvent struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// RecipientSet holds the destinations of one category for one client.
type RecipientSet struct {
	Individuals []string `json:"individuals,omitempty"`
	Groups      []string `json:"groups,omitempty"`
}

func (r RecipientSet) Len() int    { return len(r.Individuals) + len(r.Groups) }
func (r RecipientSet) Empty() bool { return r.Len() == 0 }

// ClientConfig is a validated messaging client entry.
type ClientConfig struct {
	Name            string                  `json:"name"`
	Type            string                  `json:"type"`
	Enabled         bool                    `json:"enabled"`
	APIURL          string                  `json:"api_url"`
	Sender          string                  `json:"sender,omitempty"`
	AccessToken     string                  `json:"-"`
	Session         string                  `json:"session,omitempty"`
	Recipients      map[string]RecipientSet `json:"recipients"`
	MessageTemplate string                  `json:"message_template"`
	Timeout         time.Duration           `json:"timeout"`
	RatePerSec      float64                 `json:"rate_per_sec,omitempty"`
}

// RecipientsFor returns the recipients configured for category, falling back
// to the "_default" entry.
func (c ClientConfig) RecipientsFor(category string) (RecipientSet, bool) {
	if category != "" {
		if rs, ok := c.Recipients[category]; ok {
			return rs, true
		}
	}
	rs, ok := c.Recipients[DefaultRoute]
	return rs, ok
}

//go:generate mockgen -source=types.go -destination=mock_adapter_test.go -package=notify

// Adapter delivers a rendered message to one client's recipients. It returns
// one Result per recipient, individuals first, then groups, in input order.
type Adapter interface {
	Send(ctx context.Context, to RecipientSet, message string) []Result
}

// Client pairs a validated config with the adapter that serves it.
type Client struct {
	Config  ClientConfig
	Adapter Adapter
}

// RoutingConfig is an immutable snapshot of clients and category routes.
// It is safe for concurrent use; reloads build a new instance.
type RoutingConfig struct {
	enabled  bool
	clients  map[string]*Client
	routing  map[string][]string
	warnings []Warning
}

// NewRoutingConfig builds a snapshot directly from clients. Inputs are copied.
func NewRoutingConfig(clients []*Client, routing map[string][]string) *RoutingConfig {
	rc := &RoutingConfig{
		enabled: true,
		clients: make(map[string]*Client, len(clients)),
		routing: make(map[string][]string, len(routing)),
	}
	for _, c := range clients {
		if c == nil {
			continue
		}
		rc.clients[c.Config.Name] = c
	}
	for k, v := range routing {
		rc.routing[k] = append([]string(nil), v...)
	}
	return rc
}

// Disabled returns a snapshot that routes nothing.
func Disabled() *RoutingConfig {
	return &RoutingConfig{clients: map[string]*Client{}, routing: map[string][]string{}}
}

func (rc *RoutingConfig) Enabled() bool { return rc != nil && rc.enabled }

// Client returns the named client.
func (rc *RoutingConfig) Client(name string) (*Client, bool) {
	if rc == nil {
		return nil, false
	}
	c, ok := rc.clients[name]
	return c, ok
}

// Clients returns copies of the client configs sorted by name.
func (rc *RoutingConfig) Clients() []ClientConfig {
	if rc == nil {
		return nil
	}
	out := make([]ClientConfig, 0, len(rc.clients))
	for _, c := range rc.clients {
		cfg := c.Config
		cfg.Recipients = make(map[string]RecipientSet, len(c.Config.Recipients))
		for cat, rs := range c.Config.Recipients {
			cfg.Recipients[cat] = RecipientSet{
				Individuals: append([]string(nil), rs.Individuals...),
				Groups:      append([]string(nil), rs.Groups...),
			}
		}
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Routes returns a copy of the category routes.
func (rc *RoutingConfig) Routes() map[string][]string {
	out := map[string][]string{}
	if rc == nil {
		return out
	}
	for k, v := range rc.routing {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Warnings returns the non-fatal problems found while loading.
func (rc *RoutingConfig) Warnings() []Warning {
	if rc == nil {
		return nil
	}
	return append([]Warning(nil), rc.warnings...)
}

// Status is the outcome of one delivery attempt.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// ErrKind classifies failed results.
type ErrKind string

const (
	ErrKindConfiguration ErrKind = "configuration"
	ErrKindTransport     ErrKind = "transport"
	ErrKindTimeout       ErrKind = "timeout"
	ErrKindBackend       ErrKind = "backend"
	ErrKindInternal      ErrKind = "internal"
)

// RecipientClass tells individuals and groups apart in results.
type RecipientClass string

const (
	ClassIndividual RecipientClass = "individual"
	ClassGroup      RecipientClass = "group"
)

// Result is the outcome for one (client, recipient) pair.
type Result struct {
	Client    string         `json:"client"`
	Recipient string         `json:"recipient,omitempty"`
	Class     RecipientClass `json:"class,omitempty"`
	Status    Status         `json:"status"`
	ErrKind   ErrKind        `json:"err_kind,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (r Result) OK() bool { return r.Status == StatusOK }

func okResult(client, recipient string, class RecipientClass) Result {
	return Result{Client: client, Recipient: recipient, Class: class, Status: StatusOK}
}

func errResult(client, recipient string, class RecipientClass, err error) Result {
	return Result{
		Client:    client,
		Recipient: recipient,
		Class:     class,
		Status:    StatusError,
		ErrKind:   classify(err),
		Error:     err.Error(),
	}
}

// resultsFor attributes one outcome to every recipient in the set.
func resultsFor(client string, to RecipientSet, err error) []Result {
	out := make([]Result, 0, to.Len())
	add := func(ids []string, class RecipientClass) {
		for _, id := range ids {
			if err != nil {
				out = append(out, errResult(client, id, class, err))
			} else {
				out = append(out, okResult(client, id, class))
			}
		}
	}
	add(to.Individuals, ClassIndividual)
	add(to.Groups, ClassGroup)
	return out
}
