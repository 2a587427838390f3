package notify

import (
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"bookmarkd/internal/config"
)

type loadOptions struct {
	httpClient *http.Client
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithHTTPClient makes all adapters of the snapshot share hc.
func WithHTTPClient(hc *http.Client) LoadOption {
	return func(o *loadOptions) { o.httpClient = hc }
}

// NewHTTPClient returns the client shared by adapters when none is given.
// Timeout is left at zero; every request carries a context deadline.
func NewHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 0}
}

// Load validates the raw messaging section and builds an immutable snapshot.
// Invalid recipients, empty categories and unknown routes become warnings.
// A client left without any recipient entry is dropped, and a *ConfigError is
// returned when no client survives validation.
func Load(raw config.Messaging, opts ...LoadOption) (*RoutingConfig, []Warning, error) {
	if !raw.Enabled {
		return Disabled(), nil, nil
	}
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = NewHTTPClient()
	}

	var warns []Warning
	warnf := func(client, category, format string, args ...any) {
		warns = append(warns, Warning{Client: client, Category: category, Message: fmt.Sprintf(format, args...)})
	}

	names := make([]string, 0, len(raw.Clients))
	for name := range raw.Clients {
		names = append(names, name)
	}
	sort.Strings(names)

	clients := make([]*Client, 0, len(names))
	anyEnabled := false
	for _, name := range names {
		cfg, ok := validateClient(name, raw.Clients[name], warnf)
		if !ok {
			continue
		}
		spec := kinds[cfg.Type]
		ad, err := spec.build(cfg, o.httpClient)
		if err != nil {
			warnf(name, "", "adapter: %v; client dropped", err)
			continue
		}
		if cfg.Enabled {
			anyEnabled = true
		}
		clients = append(clients, &Client{Config: cfg, Adapter: ad})
	}
	if len(clients) == 0 {
		return nil, warns, &ConfigError{Reason: "no valid messaging client configured", Warnings: warns}
	}
	if !anyEnabled {
		warnf("", "", "all messaging clients are disabled")
	}

	known := make(map[string]bool, len(clients))
	for _, c := range clients {
		known[c.Config.Name] = true
	}
	routing := make(map[string][]string, len(raw.CategoryRouting))
	cats := make([]string, 0, len(raw.CategoryRouting))
	for cat := range raw.CategoryRouting {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		if cat != DefaultRoute && !ValidCategory(cat) {
			warnf("", cat, "invalid category name; route dropped")
			continue
		}
		route := make([]string, 0, len(raw.CategoryRouting[cat]))
		for _, name := range raw.CategoryRouting[cat] {
			if !known[name] {
				warnf(name, cat, "unknown client in category_routing; skipped")
				continue
			}
			route = append(route, name)
		}
		routing[cat] = route
	}

	rc := NewRoutingConfig(clients, routing)
	rc.warnings = warns
	return rc, warns, nil
}

func validateClient(name string, c config.Client, warnf func(client, category, format string, args ...any)) (ClientConfig, bool) {
	kind := strings.ToLower(strings.TrimSpace(c.Type))
	if kind == "" {
		kind = strings.ToLower(name)
	}
	spec, ok := kinds[kind]
	if !ok {
		warnf(name, "", "unknown client type %q (supported: %s); client dropped", kind, strings.Join(Kinds(), ", "))
		return ClientConfig{}, false
	}

	out := ClientConfig{
		Name:            name,
		Type:            kind,
		Enabled:         c.Enabled,
		APIURL:          strings.TrimRight(strings.TrimSpace(c.APIURL), "/"),
		Sender:          strings.TrimSpace(c.Sender),
		AccessToken:     strings.TrimSpace(c.AccessToken),
		Session:         strings.TrimSpace(c.Session),
		MessageTemplate: c.MessageTemplate,
		Timeout:         DefaultTimeout,
		RatePerSec:      c.RatePerSec,
		Recipients:      map[string]RecipientSet{},
	}
	if out.APIURL == "" {
		out.APIURL = spec.defaultAPIURL
	}
	if !validAPIURL(out.APIURL) {
		warnf(name, "", "api_url %q is not an absolute http(s) URL; client dropped", c.APIURL)
		return ClientConfig{}, false
	}
	if spec.validSender != nil && (out.Sender != "" || spec.senderRequired) && !spec.validSender(out.Sender) {
		warnf(name, "", "invalid sender %q; client dropped", out.Sender)
		return ClientConfig{}, false
	}
	if spec.tokenRequired && (out.AccessToken == "" || !spec.validToken(out.AccessToken)) {
		warnf(name, "", "missing or malformed access_token; client dropped")
		return ClientConfig{}, false
	}
	if c.Timeout != nil {
		if !(*c.Timeout > 0) {
			warnf(name, "", "timeout must be > 0, got %v; client dropped", *c.Timeout)
			return ClientConfig{}, false
		}
		if *c.Timeout >= config.MaxSeconds {
			warnf(name, "", "timeout %v exceeds %.0f seconds; client dropped", *c.Timeout, config.MaxSeconds)
			return ClientConfig{}, false
		}
		out.Timeout = config.Seconds(*c.Timeout)
	}
	if out.MessageTemplate == "" {
		out.MessageTemplate = DefaultTemplate
	}
	if out.RatePerSec < 0 {
		warnf(name, "", "rate_per_sec must be >= 0; limiter disabled")
		out.RatePerSec = 0
	}

	cats := make([]string, 0, len(c.Recipients))
	for cat := range c.Recipients {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		rs := c.Recipients[cat]
		var set RecipientSet
		for _, id := range rs.Individuals {
			id = strings.TrimSpace(id)
			switch {
			case spec.validIndividual == nil:
				warnf(name, cat, "%s does not support individual recipients; %q dropped", kind, id)
			case !spec.validIndividual(id):
				warnf(name, cat, "invalid individual %q dropped", id)
			default:
				set.Individuals = append(set.Individuals, id)
			}
		}
		for _, id := range rs.Groups {
			id = strings.TrimSpace(id)
			if spec.validGroup == nil || !spec.validGroup(id) {
				warnf(name, cat, "invalid group %q dropped", id)
				continue
			}
			set.Groups = append(set.Groups, id)
		}
		if set.Empty() {
			warnf(name, cat, "no valid recipients; category entry dropped")
			continue
		}
		out.Recipients[cat] = set
	}
	if len(out.Recipients) == 0 {
		warnf(name, "", "no deliverable recipients; client dropped")
		return ClientConfig{}, false
	}
	return out, true
}
