package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGrace is how long past its timeout a client may take before the
// dispatcher stops waiting for it.
const DefaultGrace = 250 * time.Millisecond

// Dispatcher fans a bookmark event out to its routed clients. It reads the
// routing snapshot through an atomic pointer, so Swap never blocks dispatches.
type Dispatcher struct {
	cfg   atomic.Pointer[RoutingConfig]
	log   zerolog.Logger
	pub   Publisher
	grace time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l zerolog.Logger) Option { return func(d *Dispatcher) { d.log = l } }

// WithPublisher sets where dispatch records go.
func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.pub = p
		}
	}
}

// WithGrace overrides DefaultGrace.
func WithGrace(g time.Duration) Option {
	return func(d *Dispatcher) {
		if g >= 0 {
			d.grace = g
		}
	}
}

// WithBaseContext sets the parent of detached dispatches started by Go.
func WithBaseContext(ctx context.Context) Option {
	return func(d *Dispatcher) {
		if ctx != nil {
			d.baseCtx = ctx
		}
	}
}

func NewDispatcher(rc *RoutingConfig, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:     zerolog.Nop(),
		pub:     noopPublisher{},
		grace:   DefaultGrace,
		baseCtx: context.Background(),
	}
	for _, o := range opts {
		o(d)
	}
	d.baseCtx, d.cancel = context.WithCancel(d.baseCtx)
	if rc == nil {
		rc = Disabled()
	}
	d.cfg.Store(rc)
	return d
}

// Config returns the current snapshot.
func (d *Dispatcher) Config() *RoutingConfig { return d.cfg.Load() }

// Swap installs rc and returns the previous snapshot. Dispatches already
// running keep the snapshot they started with.
func (d *Dispatcher) Swap(rc *RoutingConfig) *RoutingConfig {
	if rc == nil {
		rc = Disabled()
	}
	configSwapsTotal.Inc()
	return d.cfg.Swap(rc)
}

type job struct {
	client *Client
	to     RecipientSet
	msg    string
}

// Dispatch routes ev, renders each client's message and sends to all routed
// clients concurrently. It never fails: every problem is a Result.
func (d *Dispatcher) Dispatch(ctx context.Context, ev BookmarkEvent) []Result {
	start := time.Now()
	rc := d.cfg.Load()

	if !ValidCategory(ev.Category) {
		dispatchesTotal.WithLabelValues("rejected").Inc()
		res := []Result{errResult("", "", "", invalidEventError{msg: fmt.Sprintf("invalid category %q", ev.Category)})}
		d.log.Warn().Str("category", ev.Category).Msg("notification skipped: invalid category")
		return res
	}

	names := rc.Resolve(ev.Category)
	jobs := make([]job, 0, len(names))
	var budget time.Duration
	for _, name := range names {
		c, _ := rc.Client(name)
		to, ok := c.Config.RecipientsFor(ev.Category)
		if !ok || to.Empty() {
			continue
		}
		jobs = append(jobs, job{client: c, to: to, msg: Render(c.Config.MessageTemplate, ev)})
		budget += c.Config.Timeout + d.grace
	}
	if len(jobs) == 0 {
		dispatchesTotal.WithLabelValues("unrouted").Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	slots := make([][]Result, len(jobs))
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slots[i] = d.runClient(ctx, jobs[i])
		}(i)
	}
	wg.Wait()

	var out []Result
	clients := make([]string, 0, len(jobs))
	for i, rs := range slots {
		out = append(out, rs...)
		clients = append(clients, jobs[i].client.Config.Name)
	}
	d.record(Record{Time: start.UTC(), Event: ev, Clients: clients, Results: out, Duration: time.Since(start)})
	return out
}

// runClient bounds one adapter call by the client's timeout. An adapter that
// ignores its context is abandoned after the grace period.
func (d *Dispatcher) runClient(parent context.Context, j job) []Result {
	name := j.client.Config.Name
	timeout := j.client.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	defer func() { clientDuration.WithLabelValues(name).Observe(time.Since(start).Seconds()) }()

	done := make(chan []Result, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				d.log.Error().Str("client", name).Interface("panic", v).Msg("adapter panic recovered")
				done <- resultsFor(name, j.to, panicError{v: v})
			}
		}()
		done <- j.client.Adapter.Send(ctx, j.to, j.msg)
	}()

	timer := time.NewTimer(timeout + d.grace)
	defer timer.Stop()
	select {
	case rs := <-done:
		for i := range rs {
			if rs[i].Client == "" {
				rs[i].Client = name
			}
		}
		return rs
	case <-timer.C:
		d.log.Warn().Str("client", name).Dur("timeout", timeout).Msg("client did not return in time")
		return resultsFor(name, j.to, fmt.Errorf("client %s: %w", name, context.DeadlineExceeded))
	case <-parent.Done():
		return resultsFor(name, j.to, fmt.Errorf("client %s: %w", name, parent.Err()))
	}
}

func (d *Dispatcher) record(rec Record) {
	failed := rec.Failed()
	outcome := "ok"
	if failed > 0 {
		outcome = "partial"
		if failed == len(rec.Results) {
			outcome = "failed"
		}
	}
	dispatchesTotal.WithLabelValues(outcome).Inc()
	observeResults(rec.Results)

	for _, r := range rec.Results {
		if r.OK() {
			d.log.Debug().Str("client", r.Client).Str("recipient", r.Recipient).Msg("notification sent")
			continue
		}
		d.log.Warn().
			Str("client", r.Client).
			Str("recipient", r.Recipient).
			Str("kind", string(r.ErrKind)).
			Str("error", r.Error).
			Msg("notification failed")
	}
	d.log.Info().
		Str("category", rec.Event.Category).
		Strs("clients", rec.Clients).
		Int("results", len(rec.Results)).
		Int("failed", failed).
		Dur("took", rec.Duration).
		Msg("notification dispatched")
	d.pub.Publish(rec)
}

// Go dispatches ev in the background, detached from any request context.
// It reports false once Shutdown has begun.
func (d *Dispatcher) Go(ev BookmarkEvent) bool {
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	inflightDispatches.Inc()
	go func() {
		defer d.wg.Done()
		defer inflightDispatches.Dec()
		d.Dispatch(d.baseCtx, ev)
	}()
	return true
}

// Shutdown stops accepting new background dispatches and waits for running
// ones. When ctx ends first, running dispatches are canceled and ctx's error
// is returned after they unwind.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
