package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bookmarkd/internal/bookmark"
	"bookmarkd/internal/config"
	"bookmarkd/internal/httpapi"
	"bookmarkd/internal/notify"
	"bookmarkd/internal/store"
)

const historySize = 100

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveWithSignals(cmd, o)
		},
	}
}

// serveWithSignals runs the server until SIGINT or SIGTERM. SIGHUP forces a
// config reload.
func serveWithSignals(cmd *cobra.Command, o *options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	return runServe(ctx, cmd, o, hup, nil)
}

// runServe wires store, dispatcher and HTTP mux and serves until ctx is done.
// onListen, when set, receives the bound address.
func runServe(ctx context.Context, cmd *cobra.Command, o *options, hup <-chan os.Signal, onListen func(addr string)) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	rc, warns, err := notify.Load(cfg.Messaging)
	logWarnings(log, warns)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	hist := notify.NewHistory(historySize)
	disp := notify.NewDispatcher(rc,
		notify.WithLogger(log),
		notify.WithPublisher(hist),
		notify.WithBaseContext(baseCtx),
	)
	svc := bookmark.New(st, disp, hist, log)

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	if cfg.RequestLogLevel != "" {
		httpapi.SetRequestLogLevel(cfg.RequestLogLevel)
	}
	httpapi.SetRequestTimeout(config.Seconds(cfg.Storage.Timeout))
	httpapi.SetCORSOptions(cfg.CORSEnabled(), cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)

	reload := func(c config.Config) {
		next, warns, err := notify.Load(c.Messaging)
		logWarnings(log, warns)
		if err != nil {
			log.Error().Err(err).Msg("messaging config rejected; keeping previous routing")
			return
		}
		disp.Swap(next)
		log.Info().Bool("enabled", next.Enabled()).Int("clients", len(next.Clients())).Msg("messaging config reloaded")
	}
	var watcher *config.Watcher
	if o.configPath != "" {
		watcher = config.NewWatcher(o.configPath, log, reload)
		go func() { _ = watcher.Run(ctx) }()
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-hup:
				if !ok {
					return
				}
				if watcher == nil {
					log.Warn().Msg("SIGHUP ignored: no config file")
					continue
				}
				log.Info().Msg("SIGHUP: reloading config")
				watcher.Reload(true)
			}
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: httpapi.NewMux(svc), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("storage", cfg.Storage.Driver).Bool("messaging", rc.Enabled()).Msg("bookmarkd listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if onListen != nil {
		onListen(ln.Addr().String())
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	// Graceful shutdown: HTTP first, then in-flight notifications.
	sctx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := disp.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("notifications still running at shutdown were canceled")
	}
	log.Info().Msg("bookmarkd stopped")
	return serveErr
}

func logWarnings(log zerolog.Logger, warns []notify.Warning) {
	for _, w := range warns {
		log.Warn().Str("client", w.Client).Str("category", w.Category).Msg(w.Message)
	}
}
