// ABOUTME: Wires config, logger, credential store, API client and auth controller
// ABOUTME: Every command builds one session and closes it when done

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tsundip4/airport-ops-console/internal/auth"
	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/config"
	"github.com/tsundip4/airport-ops-console/internal/credential"
	"github.com/tsundip4/airport-ops-console/internal/logger"
)

// navigator opens consent URLs; tests replace it.
var navigator auth.Navigator = auth.BrowserNavigator{}

type session struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *credential.Store
	client *client.Client
	ctrl   *auth.Controller
}

// openSession builds a session logging to stderr.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newSession(cfg, logger.NewStderr(cfg.LogLevel, cfg.LogFormat))
}

func newSession(cfg *config.Config, log *zap.Logger) (*session, error) {
	backend, err := credential.NewBackend(cfg.StoreBackend, cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	store, err := credential.Open(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	opts := []client.Option{
		client.WithTokenSource(store),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithIngestTimeout(cfg.IngestTimeout),
		client.WithLogger(log),
	}
	rt, err := client.ProxyTransport(cfg.AllProxy, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	if rt != nil {
		opts = append(opts, client.WithTransport(rt))
	}

	c := client.New(cfg.APIBaseURL, opts...)
	log.Debug("session opened",
		zap.String("api", c.BaseURL()),
		zap.String("store", cfg.StoreBackend),
		zap.Bool("authenticated", store.Active()),
	)

	return &session{
		cfg:    cfg,
		log:    log,
		store:  store,
		client: c,
		ctrl:   auth.NewController(store, c, navigator, log),
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn("closing credential store", zap.Error(err))
	}
	_ = s.log.Sync()
}

// withSession opens a session, runs fn and closes it. Setup failures are
// reported like any other command error.
func withSession(w io.Writer, fn func(s *session) int) int {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer s.Close()
	return fn(s)
}

// fail prints an executor error the way the console shows it.
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", client.Message(err))
	return 2
}

// runWithSignals runs fn with a context cancelled on SIGINT or SIGTERM
// and exits with its code when non-zero.
func runWithSignals(fn func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	exitCode := fn(ctx, os.Stdout)
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
