// ABOUTME: Gateway wires config into the chat relay and runs the HTTP server
// ABOUTME: Manages listeners (TCP or tailnet), graceful shutdown, and health endpoints

package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/chatrelay/internal/assistant"
	"github.com/2389/chatrelay/internal/auth"
	"github.com/2389/chatrelay/internal/config"
	"github.com/2389/chatrelay/internal/conversation"
	"github.com/2389/chatrelay/internal/dedupe"
	"github.com/2389/chatrelay/internal/lead"
	"github.com/2389/chatrelay/internal/notify"
	"github.com/2389/chatrelay/internal/store"
	"github.com/2389/chatrelay/internal/transcript"
)

// Gateway serves the chat relay over HTTP.
type Gateway struct {
	config       *config.Config
	conversation *conversation.Service
	dispatcher   *notify.Dispatcher
	history      store.ConversationLog
	httpServer   *http.Server
	tsnetServer  *tsnet.Server
	logger       *slog.Logger

	// viewerEnabled is false when no viewer credentials are configured
	viewerEnabled bool

	// draining is set once Shutdown begins so readiness checks fail fast
	draining atomic.Bool
}

// New creates a Gateway backed by the OpenAI Assistants API and the notification
// channels enabled in cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	client := assistant.NewOpenAIClient(cfg.Assistant.APIKey, cfg.Assistant.BaseURL)

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return nil, err
	}

	return newGateway(cfg, client, notifier, logger)
}

// buildNotifier returns the configured notification channels, or nil if none.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	var channels notify.Multi

	if cfg.Mail.Enabled() {
		smtp, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.Username,
			Password:  cfg.Mail.Password,
			From:      cfg.Mail.From,
			To:        cfg.Mail.To,
			Subject:   cfg.Mail.Subject,
			TLSPolicy: cfg.Mail.TLSPolicy,
		})
		if err != nil {
			return nil, fmt.Errorf("creating mail notifier: %w", err)
		}
		channels = append(channels, notify.Named{Name: "mail", Notifier: smtp})
	}

	if cfg.Matrix.Enabled {
		matrix, err := notify.NewMatrixNotifier(notify.MatrixConfig{
			Homeserver:  cfg.Matrix.Homeserver,
			UserID:      cfg.Matrix.UserID,
			AccessToken: cfg.Matrix.AccessToken,
			RoomID:      cfg.Matrix.RoomID,
		})
		if err != nil {
			return nil, fmt.Errorf("creating matrix notifier: %w", err)
		}
		channels = append(channels, notify.Named{Name: "matrix", Notifier: matrix})
	}

	if len(channels) == 0 {
		return nil, nil
	}
	return channels, nil
}

// newGateway assembles the gateway around an assistant client and notifier.
// A nil notifier disables lead notifications.
func newGateway(cfg *config.Config, client assistant.Client, notifier notify.Notifier, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	history, err := store.Open(cfg.History.Backend, cfg.History.Path, cfg.History.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("opening conversation history: %w", err)
	}

	dispatcher := notify.NewDispatcher(notifier, notify.DispatcherConfig{
		Timeout:       cfg.Notify.Timeout,
		DedupeTTL:     cfg.Notify.DedupeTTL,
		DedupeMaxKeys: dedupe.DefaultMaxKeys,
	}, logger)

	gw := &Gateway{
		config:     cfg,
		dispatcher: dispatcher,
		history:    history,
		logger:     logger.With("component", "gateway"),
	}

	gw.conversation = conversation.New(conversation.Config{
		AssistantID: cfg.Assistant.AssistantID,
		Client:      client,
		Poller:      assistant.NewPoller(client, cfg.Assistant.PollInterval, cfg.Assistant.MaxPollAttempts, logger),
		Log:         history,
		Extractor:   lead.New(cfg.Leads.Markers...),
		Dispatcher:  dispatcher,
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)
	mux.HandleFunc("/chat", gw.handleChat)

	if cfg.Viewer.Enabled() {
		creds, err := auth.NewCredentials(cfg.Viewer.Username, cfg.Viewer.Password, cfg.Viewer.PasswordHash)
		if err != nil {
			_ = history.Close()
			return nil, fmt.Errorf("configuring viewer credentials: %w", err)
		}
		viewer, err := transcript.New(history, cfg.Viewer.Title, logger)
		if err != nil {
			_ = history.Close()
			return nil, fmt.Errorf("creating transcript viewer: %w", err)
		}
		mux.Handle("GET /logs", auth.BasicAuth(creds, cfg.Viewer.Realm, logger)(viewer))
		gw.viewerEnabled = true
	} else {
		gw.logger.Warn("viewer credentials not configured, /logs is disabled")
	}

	handler := requestLogger(gw.logger)(cors(cfg.CORS.AllowedOrigins)(mux))

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Handler returns the root HTTP handler with all middleware applied.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// setupTCPListener creates a standard TCP listener for HTTP.
func (g *Gateway) setupTCPListener() (net.Listener, error) {
	g.logger.Info("starting gateway", "http_addr", g.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates the listener based on configuration (Tailscale or TCP).
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		g.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", g.config.Server.HTTPAddr)
		return g.setupTailscaleListener(ctx)
	}
	return g.setupTCPListener()
}

// startServer starts the HTTP server in a goroutine, returning its error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := g.startServer(ln)

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout, since the
// run context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), g.shutdownTimeout())
	defer cancel()
	return g.Shutdown(ctx)
}

// shutdownTimeout leaves room for the longest chat turn (every poll attempt)
// and then for the notifications that turn may hand off.
func (g *Gateway) shutdownTimeout() time.Duration {
	pollBudget := time.Duration(g.config.Assistant.MaxPollAttempts) * g.config.Assistant.PollInterval
	return 5*time.Second + pollBudget + g.config.Notify.Timeout
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "chatrelay", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set tailscale.auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener starts a tsnet node and returns its HTTP listener.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	ln, err := g.createTailscaleHTTPListener(tsCfg)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, err
	}
	return ln, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleHTTPListener picks plain HTTP, tailnet HTTPS, or public Funnel.
func (g *Gateway) createTailscaleHTTPListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	switch {
	case tsCfg.Funnel:
		g.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := g.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			return nil, fmt.Errorf("listening on tailscale funnel: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		g.logger.Info("enabling HTTPS with Tailscale certs on :443")
		ln, err := g.tsnetServer.Listen("tcp", ":443")
		if err != nil {
			return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
		}
		lc, err := g.tsnetServer.LocalClient()
		if err != nil {
			_ = ln.Close()
			return nil, fmt.Errorf("getting tailscale local client: %w", err)
		}
		return tls.NewListener(ln, &tls.Config{
			GetCertificate: lc.GetCertificate,
			MinVersion:     tls.VersionTLS12,
		}), nil
	default:
		ln, err := g.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops accepting requests, lets pending notifications finish, and
// releases the history store and tailnet node.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")
	g.draining.Store(true)

	var errs []error
	httpErr := g.httpServer.Shutdown(ctx)
	errs = appendCloseError(errs, "HTTP shutdown", httpErr)
	errs = appendCloseError(errs, "notification drain", g.dispatcher.Close(ctx))

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}

	// Requests that outlived the drain still append to the history.
	if httpErr != nil {
		g.logger.Warn("chat requests still in flight, leaving history open", "error", httpErr)
	} else {
		errs = appendCloseError(errs, "history close", g.history.Close())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK unless the gateway is shutting down.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if g.draining.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shutting down"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d leads notified, %d failed)", g.dispatcher.Sent(), g.dispatcher.Failures())
}
