package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pesio-ai/erp-client/internal/client"
	"github.com/pesio-ai/erp-client/internal/config"
	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/events"
	"github.com/pesio-ai/erp-client/internal/httpclient"
	"github.com/pesio-ai/erp-client/internal/logger"
	"github.com/pesio-ai/erp-client/internal/service"
	"github.com/pesio-ai/erp-client/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if code := exitCode(err, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// exitCode reports err on stderr and maps it to the process exit status. The
// api-error subscriber has already printed the session-expired notice.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.IsSessionExpired(err):
		return 3
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// app holds everything a command needs, built once per invocation
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  session.Store
	holder *session.Holder
	bus    *events.Bus
	nats   *events.NATSPublisher

	auth        *client.AuthClient
	engineering *client.EngineeringClient
	purchase    *client.PurchaseClient
	accounts    *client.AccountsClient
	workflow    *client.WorkflowClient
	admin       *client.AdminClient

	sessions    *service.SessionService
	procurement *service.ProcurementService
	approvals   *service.ApprovalService

	closers []func()
}

// overrides are values set by persistent flags
type overrides struct {
	apiURL   string
	logLevel string
	store    string
}

func newApp(ctx context.Context, o overrides, stderr io.Writer) (*app, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = config.BaseURL(o.apiURL)
	}
	if o.logLevel != "" {
		cfg.Service.LogLevel = o.logLevel
	}
	if o.store != "" {
		cfg.Session.Store = o.store
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.Service.LogLevel,
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
		Output:      stderr,
	})

	a := &app{cfg: cfg, log: log, bus: events.NewBus()}

	// Session
	a.store, err = session.OpenStore(ctx, cfg.Session.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	a.closers = append(a.closers, func() { _ = a.store.Close() })

	a.holder, err = session.NewHolder(ctx, a.store, log.Named("session"))
	if err != nil {
		a.Close()
		return nil, err
	}

	// The CLI's toast: tell the user why they were logged out
	a.closers = append(a.closers, a.bus.Subscribe(events.APIError, func(_ context.Context, ev events.Event) {
		fmt.Fprintf(stderr, "%s\n", ev.Message)
	}))

	if cfg.Events.NATSURL != "" {
		a.nats, err = events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, log.Named("events"))
		if err != nil {
			// Mirroring events is optional
			log.Warn().Err(err).Str("url", cfg.Events.NATSURL).Msg("NATS unavailable, events stay local")
		} else {
			unsub := a.nats.Forward(a.bus, events.APIError)
			a.closers = append(a.closers, func() {
				unsub()
				_ = a.nats.Close()
			})
		}
	}

	// HTTP client and module clients
	httpClient := httpclient.NewClient(cfg.API.BaseURL, a.holder,
		httpclient.WithTimeout(cfg.API.Timeout),
		httpclient.WithLogger(log.Named("http")),
		httpclient.WithDispatcher(a.bus),
		httpclient.WithRefreshPath(cfg.API.RefreshPath),
	)

	a.auth = client.NewAuthClient(httpClient)
	a.engineering = client.NewEngineeringClient(httpClient)
	a.purchase = client.NewPurchaseClient(httpClient)
	a.accounts = client.NewAccountsClient(httpClient)
	a.workflow = client.NewWorkflowClient(httpClient)
	a.admin = client.NewAdminClient(httpClient)

	// Services
	a.sessions = service.NewSessionService(a.auth, log.Named("session"))
	a.procurement = service.NewProcurementService(a.purchase, a.engineering, log.Named("procurement"))
	a.approvals = service.NewApprovalService(a.workflow, log.Named("approvals"))

	log.Debug().
		Str("api", cfg.API.BaseURL).
		Str("session_store", storeKind(cfg.Session.Store)).
		Bool("nats", a.nats != nil).
		Msg("Client initialized")

	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// storeKind hides credentials that a postgres DSN may carry
func storeKind(location string) string {
	switch {
	case location == "" || location == "memory":
		return "memory"
	case strings.HasPrefix(location, "postgres"):
		return "postgres"
	default:
		return "sqlite"
	}
}
