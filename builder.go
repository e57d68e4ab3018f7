package aureum

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Anthony-donbosco/aureum-go/kvstore"
	"github.com/Anthony-donbosco/aureum-go/rest"
)

// Builder assembles a [Client]. Construction is allocation-only: no I/O
// happens until [Client.Initialize].
type Builder struct {
	config     Config
	store      kvstore.Store
	httpClient *http.Client
	logger     logrus.FieldLogger
	notify     func(message string)

	built bool
}

// New returns a [Builder] seeded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the persistent key-value store. Required.
func (b *Builder) WithStore(store kvstore.Store) *Builder {
	b.store = store
	return b
}

// WithHTTPClient replaces the underlying HTTP transport. The configured
// request timeout still applies.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithLogger sets the structured logger. Default is silent.
func (b *Builder) WithLogger(log logrus.FieldLogger) *Builder {
	b.logger = log
	return b
}

// WithNotify registers the sink for user-facing session notices (the
// session-expired message shown before a forced logout).
func (b *Builder) WithNotify(fn func(message string)) *Builder {
	b.notify = fn
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the client, its HTTP
// chokepoint, and its token-error handler. The handler is registered as the
// process-wide default when none is registered yet.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, ErrStoreRequired
	}

	cfg := b.config.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = silent
	}

	client := &Client{
		config:   cfg,
		store:    b.store,
		log:      logger,
		metrics:  NewMetrics(cfg.Metrics),
		validate: validator.New(),
		notify:   b.notify,
		state:    StateLoading,
	}

	restOpts := []rest.Option{
		rest.WithLogger(logger),
		rest.WithTokenSource(rest.TokenSourceFunc(client.bearerToken)),
		rest.WithUnauthorizedHandler(client.handleUnauthorized),
	}
	if b.httpClient != nil {
		restOpts = append(restOpts, rest.WithHTTPClient(b.httpClient))
	}
	client.api = rest.NewClient(rest.Config{
		BaseURL: rest.ResolveBaseURL(cfg.API.BaseURL, cfg.API.Extra),
		Timeout: cfg.API.Timeout,
	}, restOpts...)

	client.tokenErrors = NewTokenErrorHandler(HandlerConfig{
		Notify: b.notify,
		Logout: func(ctx context.Context) { client.Logout(ctx) },
		Delay:  cfg.Session.LogoutNoticeDelay,
	})
	if DefaultHandler() == nil {
		SetDefaultHandler(client.tokenErrors)
	}

	b.built = true
	return client, nil
}
