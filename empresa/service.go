package empresa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	aureum "github.com/Anthony-donbosco/aureum-go"
	"github.com/Anthony-donbosco/aureum-go/cache"
	"github.com/Anthony-donbosco/aureum-go/rest"
)

// DefaultTTL is the company cache freshness window.
const DefaultTTL = 5 * time.Minute

const (
	keyDashboard        = "dashboard_cache"
	keyEmpleados        = "empleados_cache"
	keyGastosPendientes = "gastos_pendientes_cache"
)

// Option mutates a [Service] during construction.
type Option func(*Service)

// WithCache replaces the backing cache. Test hook for clock injection.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithTokenErrorHandler replaces the injected token-error handler.
func WithTokenErrorHandler(h *aureum.TokenErrorHandler) Option {
	return func(s *Service) { s.handler = h }
}

// WithLogger sets the structured logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// Service is the company surface: roster management and the expense approval
// workflow.
type Service struct {
	api      *rest.Client
	tokens   rest.TokenSource
	cache    *cache.Cache
	metrics  *aureum.Metrics
	handler  *aureum.TokenErrorHandler
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewService builds the company service over client.
func NewService(client *aureum.Client, opts ...Option) *Service {
	s := &Service{
		api:      client.API(),
		tokens:   client.TokenSource(),
		cache:    cache.New(client.Store(), "empresa", DefaultTTL, cache.WithLogger(client.Logger())),
		metrics:  client.Metrics(),
		handler:  client.TokenErrors(),
		validate: validator.New(),
		log:      client.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireToken(ctx context.Context) error {
	token, err := s.tokens.Token(ctx)
	if err == nil && token != "" {
		return nil
	}
	authErr := aureum.NewAuthError(aureum.KindMissing)
	if !s.handler.Handle(ctx, authErr) {
		aureum.HandleTokenError(ctx, authErr)
	}
	return authErr
}

// CrearEmpleado registers a new employee under the company. Success
// invalidates the roster and dashboard caches.
func (s *Service) CrearEmpleado(ctx context.Context, data Empleado) (*Empleado, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(data); err != nil {
		return nil, errors.New("Datos del empleado incompletos o inválidos")
	}

	var env rest.Envelope[struct {
		Empleado *Empleado `json:"empleado"`
	}]
	if err := s.api.Post(ctx, "/empresa/empleados", data, &env); err != nil {
		return nil, opError(err, "", "Error creando empleado")
	}
	if !env.Success || env.Data.Empleado == nil {
		return nil, opError(nil, env.Message, "Error creando empleado")
	}

	s.invalidate(ctx, keyEmpleados, keyDashboard)
	return env.Data.Empleado, nil
}

// Empleados lists the company roster, written through the cache and served
// from it on fetch failure.
func (s *Service) Empleados(ctx context.Context) ([]Empleado, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}

	var env rest.Envelope[struct {
		Empleados []Empleado `json:"empleados"`
	}]
	err := s.api.Get(ctx, "/empresa/empleados", nil, &env)
	if err == nil && env.Success {
		s.cacheSet(ctx, keyEmpleados, env.Data.Empleados)
		return env.Data.Empleados, nil
	}

	if empleados, ok := cacheFallback[[]Empleado](ctx, s, keyEmpleados); ok {
		return empleados, nil
	}
	return nil, opError(err, env.Message, "Error obteniendo empleados")
}

// EliminarEmpleado removes an employee from the roster and invalidates the
// affected caches.
func (s *Service) EliminarEmpleado(ctx context.Context, empleadoID int) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}

	var env rest.Envelope[json.RawMessage]
	if err := s.api.Delete(ctx, fmt.Sprintf("/empresa/empleados/%d", empleadoID), &env); err != nil {
		return opError(err, "", "Error eliminando empleado")
	}
	if !env.Success {
		return opError(nil, env.Message, "Error eliminando empleado")
	}

	s.invalidate(ctx, keyEmpleados, keyDashboard)
	return nil
}

// GastosPendientes lists the expenses awaiting a decision, written through
// the cache and served from it on fetch failure.
func (s *Service) GastosPendientes(ctx context.Context) ([]GastoPendiente, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}

	var env rest.Envelope[struct {
		GastosPendientes []GastoPendiente `json:"gastosPendientes"`
	}]
	err := s.api.Get(ctx, "/empresa/gastos/pendientes", nil, &env)
	if err == nil && env.Success {
		s.cacheSet(ctx, keyGastosPendientes, env.Data.GastosPendientes)
		return env.Data.GastosPendientes, nil
	}

	if gastos, ok := cacheFallback[[]GastoPendiente](ctx, s, keyGastosPendientes); ok {
		return gastos, nil
	}
	return nil, opError(err, env.Message, "Error obteniendo gastos pendientes")
}

// AprobarGasto approves a pending expense with an optional comment. Success
// invalidates the pending listing and the dashboard.
func (s *Service) AprobarGasto(ctx context.Context, gastoID int, comentario string) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}

	body := map[string]string{"comentario": comentario}
	var env rest.Envelope[json.RawMessage]
	if err := s.api.Post(ctx, fmt.Sprintf("/empresa/gastos/%d/aprobar", gastoID), body, &env); err != nil {
		return opError(err, "", "Error aprobando gasto")
	}
	if !env.Success {
		return opError(nil, env.Message, "Error aprobando gasto")
	}

	s.invalidate(ctx, keyGastosPendientes, keyDashboard)
	return nil
}

// RechazarGasto rejects a pending expense. The motivo is mandatory: a
// rejection without a reason is refused before any request goes out.
func (s *Service) RechazarGasto(ctx context.Context, gastoID int, motivo string) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(motivo) == "" {
		return errors.New("El motivo del rechazo es requerido")
	}

	body := map[string]string{"motivo": motivo}
	var env rest.Envelope[json.RawMessage]
	if err := s.api.Post(ctx, fmt.Sprintf("/empresa/gastos/%d/rechazar", gastoID), body, &env); err != nil {
		return opError(err, "", "Error rechazando gasto")
	}
	if !env.Success {
		return opError(nil, env.Message, "Error rechazando gasto")
	}

	s.invalidate(ctx, keyGastosPendientes, keyDashboard)
	return nil
}

// Dashboard returns the company dashboard summary, cached only when it
// carries content and served from cache on fetch failure.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if err := s.requireToken(ctx); err != nil {
		return Dashboard{}, err
	}

	var env rest.Envelope[Dashboard]
	err := s.api.Get(ctx, "/empresa/dashboard", nil, &env)
	if err == nil && env.Success {
		if env.Data.hasContent() {
			s.cacheSet(ctx, keyDashboard, env.Data)
		}
		return env.Data, nil
	}

	if d, ok := cacheFallback[Dashboard](ctx, s, keyDashboard); ok {
		return d, nil
	}
	return Dashboard{}, opError(err, env.Message, "Error obteniendo dashboard")
}

// RefreshData drops every cached company payload.
func (s *Service) RefreshData(ctx context.Context) error {
	return s.cache.Invalidate(ctx, keyDashboard, keyEmpleados, keyGastosPendientes)
}

// TestConnection probes the company surface.
func (s *Service) TestConnection(ctx context.Context) bool {
	if token, err := s.tokens.Token(ctx); err != nil || token == "" {
		return false
	}
	var env rest.Envelope[json.RawMessage]
	if err := s.api.Get(ctx, "/empresa/test", nil, &env); err != nil {
		return false
	}
	return env.Success
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.log.WithField("key", key).WithError(err).Warn("cache write failed")
		return
	}
	s.metrics.Inc(aureum.MetricCacheWrite)
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("cache invalidation failed")
	}
}

func cacheFallback[T any](ctx context.Context, s *Service, key string) (T, bool) {
	var out T
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		s.metrics.Inc(aureum.MetricCacheMiss)
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.WithField("key", key).WithError(err).Warn("cached payload undecodable")
		return out, false
	}
	s.metrics.Inc(aureum.MetricCacheFallback)
	s.log.WithFields(logrus.Fields{"key": key, "served_from": "cache"}).Warn("fetch failed, serving cached payload")
	return out, true
}

func opError(err error, envMessage, fallback string) error {
	if envMessage != "" {
		return errors.New(envMessage)
	}
	var authErr *aureum.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	var httpErr *rest.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return errors.New(httpErr.Message)
	}
	return errors.New(fallback)
}
