package empleado

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	aureum "github.com/Anthony-donbosco/aureum-go"
	"github.com/Anthony-donbosco/aureum-go/cache"
	"github.com/Anthony-donbosco/aureum-go/rest"
)

// DefaultTTL is the employee cache freshness window. Employee data churns
// faster than company data, so the window is shorter.
const DefaultTTL = 3 * time.Minute

const (
	keyDashboard = "dashboard_cache"
	keyGastos    = "gastos_cache"
	keyEmpresa   = "empresa_cache"
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

// Service is the employee expense surface. All requests flow through the
// shared chokepoint; reads are written through the cache and served from it
// when a fetch fails while a fresh entry exists.
type Service struct {
	api      *rest.Client
	tokens   rest.TokenSource
	cache    *cache.Cache
	metrics  *aureum.Metrics
	handler  *aureum.TokenErrorHandler
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewService builds the employee service over client.
func NewService(client *aureum.Client, opts ...Option) *Service {
	s := &Service{
		api:      client.API(),
		tokens:   client.TokenSource(),
		cache:    cache.New(client.Store(), "empleado", DefaultTTL, cache.WithLogger(client.Logger())),
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

// requireToken is the missing-token short circuit: operations that need a
// session fail before any request goes out, and the failure is routed through
// the token-error handler so the notice-then-logout reaction fires.
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

// Categorias lists the expense categories. Any failure degrades to the known
// seed catalog rather than an error: the category picker must never be empty.
func (s *Service) Categorias(ctx context.Context) []Categoria {
	if err := s.requireToken(ctx); err != nil {
		return fallbackCategorias
	}

	var env rest.Envelope[struct {
		Categorias []Categoria `json:"categorias"`
	}]
	if err := s.api.Get(ctx, "/empleado/categorias", nil, &env); err != nil || !env.Success || len(env.Data.Categorias) == 0 {
		s.log.Warn("category catalog unavailable, serving fallback")
		return fallbackCategorias
	}
	return env.Data.Categorias
}

// TiposPago lists the payment methods, degrading to the seed catalog on any
// failure.
func (s *Service) TiposPago(ctx context.Context) []TipoPago {
	if err := s.requireToken(ctx); err != nil {
		return fallbackTiposPago
	}

	var env rest.Envelope[struct {
		TiposPago []TipoPago `json:"tipos_pago"`
	}]
	if err := s.api.Get(ctx, "/empleado/tipos-pago", nil, &env); err != nil || !env.Success || len(env.Data.TiposPago) == 0 {
		s.log.Warn("payment method catalog unavailable, serving fallback")
		return fallbackTiposPago
	}
	return env.Data.TiposPago
}

// CrearGasto submits a new expense. A successful creation invalidates the
// gasto listing and dashboard caches so the next read reflects it.
func (s *Service) CrearGasto(ctx context.Context, data GastoData) (*GastoCreado, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(data); err != nil {
		return nil, errors.New("Datos del gasto incompletos o inválidos")
	}

	var env rest.Envelope[GastoCreado]
	if err := s.api.Post(ctx, "/empleado/gastos", data, &env); err != nil {
		return nil, opError(err, "", "Error creando gasto")
	}
	if !env.Success {
		return nil, opError(nil, env.Message, "Error creando gasto")
	}

	if err := s.cache.Invalidate(ctx, keyGastos, keyDashboard); err != nil {
		s.log.WithError(err).Warn("cache invalidation failed after gasto creation")
	}
	created := env.Data
	return &created, nil
}

// Gastos lists the employee's expenses, optionally filtered by approval
// state. The unfiltered listing is written through the cache and served from
// it when the fetch fails; filtered listings always hit the backend.
func (s *Service) Gastos(ctx context.Context, filtro Filtro) ([]Gasto, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}
	if filtro == "" {
		filtro = FiltroTodos
	}

	var query url.Values
	if filtro != FiltroTodos {
		query = url.Values{"estado": {string(filtro)}}
	}

	var env rest.Envelope[struct {
		Gastos []Gasto `json:"gastos"`
	}]
	err := s.api.Get(ctx, "/empleado/gastos", query, &env)
	if err == nil && env.Success {
		if filtro == FiltroTodos {
			s.cacheSet(ctx, keyGastos, env.Data.Gastos)
		}
		return env.Data.Gastos, nil
	}

	if filtro == FiltroTodos {
		if gastos, ok := cacheFallback[[]Gasto](ctx, s, keyGastos); ok {
			return gastos, nil
		}
	}
	return nil, opError(err, env.Message, "Error obteniendo gastos")
}

// MisGastos is the unfiltered listing.
func (s *Service) MisGastos(ctx context.Context) ([]Gasto, error) {
	return s.Gastos(ctx, FiltroTodos)
}

// Dashboard returns the employee dashboard summary. Successful fetches are
// written through only when the summary carries content; failures fall back
// to the cache before surfacing an error.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if err := s.requireToken(ctx); err != nil {
		return Dashboard{}, err
	}

	var env rest.Envelope[Dashboard]
	err := s.api.Get(ctx, "/empleado/dashboard", nil, &env)
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

// EmpresaInfo returns the company the employee belongs to, or nil when the
// employee is not linked to one.
func (s *Service) EmpresaInfo(ctx context.Context) (*Empresa, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}

	var env rest.Envelope[struct {
		Empresa *Empresa `json:"empresa"`
	}]
	err := s.api.Get(ctx, "/empleado/empresa", nil, &env)
	if err == nil && env.Success {
		if env.Data.Empresa != nil {
			s.cacheSet(ctx, keyEmpresa, env.Data.Empresa)
		}
		return env.Data.Empresa, nil
	}

	if empresa, ok := cacheFallback[*Empresa](ctx, s, keyEmpresa); ok {
		return empresa, nil
	}
	return nil, opError(err, env.Message, "Error obteniendo información de la empresa")
}

// HistorialAprobaciones lists the most recent approval decisions. limite <= 0
// selects the default of 20.
func (s *Service) HistorialAprobaciones(ctx context.Context, limite int) ([]Aprobacion, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}
	if limite <= 0 {
		limite = 20
	}

	var env rest.Envelope[struct {
		Historial []Aprobacion `json:"historial"`
	}]
	query := url.Values{"limite": {fmt.Sprint(limite)}}
	if err := s.api.Get(ctx, "/empleado/historial-aprobaciones", query, &env); err != nil {
		return nil, opError(err, "", "Error obteniendo historial")
	}
	if !env.Success {
		return nil, opError(nil, env.Message, "Error obteniendo historial")
	}
	return env.Data.Historial, nil
}

// EstadisticasRapidas derives an approval summary from the full listing.
func (s *Service) EstadisticasRapidas(ctx context.Context) (Estadisticas, error) {
	gastos, err := s.Gastos(ctx, FiltroTodos)
	if err != nil {
		return Estadisticas{}, err
	}

	stats := Estadisticas{TotalGastos: len(gastos)}
	for _, g := range gastos {
		switch g.Estado.Codigo {
		case EstadoAprobado:
			stats.TotalAprobados++
		case EstadoRechazado:
			stats.TotalRechazados++
		case EstadoPendiente:
			stats.TotalPendientes++
		}
	}
	if stats.TotalGastos > 0 {
		stats.PorcentajeAprobacion = float64(stats.TotalAprobados) / float64(stats.TotalGastos) * 100
	}
	return stats, nil
}

// RefreshData drops every cached employee payload so the next reads hit the
// backend.
func (s *Service) RefreshData(ctx context.Context) error {
	return s.cache.Invalidate(ctx, keyDashboard, keyGastos, keyEmpresa)
}

// TestConnection probes the employee surface. False when no token is held or
// the probe fails.
func (s *Service) TestConnection(ctx context.Context) bool {
	if token, err := s.tokens.Token(ctx); err != nil || token == "" {
		return false
	}
	var env rest.Envelope[json.RawMessage]
	if err := s.api.Get(ctx, "/empleado/test", nil, &env); err != nil {
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

// cacheFallback serves a fresh cached payload after a failed fetch.
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

// opError normalizes a failed operation into a display-ready error. Backend
// envelope messages win; tagged auth errors pass through for classification;
// transport noise collapses to fallback.
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
