package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	aureum "github.com/Anthony-donbosco/aureum-go"
	"github.com/Anthony-donbosco/aureum-go/cache"
	"github.com/Anthony-donbosco/aureum-go/rest"
)

const prefix = "/v1/admin"

// DefaultTTL is the admin cache freshness window. Only the stats summary is
// cached; everything else on this surface must reflect the backend directly.
const DefaultTTL = 5 * time.Minute

const keyStats = "stats_cache"

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

// Service is the platform administration surface.
type Service struct {
	api     *rest.Client
	tokens  rest.TokenSource
	cache   *cache.Cache
	metrics *aureum.Metrics
	handler *aureum.TokenErrorHandler
	log     logrus.FieldLogger
}

// NewService builds the admin service over client.
func NewService(client *aureum.Client, opts ...Option) *Service {
	s := &Service{
		api:     client.API(),
		tokens:  client.TokenSource(),
		cache:   cache.New(client.Store(), "admin", DefaultTTL, cache.WithLogger(client.Logger())),
		metrics: client.Metrics(),
		handler: client.TokenErrors(),
		log:     client.Logger(),
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

// get decodes the data payload of an admin GET into out.
func (s *Service) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}
	var env rest.Envelope[json.RawMessage]
	if err := s.api.Get(ctx, prefix+path, query, &env); err != nil {
		return opError(err, "")
	}
	if !env.Success {
		return opError(nil, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode admin payload: %w", err)
		}
	}
	return nil
}

// DashboardStats returns the platform summary. The only cached admin read:
// cache-first, write-through, and served stale-free only.
func (s *Service) DashboardStats(ctx context.Context) (Stats, error) {
	if err := s.requireToken(ctx); err != nil {
		return Stats{}, err
	}

	if raw, ok := s.cache.Get(ctx, keyStats); ok {
		var stats Stats
		if err := json.Unmarshal(raw, &stats); err == nil {
			s.metrics.Inc(aureum.MetricCacheHit)
			return stats, nil
		}
	}
	s.metrics.Inc(aureum.MetricCacheMiss)

	var stats Stats
	if err := s.get(ctx, "/stats", nil, &stats); err != nil {
		return Stats{}, err
	}
	if err := s.cache.Set(ctx, keyStats, stats); err != nil {
		s.log.WithError(err).Warn("stats cache write failed")
	} else {
		s.metrics.Inc(aureum.MetricCacheWrite)
	}
	return stats, nil
}

// Users lists platform users one page at a time.
func (s *Service) Users(ctx context.Context, q UserQuery) (UsersPage, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Status != "" && q.Status != "all" {
		query.Set("status", q.Status)
	}

	var page UsersPage
	if err := s.get(ctx, "/users", query, &page); err != nil {
		return UsersPage{}, err
	}
	return page, nil
}

// UserByID fetches one user.
func (s *Service) UserByID(ctx context.Context, userID int) (*User, error) {
	var data struct {
		User *User `json:"user"`
	}
	if err := s.get(ctx, fmt.Sprintf("/users/%d", userID), nil, &data); err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, errors.New("Usuario no encontrado")
	}
	return data.User, nil
}

// CreateUser provisions a platform user. Success invalidates the cached
// stats summary.
func (s *Service) CreateUser(ctx context.Context, userData map[string]any) (*User, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}

	var env rest.Envelope[struct {
		User *User `json:"user"`
	}]
	if err := s.api.Post(ctx, prefix+"/users", userData, &env); err != nil {
		return nil, opError(err, "")
	}
	if !env.Success || env.Data.User == nil {
		return nil, opError(nil, env.Message)
	}

	s.invalidateStats(ctx)
	return env.Data.User, nil
}

// UpdateUser applies a partial edit to a user.
func (s *Service) UpdateUser(ctx context.Context, userID int, userData map[string]any) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}

	var env rest.Envelope[json.RawMessage]
	if err := s.api.Put(ctx, fmt.Sprintf("%s/users/%d", prefix, userID), userData, &env); err != nil {
		return opError(err, "")
	}
	if !env.Success {
		return opError(nil, env.Message)
	}
	return nil
}

// InitiateActionVerification starts the verification handshake for a
// sensitive action; the backend mails a code the admin echoes back through
// the guarded call.
func (s *Service) InitiateActionVerification(ctx context.Context, actionType string) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}

	body := map[string]string{"actionType": actionType}
	var env rest.Envelope[json.RawMessage]
	if err := s.api.Post(ctx, prefix+"/actions/initiate-verification", body, &env); err != nil {
		return opError(err, "")
	}
	if !env.Success {
		return opError(nil, env.Message)
	}
	return nil
}

// UpdateUserStatus changes a user's moderation state. Suspensions and bans
// require the verification code from [Service.InitiateActionVerification].
func (s *Service) UpdateUserStatus(ctx context.Context, userID int, status UserStatus, verificationCode string) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}

	body := map[string]string{"status": string(status)}
	if verificationCode != "" {
		body["verificationCode"] = verificationCode
	}
	var env rest.Envelope[json.RawMessage]
	if err := s.api.Put(ctx, fmt.Sprintf("%s/users/%d/status", prefix, userID), body, &env); err != nil {
		return opError(err, "")
	}
	if !env.Success {
		return opError(nil, env.Message)
	}

	s.invalidateStats(ctx)
	return nil
}

// UserBalance returns the raw balance payload for a user.
func (s *Service) UserBalance(ctx context.Context, userID int) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.get(ctx, fmt.Sprintf("/users/%d/balance", userID), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Companies lists registered companies one page at a time.
func (s *Service) Companies(ctx context.Context, q PageQuery) (json.RawMessage, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var data json.RawMessage
	if err := s.get(ctx, "/companies", query, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// CompanyDetails returns the raw detail payload for a company.
func (s *Service) CompanyDetails(ctx context.Context, companyID int) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.get(ctx, fmt.Sprintf("/companies/%d", companyID), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// CompanyEmployees returns a company's roster.
func (s *Service) CompanyEmployees(ctx context.Context, companyID int) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.get(ctx, fmt.Sprintf("/companies/%d/employees", companyID), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteCompanyEmployee removes an employee from a company.
func (s *Service) DeleteCompanyEmployee(ctx context.Context, companyID, employeeID int) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}

	var env rest.Envelope[json.RawMessage]
	path := fmt.Sprintf("%s/companies/%d/employees/%d", prefix, companyID, employeeID)
	if err := s.api.Delete(ctx, path, &env); err != nil {
		return opError(err, "")
	}
	if !env.Success {
		return opError(nil, env.Message)
	}
	return nil
}

// CompanySales returns a company's sales payload.
func (s *Service) CompanySales(ctx context.Context, companyID int) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.get(ctx, fmt.Sprintf("/companies/%d/sales", companyID), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// CompanyTasks returns a company's task payload.
func (s *Service) CompanyTasks(ctx context.Context, companyID int) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.get(ctx, fmt.Sprintf("/companies/%d/tasks", companyID), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReportsSummary returns the aggregated reports payload.
func (s *Service) ReportsSummary(ctx context.Context) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.get(ctx, "/reports/summary", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// RecentActivity lists the latest platform events.
func (s *Service) RecentActivity(ctx context.Context) ([]Activity, error) {
	var data struct {
		Activities []Activity `json:"activities"`
	}
	if err := s.get(ctx, "/recent-activity", nil, &data); err != nil {
		return nil, err
	}
	return data.Activities, nil
}

// Settings returns the platform settings payload.
func (s *Service) Settings(ctx context.Context) (json.RawMessage, error) {
	var data json.RawMessage
	if err := s.get(ctx, "/settings", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateSettings replaces the platform settings.
func (s *Service) UpdateSettings(ctx context.Context, settings map[string]any) error {
	if err := s.requireToken(ctx); err != nil {
		return err
	}

	var env rest.Envelope[json.RawMessage]
	if err := s.api.Put(ctx, prefix+"/settings", settings, &env); err != nil {
		return opError(err, "")
	}
	if !env.Success {
		return opError(nil, env.Message)
	}
	return nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, keyStats); err != nil {
		s.log.WithError(err).Warn("stats cache invalidation failed")
	}
}

func opError(err error, envMessage string) error {
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
	if err != nil {
		return errors.New("Error de conexión con el servidor")
	}
	return errors.New("Error en la operación de administración")
}
