package insights

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/esglens/esglens/internal/cache"
	"github.com/esglens/esglens/internal/logging"
)

// Message roles used in archived conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Outcomes reported to an Observer.
const (
	OutcomeSuccess  = "success"
	OutcomeCached   = "cached"
	OutcomeError    = "error"
	OutcomeDisabled = "disabled"
)

// Message is one turn of an archived exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Exchange describes one completed model call.
type Exchange struct {
	UserID   string
	Feature  string
	Model    string
	Messages []Message
	Usage    Usage
	Latency  time.Duration
}

// Recorder archives model exchanges.
type Recorder interface {
	RecordExchange(ctx context.Context, ex Exchange) error
}

// Observer is told about every Generate call.
type Observer func(c Category, outcome string, elapsed time.Duration)

// Result is the outcome of Service.Generate.
type Result struct {
	Items  []string
	Cached bool
}

type userKey struct{}

// ContextWithUser tags ctx with the user an exchange is archived under.
func ContextWithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user set by ContextWithUser, or "anonymous".
func UserFromContext(ctx context.Context) string {
	if u, ok := ctx.Value(userKey{}).(string); ok && u != "" {
		return u
	}
	return "anonymous"
}

// Service turns report payloads into insight bullets.
type Service struct {
	client   Client
	cache    *cache.Store
	recorder Recorder
	observer Observer
	maxItems int
	timeout  time.Duration
	model    string
	logger   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache stores successful results in c.
func WithCache(c *cache.Store) Option {
	return func(s *Service) { s.cache = c }
}

// WithRecorder archives every successful exchange.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithObserver reports outcomes and latency, typically to metrics.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithMaxItems caps the number of bullets kept.
func WithMaxItems(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithModel names the model in archived exchanges when the client does not
// report one.
func WithModel(name string) Option {
	return func(s *Service) { s.model = name }
}

// NewService wraps client. A nil client is treated as Disabled.
func NewService(client Client, opts ...Option) *Service {
	if client == nil {
		client = Disabled
	}
	s := &Service{
		client:   client,
		maxItems: DefaultMaxItems,
		logger:   logging.ComponentLogger(log.Logger, "insights"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate asks the model for insights on payload. Failures are logged and
// produce an empty result; they never propagate to the caller.
func (s *Service) Generate(ctx context.Context, c Category, payload any) Result {
	start := time.Now()
	logger := logging.FromContext(ctx).With().
		Str("component", "insights").
		Str("operation", "generate").
		Str("category", string(c)).
		Logger()

	key, keyErr := cache.Key(string(c), payload)
	if keyErr == nil && s.cache != nil {
		var items []string
		err := s.cache.Get(key, &items)
		switch {
		case err == nil && len(items) > 0:
			s.observe(c, OutcomeCached, start)
			logger.Debug().Int("items", len(items)).Msg("insights served from cache")
			return Result{Items: items, Cached: true}
		case err != nil && !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, cache.ErrExpired):
			logger.Warn().Err(err).Msg("insight cache read failed")
		}
	}

	user, err := UserMessage(payload)
	if err != nil {
		s.observe(c, OutcomeError, start)
		logger.Error().Err(err).Msg("cannot encode payload")
		return Result{Items: []string{}}
	}
	system := c.SystemPrompt()

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	completion, err := s.client.Complete(callCtx, system, user)
	latency := time.Since(start)
	if err != nil {
		if errors.Is(err, ErrNoAPIKey) {
			s.observe(c, OutcomeDisabled, start)
			logger.Debug().Msg("insights disabled: no API key")
		} else {
			s.observe(c, OutcomeError, start)
			logger.Error().Err(err).Dur("latency", latency).Msg("LLM request failed")
		}
		return Result{Items: []string{}}
	}

	items := parseBullets(completion.Text, s.maxItems)
	s.observe(c, OutcomeSuccess, start)
	logger.Info().Int("items", len(items)).Dur("latency", latency).Msg("insights generated")

	if keyErr == nil && s.cache != nil && len(items) > 0 {
		if putErr := s.cache.Put(key, items); putErr != nil {
			logger.Warn().Err(putErr).Msg("insight cache write failed")
		}
	}

	if s.recorder != nil {
		s.record(ctx, logger, c, completion, system, user, latency)
	}

	return Result{Items: items}
}

// ForCategory returns model insights for payload, falling back to the
// category's canned list when the model produced nothing.
func (s *Service) ForCategory(ctx context.Context, c Category, payload any) []string {
	return WithFallback(c, s.Generate(ctx, c, payload).Items)
}

func (s *Service) record(
	ctx context.Context,
	logger zerolog.Logger,
	c Category,
	completion Completion,
	system, user string,
	latency time.Duration,
) {
	model := completion.Model
	if model == "" {
		model = s.model
	}
	ex := Exchange{
		UserID:  UserFromContext(ctx),
		Feature: c.Feature(),
		Model:   model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
			{Role: RoleAssistant, Content: completion.Text},
		},
		Usage:   completion.Usage,
		Latency: latency,
	}
	if err := s.recorder.RecordExchange(ctx, ex); err != nil {
		logger.Warn().Err(err).Msg("failed to archive conversation")
	}
}

func (s *Service) observe(c Category, outcome string, start time.Time) {
	if s.observer != nil {
		s.observer(c, outcome, time.Since(start))
	}
}
