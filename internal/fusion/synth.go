package fusion

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

const (
	DefaultTimeout     = 120 * time.Second
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.2
)

// Synthesizer turns a corpus and an analytical prompt into a validated MindMap
// with one call to a Generator.
type Synthesizer struct {
	gen         Generator
	logger      *zap.Logger
	model       string
	timeout     time.Duration
	maxTokens   int
	temperature float32
	retry       RetryPolicy
	limiter     *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
}

type Option func(*Synthesizer)

func WithModel(model string) Option { return func(s *Synthesizer) { s.model = model } }

func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

func WithTemperature(t float32) Option { return func(s *Synthesizer) { s.temperature = t } }

// WithRetry enables retries of transient transport failures only.
func WithRetry(p RetryPolicy) Option { return func(s *Synthesizer) { s.retry = p } }

// WithRateLimit makes every call wait for a token from l.
func WithRateLimit(l *rate.Limiter) Option { return func(s *Synthesizer) { s.limiter = l } }

func NewSynthesizer(gen Generator, logger *zap.Logger, opts ...Option) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synthesizer{
		gen:         gen,
		logger:      logger,
		timeout:     DefaultTimeout,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider names the generator backing this synthesizer.
func (s *Synthesizer) Provider() string { return s.gen.Name() }

func (s *Synthesizer) Synthesize(ctx context.Context, corpus, prompt string) (*types.MindMap, error) {
	if strings.TrimSpace(corpus) == "" {
		return nil, &InputError{Arg: "corpus"}
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, &InputError{Arg: "prompt"}
	}

	req := Request{
		System:      SystemPrompt,
		User:        UserMessage(corpus, prompt),
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	start := time.Now()
	raw, err := s.generate(ctx, req)
	if err != nil {
		s.logger.Warn("generation failed",
			zap.String("provider", s.gen.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	obj, stage, err := RecoverJSON(raw)
	if err != nil {
		s.logger.Warn("unparseable generation response", zap.Int("response_chars", len(raw)), zap.Error(err))
		return nil, err
	}
	m, err := Materialize(obj)
	if err != nil {
		s.logger.Warn("generation response rejected", zap.String("stage", string(stage)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("mind map synthesized",
		zap.String("provider", s.gen.Name()),
		zap.String("model", s.model),
		zap.Int("corpus_chars", len(corpus)),
		zap.String("recovery", string(stage)),
		zap.Int("nodes", len(m.Nodes)),
		zap.Int("edges", len(m.Edges)),
		zap.Duration("elapsed", time.Since(start)))
	return m, nil
}

// generate performs the single outbound call, plus any transient-only retries the
// policy allows, each attempt bounded by the timeout.
func (s *Synthesizer) generate(ctx context.Context, req Request) (string, error) {
	for attempt := 0; ; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return "", &GenerationError{Provider: s.gen.Name(), Err: err}
			}
		}

		raw, err := s.attempt(ctx, req)
		if err == nil {
			return raw, nil
		}

		var ge *GenerationError
		if errors.As(err, &ge) && ge.Timeout {
			return "", err
		}
		if attempt >= s.retry.MaxRetries || !IsTransient(err) {
			return "", err
		}

		backoff := s.retry.Backoff(attempt)
		s.logger.Warn("retrying generation",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		if serr := s.sleep(ctx, backoff); serr != nil {
			return "", &GenerationError{Provider: s.gen.Name(), Err: serr}
		}
	}
}

func (s *Synthesizer) attempt(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.gen.Generate(callCtx, req)
	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)
		return "", &GenerationError{Provider: s.gen.Name(), Timeout: timedOut, Err: err}
	}
	return raw, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
