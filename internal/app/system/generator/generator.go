// internal/app/system/generator/generator.go
//
// Package generator turns a free-text topic into a full set of landing page
// sections using a generative model. The model only produces JSON text;
// this package owns the output contract: five sections in the order hero,
// features, testimonials, cta, footer, each with a fresh id.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/metrics"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// FailureMessage is shown to the user when generation fails for any reason.
const FailureMessage = "AI Generation failed. Check API limits or try again."

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("AI generation is not configured")

// Model produces a JSON document for a prompt.
type Model interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Disabled is the Model used when no API key is configured.
type Disabled struct{}

// GenerateJSON always fails with ErrNotConfigured.
func (Disabled) GenerateJSON(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Config controls the circuit breaker and call timeout.
type Config struct {
	Timeout          time.Duration // per call; 0 means no extra deadline
	FailureThreshold uint32        // consecutive failures before the breaker opens
	OpenFor          time.Duration // how long the breaker stays open
}

// DefaultConfig returns the settings used in production.
func DefaultConfig() Config {
	return Config{
		Timeout:          60 * time.Second,
		FailureThreshold: 5,
		OpenFor:          30 * time.Second,
	}
}

// Generator is the content generator adapter.
type Generator struct {
	model   Model
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collector
	logger  *zap.Logger
}

// New creates a Generator. metrics may be nil.
func New(model Model, cfg Config, m *metrics.Collector, logger *zap.Logger) *Generator {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if cfg.OpenFor == 0 {
		cfg.OpenFor = DefaultConfig().OpenFor
	}

	g := &Generator{model: model, cfg: cfg, metrics: m, logger: logger}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "genai",
		MaxRequests: 1,
		Timeout:     cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("generator circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not an upstream failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return g
}

// Generate returns exactly five sections for topic. On any failure it
// returns an apperr.ErrGeneration error and no sections.
func (g *Generator) Generate(ctx context.Context, topic string) ([]models.Section, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperr.Generation("Enter a topic to generate content.", nil)
	}

	raw, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx := ctx
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}
		return g.model.GenerateJSON(callCtx, Prompt(topic))
	})
	if err != nil {
		result := metrics.GenerationFailed
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = metrics.GenerationRejected
		}
		g.metrics.Generation(result)
		g.logger.Warn("content generation call failed", zap.String("topic", topic), zap.Error(err))
		return nil, apperr.Generation(FailureMessage, err)
	}

	sections, err := Parse(raw.(string))
	if err != nil {
		g.metrics.Generation(metrics.GenerationMalformed)
		g.logger.Warn("content generation returned malformed output", zap.String("topic", topic), zap.Error(err))
		return nil, apperr.Generation(FailureMessage, err)
	}

	g.metrics.Generation(metrics.GenerationOK)
	return sections, nil
}

// Parse validates model output and assigns fresh section ids. Ids in the
// input are ignored.
func Parse(raw string) ([]models.Section, error) {
	var sections []models.Section
	if err := json.Unmarshal([]byte(stripFence(raw)), &sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}

	want := models.AllSectionTypes()
	if len(sections) != len(want) {
		return nil, fmt.Errorf("got %d sections, want %d", len(sections), len(want))
	}
	for i, s := range sections {
		if s.Type != want[i] {
			return nil, fmt.Errorf("section %d has type %q, want %q", i, s.Type, want[i])
		}
		sections[i].ID = uuid.NewString()
	}
	return sections, nil
}

// stripFence removes a ```json ... ``` wrapper if the model added one.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Prompt builds the instruction sent to the model for topic.
func Prompt(topic string) string {
	return fmt.Sprintf(`Generate content for a landing page about: %q.
Return a JSON array of exactly 5 section objects, in this order: hero, features, testimonials, cta, footer.
Each object has "type" and "content".
- hero: content has title, subtitle, buttonText.
- features: content has title, subtitle and items, an array of 3 objects with title, description and icon (a single emoji).
- testimonials: content has title and items, an array of 2 objects with name, role and description (the quote).
- cta: content has title, text and buttonText.
- footer: content has text.
Write persuasive, concise marketing copy.`, topic)
}
