package qualify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leadline-ai/leadline/config"
	"github.com/leadline-ai/leadline/profile"
	"github.com/leadline-ai/leadline/server/metrics"
	"github.com/leadline-ai/leadline/server/provider"
	"github.com/leadline-ai/leadline/session"
)

// StructuredCompletion is the model's parsed per-turn output: the
// conversational reply, the lead classification (Hot, Cold or Invalid), and
// whatever metadata the model extracted from the conversation so far.
type StructuredCompletion struct {
	Reply          string            `json:"reply"`
	Classification string            `json:"classification"`
	Metadata       map[string]string `json:"metadata"`
}

// Orchestrator drives the qualification conversation: it owns the flow of
// one turn from session lookup through the completion call to the parsed
// structured result. It holds no per-request state and is safe for
// concurrent use.
type Orchestrator struct {
	profiles *profile.Store
	sessions *session.Store
	provider provider.Provider
	model    string
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewOrchestrator wires the orchestrator. metrics may be nil, for tests
// that do not care about instrumentation.
func NewOrchestrator(
	profiles *profile.Store,
	sessions *session.Store,
	prov provider.Provider,
	cfg config.LLMConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{
		profiles: profiles,
		sessions: sessions,
		provider: prov,
		model:    cfg.Model,
		timeout:  timeout,
		logger:   logger,
		metrics:  m,
	}
}

// StartChat opens (or reopens) the session for sessionKey and returns the
// composed greeting plus the seeded transcript. Starting an existing session
// discards the previous conversation; a returning lead gets a fresh thread.
func (o *Orchestrator) StartChat(sessionKey, industryKey, leadName string) (string, []session.Turn, error) {
	p, err := o.profiles.Lookup(industryKey)
	if err != nil {
		return "", nil, err
	}

	greeting := Greeting(p, leadName)
	history := o.sessions.Start(sessionKey, greeting)

	if o.metrics != nil {
		o.metrics.ActiveSessions.Set(float64(o.sessions.Len()))
	}
	o.logger.Info("chat started",
		zap.String("session", sessionKey),
		zap.String("industry", industryKey),
	)
	return greeting, history, nil
}

// ContinueChat runs one turn: append the user message, call the completion
// provider with the system prompt plus the full transcript, parse the
// structured result, and append the model's reply.
//
// On any failure after the user turn is recorded, the user turn stays in the
// transcript and no assistant turn is added; there is no retry. Concurrent
// turns for the same session key serialize on the session lock, so the
// transcript sent upstream is always consistent.
func (o *Orchestrator) ContinueChat(ctx context.Context, sessionKey, industryKey, userMessage string) (StructuredCompletion, error) {
	p, err := o.profiles.Lookup(industryKey)
	if err != nil {
		return StructuredCompletion{}, err
	}

	release := o.sessions.Acquire(sessionKey)
	defer release()

	transcript, err := o.sessions.AppendUser(sessionKey, userMessage)
	if err != nil {
		return StructuredCompletion{}, err
	}

	messages := make([]provider.Message, 0, len(transcript)+1)
	messages = append(messages, provider.Message{
		Role:    session.RoleSystem,
		Content: BuildSystemPrompt(p),
	})
	for _, turn := range transcript {
		messages = append(messages, provider.Message{Role: turn.Role, Content: turn.Content})
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.provider.Complete(callCtx, provider.Request{
		Model:      o.model,
		Messages:   messages,
		JSONObject: true,
	})
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			o.observeCompletion("timeout", elapsed)
			o.logger.Warn("completion timed out",
				zap.String("session", sessionKey),
				zap.Duration("elapsed", elapsed),
			)
			return StructuredCompletion{}, fmt.Errorf("%w after %s", ErrCompletionTimeout, o.timeout)
		}
		o.observeCompletion("provider_error", elapsed)
		o.logger.Error("completion failed",
			zap.String("session", sessionKey),
			zap.Error(err),
		)
		return StructuredCompletion{}, fmt.Errorf("completion call: %w", err)
	}

	result, err := parseStructuredCompletion(resp.Content)
	if err != nil {
		o.observeCompletion("malformed", elapsed)
		o.logger.Error("completion did not match the structured contract",
			zap.String("session", sessionKey),
			zap.Error(err),
		)
		return StructuredCompletion{}, err
	}

	if _, err := o.sessions.AppendAssistant(sessionKey, result.Reply); err != nil {
		return StructuredCompletion{}, err
	}

	o.observeCompletion("ok", elapsed)
	o.logger.Info("lead classified",
		zap.String("session", sessionKey),
		zap.String("classification", result.Classification),
		zap.Any("metadata", result.Metadata),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (o *Orchestrator) observeCompletion(outcome string, elapsed time.Duration) {
	if o.metrics != nil {
		o.metrics.ObserveCompletion(outcome, elapsed)
	}
}

// rawCompletion distinguishes absent keys from empty values. All three keys
// are required; metadata may be an empty object but must be present.
type rawCompletion struct {
	Reply          *string            `json:"reply"`
	Classification *string            `json:"classification"`
	Metadata       *map[string]string `json:"metadata"`
}

func parseStructuredCompletion(content string) (StructuredCompletion, error) {
	var raw rawCompletion
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return StructuredCompletion{}, fmt.Errorf("%w: %v", ErrMalformedCompletion, err)
	}
	if raw.Reply == nil || raw.Classification == nil || raw.Metadata == nil {
		return StructuredCompletion{}, fmt.Errorf("%w: missing required keys", ErrMalformedCompletion)
	}

	return StructuredCompletion{
		Reply:          *raw.Reply,
		Classification: *raw.Classification,
		Metadata:       *raw.Metadata,
	}, nil
}
