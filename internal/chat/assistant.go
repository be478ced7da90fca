package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// FallbackAnswer is returned whenever the model cannot produce an answer.
const FallbackAnswer = "Lo siento, no pude procesar tu pregunta en este momento."

const defaultRetries = 2

var errEmptyCompletion = errors.New("model returned an empty completion")

// Assistant answers menu questions through an LLM. A nil model is allowed:
// every call then degrades to the fallback.
type Assistant struct {
	model        llms.Model
	timeout      time.Duration
	retries      uint64
	retryInitial time.Duration
	log          *zap.Logger
}

func NewAssistant(model llms.Model, timeout time.Duration, log *zap.Logger) *Assistant {
	return &Assistant{
		model:        model,
		timeout:      timeout,
		retries:      defaultRetries,
		retryInitial: backoff.DefaultInitialInterval,
		log:          log,
	}
}

// Enabled reports whether a model is configured.
func (a *Assistant) Enabled() bool {
	return a.model != nil
}

// complete runs prompt with a per-attempt timeout and bounded exponential retry.
func (a *Assistant) complete(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	if a.model == nil {
		return "", errors.New("no language model configured")
	}

	var out string
	op := func() error {
		attemptCtx := ctx
		if a.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}

		text, err := llms.GenerateFromSinglePrompt(attemptCtx, a.model, prompt, opts...)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return errEmptyCompletion
		}
		out = text
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = a.retryInitial
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, a.retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return out, nil
}

// Answer never fails; provider errors become FallbackAnswer.
func (a *Assistant) Answer(ctx context.Context, question string, menu []MenuItem, loc *Location) string {
	text, err := a.complete(ctx, BuildAnswerPrompt(question, menu, loc), llms.WithTemperature(0.4))
	if err != nil {
		a.log.Warn("chat answer failed", zap.Error(err))
		return FallbackAnswer
	}
	return text
}

// Recommendations is the result of Recommend. Message is set when the model
// could not be reached.
type Recommendations struct {
	Recommendations []string `json:"recommendations"`
	Message         string   `json:"message,omitempty"`
}

// Recommend suggests dishes that exist on menu.
func (a *Assistant) Recommend(ctx context.Context, req RecommendationRequest, menu []MenuItem) Recommendations {
	text, err := a.complete(ctx, BuildRecommendationPrompt(req, menu), llms.WithTemperature(0.7))
	if err != nil {
		a.log.Warn("chat recommendations failed", zap.Error(err))
		return Recommendations{Recommendations: []string{}, Message: FallbackAnswer}
	}
	return Recommendations{Recommendations: ParseRecommendations(text, menu)}
}
