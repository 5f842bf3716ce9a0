package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/config"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/storage"
)

// SleepFunc waits out a backoff delay. The default respects context
// cancellation; tests inject a no-op to avoid real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Evaluator drives one file change through the LLM: prompt construction,
// the bounded retry loop, verdict parsing, and the append-only audit trail.
// It never talks to GitLab; discussion side effects belong to the binder.
type Evaluator struct {
	completer   core.Completer
	store       storage.Store
	prompts     *PromptManager
	locale      string
	maxAttempts int
	timeout     time.Duration
	sleep       SleepFunc
	logger      *slog.Logger
}

// NewEvaluator wires the evaluator from config.
func NewEvaluator(cfg *config.Config, completer core.Completer, store storage.Store, prompts *PromptManager, logger *slog.Logger) *Evaluator {
	if completer == nil {
		panic("completer cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	return &Evaluator{
		completer:   completer,
		store:       store,
		prompts:     prompts,
		locale:      cfg.Locale,
		maxAttempts: cfg.LLMMaxAttempts,
		timeout:     cfg.LLMTimeout,
		sleep:       defaultSleep,
		logger:      logger,
	}
}

// WithSleep replaces the backoff sleeper. Used by tests.
func (e *Evaluator) WithSleep(sleep SleepFunc) *Evaluator {
	e.sleep = sleep
	return e
}

// Evaluate produces a verdict for one file change. Retries cover transport
// failures and malformed output only; a well-formed rejection is a result,
// not an error. Exhausted retries surface as core.ErrEvaluationUnavailable
// and the caller leaves the verdict pending. Every attempt appends its
// prompt (and response, if any) to the audit trail before any retry.
func (e *Evaluator) Evaluate(ctx context.Context, fileVerdictID int64, change core.FileChange) (core.Verdict, error) {
	systemPrompt, err := e.prompts.Render(ReviewSystemPrompt, e.locale, nil)
	if err != nil {
		return core.Verdict{}, err
	}
	userPrompt, err := e.prompts.Render(ReviewUserPrompt, e.locale, UserPromptData{
		FilePath:   change.Path,
		OldPath:    change.OldPath,
		ChangeType: change.ChangeType,
		Language:   LanguageForPath(change.Path),
		Diff:       change.Diff,
	})
	if err != nil {
		return core.Verdict{}, err
	}

	e.appendMessage(ctx, fileVerdictID, core.MessageSystem, systemPrompt, 0)

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		e.appendMessage(ctx, fileVerdictID, core.MessageUser, userPrompt, 0)

		completion, err := e.complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			e.appendMessage(ctx, fileVerdictID, core.MessageAssistant, completion.Text, completion.TokensUsed)

			verdict, perr := ParseVerdict(completion.Text)
			if perr == nil {
				return verdict, nil
			}
			// Malformed output is retryable within the attempt budget.
			err = core.Transient(perr)
		}

		lastErr = err
		if !core.IsTransient(err) {
			e.logger.Error("evaluation failed permanently",
				"file", change.Path, "attempt", attempt, "error", err)
			return core.Verdict{}, fmt.Errorf("%w: %v", core.ErrEvaluationUnavailable, err)
		}

		e.logger.Warn("evaluation attempt failed",
			"file", change.Path, "attempt", attempt, "max_attempts", e.maxAttempts, "error", err)

		if attempt < e.maxAttempts {
			if serr := e.sleep(ctx, backoff(attempt)); serr != nil {
				return core.Verdict{}, fmt.Errorf("%w: %v", core.ErrEvaluationUnavailable, serr)
			}
		}
	}

	return core.Verdict{}, fmt.Errorf("%w after %d attempts: %v", core.ErrEvaluationUnavailable, e.maxAttempts, lastErr)
}

// complete runs one LLM call under the per-request timeout.
func (e *Evaluator) complete(ctx context.Context, systemPrompt, userPrompt string) (core.Completion, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.completer.Complete(ctx, systemPrompt, userPrompt)
}

// appendMessage writes one audit row. Audit failures are logged, not
// propagated: losing a trail row must not fail the evaluation itself.
func (e *Evaluator) appendMessage(ctx context.Context, fileVerdictID int64, role, content string, tokens int) {
	err := e.store.AppendLLMMessage(ctx, &core.LLMMessage{
		FileVerdictID: fileVerdictID,
		MessageType:   role,
		Content:       content,
		TokensUsed:    tokens,
	})
	if err != nil {
		e.logger.Error("failed to append llm audit message", "file_verdict_id", fileVerdictID, "role", role, "error", err)
	}
}

// backoff returns the exponential delay before the next attempt: 1s, 2s, 4s.
func backoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}
