// Package handler provides the HTTP handlers for incoming webhooks.
package handler

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/config"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

const maxPayloadBytes = 10 << 20

// WebhookHandler processes incoming webhooks from GitLab.
type WebhookHandler struct {
	secret     string
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:     cfg.GitLabWebhookSecret,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle verifies the webhook token, normalizes merge request events, and
// queues them for background processing. Everything else is acknowledged
// and ignored.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Gitlab-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		h.logger.Error("invalid webhook token")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Error("could not read webhook payload", "error", err)
		http.Error(w, "Could not read payload", http.StatusBadRequest)
		return
	}

	event, err := gitlab.ParseWebhook(gitlab.HookEventType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *gitlab.MergeEvent:
		h.handleMergeRequest(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", gitlab.HookEventType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

func (h *WebhookHandler) handleMergeRequest(ctx context.Context, w http.ResponseWriter, event *gitlab.MergeEvent) {
	reviewEvent, err := core.EventFromMergeEvent(event)
	if err != nil {
		h.logger.Debug("ignoring merge request event", "reason", err.Error())
		_, _ = fmt.Fprint(w, "Event ignored")
		return
	}

	if err := h.dispatcher.Dispatch(ctx, reviewEvent); err != nil {
		h.logger.Error("failed to dispatch review job", "error", err, "key", reviewEvent.Key())
		http.Error(w, "Failed to queue review", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("review event queued", "key", reviewEvent.Key(), "action", reviewEvent.Action)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Review queued")
}
