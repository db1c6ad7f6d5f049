package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"webexbot/internal/domain"
)

// Runtime wires the two event front doors to handler dispatch. Webhook
// deliveries and realtime frames converge on the same path: fetch the full
// message record, parse it, and hand the command to its handler on a fresh
// goroutine. Handler failures never take the event loops down.
type Runtime struct {
	client domain.Messenger
	parser *Parser
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRuntime creates a Runtime around the given REST client.
func NewRuntime(client domain.Messenger, logger *slog.Logger) *Runtime {
	return &Runtime{
		client: client,
		parser: NewParser(),
		logger: logger,
	}
}

// AddCommand registers a command keyword with its argument descriptors.
func (r *Runtime) AddCommand(keyword string, args []domain.ArgumentSpec, handler domain.Handler) {
	r.parser.AddCommand(keyword, args, handler)
}

// Commands returns the registered keywords, sorted.
func (r *Runtime) Commands() []string {
	return r.parser.Commands()
}

// HandleMessageEvent processes one webhook delivery. The event carries only
// the message identifier, so the full record is fetched before parsing.
func (r *Runtime) HandleMessageEvent(ctx context.Context, event *domain.WebhookEvent) {
	r.logger.Debug("webhook event received",
		"resource", event.Resource,
		"event", event.Event,
		"message_id", event.Data.ID,
	)
	r.dispatchMessageID(ctx, event.Data.ID)
}

// HandleFrame processes one realtime Text frame. Frames that are not
// conversation activity, or whose payload does not decode, are logged and
// dropped; the listen loop must survive anything the cloud sends.
func (r *Runtime) HandleFrame(ctx context.Context, payload string) {
	var event domain.RealtimeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Debug("undecodable frame dropped", "error", err)
		return
	}

	if event.Data.EventType != domain.EventTypeConversationActivity {
		r.logger.Debug("frame ignored", "event_type", event.Data.EventType)
		return
	}

	switch event.Data.Activity.Verb {
	case domain.ActivityVerbPost:
		r.dispatchMessageID(ctx, event.Data.Activity.ID)
	case domain.ActivityVerbCardAction:
		// Card submissions arrive without message text; surface them for
		// operators until a dedicated card path exists.
		r.logger.Info("card action received", "activity_id", event.Data.Activity.ID)
	default:
		r.logger.Debug("activity ignored", "verb", event.Data.Activity.Verb)
	}
}

// dispatchMessageID fetches the message, parses it, and launches the
// handler. Parse failures are expected chatter (the bot shares rooms with
// humans talking to each other) and are logged at debug, not surfaced.
func (r *Runtime) dispatchMessageID(ctx context.Context, id string) {
	if id == "" {
		r.logger.Debug("event without message id dropped")
		return
	}

	msg, err := r.client.GetMessage(ctx, id)
	if err != nil {
		r.logger.Error("message fetch failed", "message_id", id, "error", err)
		return
	}

	parsed, err := r.parser.Parse(msg.Text)
	if err != nil {
		if domain.IsParseError(err) {
			r.logger.Debug("message did not parse as a command",
				"message_id", id, "error", err)
		} else {
			r.logger.Error("parse failed", "message_id", id, "error", err)
		}
		return
	}

	r.logger.Info("dispatching command",
		"command", parsed.Command,
		"room_id", msg.RoomID,
	)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("handler panicked",
					"command", parsed.Command, "panic", rec)
			}
		}()
		parsed.Handler.Handle(ctx, r.client, *msg, parsed.Required, parsed.Optional)
	}()
}

// Wait blocks until every in-flight handler goroutine has finished. Called
// during shutdown after the event sources have stopped.
func (r *Runtime) Wait() {
	r.wg.Wait()
}
