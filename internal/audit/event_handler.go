package audit

import (
	"context"

	"github.com/locpham246/task-manager/internal/core/events"
)

// EventHandler turns session lifecycle events into audit entries, keeping the
// login path free of audit writes.
type EventHandler struct {
	service *Service
}

func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeSessionLogin, h.handleLogin)
	bus.Subscribe(events.EventTypeSessionLogout, h.handleLogout)
}

func (h *EventHandler) handleLogin(ctx context.Context, event events.Event) error {
	sessionEvent, ok := event.(events.SessionEvent)
	if !ok {
		return nil
	}
	details := Details{"email": sessionEvent.Email}
	if payload, ok := sessionEvent.Payload().(map[string]interface{}); ok {
		for k, v := range payload {
			details[k] = v
		}
	}
	// Events arrive with the request context, which may already be canceled by
	// the time the async handler runs; the audit write must still land.
	h.service.Record(context.WithoutCancel(ctx), sessionEvent.AccountID, ActionLogin, details)
	return nil
}

func (h *EventHandler) handleLogout(ctx context.Context, event events.Event) error {
	sessionEvent, ok := event.(events.SessionEvent)
	if !ok {
		return nil
	}
	h.service.Record(context.WithoutCancel(ctx), sessionEvent.AccountID, ActionLogout, Details{"email": sessionEvent.Email})
	return nil
}
