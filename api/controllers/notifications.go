package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phantomlabs/phantom-backend/api/responses"
	"github.com/phantomlabs/phantom-backend/internal/notify"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
)

const streamHeartbeat = 15 * time.Second

// NotificationHub is the read/subscribe surface of the toast hub.
type NotificationHub interface {
	Snapshot() []notify.Notification
	Subscribe(listener func()) (unsubscribe func())
}

// NotificationDismisser cancels a toast's expiry timer and removes it.
type NotificationDismisser interface {
	Dismiss(id string)
}

type notificationDTO struct {
	ID         string      `json:"id"`
	Kind       notify.Kind `json:"kind"`
	Title      string      `json:"title"`
	Message    string      `json:"message,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

func toNotificationDTOs(items []notify.Notification) []notificationDTO {
	out := make([]notificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, notificationDTO{
			ID:         n.ID,
			Kind:       n.Kind,
			Title:      n.Title,
			Message:    n.Message,
			DurationMS: n.Duration.Milliseconds(),
		})
	}
	return out
}

// NotificationsList returns the current active toast list.
func NotificationsList(hub NotificationHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification hub unavailable"))
			return
		}
		responses.WriteSuccess(w, toNotificationDTOs(hub.Snapshot()))
	}
}

// NotificationsStream pushes the active toast list over SSE. The full list
// is re-sent after every hub change, so a client that misses one event
// converges on the next.
func NotificationsStream(hub NotificationHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification hub unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		// Coalescing channel: a burst of hub changes collapses into one
		// pending wakeup, and the handler re-reads the snapshot anyway.
		changes := make(chan struct{}, 1)
		unsubscribe := hub.Subscribe(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		send := func() bool {
			payload, err := json.Marshal(toNotificationDTOs(hub.Snapshot()))
			if err != nil {
				return false
			}
			if _, err := fmt.Fprintf(w, "event: notifications\ndata: %s\n\n", payload); err != nil {
				return false
			}
			flusher.Flush()
			return true
		}

		if !send() {
			return
		}

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-changes:
				if !send() {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// NotificationDismiss removes a toast ahead of its expiry.
func NotificationDismiss(scheduler NotificationDismisser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification scheduler unavailable"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "notificationId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "notification id required"))
			return
		}

		scheduler.Dismiss(id)
		responses.WriteSuccess(w, map[string]string{"dismissed": id})
	}
}
