package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phantomlabs/phantom-backend/internal/notify"
)

func TestNotificationsListReturnsSnapshot(t *testing.T) {
	hub := notify.NewHub(nil)
	hub.Append(notify.Notification{
		ID:       "n-1",
		Kind:     notify.KindSuccess,
		Title:    "Checkout",
		Message:  "Jordan 4 secured",
		Duration: notify.DefaultDuration(notify.KindSuccess),
	})

	rec := httptest.NewRecorder()
	NotificationsList(hub, nil)(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []notificationDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "n-1", body.Data[0].ID)
	require.Equal(t, notify.KindSuccess, body.Data[0].Kind)
	require.Equal(t, int64(4000), body.Data[0].DurationMS)
}

func TestNotificationDismissRemovesToast(t *testing.T) {
	hub := notify.NewHub(nil)
	scheduler := notify.NewScheduler(hub, nil)
	defer scheduler.Close()

	hub.Append(notify.Notification{
		ID:       "n-gone",
		Kind:     notify.KindInfo,
		Title:    "restock",
		Duration: time.Hour,
	})

	req := httptest.NewRequest(http.MethodPost, "/notifications/n-gone/dismiss", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("notificationId", "n-gone")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	NotificationDismiss(scheduler, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, hub.Len())
}

func TestNotificationDismissRequiresID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/notifications//dismiss", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chi.NewRouteContext()))

	rec := httptest.NewRecorder()
	NotificationDismiss(notify.NewScheduler(notify.NewHub(nil), nil), nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsStreamSendsSnapshotAndUpdates(t *testing.T) {
	hub := notify.NewHub(nil)
	hub.Append(notify.Notification{
		ID:       "first",
		Kind:     notify.KindInfo,
		Title:    "hello",
		Duration: time.Hour,
	})

	srv := httptest.NewServer(NotificationsStream(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first := readEventData(t, reader)
	require.Len(t, first, 1)
	require.Equal(t, "first", first[0].ID)

	hub.Append(notify.Notification{
		ID:       "second",
		Kind:     notify.KindError,
		Title:    "failed",
		Duration: time.Hour,
	})

	second := readEventData(t, reader)
	require.Len(t, second, 2)
	require.Equal(t, "second", second[1].ID)
}

func readEventData(t *testing.T, reader *bufio.Reader) []notificationDTO {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var items []notificationDTO
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &items))
		return items
	}
}
