package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coworkpos-backend/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSupervisor_ReportPostsPayload(t *testing.T) {
	var got Payload
	var agentID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agentID = r.Header.Get("Agent-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sup := NewSupervisor(srv.URL, "cash-cut", "agent-7", testLogger())
	err := sup.Report(context.Background(), StatusSuccess, "cut done", map[string]any{"netTotal": 25300})
	require.NoError(t, err)

	assert.Equal(t, "agent-7", agentID)
	assert.Equal(t, "cash-cut", got.Source)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, "cut done", got.Message)
	assert.False(t, got.Timestamp.IsZero())
	assert.EqualValues(t, 25300, got.Data["netTotal"])
}

func TestSupervisor_NonSuccessStatusIsNotificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sup := NewSupervisor(srv.URL, "cash-cut", "agent-7", testLogger())
	err := sup.Report(context.Background(), StatusError, "boom", nil)
	assert.ErrorIs(t, err, domain.ErrNotification)
}

func TestSupervisor_UnreachableEndpointIsNotificationError(t *testing.T) {
	sup := NewSupervisor("http://127.0.0.1:1", "cash-cut", "agent-7", testLogger())
	err := sup.Report(context.Background(), StatusHealthCheck, "ping", nil)
	assert.ErrorIs(t, err, domain.ErrNotification)
}

func TestSupervisor_EmptyURLDisablesReporting(t *testing.T) {
	sup := NewSupervisor("", "cash-cut", "agent-7", testLogger())
	assert.NoError(t, sup.Report(context.Background(), StatusSuccess, "noop", nil))
}
