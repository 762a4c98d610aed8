package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gajesh2007/weekend-activity/internal/slack"
)

func TestNotifyFailureSendsErrorNotice(t *testing.T) {
	var got struct {
		Text string `json:"text"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier, err := slack.NewNotifier(srv.URL, slack.Options{}, logger)
	require.NoError(t, err)

	notifyFailure(context.Background(), notifier, errors.New("failed to sync acme/widgets: api down"))

	assert.Contains(t, got.Text, "❌ *Weekend Activity Error*")
	assert.Contains(t, got.Text, "failed to sync acme/widgets")
}

func TestNotifyFailureWithoutNotifier(t *testing.T) {
	// Must be a no-op, not a panic.
	notifyFailure(context.Background(), nil, errors.New("boom"))
}
