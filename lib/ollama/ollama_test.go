package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"matchcast-backend/lib/telemetry"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/ollama")
	defer cleanup()

	var received chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{
			Model:   received.Model,
			Message: Message{Role: "assistant", Content: "  Prediction: Home win\n"},
			Done:    true,
		})
	}))
	defer srv.Close()

	client := NewClient(Options{BaseUrl: srv.URL, ApiKey: "secret"})
	reply, err := client.Chat(context.Background(), Message{Role: "user", Content: "hi"})
	require.NoError(t, err)
	require.Equal(t, "Prediction: Home win", reply)

	require.Equal(t, DefaultModel, received.Model)
	require.False(t, received.Stream)
	require.Equal(t, []Message{{Role: "user", Content: "hi"}}, received.Messages)
}

func TestChatErrors(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/ollama")
	defer cleanup()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}`))
	}))
	defer srv.Close()

	_, err := NewClient(Options{BaseUrl: srv.URL}).Chat(context.Background())
	require.ErrorContains(t, err, "401")
	require.ErrorContains(t, err, "unauthorized")

	_, err = NewClient(Options{BaseUrl: srv.URL, ApiKey: "k", Model: "llama3"}).Chat(context.Background())
	require.True(t, errors.Is(err, ErrEmptyResponse))
}
