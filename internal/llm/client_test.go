package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = "test-key"
	cfg.Tasks = map[TaskType]TaskConfig{
		TaskOutline: {Temperature: 0.7, MaxTokens: 8000, TimeoutMs: 2000},
		TaskDialogs: {Temperature: 0.7, MaxTokens: 8000, TimeoutMs: 2000},
	}
	return cfg
}

func TestGLMClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "glm-4.7", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be a director", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "outline please", req.Messages[1].Content)

		json.NewEncoder(w).Encode(map[string]any{
			"model": "glm-4.7",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"chapters":[]}`}},
			},
		})
	}))
	defer srv.Close()

	client := NewGLMClient(testConfig(srv.URL), NoopObserver{})
	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskOutline,
		SystemPrompt: "be a director",
		UserPrompt:   "outline please",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"chapters":[]}`, resp.Text)
	assert.Equal(t, "glm-4.7", resp.Model)
	assert.GreaterOrEqual(t, resp.LatencyMs, int64(0))
}

func TestGLMClient_Generate_OmitsSystemMessageWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"model":   "glm-4.7",
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	client := NewGLMClient(testConfig(srv.URL), NoopObserver{})
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskDialogs, UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}

func TestGLMClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Tasks[TaskOutline] = TaskConfig{Temperature: 0.7, MaxTokens: 100, TimeoutMs: 50}

	client := NewGLMClient(cfg, NoopObserver{})
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskOutline, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGLMClient_Generate_Unavailable(t *testing.T) {
	client := NewGLMClient(testConfig("http://127.0.0.1:1"), NoopObserver{}) // nothing listening
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskOutline, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrVendorUnavailable)
}

func TestGLMClient_Generate_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream busy"))
	}))
	defer srv.Close()

	client := NewGLMClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskOutline, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrVendorUnavailable)
	assert.Contains(t, err.Error(), "502")
}

func TestGLMClient_Generate_DoesNotRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewGLMClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskOutline, UserPrompt: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestGLMClient_Generate_Canceled(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read; otherwise
		// it never notices the client disconnect, r.Context() never fires,
		// and srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewGLMClient(testConfig(srv.URL), NoopObserver{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Generate(ctx, GenerateRequest{Task: TaskOutline, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrSuperseded)
}

func TestGLMClient_ObserverRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var events []CallEvent
	obs := observerFunc(func(e CallEvent) { events = append(events, e) })

	client := NewGLMClient(testConfig(srv.URL), obs)
	_, _ = client.Generate(context.Background(), GenerateRequest{Task: TaskDialogs, UserPrompt: "x"})

	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
	assert.Equal(t, TaskDialogs, events[0].Task)
}

type observerFunc func(CallEvent)

func (f observerFunc) OnCallComplete(e CallEvent) { f(e) }

func TestGLMClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewGLMClient(testConfig(srv.URL), NoopObserver{})
	assert.True(t, client.Available(context.Background()))

	down := NewGLMClient(testConfig("http://127.0.0.1:1"), NoopObserver{})
	assert.False(t, down.Available(context.Background()))
}
