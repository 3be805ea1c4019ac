package classifyvoicecommand

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/common/database"
	apperrors "voice-command-workers/internal/common/errors"
	httpclient "voice-command-workers/internal/common/http"
	"voice-command-workers/internal/common/llm"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/dispatch"
	"voice-command-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeClassifier struct {
	raw   string
	err   error
	delay time.Duration
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, clip *models.AudioClip) ([]byte, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.raw), nil
}

func (f *fakeClassifier) Backend() string { return "fake" }

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = time.Second
	return cfg
}

func audioURI(data string) string {
	return "data:audio/webm;base64," + base64.StdEncoding.EncodeToString([]byte(data))
}

func newMiniredisCache(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

const navigateJSON = `{"action":"navigate","target":"/farmer/products","feedback":"Navigating to your products page."}`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	fc := &fakeClassifier{raw: navigateJSON}
	h := NewHandler(createTestConfig(), fc, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{CommandID: "cmd-1", AudioDataURI: audioURI("go to products")})
	require.NoError(t, err)
	assert.Equal(t, "cmd-1", out.CommandID)
	assert.Equal(t, dispatch.ActionNavigate, out.Intent.Action)
	assert.Equal(t, "/farmer/products", out.Intent.Target)
	assert.False(t, out.Cached)
}

func TestHandler_Execute_GeneratesCommandID(t *testing.T) {
	h := NewHandler(createTestConfig(), &fakeClassifier{raw: navigateJSON}, nil, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("x")})
	require.NoError(t, err)
	assert.Len(t, out.CommandID, 36)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		fc       *fakeClassifier
		wantCode apperrors.ErrorCode
	}{
		{"not audio", "data:image/png;base64,AAAA", &fakeClassifier{raw: navigateJSON}, apperrors.ErrCodeAudioInvalid},
		{"not a data uri", "hello", &fakeClassifier{raw: navigateJSON}, apperrors.ErrCodeAudioInvalid},
		{"transport error", audioURI("a"), &fakeClassifier{err: errors.New("connection reset")}, apperrors.ErrCodeClassificationFailed},
		{"empty output", audioURI("a"), &fakeClassifier{raw: "  "}, apperrors.ErrCodeClassificationFailed},
		{"not json", audioURI("a"), &fakeClassifier{raw: "navigate please"}, apperrors.ErrCodeIntentSchemaInvalid},
		{"missing feedback", audioURI("a"), &fakeClassifier{raw: `{"action":"navigate","target":"/farmer"}`}, apperrors.ErrCodeIntentSchemaInvalid},
		{"deadline", audioURI("a"), &fakeClassifier{raw: navigateJSON, delay: time.Minute}, apperrors.ErrCodeClassifierTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(), tt.fc, nil, logger.NewNoOpLogger())
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err := h.Execute(ctx, &Input{AudioDataURI: tt.uri})
			require.Error(t, err)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestHandler_Execute_FailureCarriesUserMessage(t *testing.T) {
	h := NewHandler(createTestConfig(), &fakeClassifier{err: errors.New("boom")}, nil, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("a")})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.VoiceCommandUserMessage, stdErr.UserMessage())

	bpmn := apperrors.ConvertToBPMNError(stdErr)
	assert.Equal(t, "VOICE_COMMAND_FAILED", bpmn.Code)
	assert.Equal(t, apperrors.VoiceCommandUserMessage, bpmn.ErrorVariables[apperrors.UserMessageKey])
}

func TestHandler_Execute_OutOfGrammarAction(t *testing.T) {
	fc := &fakeClassifier{raw: `{"action":"dance","target":"","feedback":"?"}`}
	h := NewHandler(createTestConfig(), fc, nil, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("a")})
	require.NoError(t, err)
	assert.Equal(t, dispatch.ActionUnknown, out.Intent.Action)
}

// ==========================
// Cache Tests
// ==========================

func TestHandler_Execute_CachesByClip(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	fc := &fakeClassifier{raw: navigateJSON}
	h := NewHandler(createTestConfig(), fc, cache, logger.NewNoOpLogger())

	first, err := h.Execute(context.Background(), &Input{CommandID: "c-1", AudioDataURI: audioURI("same clip")})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := h.Execute(context.Background(), &Input{CommandID: "c-2", AudioDataURI: audioURI("same clip")})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "c-2", second.CommandID)
	assert.Equal(t, first.Intent, second.Intent)
	assert.Equal(t, 1, fc.calls)

	clip, err := models.ParseDataURI(audioURI("same clip"), 0)
	require.NoError(t, err)
	key := CacheKeyPrefix + clip.Hash()
	require.True(t, mr.Exists(key))
	assert.Equal(t, 24*time.Hour, mr.TTL(key))

	mr.FastForward(25 * time.Hour)
	third, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("same clip")})
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, fc.calls)
}

func TestHandler_Execute_CacheDisabledByTTL(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	cfg := createTestConfig()
	cfg.CacheTTL = 0
	h := NewHandler(cfg, &fakeClassifier{raw: navigateJSON}, cache, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("a")})
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}

func TestHandler_Execute_CacheErrorFallsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	clip, err := models.ParseDataURI(audioURI("clip"), 0)
	require.NoError(t, err)
	key := CacheKeyPrefix + clip.Hash()

	mock.ExpectGet(key).SetErr(errors.New("redis down"))
	mock.ExpectSet(key, []byte(`{"commandId":"","intent":{"action":"navigate","target":"/farmer/products","feedback":"Navigating to your products page."},"cached":false}`), 24*time.Hour).SetVal("OK")

	fc := &fakeClassifier{raw: navigateJSON}
	h := NewHandler(createTestConfig(), fc, database.NewRedisFromClient(db), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("clip")})
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Equal(t, 1, fc.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Backend Tests
// ==========================

func TestGatewayClassifier(t *testing.T) {
	var got gatewayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, gatewayPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(navigateJSON))
	}))
	defer srv.Close()

	g := NewGatewayClassifier(httpclient.NewClient(time.Second, 0), srv.URL+"/")
	h := NewHandler(createTestConfig(), g, nil, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("gateway")})
	require.NoError(t, err)
	assert.Equal(t, audioURI("gateway"), got.AudioDataURI)
	assert.Equal(t, "/farmer/products", out.Intent.Target)
	assert.Equal(t, config.GenAIBackendGateway, g.Backend())
}

func TestGatewayClassifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewHandler(createTestConfig(),
		NewGatewayClassifier(httpclient.NewClient(time.Second, 1), srv.URL), nil, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("a")})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeClassificationFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestGeminiClassifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(navigateJSON)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":` + string(body) + `}]}}]}`))
	}))
	defer srv.Close()

	client, err := llm.New(context.Background(), config.GenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "gemini-1.5-flash"})
	require.NoError(t, err)
	g := NewGeminiClassifier(client, models.NavigationRoutes)

	h := NewHandler(createTestConfig(), g, nil, logger.NewNoOpLogger())
	out, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("gemini")})
	require.NoError(t, err)
	assert.Equal(t, dispatch.ActionNavigate, out.Intent.Action)
}

// ==========================
// Parsing Tests
// ==========================

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     dispatch.Intent
		wantCode apperrors.ErrorCode
	}{
		{
			name: "filter with payload",
			raw:  `{"action":"filter","target":"orders","payload":{"status":"Pending"},"feedback":"Showing pending orders."}`,
			want: dispatch.Intent{Action: dispatch.ActionFilter, Target: "orders", Payload: dispatch.Payload{"status": "Pending"}, Feedback: "Showing pending orders."},
		},
		{
			name: "fenced",
			raw:  "```json\n" + `{"action":"unknown","target":"","feedback":"Try again."}` + "\n```",
			want: dispatch.Intent{Action: dispatch.ActionUnknown, Feedback: "Try again."},
		},
		{
			name: "string payload",
			raw:  `{"action":"filter","target":"orders","payload":"pending","feedback":"f"}`,
			want: dispatch.Intent{Action: dispatch.ActionFilter, Target: "orders", Feedback: "f"},
		},
		{name: "action not a string", raw: `{"action":3,"feedback":"f"}`, wantCode: apperrors.ErrCodeIntentSchemaInvalid},
		{name: "array", raw: `[]`, wantCode: apperrors.ErrCodeIntentSchemaInvalid},
		{name: "empty", raw: ``, wantCode: apperrors.ErrCodeClassificationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntent([]byte(tt.raw))
			if tt.wantCode != "" {
				stdErr, ok := apperrors.AsStandardError(err)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, tt.wantCode, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrompt_ListsRoutes(t *testing.T) {
	p := BuildPrompt(models.NavigationRoutes)
	for _, r := range models.NavigationRoutes {
		assert.Contains(t, p, "- "+r.Path+" (")
	}
	assert.Contains(t, p, `"addProduct"`)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(&config.Config{
		APIs:  config.APIsConfig{GenAI: config.GenAIConfig{Backend: "gateway", BaseURL: "http://genai", Timeout: 5000, MaxRetries: 1}},
		Voice: config.VoiceConfig{CacheTTL: 60, MaxAudioBytes: 1024},
	})
	assert.Equal(t, "gateway", cfg.Backend)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1024, cfg.MaxAudioBytes)
}

func TestStaticClassifier(t *testing.T) {
	c, err := NewStaticClassifier(dispatch.Intent{Action: dispatch.ActionNavigate, Target: "/consumer", Feedback: "ok"})
	require.NoError(t, err)
	h := NewHandler(createTestConfig(), c, nil, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{AudioDataURI: audioURI("a")})
	require.NoError(t, err)
	assert.Equal(t, "/consumer", out.Intent.Target)
}
