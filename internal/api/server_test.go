// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/scribe/internal/client"
	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine serves a single fixed session.
type fakeEngine struct {
	session  *session.Session
	document *core.Document
	err      error
}

func (f *fakeEngine) Start(ctx context.Context, taskType core.TaskType, initialRequest string, sessionContext map[string]any) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeEngine) Answer(ctx context.Context, sessionID string, answers []session.AnswerInput) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeEngine) Finalize(ctx context.Context, sessionID, additionalRequirements string) (*core.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.document, nil
}

func (f *fakeEngine) Abandon(ctx context.Context, sessionID string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeEngine) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeEngine) List(ctx context.Context) ([]session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []session.Session{*f.session}, nil
}

type fakeUsage struct{}

func (fakeUsage) Stats() map[core.ProviderKind]client.ProviderStats {
	return map[core.ProviderKind]client.ProviderStats{
		core.ProviderClaude: {
			Requests:     4,
			Failures:     1,
			TotalTokens:  600,
			CostUSD:      0.01,
			TotalLatency: 900 * time.Millisecond,
		},
	}
}

func testServer(engine *fakeEngine, apiKey string) *Server {
	return NewServer(Config{APIKey: apiKey}, engine, fakeUsage{}, nil, nil)
}

func defaultEngine() *fakeEngine {
	return &fakeEngine{
		session: &session.Session{
			ID:       "s1",
			TaskType: core.TaskAPIDesign,
			Status:   session.StatusAwaitingAnswers,
			Questions: []session.Question{
				{ID: "q1", Text: "What throughput is expected?"},
			},
		},
		document: &core.Document{
			SessionID: "s1",
			TaskType:  core.TaskAPIDesign,
			Content:   "# doc",
		},
	}
}

func do(t *testing.T, srv *Server, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_StartSession(t *testing.T) {
	srv := testServer(defaultEngine(), "")

	rec := do(t, srv, http.MethodPost, "/api/sessions", "",
		`{"task_type":"api_design","initial_request":"design a payments API"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data struct {
			SessionID string             `json:"session_id"`
			Status    session.Status     `json:"status"`
			Questions []session.Question `json:"questions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "s1", envelope.Data.SessionID)
	assert.Equal(t, session.StatusAwaitingAnswers, envelope.Data.Status)
	assert.Len(t, envelope.Data.Questions, 1)
}

func TestServer_StartSession_MalformedBody(t *testing.T) {
	srv := testServer(defaultEngine(), "")
	rec := do(t, srv, http.MethodPost, "/api/sessions", "", `{"task_type":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Answer_ReportsReadiness(t *testing.T) {
	engine := defaultEngine()
	engine.session.Status = session.StatusReadyToGenerate
	srv := testServer(engine, "")

	rec := do(t, srv, http.MethodPost, "/api/sessions/s1/answers", "",
		`{"answers":[{"question_id":"q1","answer":"5k rps"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			IsReadyToGenerate bool `json:"is_ready_to_generate"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.IsReadyToGenerate)
}

func TestServer_Finalize_WarningsNeverNull(t *testing.T) {
	srv := testServer(defaultEngine(), "")

	rec := do(t, srv, http.MethodPost, "/api/sessions/s1/finalize", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"warnings":[]`)
}

func TestServer_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", core.ErrSessionNotFound, http.StatusNotFound},
		{"invalid state", core.ErrInvalidState, http.StatusConflict},
		{"invalid answer", core.ErrInvalidAnswer, http.StatusBadRequest},
		{"generation failed", &core.GenerationError{Attempts: []core.Attempt{
			{Provider: core.ProviderClaude, Reason: "unreachable"},
		}}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := defaultEngine()
			engine.err = tt.err
			srv := testServer(engine, "")

			rec := do(t, srv, http.MethodPost, "/api/sessions/s1/finalize", "", "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServer_APIKeyAuth(t *testing.T) {
	srv := testServer(defaultEngine(), "topsecret")

	rec := do(t, srv, http.MethodGet, "/api/sessions/s1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/sessions/s1", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/sessions/s1", "topsecret", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_BearerTokenAccepted(t *testing.T) {
	srv := testServer(defaultEngine(), "topsecret")

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s1", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/s1", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_HealthSkipsAuth(t *testing.T) {
	srv := testServer(defaultEngine(), "topsecret")
	rec := do(t, srv, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_ProviderStats(t *testing.T) {
	srv := testServer(defaultEngine(), "")

	rec := do(t, srv, http.MethodGet, "/api/providers/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data map[string]struct {
			Requests     int64 `json:"requests"`
			Failures     int64 `json:"failures"`
			AvgLatencyMS int64 `json:"avg_latency_ms"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	usage, ok := envelope.Data["claude"]
	require.True(t, ok)
	assert.Equal(t, int64(4), usage.Requests)
	// 900ms over 3 succeeded requests
	assert.Equal(t, int64(300), usage.AvgLatencyMS)
}

func TestServer_AbandonRoute(t *testing.T) {
	engine := defaultEngine()
	engine.session.Status = session.StatusAbandoned
	srv := testServer(engine, "")

	rec := do(t, srv, http.MethodPost, "/api/sessions/s1/abandon", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"abandoned"`)
}
