package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashRaythatha/hackathon-code-validation/config"
	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

func newGitHubStub(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var treeCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/app/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		treeCalls.Add(1)
		fmt.Fprint(w, `{"tree":[
			{"path":"src","type":"tree"},
			{"path":"src/server.go","type":"blob"},
			{"path":"src/server_test.go","type":"blob"},
			{"path":"go.mod","type":"blob"},
			{"path":"Dockerfile","type":"blob"}
		]}`)
	})
	mux.HandleFunc("/repos/octo/app/readme", func(w http.ResponseWriter, r *http.Request) {
		content := base64.StdEncoding.EncodeToString([]byte("# App\n## Features\n- Fast\n"))
		fmt.Fprintf(w, `{"content":%q,"encoding":"base64"}`, content)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &treeCalls
}

func newTestApp(t *testing.T) (*App, *atomic.Int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	server, calls := newGitHubStub(t)

	cfg := config.Default().WithDataDir(t.TempDir())
	cfg.Learning.Store = LearningStoreMemory
	cfg.GitHub.APIURL = server.URL

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a, calls
}

func TestAppWiring(t *testing.T) {
	a, _ := newTestApp(t)
	assert.NotNil(t, a.Learning, "默认注册表应包含学习 Agent")
	assert.Equal(t, len(a.Registry.List()), 9)
	assert.Equal(t, 100, a.Judge.Document().TotalPercentage)
}

func TestAppAnalyzeEndToEnd(t *testing.T) {
	a, calls := newTestApp(t)
	r := a.Router()

	body := `{"repo_url":"https://github.com/octo/app"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "https://github.com/octo/app", report.RepoURL)
	assert.Equal(t, "main", report.Branch)
	require.NotNil(t, report.Verdict)
	assert.Len(t, report.Verdict.AgentResults, 9)

	// 第二次请求命中缓存，不再访问 GitHub
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	var cached domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cached))
	assert.True(t, cached.Cached)
	assert.Equal(t, report.ID, cached.ID)
	assert.Equal(t, int32(1), calls.Load())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses/"+report.ID, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, report.Verdict.TotalScore, stored.Verdict.TotalScore)
	assert.False(t, stored.Cached)
}

func TestAppRoutes(t *testing.T) {
	a, _ := newTestApp(t)
	r := a.Router()

	tests := []struct {
		name     string
		path     string
		wantCode int
		contains string
	}{
		{name: "health", path: "/api/health", wantCode: http.StatusOK, contains: `"ok"`},
		{name: "agents", path: "/api/agents", wantCode: http.StatusOK, contains: "code_analysis"},
		{name: "judge config", path: "/api/judge-config", wantCode: http.StatusOK, contains: "presets"},
		{name: "cache stats", path: "/api/cache/stats", wantCode: http.StatusOK, contains: "max_size"},
		{name: "learning stats", path: "/api/learning/stats", wantCode: http.StatusOK, contains: "total_analyses"},
		{name: "unknown api", path: "/api/nope", wantCode: http.StatusNotFound, contains: "error"},
		{name: "dashboard", path: "/", wantCode: http.StatusOK, contains: "<html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestAppLearningStoreSelection(t *testing.T) {
	tests := []struct {
		store string
	}{
		{store: LearningStoreMemory},
		{store: LearningStoreDB},
		{store: LearningStoreFile},
	}
	for _, tt := range tests {
		t.Run(tt.store, func(t *testing.T) {
			cfg := config.Default().WithDataDir(t.TempDir())
			cfg.Learning.Store = tt.store
			a, err := New(cfg)
			require.NoError(t, err)
			defer a.Close(context.Background())
			assert.NotNil(t, a.learningStore())
		})
	}
}
