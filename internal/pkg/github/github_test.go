package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "https", raw: "https://github.com/Octo/App", want: "octo/app"},
		{name: "https .git", raw: "https://github.com/octo/app.git", want: "octo/app"},
		{name: "extra path", raw: "https://github.com/octo/app/tree/main/src", want: "octo/app"},
		{name: "ssh", raw: "git@github.com:octo/app.git", want: "octo/app"},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "non github", raw: "https://gitlab.com/octo/app", wantErr: true},
		{name: "missing repo", raw: "https://github.com/octo", wantErr: true},
		{name: "bad scheme", raw: "ftp://github.com/octo/app", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRepoURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRepoURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.Identity())
		})
	}

	ref, err := ParseRepoURL("https://github.com/Octo/App.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octo/app", ref.CanonicalURL())
}

func newTestServer(t *testing.T, readmeStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/app/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"tree":[{"path":"src","type":"tree"},{"path":"src/main.go","type":"blob"}],"truncated":false}`)
	})
	mux.HandleFunc("/repos/octo/app/readme", func(w http.ResponseWriter, r *http.Request) {
		if readmeStatus != http.StatusOK {
			w.WriteHeader(readmeStatus)
			return
		}
		content := base64.StdEncoding.EncodeToString([]byte("# App\nhello"))
		fmt.Fprintf(w, `{"content":%q,"encoding":"base64"}`, content[:8]+"\n"+content[8:])
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientFetchTreeAndReadme(t *testing.T) {
	server := newTestServer(t, http.StatusOK)
	client := NewClient(server.URL, "secret", 5*time.Second)
	ref := RepoRef{Host: "github.com", Owner: "octo", Repo: "app"}

	tree, err := client.FetchTree(context.Background(), ref, "main")
	require.NoError(t, err)
	assert.Equal(t, []domain.FileEntry{
		{Path: "src", Kind: domain.KindDirectory},
		{Path: "src/main.go", Kind: domain.KindFile},
	}, tree)

	readme, err := client.FetchReadme(context.Background(), ref, "main")
	require.NoError(t, err)
	assert.Equal(t, "# App\nhello", readme)
}

func TestClientMissingReadmeIsEmpty(t *testing.T) {
	server := newTestServer(t, http.StatusNotFound)
	client := NewClient(server.URL, "secret", 5*time.Second)

	readme, err := client.FetchReadme(context.Background(), RepoRef{Owner: "octo", Repo: "app"}, "main")
	require.NoError(t, err)
	assert.Empty(t, readme)
}

func TestClientErrors(t *testing.T) {
	server := newTestServer(t, http.StatusInternalServerError)
	client := NewClient(server.URL, "secret", 5*time.Second)
	ref := RepoRef{Owner: "octo", Repo: "app"}

	_, err := client.FetchReadme(context.Background(), ref, "main")
	assert.ErrorIs(t, err, ErrFetch)

	_, err = client.FetchTree(context.Background(), ref, "missing-branch")
	assert.True(t, errors.Is(err, ErrNotFound), "不存在的分支应返回 ErrNotFound")
}
