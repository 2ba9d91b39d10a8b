package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

const DefaultAPIURL = "https://api.github.com"

var (
	ErrInvalidRepoURL = errors.New("invalid repository url")
	ErrFetch          = errors.New("github fetch failed")
	ErrNotFound       = errors.New("github resource not found")
)

var sshPattern = regexp.MustCompile(`^git@([^:]+):([^/]+)/([^/]+?)(?:\.git)?/?$`)

// RepoRef 解析后的仓库引用
type RepoRef struct {
	Host  string
	Owner string
	Repo  string
}

// Identity 仓库标识，形如 owner/repo
func (r RepoRef) Identity() string {
	return r.Owner + "/" + r.Repo
}

// CanonicalURL 规范化的 https 地址，用作缓存键与持久化字段
func (r RepoRef) CanonicalURL() string {
	return fmt.Sprintf("https://%s/%s/%s", r.Host, r.Owner, r.Repo)
}

// ParseRepoURL 解析 GitHub 仓库地址，支持 https 与 ssh 两种形式
func ParseRepoURL(raw string) (RepoRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RepoRef{}, fmt.Errorf("%w: empty url", ErrInvalidRepoURL)
	}

	if strings.HasPrefix(trimmed, "git@") {
		matches := sshPattern.FindStringSubmatch(trimmed)
		if len(matches) != 4 {
			return RepoRef{}, fmt.Errorf("%w: invalid ssh url %q", ErrInvalidRepoURL, raw)
		}
		return newRef(matches[1], matches[2], matches[3])
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return RepoRef{}, fmt.Errorf("%w: %v", ErrInvalidRepoURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return RepoRef{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRepoURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return RepoRef{}, fmt.Errorf("%w: missing host", ErrInvalidRepoURL)
	}

	path := strings.Trim(parsed.Path, "/")
	parts := strings.Split(path, "/")
	if path == "" || len(parts) < 2 {
		return RepoRef{}, fmt.Errorf("%w: missing owner/repo in %q", ErrInvalidRepoURL, raw)
	}
	return newRef(parsed.Host, parts[0], strings.TrimSuffix(parts[1], ".git"))
}

func newRef(host, owner, repo string) (RepoRef, error) {
	host = strings.ToLower(host)
	if host != "github.com" && host != "www.github.com" {
		return RepoRef{}, fmt.Errorf("%w: only GitHub repositories are supported", ErrInvalidRepoURL)
	}
	if owner == "" || repo == "" {
		return RepoRef{}, fmt.Errorf("%w: missing owner/repo", ErrInvalidRepoURL)
	}
	return RepoRef{Host: "github.com", Owner: strings.ToLower(owner), Repo: strings.ToLower(repo)}, nil
}

// Client GitHub REST 客户端，只读取文件树与 README
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchTree 递归获取分支的文件树
func (c *Client) FetchTree(ctx context.Context, ref RepoRef, branch string) ([]domain.FileEntry, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.baseURL, ref.Owner, ref.Repo, url.PathEscape(branch))
	var resp treeResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Truncated {
		klog.Warningf("GitHub 文件树被截断: repo=%s, branch=%s", ref.Identity(), branch)
	}

	entries := make([]domain.FileEntry, 0, len(resp.Tree))
	for _, item := range resp.Tree {
		kind := domain.KindFile
		if item.Type == "tree" {
			kind = domain.KindDirectory
		}
		entries = append(entries, domain.FileEntry{Path: item.Path, Kind: kind})
	}
	klog.V(6).Infof("GitHub 文件树获取完成: repo=%s, branch=%s, entries=%d", ref.Identity(), branch, len(entries))
	return entries, nil
}

// FetchReadme 获取 README 文本，仓库没有 README 时返回空串
func (c *Client) FetchReadme(ctx context.Context, ref RepoRef, branch string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, ref.Owner, ref.Repo)
	if branch != "" {
		endpoint += "?ref=" + url.QueryEscape(branch)
	}
	var resp contentResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if resp.Encoding != "" && resp.Encoding != "base64" {
		return resp.Content, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("%w: decode readme: %v", ErrFetch, err)
	}
	return string(data), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status=%d, body=%s", ErrFetch, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrFetch, err)
	}
	return nil
}
