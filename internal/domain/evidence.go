package domain

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// FileKind 文件树条目类型
type FileKind string

const (
	KindFile      FileKind = "file"
	KindDirectory FileKind = "directory"
)

// 常用外部产物键
const (
	ArtifactTestResults        = "test_results"
	ArtifactLintResults        = "lint_results"
	ArtifactSASTResults        = "sast_results"
	ArtifactScreenshotsOrDemo  = "screenshots_or_demo"
	ArtifactAccessibilityNotes = "accessibility_notes"
	ArtifactPerfNotes          = "perf_notes"
	ArtifactCIConfigPresent    = "ci_config_present"
	ArtifactLicenseTextPresent = "license_text_present"
)

// ExpectedArtifacts 评分时期望由外部提供的产物，缺失时在报告中列出
var ExpectedArtifacts = []string{
	ArtifactTestResults,
	ArtifactLintResults,
	ArtifactSASTResults,
	ArtifactScreenshotsOrDemo,
	ArtifactAccessibilityNotes,
	ArtifactPerfNotes,
}

// FileEntry 文件树中的一个条目
type FileEntry struct {
	Path string   `json:"path"`
	Kind FileKind `json:"kind"`
}

// Screenshot UI 执行协作方捕获的截图
type Screenshot struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// UIAnalysis UI 执行协作方给出的运行时子评分，取值 [0,10]
type UIAnalysis struct {
	VisualQuality  float64  `json:"visual_quality"`
	Accessibility  float64  `json:"accessibility"`
	Responsiveness float64  `json:"responsiveness"`
	Interactivity  float64  `json:"interactivity"`
	Issues         []string `json:"issues,omitempty"`
}

// UIExecutionResult 外部 UI 执行结果
type UIExecutionResult struct {
	Success     bool         `json:"success"`
	Analysis    UIAnalysis   `json:"analysis"`
	Screenshots []Screenshot `json:"screenshots,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
}

// EvidenceContext 一次分析请求共享给所有 Agent 的只读证据。
// 构造后不可修改，Agent 只能通过访问方法读取。
type EvidenceContext struct {
	FileTree           []FileEntry        `json:"file_tree"`
	Readme             string             `json:"readme"`
	Artifacts          map[string]any     `json:"artifacts,omitempty"`
	RepositoryIdentity string             `json:"repository_identity"`
	Branch             string             `json:"branch"`
	Commit             string             `json:"commit,omitempty"`
	UIExecution        *UIExecutionResult `json:"ui_execution,omitempty"`

	lowerPaths []string
	readmeLow  string
}

// NewEvidenceContext 创建证据上下文，入参会被复制，调用方后续修改不影响上下文
func NewEvidenceContext(repo, branch string, tree []FileEntry, readme string, artifacts map[string]any) *EvidenceContext {
	ec := &EvidenceContext{
		FileTree:           append([]FileEntry(nil), tree...),
		Readme:             readme,
		Artifacts:          make(map[string]any, len(artifacts)),
		RepositoryIdentity: repo,
		Branch:             branch,
	}
	for k, v := range artifacts {
		ec.Artifacts[k] = v
	}
	ec.index()
	return ec
}

func (ec *EvidenceContext) index() {
	ec.lowerPaths = make([]string, len(ec.FileTree))
	for i, f := range ec.FileTree {
		ec.lowerPaths[i] = strings.ToLower(strings.TrimPrefix(f.Path, "./"))
	}
	ec.readmeLow = strings.ToLower(ec.Readme)
}

// Prepare 为通过 JSON 反序列化得到的上下文建立索引
func (ec *EvidenceContext) Prepare() {
	if ec.Artifacts == nil {
		ec.Artifacts = map[string]any{}
	}
	ec.index()
}

func (ec *EvidenceContext) paths() []string {
	if len(ec.lowerPaths) != len(ec.FileTree) {
		ec.index()
	}
	return ec.lowerPaths
}

// IsEmpty 文件树、README 与产物均为空
func (ec *EvidenceContext) IsEmpty() bool {
	return len(ec.FileTree) == 0 && strings.TrimSpace(ec.Readme) == "" && len(ec.Artifacts) == 0
}

// Files 返回所有文件（不含目录）的原始路径
func (ec *EvidenceContext) Files() []string {
	var out []string
	for _, f := range ec.FileTree {
		if f.Kind != KindDirectory {
			out = append(out, f.Path)
		}
	}
	return out
}

// LowerFiles 返回所有文件的小写路径
func (ec *EvidenceContext) LowerFiles() []string {
	lp := ec.paths()
	var out []string
	for i, f := range ec.FileTree {
		if f.Kind != KindDirectory {
			out = append(out, lp[i])
		}
	}
	return out
}

// LowerPaths 返回所有条目（文件与目录）的小写路径
func (ec *EvidenceContext) LowerPaths() []string {
	return ec.paths()
}

// ReadmeLower 小写 README 文本
func (ec *EvidenceContext) ReadmeLower() string {
	if ec.readmeLow == "" && ec.Readme != "" {
		ec.index()
	}
	return ec.readmeLow
}

// HasReadme README 非空
func (ec *EvidenceContext) HasReadme() bool {
	return strings.TrimSpace(ec.Readme) != ""
}

// TopLevelDirs 顶层目录名（小写、排序），同时考虑目录条目与文件路径首段
func (ec *EvidenceContext) TopLevelDirs() []string {
	seen := map[string]bool{}
	for i, f := range ec.FileTree {
		p := strings.Trim(ec.paths()[i], "/")
		if p == "" {
			continue
		}
		first, rest, nested := strings.Cut(p, "/")
		if nested && rest != "" {
			seen[first] = true
		} else if f.Kind == KindDirectory {
			seen[first] = true
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// HasBaseName 是否存在文件名（不区分大小写）等于 name 的文件
func (ec *EvidenceContext) HasBaseName(name string) bool {
	return ec.FindBaseName(name) != ""
}

// FindBaseName 返回第一个文件名等于 name 的原始路径
func (ec *EvidenceContext) FindBaseName(name string) string {
	name = strings.ToLower(name)
	lp := ec.paths()
	for i, f := range ec.FileTree {
		if f.Kind == KindDirectory {
			continue
		}
		if path.Base(lp[i]) == name {
			return f.Path
		}
	}
	return ""
}

// HasPathSegment 是否存在某个路径段等于 seg 的条目
func (ec *EvidenceContext) HasPathSegment(seg string) bool {
	seg = strings.ToLower(seg)
	for _, p := range ec.paths() {
		for _, part := range strings.Split(p, "/") {
			if part == seg {
				return true
			}
		}
	}
	return false
}

// FilesWithExt 返回扩展名属于 exts 的文件
func (ec *EvidenceContext) FilesWithExt(exts map[string]bool) []string {
	var out []string
	for _, p := range ec.LowerFiles() {
		if exts[path.Ext(p)] {
			out = append(out, p)
		}
	}
	return out
}

// PathsContaining 返回包含任一关键字的小写路径
func (ec *EvidenceContext) PathsContaining(keywords []string) []string {
	var out []string
	for _, p := range ec.paths() {
		if ContainsAny(p, keywords) {
			out = append(out, p)
		}
	}
	return out
}

// Artifact 读取产物并统一转为文本；bool 类型仅在为 true 时视为存在
func (ec *EvidenceContext) Artifact(key string) (string, bool) {
	v, ok := ec.Artifacts[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", false
		}
		return t, true
	case bool:
		if !t {
			return "", false
		}
		return "true", true
	case []any:
		if len(t) == 0 {
			return "", false
		}
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "\n"), true
	default:
		return fmt.Sprint(t), true
	}
}

// HasArtifact 产物是否存在且非空
func (ec *EvidenceContext) HasArtifact(key string) bool {
	_, ok := ec.Artifact(key)
	return ok
}

// MissingArtifacts 返回期望但缺失的产物键
func (ec *EvidenceContext) MissingArtifacts() []string {
	var missing []string
	for _, key := range ExpectedArtifacts {
		if !ec.HasArtifact(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// ContainsAny s 是否包含任一关键字
func ContainsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// MatchedKeywords 返回 s 中出现的关键字，保持 keywords 顺序
func MatchedKeywords(s string, keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if strings.Contains(s, k) {
			out = append(out, k)
		}
	}
	return out
}
