package agents

import (
	"path"
	"sort"
	"strings"
)

// KeywordRule 一条带标签的关键字规则；MinMatches 为命中所需的最少关键字数，0 视为 1
type KeywordRule struct {
	Tag        string
	Keywords   []string
	MinMatches int
}

// Matches 返回 s 是否命中规则
func (r KeywordRule) Matches(s string) bool {
	need := r.MinMatches
	if need <= 0 {
		need = 1
	}
	n := 0
	for _, k := range r.Keywords {
		if strings.Contains(s, k) {
			n++
			if n >= need {
				return true
			}
		}
	}
	return false
}

// MatchesAcross 在多条文本中累计关键字命中数判断规则
func (r KeywordRule) MatchesAcross(items []string) bool {
	need := r.MinMatches
	if need <= 0 {
		need = 1
	}
	hit := map[string]bool{}
	for _, s := range items {
		for _, k := range r.Keywords {
			if !hit[k] && strings.Contains(s, k) {
				hit[k] = true
				if len(hit) >= need {
					return true
				}
			}
		}
	}
	return false
}

// MatchedTags 返回 items 中命中的规则标签，按规则表顺序
func MatchedTags(rules []KeywordRule, items []string) []string {
	var tags []string
	for _, r := range rules {
		if r.MatchesAcross(items) {
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

func extSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// -----------------------------
// 代码质量
// -----------------------------

var CodeExtensions = extSet(".py", ".js", ".ts", ".java", ".go", ".rs", ".cpp", ".c", ".php", ".rb", ".swift", ".kt", ".jsx", ".tsx", ".cs", ".scala")

var CodeGoodPatterns = []KeywordRule{
	{Tag: "organization", Keywords: []string{"src/", "lib/", "app/", "components/", "utils/", "internal/", "pkg/"}},
	{Tag: "testing", Keywords: []string{"test"}},
	{Tag: "configuration", Keywords: []string{"config"}},
	{Tag: "utilities", Keywords: []string{"util", "helper"}},
	{Tag: "services", Keywords: []string{"service"}},
	{Tag: "models", Keywords: []string{"model"}},
	{Tag: "efficiency", Keywords: []string{"hash", "cache", "tree", "graph", "queue", "stack", "heap"}},
	{Tag: "maintainability", Keywords: []string{"interface", "abstract", "base", "contract"}},
}

var CodeBadPatterns = []KeywordRule{
	{Tag: "temporary files", Keywords: []string{"temp", "tmp"}},
	{Tag: "backup files", Keywords: []string{"backup", ".bak", "~"}},
	{Tag: "legacy copies", Keywords: []string{"_old", "old_", ".old", "-old", "_copy", " copy"}},
}

var SensitiveKeywords = []string{"password", "passwd", "secret", "credential", "private_key", "apikey", "api_key", "token"}

var PerformanceRiskKeywords = []string{"nested", "recursive", "heavy", "loop"}

var TestMarkers = []string{"test", ".spec."}

var DocExtensions = extSet(".md", ".rst", ".adoc")

// -----------------------------
// 架构
// -----------------------------

var GoodDirectories = []string{"src", "lib", "app", "components", "utils", "config", "tests", "test", "docs", "pkg", "internal", "cmd", "api"}

var ArchitecturePatterns = []KeywordRule{
	{Tag: "mvc", Keywords: []string{"controller", "model", "view"}, MinMatches: 2},
	{Tag: "microservices", Keywords: []string{"microservice", "gateway", "services/"}},
	{Tag: "layered", Keywords: []string{"layer", "domain/", "infrastructure"}},
	{Tag: "component_based", Keywords: []string{"component"}},
	{Tag: "event_driven", Keywords: []string{"event", "listener", "subscriber", "publisher"}},
	{Tag: "hexagonal", Keywords: []string{"adapter", "port/", "ports/"}},
	{Tag: "clean_architecture", Keywords: []string{"usecase", "use_case", "interactor", "entities/"}},
}

var LayerGroups = []KeywordRule{
	{Tag: "presentation", Keywords: []string{"ui/", "view", "component", "page", "screen", "template"}},
	{Tag: "business", Keywords: []string{"service", "logic", "business", "domain"}},
	{Tag: "data", Keywords: []string{"model", "entity", "repository", "dao", "database", "db/", "migration"}},
	{Tag: "infrastructure", Keywords: []string{"config", "util", "helper", "common", "infra"}},
}

var DataFlowIndicators = []string{"api", "endpoint", "route", "controller", "service", "repository", "handler"}

var ControlFlowIndicators = []string{"middleware", "interceptor", "filter", "guard", "decorator"}

var ReadmeArchitectureTerms = []string{"architecture", "design", "pattern", "diagram"}

var ConfigFileMarkers = []string{".env", "config", "settings", "docker-compose"}

var CachingKeywords = []string{"cache", "redis", "memcache"}

var AsyncKeywords = []string{"queue", "worker", "async", "celery", "kafka", "rabbitmq", "job"}

var SecurityLayerKeywords = []string{"security", "auth", "middleware", "guard", "jwt"}

var CIMarkers = []string{".github/workflows", ".gitlab-ci.yml", "jenkinsfile", ".circleci", ".travis.yml", "azure-pipelines"}

// -----------------------------
// UI/UX
// -----------------------------

var UIExtensions = extSet(".html", ".jsx", ".tsx", ".vue", ".svelte", ".css", ".scss", ".sass", ".less")

var StyleExtensions = extSet(".css", ".scss", ".sass", ".less")

var UIFrameworks = []KeywordRule{
	{Tag: "React", Keywords: []string{".jsx", ".tsx", "react"}},
	{Tag: "Vue", Keywords: []string{".vue", "vue.config", "nuxt"}},
	{Tag: "Angular", Keywords: []string{"angular", ".component.ts"}},
	{Tag: "Svelte", Keywords: []string{".svelte", "svelte.config"}},
}

var CSSFrameworks = []string{"bootstrap", "tailwind", "material", "bulma", "chakra"}

var AccessibilityKeywords = []string{"accessibility", "a11y", "aria", "semantic"}

var ResponsiveKeywords = []string{"mobile", "responsive", "breakpoint", "media-quer"}

var ImageExtensions = extSet(".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg")

var ScreenshotKeywords = []string{"screenshot", "demo", "preview"}

var RouteKeywords = []string{"pages/", "routes/", "views/", "screens/"}

var BrandKeywords = []string{"theme", "brand", "logo", "palette", "design-system", "tokens", "style-guide"}

var TypographyKeywords = []string{"font", "typography"}

var LayoutKeywords = []string{"layout", "grid", "spacing"}

// -----------------------------
// 安全
// -----------------------------

var PackageManifests = []string{"package.json", "requirements.txt", "pom.xml", "cargo.toml", "go.mod", "gemfile", "composer.json", "pyproject.toml", "build.gradle"}

var ValidationKeywords = []string{"validator", "validation", "schema", "sanitiz"}

var AuthKeywords = []string{"auth", "login", "jwt", "oauth", "session"}

var SensitiveFileKeywords = []string{"password", "passwd", "secret", "credential", "private_key", "id_rsa", ".pem"}

// -----------------------------
// 技术栈
// -----------------------------

var TechByExtension = map[string]string{
	".py":     "Python",
	".js":     "JavaScript",
	".ts":     "TypeScript",
	".jsx":    "React",
	".tsx":    "React",
	".go":     "Go",
	".rs":     "Rust",
	".java":   "Java",
	".kt":     "Kotlin",
	".rb":     "Ruby",
	".php":    "PHP",
	".cs":     "C#",
	".cpp":    "C++",
	".c":      "C",
	".swift":  "Swift",
	".vue":    "Vue",
	".svelte": "Svelte",
	".sql":    "SQL",
	".html":   "HTML",
	".css":    "CSS",
	".scss":   "CSS",
}

var TechByFile = map[string]string{
	"package.json":        "Node.js",
	"requirements.txt":    "Python",
	"pyproject.toml":      "Python",
	"go.mod":              "Go",
	"cargo.toml":          "Rust",
	"pom.xml":             "Java",
	"build.gradle":        "Java",
	"gemfile":             "Ruby",
	"dockerfile":          "Docker",
	"docker-compose.yml":  "Docker Compose",
	"docker-compose.yaml": "Docker Compose",
}

var FrameworkRules = []KeywordRule{
	{Tag: "React", Keywords: []string{"react"}},
	{Tag: "Vue", Keywords: []string{"vue"}},
	{Tag: "Angular", Keywords: []string{"angular"}},
	{Tag: "Django", Keywords: []string{"django"}},
	{Tag: "Flask", Keywords: []string{"flask"}},
	{Tag: "FastAPI", Keywords: []string{"fastapi"}},
	{Tag: "Express", Keywords: []string{"express"}},
	{Tag: "Spring", Keywords: []string{"spring boot", "springboot"}},
}

var IntegrationRules = []KeywordRule{
	{Tag: "PostgreSQL", Keywords: []string{"postgres"}},
	{Tag: "MySQL", Keywords: []string{"mysql"}},
	{Tag: "MongoDB", Keywords: []string{"mongodb", "mongo"}},
	{Tag: "Redis", Keywords: []string{"redis"}},
	{Tag: "AWS", Keywords: []string{"aws", "lambda", "amazon s3"}},
	{Tag: "GCP", Keywords: []string{"gcp", "google cloud", "firebase"}},
	{Tag: "Azure", Keywords: []string{"azure"}},
	{Tag: "Kubernetes", Keywords: []string{"kubernetes", "k8s"}},
	{Tag: "Machine Learning", Keywords: []string{"tensorflow", "pytorch", "machine learning", "llm", "openai"}},
}

var ReadmeTechRules = append(append([]KeywordRule{}, FrameworkRules...), IntegrationRules...)

// DetectTechStack 从扩展名、特征文件与 README 推断技术栈，结果排序去重
func DetectTechStack(files []string, readmeLower string) []string {
	set := map[string]bool{}
	for _, f := range files {
		if tech, ok := TechByExtension[path.Ext(f)]; ok {
			set[tech] = true
		}
		if tech, ok := TechByFile[path.Base(f)]; ok {
			set[tech] = true
		}
	}
	for _, r := range ReadmeTechRules {
		if r.Matches(readmeLower) {
			set[r.Tag] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// isTestPath 路径是否为测试文件
func isTestPath(p string) bool {
	for _, m := range TestMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}
