package agents

import (
	"regexp"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

var (
	endpointPattern   = regexp.MustCompile(`(?m)\b(GET|POST|PUT|DELETE|PATCH)\s+(/[^\s` + "`" + `"')]*)`)
	bulletPattern     = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)
	headingPattern    = regexp.MustCompile(`^\s*#{1,6}\s*(.+?)\s*#*\s*$`)
	quotedCopyPattern = regexp.MustCompile(`"[A-Z][^"]{3,60}"`)
)

var (
	summaryHeadings    = []string{"about", "overview", "description", "introduction", "what is", "project"}
	problemHeadings    = []string{"problem", "motivation", "why", "challenge", "inspiration"}
	featureHeadings    = []string{"feature", "highlights", "what it does", "capabilities"}
	constraintHeadings = []string{"limitation", "constraint", "known issue", "roadmap", "todo", "future"}
	setupHeadings      = []string{"install", "setup", "getting started", "deploy", "quick start", "run"}
	usageHeadings      = []string{"usage", "how it works", "how to use", "walkthrough", "user flow"}

	problemPhrases    = []string{"problem", "solves", "challenge", "pain point"}
	comparatorPhrases = []string{"unlike", "compared to", "alternative", "existing solution", "competitor", "instead of"}
	flowPhrases       = []string{"user can", "users can", "->", "→", "then ", "step "}
)

// readmeDoc 按标题切分后的 README
type readmeDoc struct {
	raw      string
	sections []readmeSection
}

type readmeSection struct {
	heading string // 小写标题，首段为空
	lines   []string
}

func parseReadme(raw string) *readmeDoc {
	doc := &readmeDoc{raw: raw}
	cur := readmeSection{}
	inFence := false
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence {
			if m := headingPattern.FindStringSubmatch(line); m != nil {
				doc.sections = append(doc.sections, cur)
				cur = readmeSection{heading: strings.ToLower(m[1])}
				continue
			}
		}
		cur.lines = append(cur.lines, line)
	}
	doc.sections = append(doc.sections, cur)
	return doc
}

// section 返回标题包含任一关键字的第一个章节正文
func (d *readmeDoc) section(names []string) string {
	for _, s := range d.sections {
		if s.heading == "" {
			continue
		}
		for _, n := range names {
			if strings.Contains(s.heading, n) {
				text := strings.TrimSpace(strings.Join(s.lines, "\n"))
				if text != "" {
					return text
				}
			}
		}
	}
	return ""
}

// summary 项目简介：优先取简介类章节，否则取第一段足够长的正文
func (d *readmeDoc) summary() string {
	if s := d.section(summaryHeadings); len(s) > 50 {
		return firstParagraph(s)
	}
	for _, s := range d.sections {
		for _, p := range strings.Split(strings.Join(s.lines, "\n"), "\n\n") {
			p = strings.TrimSpace(p)
			if len(p) > 50 && !strings.HasPrefix(p, "```") && !bulletPattern.MatchString(p) && !strings.HasPrefix(p, "!") {
				return p
			}
		}
	}
	return ""
}

func (d *readmeDoc) problem() string {
	if s := d.section(problemHeadings); s != "" {
		return firstParagraph(s)
	}
	for _, sentence := range splitSentences(d.raw) {
		if containsFold(sentence, problemPhrases) {
			return strings.TrimSpace(sentence)
		}
	}
	return ""
}

// features 功能列表：优先取功能章节中的条目，最多 10 条
func (d *readmeDoc) features() []string {
	src := d.section(featureHeadings)
	if src == "" {
		src = d.raw
	}
	var out []string
	for _, line := range strings.Split(src, "\n") {
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			item := strings.TrimSpace(m[1])
			if len(item) < 3 || (strings.HasPrefix(item, "[") && strings.HasSuffix(item, ")")) {
				continue
			}
			out = append(out, item)
			if len(out) == 10 {
				break
			}
		}
	}
	return out
}

func (d *readmeDoc) constraints() string {
	return d.section(constraintHeadings)
}

func (d *readmeDoc) setup() string {
	return d.section(setupHeadings)
}

func (d *readmeDoc) comparators() []string {
	var out []string
	for _, sentence := range splitSentences(d.raw) {
		if containsFold(sentence, comparatorPhrases) {
			out = append(out, strings.TrimSpace(sentence))
		}
	}
	return out
}

// userFlows 用户流程：使用章节中的条目，或描述用户操作的句子
func (d *readmeDoc) userFlows() []string {
	var out []string
	if usage := d.section(usageHeadings); usage != "" {
		for _, line := range strings.Split(usage, "\n") {
			if m := bulletPattern.FindStringSubmatch(line); m != nil {
				out = append(out, strings.TrimSpace(m[1]))
			}
		}
	}
	if len(out) == 0 {
		for _, sentence := range splitSentences(d.raw) {
			if containsFold(sentence, flowPhrases) {
				out = append(out, strings.TrimSpace(sentence))
			}
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// endpoints README 中形如 "GET /path" 的接口
func (d *readmeDoc) endpoints() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range endpointPattern.FindAllStringSubmatch(d.raw, -1) {
		ep := m[1] + " " + m[2]
		if !seen[ep] {
			seen[ep] = true
			out = append(out, ep)
		}
	}
	return out
}

// copyExamples README 中的引用块或带引号的界面文案
func (d *readmeDoc) copyExamples() []string {
	var out []string
	for _, line := range strings.Split(d.raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "> ") && len(trimmed) > 4 {
			out = append(out, strings.TrimPrefix(trimmed, "> "))
		}
	}
	out = append(out, quotedCopyPattern.FindAllString(d.raw, 5)...)
	return out
}

func firstParagraph(s string) string {
	p, _, _ := strings.Cut(strings.TrimSpace(s), "\n\n")
	return strings.TrimSpace(p)
}

func splitSentences(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '\n' || r == '!' || r == '?'
	})
}

func containsFold(s string, phrases []string) bool {
	return domain.ContainsAny(strings.ToLower(s), phrases)
}
