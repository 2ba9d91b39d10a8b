package agents

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// SecurityAgent 安全实践评分（仅基于文件名关键字，不做漏洞扫描）
type SecurityAgent struct{}

// NewSecurityAgent 创建安全 Agent
func NewSecurityAgent() *SecurityAgent { return &SecurityAgent{} }

func (a *SecurityAgent) ID() string   { return IDSecurity }
func (a *SecurityAgent) Name() string { return CategoryName(IDSecurity) }

// Analyze 检查环境模板、忽略文件、依赖清单、SAST 结果、校验与认证文件
func (a *SecurityAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()

	if ec.HasBaseName(".env.example") || ec.HasBaseName(".env.sample") || ec.HasBaseName(".env.template") {
		t.credit(2, "Environment variables template present (.env.example)")
	} else {
		t.risk("No environment variables template found")
		t.recommend("Add .env.example file")
	}

	if ec.HasBaseName(".gitignore") {
		t.credit(1, ".gitignore present")
	} else {
		t.recommend("Add a .gitignore to keep secrets and build output out of git")
	}

	var manifests []string
	for _, m := range PackageManifests {
		if ec.HasBaseName(m) {
			manifests = append(manifests, m)
		}
	}
	if len(manifests) > 0 {
		t.credit(1, "Dependency manifests: "+strings.Join(manifests, ", "))
	}

	a.analyzeSAST(t, ec)

	files := ec.LowerFiles()
	if v := pathsMatching(files, ValidationKeywords); len(v) > 0 {
		t.credit(2, "Input validation files: "+joinLimited(v, 3))
	} else if len(files) > 0 {
		t.recommend("Add input validation for external data")
	}
	if au := pathsMatching(files, AuthKeywords); len(au) > 0 {
		t.credit(2, "Authentication files: "+joinLimited(au, 3))
	}

	a.analyzeSensitiveFiles(t, ec)

	return t.result(IDSecurity), nil
}

func (a *SecurityAgent) analyzeSAST(t *tally, ec *domain.EvidenceContext) {
	report, ok := ec.Artifact(domain.ArtifactSASTResults)
	if !ok {
		return
	}
	low := strings.ToLower(report)
	switch {
	case strings.Contains(low, "no critical"):
		t.credit(2, "SAST report shows no critical findings")
	case strings.Contains(low, "vulnerab"):
		t.deduct(1, "SAST report lists vulnerabilities", "Static analysis reported vulnerabilities")
		t.recommend("Resolve vulnerabilities reported by static analysis")
	default:
		t.observe("SAST report provided")
	}
}

// analyzeSensitiveFiles 文件名含敏感关键字时同时记录证据与风险
func (a *SecurityAgent) analyzeSensitiveFiles(t *tally, ec *domain.EvidenceContext) {
	var hits []string
	for _, f := range ec.Files() {
		base := strings.ToLower(path.Base(f))
		if strings.HasPrefix(base, ".env.") || base == ".env" {
			if base == ".env" {
				hits = append(hits, f)
			}
			continue
		}
		if domain.ContainsAny(base, SensitiveFileKeywords) {
			hits = append(hits, f)
		}
	}
	if len(hits) == 0 {
		return
	}
	t.deduct(1, fmt.Sprintf("Sensitive file names detected: %s", joinLimited(hits, 3)),
		"Potential secrets committed to the repository")
	t.recommend("Remove secrets from version control and rotate any exposed credentials")
}

func pathsMatching(paths []string, keywords []string) []string {
	var out []string
	for _, p := range paths {
		if domain.ContainsAny(p, keywords) {
			out = append(out, p)
		}
	}
	return out
}
