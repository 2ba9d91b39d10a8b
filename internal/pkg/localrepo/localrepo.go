package localrepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

var ErrInvalidSource = errors.New("invalid local source")

var ignoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".next":        true,
	".venv":        true,
}

// readme 候选文件名，按优先级排列
var readmeNames = []string{"README.md", "readme.md", "README.rst", "README.txt", "README"}

// maxReadmeBytes README 读取上限
const maxReadmeBytes = 512 * 1024

// Load 从本地目录构建证据上下文，目录路径之外的信息只读取 git 分支与提交
func Load(dir string, artifacts map[string]any) (*domain.EvidenceContext, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidSource, dir)
	}

	tree, err := walkTree(dir)
	if err != nil {
		return nil, err
	}
	readme := readReadme(dir)

	abs, _ := filepath.Abs(dir)
	ec := domain.NewEvidenceContext(filepath.Base(abs), "", tree, readme, artifacts)
	if branch, commit, err := GetBranchAndCommit(dir); err == nil {
		ec.Branch = branch
		ec.Commit = commit
	} else {
		klog.V(6).Infof("读取本地 git 信息失败，忽略: dir=%s, error=%v", dir, err)
	}
	klog.V(6).Infof("本地仓库加载完成: dir=%s, entries=%d, readme=%d bytes", dir, len(tree), len(readme))
	return ec, nil
}

func walkTree(root string) ([]domain.FileEntry, error) {
	var entries []domain.FileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			entries = append(entries, domain.FileEntry{Path: rel, Kind: domain.KindDirectory})
			return nil
		}
		entries = append(entries, domain.FileEntry{Path: rel, Kind: domain.KindFile})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", ErrInvalidSource, root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func readReadme(root string) string {
	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		if len(data) > maxReadmeBytes {
			data = data[:maxReadmeBytes]
		}
		return string(data)
	}
	return ""
}

// LoadContextFile 读取 JSON 格式的证据上下文文件
func LoadContextFile(path string) (*domain.EvidenceContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	var ec domain.EvidenceContext
	if err := json.Unmarshal(data, &ec); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidSource, path, err)
	}
	ec.Prepare()
	return &ec, nil
}

// GetBranchAndCommit 读取本地仓库当前分支与短提交号
func GetBranchAndCommit(repoPath string) (string, string, error) {
	branchCmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	branchCmd.Dir = repoPath
	branchBytes, err := branchCmd.CombinedOutput()
	if err != nil {
		return "", "", fmt.Errorf("git branch failed: %w, output: %s", err, string(branchBytes))
	}

	commitCmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	commitCmd.Dir = repoPath
	commitBytes, err := commitCmd.CombinedOutput()
	if err != nil {
		return "", "", fmt.Errorf("git commit failed: %w, output: %s", err, string(commitBytes))
	}

	return strings.TrimSpace(string(branchBytes)), strings.TrimSpace(string(commitBytes)), nil
}
